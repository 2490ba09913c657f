package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jgivc/hypersite/internal/common"
	"github.com/jgivc/hypersite/internal/entity"
	"github.com/redis/go-redis/v9"
)

const (
	KeyVersion1      = "v1"
	KeyVersion2      = "v2"
	KeyActiveVersion = "av" // STRING. Name of the generation being served
	KeyPageContent   = "pc" // HASH. pc:ver os: html
	KeyPageHash      = "ph" // HASH. ph:ver os: etag
	KeyRelease       = "rl" // STRING. rl:ver release descriptor json
	KeyGeneration    = "gi" // HASH. gi:ver build_id, generated_at (unix nano)

	KeyDownloadCounters = "dc" // HASH. dc installer_path: counter. Survives regenerations. HINCRBY dc {path} 1

	FieldBuildID     = "build_id"
	FieldGeneratedAt = "generated_at"

	KeyEmpty     = ""
	KeySeparator = ":"
)

var (
	ClearableKeys = []string{KeyPageContent, KeyPageHash, KeyRelease, KeyGeneration}
)

// redisRepository reads the active version from redis on every lookup, so
// instances sharing one redis serve whatever generation was saved last.
type redisRepository struct {
	cl  *redis.Client
	log *slog.Logger
}

func NewRedisRepository(ctx context.Context, cl *redis.Client, log *slog.Logger) (*redisRepository, error) {
	repo := &redisRepository{
		cl:  cl,
		log: log.With(slog.String("item", "RedisRepository")),
	}

	if _, _, err := repo.getVersions(ctx); err != nil {
		return nil, fmt.Errorf("cannot get active version: %w", err)
	}

	return repo, nil
}

func (r *redisRepository) Save(ctx context.Context, gen *entity.Generation) error {
	verActive, verStandby, err := r.getVersions(ctx)
	if err != nil {
		r.log.Error("Cannot get standby data version", slog.Any("error", err))

		return fmt.Errorf("cannot get active version: %w", err)
	}
	r.log.Info("Save new generation", slog.String("active_version", verActive), slog.String("standby_version", verStandby),
		slog.String("build_id", gen.BuildID))

	if err := r.clearOldData(ctx, verStandby); err != nil {
		r.log.Error("Cannot clear old data", slog.String("version", verStandby), slog.Any("error", err))

		return fmt.Errorf("cannot clear old data: %w", err)
	}

	if err := r.saveNewData(ctx, verStandby, gen); err != nil {
		r.log.Error("Cannot save new data", slog.String("version", verStandby), slog.Any("error", err))

		return fmt.Errorf("cannot save new data: %w", err)
	}

	if _, err := r.cl.Set(ctx, KeyActiveVersion, verStandby, 0).Result(); err != nil {
		r.log.Error("Cannot switch to new version", slog.String("version", verStandby), slog.Any("error", err))

		return fmt.Errorf("cannot switch to new version: %w", err)
	}

	return nil
}

func (r *redisRepository) saveNewData(ctx context.Context, ver string, gen *entity.Generation) error {
	release, err := json.Marshal(gen.Release)
	if err != nil {
		return fmt.Errorf("cannot marshal release: %w", err)
	}

	pipe := r.cl.TxPipeline()
	for os, page := range gen.Pages {
		pipe.HSet(ctx, getKey(KeyPageContent, ver), os.String(), page.Content)
		pipe.HSet(ctx, getKey(KeyPageHash, ver), os.String(), page.Hash)
	}

	pipe.Set(ctx, getKey(KeyRelease, ver), release, 0)
	pipe.HSet(ctx, getKey(KeyGeneration, ver),
		FieldBuildID, gen.BuildID,
		FieldGeneratedAt, strconv.FormatInt(gen.GeneratedAt.UnixNano(), 10),
	)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cannot exec pipe: %w", err)
	}

	return nil
}

func (r *redisRepository) clearOldData(ctx context.Context, ver string) error {
	keys := make([]string, 0, len(ClearableKeys))
	for _, key := range ClearableKeys {
		keys = append(keys, getKey(key, ver))
	}

	count, err := r.cl.Del(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("error deleting keys: %w", err)
	}

	r.log.Debug("Clear keys", slog.String("version", ver), slog.Int64("key_count", count))

	return nil
}

/*
getVersions return active and standby versions
*/
func (r *redisRepository) getVersions(ctx context.Context) (string, string, error) {
	ver, err := r.cl.Get(ctx, KeyActiveVersion).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return KeyEmpty, KeyEmpty, fmt.Errorf("cannot get active version: %w", err)
	}

	switch ver {
	case KeyVersion1:
		return KeyVersion1, KeyVersion2, nil
	case KeyVersion2:
		return KeyVersion2, KeyVersion1, nil
	}

	r.log.Info("Active version key is not found. Try to set new one", slog.String("version", KeyVersion1))

	if _, err = r.cl.Set(ctx, KeyActiveVersion, KeyVersion1, 0).Result(); err != nil {
		return KeyEmpty, KeyEmpty, fmt.Errorf("cannot set version key: %w", err)
	}

	return KeyVersion1, KeyVersion2, nil
}

// getActiveVersion returns KeyEmpty when nothing was published yet.
func (r *redisRepository) getActiveVersion(ctx context.Context) (string, error) {
	ver, err := r.cl.Get(ctx, KeyActiveVersion).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return KeyEmpty, nil
		}

		return KeyEmpty, fmt.Errorf("cannot get active version: %w", err)
	}

	return ver, nil
}

func (r *redisRepository) GetPage(ctx context.Context, os entity.DetectedOS) (*entity.Page, error) {
	ver, err := r.getActiveVersion(ctx)
	if err != nil {
		return nil, err
	}

	if ver == KeyEmpty {
		return nil, common.ErrPageNotFound
	}

	pipe := r.cl.Pipeline()
	contentCmd := pipe.HGet(ctx, getKey(KeyPageContent, ver), os.String())
	hashCmd := pipe.HGet(ctx, getKey(KeyPageHash, ver), os.String())
	genCmd := pipe.HGetAll(ctx, getKey(KeyGeneration, ver))
	releaseCmd := pipe.Get(ctx, getKey(KeyRelease, ver))

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("cannot get page %s: %w", os, err)
	}

	content, err := contentCmd.Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrPageNotFound
		}

		return nil, fmt.Errorf("cannot get page %s content: %w", os, err)
	}

	hash, err := hashCmd.Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("cannot get page %s hash: %w", os, err)
	}

	info, err := genCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get generation info: %w", err)
	}

	generatedAt, err := parseUnixNano(info[FieldGeneratedAt])
	if err != nil {
		return nil, fmt.Errorf("cannot parse generation time: %w", err)
	}

	page := &entity.Page{
		OS:          os,
		Content:     content,
		Hash:        hash,
		BuildID:     info[FieldBuildID],
		GeneratedAt: generatedAt,
	}

	if data, err := releaseCmd.Bytes(); err == nil {
		var release entity.Release
		if err := json.Unmarshal(data, &release); err == nil {
			page.Version = release.TagName
		}
	}

	return page, nil
}

func (r *redisRepository) GetRelease(ctx context.Context) (*entity.Release, error) {
	ver, err := r.getActiveVersion(ctx)
	if err != nil {
		return nil, err
	}

	if ver == KeyEmpty {
		return nil, common.ErrPageNotFound
	}

	data, err := r.cl.Get(ctx, getKey(KeyRelease, ver)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrPageNotFound
		}

		return nil, fmt.Errorf("cannot get release: %w", err)
	}

	var release entity.Release
	if err := json.Unmarshal(data, &release); err != nil {
		return nil, fmt.Errorf("cannot unmarshal release: %w", err)
	}

	return &release, nil
}

// GeneratedAt returns zero time when nothing was generated yet.
func (r *redisRepository) GeneratedAt(ctx context.Context) (time.Time, error) {
	ver, err := r.getActiveVersion(ctx)
	if err != nil {
		return time.Time{}, err
	}

	if ver == KeyEmpty {
		return time.Time{}, nil
	}

	val, err := r.cl.HGet(ctx, getKey(KeyGeneration, ver), FieldGeneratedAt).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}

		return time.Time{}, fmt.Errorf("cannot get generation time: %w", err)
	}

	return parseUnixNano(val)
}

func (r *redisRepository) IncDownloadCounter(ctx context.Context, path string) (int64, error) {
	counter, err := r.cl.HIncrBy(ctx, KeyDownloadCounters, path, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("cannot increment download %s counter: %w", path, err)
	}

	return counter, nil
}

func (r *redisRepository) GetDownloadCounters(ctx context.Context) (map[string]int64, error) {
	values, err := r.cl.HGetAll(ctx, KeyDownloadCounters).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get download counters: %w", err)
	}

	counters := make(map[string]int64, len(values))
	for path, val := range values {
		c, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			r.log.Error("Cannot convert counter value", slog.String("path", path), slog.Any("error", err))

			continue
		}

		counters[path] = c
	}

	return counters, nil
}

func parseUnixNano(val string) (time.Time, error) {
	if val == "" {
		return time.Time{}, nil
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	return time.Unix(0, n), nil
}

func getKey(keys ...string) string {
	return strings.Join(keys, KeySeparator)
}
