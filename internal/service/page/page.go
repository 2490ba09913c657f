package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/jgivc/hypersite/internal/common"
	"github.com/jgivc/hypersite/internal/entity"
	"golang.org/x/sync/singleflight"
)

const (
	serviceName = "page"

	regenerateTimeout = 30 * time.Second
)

type ReleaseLoader interface {
	Latest(ctx context.Context) (*entity.Release, error)
}

type GenerationBuilder interface {
	Build(ctx context.Context, release *entity.Release) (*entity.Generation, error)
}

type PageRepository interface {
	Save(ctx context.Context, gen *entity.Generation) error
	GetPage(ctx context.Context, os entity.DetectedOS) (*entity.Page, error)
	GetRelease(ctx context.Context) (*entity.Release, error)
	GeneratedAt(ctx context.Context) (time.Time, error)
}

type pageService struct {
	running    atomic.Bool
	initial    singleflight.Group
	loader     ReleaseLoader
	builder    GenerationBuilder
	repo       PageRepository
	revalidate time.Duration
	now        func() time.Time
	log        *slog.Logger
}

func NewPageService(loader ReleaseLoader, builder GenerationBuilder, repo PageRepository, revalidate time.Duration, log *slog.Logger) *pageService {
	return &pageService{
		loader:     loader,
		builder:    builder,
		repo:       repo,
		revalidate: revalidate,
		now:        time.Now,
		log:        log.With(slog.String("service", serviceName)),
	}
}

func (p *pageService) GetPage(ctx context.Context, os entity.DetectedOS) (*entity.Page, error) {
	if err := p.revalidateIfNeeded(ctx); err != nil {
		return nil, err
	}

	page, err := p.repo.GetPage(ctx, os)
	if err != nil {
		p.log.Error("Cannot get page content", slog.String("os", os.String()), slog.Any("error", err))

		return nil, fmt.Errorf("cannot get page %s content: %w", os, err)
	}

	return page, nil
}

func (p *pageService) Release(ctx context.Context) (*entity.Release, error) {
	if err := p.revalidateIfNeeded(ctx); err != nil {
		return nil, err
	}

	release, err := p.repo.GetRelease(ctx)
	if err != nil {
		p.log.Error("Cannot get release", slog.Any("error", err))

		return nil, fmt.Errorf("cannot get release: %w", err)
	}

	return release, nil
}

// Regenerate fetches the latest release and publishes a new generation.
func (p *pageService) Regenerate(ctx context.Context) error {
	return p.regenerate(ctx)
}

func (p *pageService) revalidateIfNeeded(ctx context.Context) error {
	generatedAt, err := p.repo.GeneratedAt(ctx)
	if err != nil {
		p.log.Error("Cannot get generation time", slog.Any("error", err))

		return fmt.Errorf("cannot get generation time: %w", err)
	}

	if generatedAt.IsZero() {
		// Nothing to fall back to. Concurrent first requests share one build.
		_, err, _ := p.initial.Do("initial", func() (any, error) {
			return nil, p.regenerate(context.WithoutCancel(ctx))
		})
		if err != nil {
			return fmt.Errorf("cannot build initial generation: %w", err)
		}

		return nil
	}

	age := p.now().Sub(generatedAt)
	if age < p.revalidate {
		return nil
	}

	p.log.Info("Generation is stale", slog.Duration("age", age), slog.Time("generated_at", generatedAt))

	if err := p.regenerate(context.WithoutCancel(ctx)); err != nil {
		if !errors.Is(err, common.ErrRegenerationInProgress) {
			p.log.Error("Cannot regenerate, serve previous output", slog.Any("error", err))
		}
	}

	return nil
}

func (p *pageService) regenerate(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return common.ErrRegenerationInProgress
	}
	defer p.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, regenerateTimeout)
	defer cancel()

	var prevTag string
	if prev, err := p.repo.GetRelease(ctx); err == nil {
		prevTag = prev.TagName
	}

	release, err := p.loader.Latest(ctx)
	if err != nil {
		p.log.Error("Cannot fetch release", slog.Any("error", err))

		return fmt.Errorf("cannot fetch release: %w", err)
	}

	gen, err := p.builder.Build(ctx, release)
	if err != nil {
		p.log.Error("Cannot build pages", slog.String("tag", release.TagName), slog.Any("error", err))

		return fmt.Errorf("cannot build pages: %w", err)
	}

	if err := p.repo.Save(ctx, gen); err != nil {
		p.log.Error("Cannot save generation", slog.String("build_id", gen.BuildID), slog.Any("error", err))

		return fmt.Errorf("cannot save generation: %w", err)
	}

	p.logTagChange(prevTag, release.TagName)
	p.log.Info("Regenerated", slog.String("build_id", gen.BuildID), slog.String("tag", release.TagName),
		slog.Int("pages", len(gen.Pages)))

	return nil
}

func (p *pageService) logTagChange(prevTag, tag string) {
	if prevTag == "" || prevTag == tag {
		return
	}

	log := p.log.With(slog.String("previous", prevTag), slog.String("current", tag))

	prev, err := semver.NewVersion(prevTag)
	if err != nil {
		log.Info("Release tag changed")

		return
	}

	cur, err := semver.NewVersion(tag)
	if err != nil {
		log.Info("Release tag changed")

		return
	}

	if cur.LessThan(prev) {
		log.Warn("Release tag downgraded")

		return
	}

	log.Info("New release")
}
