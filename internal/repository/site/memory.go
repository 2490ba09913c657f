package site

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jgivc/hypersite/internal/common"
	"github.com/jgivc/hypersite/internal/entity"
)

// memoryRepository keeps the published generation in process memory.
// Used when no redis url is configured.
type memoryRepository struct {
	mu       sync.RWMutex
	gen      *entity.Generation
	counters map[string]int64
	log      *slog.Logger
}

func NewMemoryRepository(log *slog.Logger) *memoryRepository {
	return &memoryRepository{
		counters: make(map[string]int64),
		log:      log.With(slog.String("item", "MemoryRepository")),
	}
}

func (m *memoryRepository) Save(_ context.Context, gen *entity.Generation) error {
	m.mu.Lock()
	m.gen = gen
	m.mu.Unlock()

	m.log.Info("Save new generation", slog.String("build_id", gen.BuildID), slog.Int("pages", len(gen.Pages)))

	return nil
}

func (m *memoryRepository) GetPage(_ context.Context, os entity.DetectedOS) (*entity.Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.gen == nil {
		return nil, common.ErrPageNotFound
	}

	page, ok := m.gen.Pages[os]
	if !ok {
		return nil, common.ErrPageNotFound
	}

	return page, nil
}

func (m *memoryRepository) GetRelease(_ context.Context) (*entity.Release, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.gen == nil || m.gen.Release == nil {
		return nil, common.ErrPageNotFound
	}

	return m.gen.Release, nil
}

func (m *memoryRepository) GeneratedAt(_ context.Context) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.gen == nil {
		return time.Time{}, nil
	}

	return m.gen.GeneratedAt, nil
}

func (m *memoryRepository) IncDownloadCounter(_ context.Context, path string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[path]++

	return m.counters[path], nil
}

func (m *memoryRepository) GetDownloadCounters(_ context.Context) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for path, c := range m.counters {
		counters[path] = c
	}

	return counters, nil
}
