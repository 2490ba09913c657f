package counter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jgivc/hypersite/internal/platform"
)

const (
	serviceName = "counter"
)

type CounterRepository interface {
	GetDownloadCounters(ctx context.Context) (map[string]int64, error)
}

type counterService struct {
	repo CounterRepository
	log  *slog.Logger
}

func NewCounterService(repo CounterRepository, log *slog.Logger) *counterService {
	return &counterService{
		repo: repo,
		log:  log.With(slog.String("service", serviceName)),
	}
}

// GetDownloadCounters reports every installer path, zero when never downloaded.
func (c *counterService) GetDownloadCounters(ctx context.Context) (map[string]int64, error) {
	stored, err := c.repo.GetDownloadCounters(ctx)
	if err != nil {
		c.log.Error("Cannot get download counters", slog.Any("error", err))

		return nil, fmt.Errorf("cannot get download counters: %w", err)
	}

	paths := platform.DownloadPaths()
	counters := make(map[string]int64, len(paths))
	for _, path := range paths {
		counters[path] = stored[path]
	}

	return counters, nil
}
