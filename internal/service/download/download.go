package download

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jgivc/hypersite/internal/common"
	"github.com/jgivc/hypersite/internal/platform"
)

const (
	serviceName = "download"
)

type DownloadRepository interface {
	IncDownloadCounter(ctx context.Context, path string) (int64, error)
}

type downloadService struct {
	baseURL string
	repo    DownloadRepository
	log     *slog.Logger
}

func NewDownloadService(baseURL string, repo DownloadRepository, log *slog.Logger) *downloadService {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &downloadService{
		baseURL: baseURL,
		repo:    repo,
		log:     log.With(slog.String("service", serviceName)),
	}
}

// Download counts the download and returns the installer url to redirect to.
func (d *downloadService) Download(ctx context.Context, path string) (string, error) {
	if !platform.IsDownloadPath(path) {
		return "", fmt.Errorf("%w: %s", common.ErrInstallerNotFound, path)
	}

	counter, err := d.repo.IncDownloadCounter(ctx, path)
	if err != nil {
		// A lost count must not break the download.
		d.log.Error("Cannot increment download counter", slog.String("path", path), slog.Any("error", err))
	} else {
		d.log.Debug("Download", slog.String("path", path), slog.Int64("counter", counter))
	}

	return d.baseURL + path, nil
}
