package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jgivc/hypersite/internal/adapter/fsadapter"
	"github.com/jgivc/hypersite/internal/adapter/ghadapter"
	"github.com/jgivc/hypersite/internal/adapter/tpladapter"
	"github.com/jgivc/hypersite/internal/builder"
	"github.com/jgivc/hypersite/internal/config"
	httphandler "github.com/jgivc/hypersite/internal/handler/http"
	"github.com/jgivc/hypersite/internal/repository/site"
	"github.com/jgivc/hypersite/internal/service/counter"
	srvdownload "github.com/jgivc/hypersite/internal/service/download"
	"github.com/jgivc/hypersite/internal/service/page"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

const (
	regenerateTimeout = 30 * time.Second
	shutdownTimeout   = 5 * time.Second
)

type Repository interface {
	page.PageRepository
	srvdownload.DownloadRepository
	counter.CounterRepository
}

type PageService interface {
	httphandler.PageService
	httphandler.RegenerateService
}

type App struct {
	cfgPath string
	cfg     *config.Config
	srv     *http.Server
	pages   PageService
	log     *slog.Logger
}

func New(cfgPath string) *App {
	return &App{
		cfgPath: cfgPath,
	}
}

// Start wires every component and serves in the background. All fields are
// set before it returns, so Regenerate and Stop are safe to call afterwards.
func (a *App) Start() {
	a.cfg = config.MustLoad(a.cfgPath)

	lo := &slog.HandlerOptions{}
	switch a.cfg.LogLevel {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		panic("unknown log level")
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, lo))
	a.log = log

	ctx := context.Background()

	repo, err := a.newRepository(ctx)
	if err != nil {
		panic(err)
	}

	contentFS := fsadapter.DefaultFS()
	if a.cfg.SiteConfig.ContentDir != "" {
		contentFS = fsadapter.DirFS(a.cfg.SiteConfig.ContentDir)
	}
	fsa := fsadapter.NewFSAdapter(contentFS, log)

	tpl, err := tpladapter.NewTplAdapter(afero.NewOsFs(), a.cfg.SiteConfig.TemplateFile)
	if err != nil {
		panic(err)
	}

	b := builder.NewBuilder(fsa, tpl, a.cfg.SiteConfig.URL, a.cfg.SiteConfig.Workers, log)
	gh := ghadapter.NewClient(&a.cfg.ReleaseConfig, log)

	a.pages = page.NewPageService(gh, b, repo, a.cfg.SiteConfig.Revalidate, log)

	handler := httphandler.NewRouter(&httphandler.Services{
		Page:     a.pages,
		Download: srvdownload.NewDownloadService(a.cfg.SiteConfig.DownloadBaseURL, repo, log),
		Counter:  counter.NewCounterService(repo, log),
	}, tpladapter.Static(), a.cfg.SiteConfig.Revalidate, a.cfg.SiteConfig.AdminToken, log)

	a.srv = &http.Server{
		Addr:    a.cfg.Listen,
		Handler: handler,
	}

	go func() {
		a.Regenerate()

		log.Info("Start listen", slog.String("addr", a.cfg.Listen))

		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Could not serve", slog.String("listen_addr", a.cfg.Listen), slog.Any("error", err))
			os.Exit(2)
		}
	}()
}

func (a *App) newRepository(ctx context.Context) (Repository, error) {
	if a.cfg.RedisURL == "" {
		a.log.Info("Redis url is not set, use memory repository")

		return site.NewMemoryRepository(a.log), nil
	}

	opt, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	return site.NewRedisRepository(ctx, rdb, a.log)
}

// Regenerate forces a fresh build of every page variant.
func (a *App) Regenerate() {
	ctx, cancel := context.WithTimeout(context.Background(), regenerateTimeout)
	defer cancel()

	if err := a.pages.Regenerate(ctx); err != nil {
		a.log.Error("Cannot regenerate", slog.Any("error", err))

		return
	}

	a.log.Info("Regeneration done")
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.srv.Shutdown(ctx); err != nil {
		a.log.Error("Cannot shutdown server", slog.Any("error", err))
	}
}
