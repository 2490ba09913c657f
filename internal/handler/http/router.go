package httphandler

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Services struct {
	Page interface {
		PageService
		RegenerateService
	}
	Download DownloadService
	Counter  CounterService
}

// NewRouter wires every route of the site behind the common middleware.
func NewRouter(srv *Services, static fs.FS, staticMaxAge time.Duration, adminToken string, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", NewHomeHandler(srv.Page, log))
	mux.Handle("GET /api/release/{$}", NewReleaseHandler(srv.Page, log))
	mux.Handle("GET /download/{path}", NewDownloadHandler(srv.Download, log))
	mux.Handle("GET /stat/{$}", NewCounterHandler(srv.Counter, log))
	mux.Handle("POST /regenerate/{$}", NewRegenerateHandler(srv.Page, adminToken, log))
	mux.Handle("GET /healthz", NewHealthHandler())
	mux.Handle("GET /static/", CacheMiddleware(staticMaxAge)(http.StripPrefix("/static/", http.FileServerFS(static))))

	return chi.Chain(
		middleware.RequestID,
		middleware.RealIP,
		LogMiddleware(log),
		middleware.Recoverer,
	).Handler(mux)
}
