package httphandler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// CacheMiddleware sets Cache-Control max-age, or disables caching for t <= 0.
func CacheMiddleware(t time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			val := "no-cache, no-store, must-revalidate"
			if t > 0 {
				val = fmt.Sprintf("max-age=%d", int(t.Seconds()))
			}
			w.Header().Set("Cache-Control", val)
			next.ServeHTTP(w, r)
		})
	}
}

func LogMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	log = log.With(slog.String("item", "HTTP"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				log.Info("Request",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("remote", r.RemoteAddr),
					slog.Int("status", ww.Status()),
					slog.Int("bytes", ww.BytesWritten()),
					slog.Duration("duration", time.Since(start)),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
