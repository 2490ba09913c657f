package httphandler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jgivc/hypersite/internal/common"
	"github.com/jgivc/hypersite/internal/config"
	"github.com/jgivc/hypersite/internal/entity"
	"github.com/jgivc/hypersite/internal/platform"
	"github.com/jgivc/hypersite/internal/util"
)

const (
	homeCacheControl = "public, max-age=0, s-maxage=86400, stale-while-revalidate"
	osQueryParam     = "os"
)

type PageService interface {
	GetPage(ctx context.Context, os entity.DetectedOS) (*entity.Page, error)
	Release(ctx context.Context) (*entity.Release, error)
}

type RegenerateService interface {
	Regenerate(ctx context.Context) error
}

type CounterService interface {
	GetDownloadCounters(ctx context.Context) (map[string]int64, error)
}

type DownloadService interface {
	Download(ctx context.Context, path string) (string, error)
}

// DetectRequestOS prefers an explicit ?os= over the User-Agent.
func DetectRequestOS(r *http.Request) entity.DetectedOS {
	if q := r.URL.Query().Get(osQueryParam); q != "" {
		return platform.ParseOS(q)
	}

	return platform.DetectOS(r.UserAgent())
}

func NewHomeHandler(srv PageService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "HomeHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		os := DetectRequestOS(r)

		page, err := srv.GetPage(r.Context(), os)
		if err != nil {
			log.Error("Cannot get page", slog.String("os", os.String()), slog.Any("error", err))
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)

			return
		}

		etag := util.ETag(page.Hash)

		h := w.Header()
		h.Set("ETag", etag)
		h.Set("Cache-Control", homeCacheControl)
		h.Set("Vary", "User-Agent")
		h.Set(config.BuildIDHeader, page.BuildID)

		if etagMatch(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)

			return
		}

		h.Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page.Content))
	}
}

func NewReleaseHandler(srv PageService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "ReleaseHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		release, err := srv.Release(r.Context())
		if err != nil {
			log.Error("Cannot get release", slog.Any("error", err))
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)

			return
		}

		writeJSON(w, release)
	}
}

func NewDownloadHandler(srv DownloadService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DownloadHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		path := r.PathValue("path")

		url, err := srv.Download(r.Context(), path)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrInstallerNotFound):
				http.Error(w, "Cannot find installer", http.StatusNotFound)
			default:
				log.Error("Cannot get installer", slog.String("path", path), slog.Any("error", err))
				http.Error(w, "Cannot get installer", http.StatusInternalServerError)
			}

			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}

func NewCounterHandler(srv CounterService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CounterHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := srv.GetDownloadCounters(r.Context())
		if err != nil {
			log.Error("Cannot get counters", slog.Any("error", err))
			http.Error(w, "Cannot get counters", http.StatusInternalServerError)

			return
		}

		writeJSON(w, counters)
	}
}

// NewRegenerateHandler requires "Authorization: Bearer <adminToken>". An empty
// adminToken disables the endpoint.
func NewRegenerateHandler(srv RegenerateService, adminToken string, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "RegenerateHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		token, hasToken := bearerToken(r)

		switch {
		case adminToken == "":
			http.Error(w, "Regeneration is disabled", http.StatusForbidden)

			return
		case !hasToken:
			w.Header().Set("WWW-Authenticate", `Bearer realm="hypersite"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)

			return
		case subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1:
			log.Warn("Invalid admin token", slog.String("remote", r.RemoteAddr))
			http.Error(w, "Forbidden", http.StatusForbidden)

			return
		}

		if err := srv.Regenerate(context.WithoutCancel(r.Context())); err != nil {
			switch {
			case errors.Is(err, common.ErrRegenerationInProgress):
				http.Error(w, "Regeneration process has already started", http.StatusConflict)
			case errors.Is(err, common.ErrReleaseFetch), errors.Is(err, common.ErrReleaseDecode):
				http.Error(w, "Cannot get latest release", http.StatusBadGateway)
			default:
				log.Error("Cannot regenerate", slog.Any("error", err))
				http.Error(w, "Cannot regenerate", http.StatusInternalServerError)
			}

			return
		}

		w.Write([]byte("done"))
	}
}

func NewHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "

	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}

	return strings.TrimSpace(h[len(prefix):]), true
}

func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}

	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || strings.TrimPrefix(tag, "W/") == etag {
			return true
		}
	}

	return false
}
