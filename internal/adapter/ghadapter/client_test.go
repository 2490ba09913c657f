package ghadapter

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jgivc/hypersite/internal/common"
	"github.com/jgivc/hypersite/internal/config"
	"github.com/stretchr/testify/require"
)

const latestBody = `{
  "tag_name": "v3.4.1",
  "name": "3.4.1",
  "html_url": "https://github.com/vercel/hyper/releases/tag/v3.4.1",
  "published_at": "2022-12-26T10:00:00Z",
  "assets": [
    {"name": "Hyper-3.4.1-mac-arm64.dmg", "browser_download_url": "https://example.com/a.dmg", "size": 100},
    {"name": "Hyper-Setup-3.4.1.exe", "browser_download_url": "https://example.com/b.exe", "size": 200}
  ]
}`

func newTestClient(t *testing.T, h http.HandlerFunc, token string) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := &config.ReleaseConfig{URL: srv.URL, Token: token, UserAgent: "hypersite-test"}
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	return NewClient(cfg, log, WithHTTPClient(srv.Client()))
}

func TestLatest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, acceptHeader, r.Header.Get("Accept"))
		require.Equal(t, "hypersite-test", r.Header.Get("User-Agent"))
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(latestBody))
	}, "secret")

	release, err := c.Latest(context.Background())
	require.NoError(t, err)
	require.Equal(t, "v3.4.1", release.TagName)
	require.Equal(t, "3.4.1", release.Name)
	require.Len(t, release.Assets, 2)
	require.Equal(t, int64(200), release.Assets[1].Size)
	require.Equal(t, 2022, release.PublishedAt.Year())
}

func TestLatestErrors(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "oops", wantErr: common.ErrReleaseFetch},
		{name: "rate limited", status: http.StatusForbidden, body: `{"message":"API rate limit exceeded"}`, wantErr: common.ErrReleaseFetch},
		{name: "not json", status: http.StatusOK, body: "<html>maintenance</html>", wantErr: common.ErrReleaseDecode},
		{name: "missing tag", status: http.StatusOK, body: `{"name":"nightly"}`, wantErr: common.ErrReleaseDecode},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}, "")

			release, err := c.Latest(context.Background())
			require.ErrorIs(t, err, tc.wantErr)
			require.Nil(t, release)
		})
	}
}

func TestLatestNoToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(latestBody))
	}, "")

	_, err := c.Latest(context.Background())
	require.NoError(t, err)
}

func TestLatestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	c := NewClient(&config.ReleaseConfig{URL: url}, log)

	_, err := c.Latest(context.Background())
	require.ErrorIs(t, err, common.ErrReleaseFetch)
}
