package ghadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jgivc/hypersite/internal/common"
	"github.com/jgivc/hypersite/internal/config"
	"github.com/jgivc/hypersite/internal/entity"
)

const (
	acceptHeader = "application/vnd.github+json"
	maxBodySize  = 4 << 20
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Option func(*Client)

func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// Client reads the latest release descriptor. It never retries and never
// falls back to a previous value.
type Client struct {
	cfg        *config.ReleaseConfig
	httpClient HTTPClient
	log        *slog.Logger
}

func NewClient(cfg *config.ReleaseConfig, log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: http.DefaultClient,
		log:        log.With(slog.String("item", "ReleaseClient")),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Latest(ctx context.Context) (*entity.Release, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build request: %w", err)
	}

	req.Header.Set("Accept", acceptHeader)
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	c.log.Debug("Fetch latest release", slog.String("url", c.cfg.URL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrReleaseFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", common.ErrReleaseFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read body: %w", common.ErrReleaseFetch, err)
	}

	return parseRelease(body)
}

func parseRelease(data []byte) (*entity.Release, error) {
	var release entity.Release
	if err := json.Unmarshal(data, &release); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrReleaseDecode, err)
	}

	if release.TagName == "" {
		return nil, fmt.Errorf("%w: tag_name is missing", common.ErrReleaseDecode)
	}

	return &release, nil
}
