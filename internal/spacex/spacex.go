// Package spacex loads launch and launch pad data from the SpaceX v3 REST
// API or from a JSON dump of it.
package spacex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/rcliao/space-missions/internal/model"
)

// DefaultBaseURL is the public v3 endpoint.
const DefaultBaseURL = "https://api.spacexdata.com/v3"

// PageData is everything the search page needs. It is also the dump
// format read by FileSource and written by the export command.
type PageData struct {
	Launches   []model.Launch    `json:"launches"`
	LaunchPads []model.LaunchPad `json:"launchpads"`
}

// Source produces page data.
type Source interface {
	FetchPageData(ctx context.Context) (PageData, error)
}

// --- HTTP client ---

// ClientConfig configures Client.
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second
	RateBurst int
	Transport http.RoundTripper
	Logger    *zap.Logger
}

// Client fetches from the SpaceX API. Requests are throttled and never
// retried.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a Client, filling unset config fields with defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 5
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 2
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:  cfg.Logger,
	}
}

// FetchPageData requests launches and launch pads concurrently.
func (c *Client) FetchPageData(ctx context.Context) (PageData, error) {
	var data PageData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		launches, err := c.FetchLaunches(gctx)
		data.Launches = launches
		return err
	})
	g.Go(func() error {
		pads, err := c.FetchLaunchPads(gctx)
		data.LaunchPads = pads
		return err
	})
	if err := g.Wait(); err != nil {
		return PageData{}, err
	}
	return data, nil
}

// FetchLaunches requests all launches.
func (c *Client) FetchLaunches(ctx context.Context) ([]model.Launch, error) {
	var out []model.Launch
	if err := c.get(ctx, "/launches", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchLaunchPads requests all launch pads.
func (c *Client) FetchLaunchPads(ctx context.Context) ([]model.LaunchPad, error) {
	var out []model.LaunchPad
	if err := c.get(ctx, "/launchpads", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("spacex %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("spacex request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("spacex response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("spacex error %d on %s: %s", resp.StatusCode, path, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// --- File source ---

// FileSource reads a PageData JSON dump from disk.
type FileSource struct {
	Path string
}

// FetchPageData reads and decodes the dump.
func (f FileSource) FetchPageData(ctx context.Context) (PageData, error) {
	if err := ctx.Err(); err != nil {
		return PageData{}, err
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return PageData{}, fmt.Errorf("read data file: %w", err)
	}
	var data PageData
	if err := json.Unmarshal(b, &data); err != nil {
		return PageData{}, fmt.Errorf("parse data file: %w", err)
	}
	return data, nil
}
