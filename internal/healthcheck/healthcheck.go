package healthcheck

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/angeloszaimis/origin-proxy/internal/upstream"
)

const (
	DefaultPath    = "/health"
	defaultTimeout = 5 * time.Second
)

// ChangeFunc is called whenever a probe flips the health of a host.
type ChangeFunc func(host *upstream.Host, healthy bool)

type Checker struct {
	client   *http.Client
	interval time.Duration
	path     string
	logger   *slog.Logger
	onChange ChangeFunc
}

type Option func(*Checker)

func WithClient(client *http.Client) Option {
	return func(c *Checker) { c.client = client }
}

func WithOnChange(fn ChangeFunc) Option {
	return func(c *Checker) { c.onChange = fn }
}

func New(interval time.Duration, path string, logger *slog.Logger, opts ...Option) *Checker {
	if path == "" {
		path = DefaultPath
	}

	c := &Checker{
		client:   &http.Client{Timeout: defaultTimeout},
		interval: interval,
		path:     path,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start runs one probe loop per host until ctx is cancelled.
func (c *Checker) Start(ctx context.Context, hosts []*upstream.Host) {
	for _, h := range hosts {
		go c.Run(ctx, h)
	}
}

// Run probes host every interval until ctx is cancelled.
func (c *Checker) Run(ctx context.Context, host *upstream.Host) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("Health check stopped", slog.String("server", host.String()))
			return

		case <-ticker.C:
			c.Probe(ctx, host)
		}
	}
}

// Probe performs a single check and updates the host. It reports the new health.
func (c *Checker) Probe(ctx context.Context, host *upstream.Host) bool {
	healthy := c.check(ctx, host)
	if ctx.Err() != nil {
		return host.IsHealthy()
	}

	if !host.SetHealthy(healthy) {
		return healthy
	}

	if healthy {
		c.logger.Info("Server is back up", slog.String("server", host.String()))
	} else {
		c.logger.Warn("Server is down", slog.String("server", host.String()))
	}

	if c.onChange != nil {
		c.onChange(host, healthy)
	}
	return healthy
}

func (c *Checker) check(ctx context.Context, host *upstream.Host) bool {
	healthURL := host.URL().ResolveReference(&url.URL{Path: c.path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL.String(), nil)
	if err != nil {
		return false
	}

	res, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	return res.StatusCode == http.StatusOK
}
