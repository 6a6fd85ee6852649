package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/angeloszaimis/origin-proxy/config"
	"github.com/angeloszaimis/origin-proxy/internal/circuitbreaker"
	"github.com/angeloszaimis/origin-proxy/internal/httpserver"
	"github.com/angeloszaimis/origin-proxy/internal/metrics"
	"github.com/angeloszaimis/origin-proxy/internal/origin"
	"github.com/angeloszaimis/origin-proxy/internal/proxy"
	"github.com/angeloszaimis/origin-proxy/internal/tracer"
	"github.com/angeloszaimis/origin-proxy/pkg/logger"
)

const metricsBufferSize = 1000

func main() {
	loader := config.NewLoader()
	cfg, err := loader.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, log, loader, cfg); err != nil {
		log.Error("Origin proxy stopped with error", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, loader *config.Loader, cfg *config.Config) error {
	collector := metrics.NewCollector(metricsBufferSize, cfg.Metrics.Namespace, log)
	breakers := circuitbreaker.NewRegistry(cfg.CircuitBreaker.Threshold, cfg.CircuitBreaker.ResetTimeoutDuration())

	table := origin.NewTable()
	origins := newOriginSet(log, table, breakers, collector)
	if err := origins.apply(ctx, cfg); err != nil {
		return err
	}
	defer origins.stop()

	endpoint := proxy.NewEndpoint(log, table, tracer.New(
		tracer.WithHeadersOnly(cfg.Debug.HeadersOnly),
		tracer.WithLogger(log),
	))

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(log, cfg, endpoint, origins, collector))
	if err != nil {
		return err
	}

	loader.Watch(func(next *config.Config) {
		for _, section := range restartOnlyChanges(cfg, next) {
			log.Warn("Setting changes take effect after a restart", slog.String("section", section))
		}
		if err := origins.apply(ctx, next); err != nil {
			log.Error("Failed to apply reloaded origins", slog.Any("err", err))
		}
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		collector.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info("Origin proxy listening", slog.String("addr", srv.Addr()))
		return srv.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down gracefully...")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

// restartOnlyChanges names the sections that differ between cur and next but
// are only read at startup.
func restartOnlyChanges(cur, next *config.Config) []string {
	var changed []string
	if !slices.Equal(next.Routes, cur.Routes) {
		changed = append(changed, "routes")
	}
	if next.CircuitBreaker != cur.CircuitBreaker {
		changed = append(changed, "circuit_breaker")
	}
	if next.Debug != cur.Debug {
		changed = append(changed, "debug")
	}
	if next.Metrics != cur.Metrics {
		changed = append(changed, "metrics")
	}
	if next.Server != cur.Server {
		changed = append(changed, "server")
	}
	if next.Logging != cur.Logging {
		changed = append(changed, "logging")
	}
	return changed
}
