package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/angeloszaimis/origin-proxy/config"
	"github.com/angeloszaimis/origin-proxy/internal/circuitbreaker"
	"github.com/angeloszaimis/origin-proxy/internal/healthcheck"
	"github.com/angeloszaimis/origin-proxy/internal/loadbalancer"
	"github.com/angeloszaimis/origin-proxy/internal/metrics"
	"github.com/angeloszaimis/origin-proxy/internal/origin"
	"github.com/angeloszaimis/origin-proxy/internal/strategy"
	"github.com/angeloszaimis/origin-proxy/internal/upstream"
)

// originSet owns the HTTP origins published in the registry table and the
// health checks of their hosts. apply replaces both atomically from the
// caller's point of view.
type originSet struct {
	logger    *slog.Logger
	table     *origin.Table
	breakers  *circuitbreaker.Registry
	collector *metrics.Collector
	transport http.RoundTripper

	mutex   sync.Mutex
	current map[string]*origin.HTTPOrigin
	stopHC  context.CancelFunc
}

func newOriginSet(logger *slog.Logger, table *origin.Table, breakers *circuitbreaker.Registry, collector *metrics.Collector) *originSet {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 32
	transport.IdleConnTimeout = 90 * time.Second

	return &originSet{
		logger:    logger,
		table:     table,
		breakers:  breakers,
		collector: collector,
		transport: transport,
	}
}

// apply builds every origin of cfg, swaps them into the table and restarts
// health checking. On error nothing is changed.
func (s *originSet) apply(ctx context.Context, cfg *config.Config) error {
	built, hosts, err := buildOrigins(cfg, s.breakers, s.transport, s.logger)
	if err != nil {
		return err
	}

	backends := make(map[string]origin.Backend, len(built))
	for name, o := range built {
		backends[name] = o
	}
	if err := s.table.Replace(backends); err != nil {
		return err
	}

	keep := make([]string, 0, len(hosts))
	for _, h := range hosts {
		keep = append(keep, h.String())
	}
	s.breakers.Retain(keep)

	checker := healthcheck.New(cfg.HealthCheck.IntervalDuration(), cfg.HealthCheck.Path, s.logger,
		healthcheck.WithOnChange(s.reportHealth))

	s.mutex.Lock()
	if s.stopHC != nil {
		s.stopHC()
	}
	hcCtx, cancel := context.WithCancel(ctx)
	s.stopHC = cancel
	s.current = built
	s.mutex.Unlock()

	for _, h := range hosts {
		s.reportHealth(h, h.IsHealthy())
	}
	checker.Start(hcCtx, hosts)

	for _, r := range cfg.DanglingRoutes() {
		s.logger.Warn("Route points at an unknown origin",
			slog.String("prefix", r.Prefix),
			slog.String("origin", r.Origin))
	}

	s.logger.Info("Origins applied",
		slog.Any("origins", s.table.Names()),
		slog.Int("hosts", len(hosts)))
	return nil
}

func (s *originSet) stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.stopHC != nil {
		s.stopHC()
		s.stopHC = nil
	}
}

func (s *originSet) reportHealth(h *upstream.Host, healthy bool) {
	if s.collector == nil {
		return
	}
	s.collector.Emit(metrics.MetricEvent{
		Type:    metrics.EventHealthChanged,
		Host:    h.String(),
		Healthy: healthy,
	})
}

type hostStatus struct {
	URL               string `json:"url"`
	Weight            int    `json:"weight"`
	Healthy           bool   `json:"healthy"`
	ActiveConnections int    `json:"active_connections"`
	Breaker           string `json:"breaker"`
}

type originStatus struct {
	Name  string       `json:"name"`
	Hosts []hostStatus `json:"hosts"`
}

// status reports every origin with its hosts, sorted by name.
func (s *originSet) status() []originStatus {
	s.mutex.Lock()
	current := s.current
	s.mutex.Unlock()

	breakers := s.breakers.Stats()

	out := make([]originStatus, 0, len(current))
	for name, o := range current {
		st := originStatus{Name: name}
		for _, h := range o.Hosts() {
			state := circuitbreaker.StateClosed
			if b, ok := breakers[h.String()]; ok {
				state = b
			}
			st.Hosts = append(st.Hosts, hostStatus{
				URL:               h.String(),
				Weight:            h.Weight(),
				Healthy:           h.IsHealthy(),
				ActiveConnections: h.ActiveConnections(),
				Breaker:           state.String(),
			})
		}
		out = append(out, st)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func buildOrigins(
	cfg *config.Config,
	breakers *circuitbreaker.Registry,
	transport http.RoundTripper,
	log *slog.Logger,
) (map[string]*origin.HTTPOrigin, []*upstream.Host, error) {
	if len(cfg.Origins) == 0 {
		return nil, nil, fmt.Errorf("no origins configured")
	}

	origins := make(map[string]*origin.HTTPOrigin, len(cfg.Origins))
	var all []*upstream.Host

	for _, oc := range cfg.Origins {
		if _, dup := origins[oc.Name]; dup {
			return nil, nil, fmt.Errorf("duplicate origin %q", oc.Name)
		}

		strat, err := strategy.New(oc.Strategy, oc.VirtualNodes)
		if err != nil {
			return nil, nil, fmt.Errorf("origin %s: %w", oc.Name, err)
		}

		hosts := make([]*upstream.Host, 0, len(oc.Hosts))
		for _, hc := range oc.Hosts {
			u, err := url.Parse(hc.URL)
			if err != nil {
				return nil, nil, fmt.Errorf("origin %s: host %q: %w", oc.Name, hc.URL, err)
			}
			hosts = append(hosts, upstream.New(u, hc.Weight))
		}
		if len(hosts) == 0 {
			return nil, nil, fmt.Errorf("origin %s: no hosts", oc.Name)
		}

		origins[oc.Name] = origin.NewHTTPOrigin(oc.Name, hosts,
			loadbalancer.NewLoadBalancer(strat),
			origin.WithTransport(transport),
			origin.WithTimeout(oc.TimeoutDuration()),
			origin.WithBreakers(breakers),
			origin.WithLogger(log),
		)
		all = append(all, hosts...)
	}

	return origins, all, nil
}
