package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type EventType string

const (
	EventRequestReceived   EventType = "request_received"
	EventResponseCompleted EventType = "response_completed"
	EventDispatchFailed    EventType = "dispatch_failed"
	EventHealthChanged     EventType = "health_changed"
)

type MetricEvent struct {
	Type       EventType
	Timestamp  time.Time
	Origin     string
	Host       string
	Duration   time.Duration
	StatusCode int
	Kind       string
	Healthy    bool
}

type Collector struct {
	eventCh  chan MetricEvent
	registry *prometheus.Registry
	metrics  *Metrics
	logger   *slog.Logger
	dropped  prometheus.Counter
}

func NewCollector(bufferSize int, namespace string, logger *slog.Logger) *Collector {
	registry := prometheus.NewRegistry()
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "metric_events_dropped_total",
		Help:      "Metric events dropped because the collector buffer was full",
	})
	registry.MustRegister(dropped)

	return &Collector{
		eventCh:  make(chan MetricEvent, bufferSize),
		registry: registry,
		metrics:  NewMetrics(namespace, registry),
		logger:   logger,
		dropped:  dropped,
	}
}

// Emit queues an event without blocking. Events are dropped when the buffer is full.
func (c *Collector) Emit(event MetricEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case c.eventCh <- event:
	default:
		c.dropped.Inc()
	}
}

func (c *Collector) Metrics() *Metrics {
	return c.metrics
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Start(ctx context.Context) {
	go c.Run(ctx)
}

// Run processes events until ctx is cancelled, then drains what is queued.
func (c *Collector) Run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventRequestReceived:
		c.metrics.IncrementRequests(event.Origin)

	case EventResponseCompleted:
		c.metrics.RecordResponse(event.Origin, event.Duration, event.StatusCode)

	case EventDispatchFailed:
		c.metrics.RecordFailure(event.Origin, event.Kind)

	case EventHealthChanged:
		c.metrics.UpdateHealthStatus(event.Host, event.Healthy)

	default:
		c.logger.Debug("Ignoring unknown metric event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}
