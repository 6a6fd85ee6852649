package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Failure kinds reported on dispatch_failures_total.
const (
	KindUnknownTarget = "unknown_target"
	KindUpstream      = "upstream"
)

// Metrics holds the registered Prometheus vectors.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	ResponsesTotal   *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	FailuresTotal    *prometheus.CounterVec
	HostHealthy      *prometheus.GaugeVec
}

// NewMetrics creates the vectors and registers them with registry.
func NewMetrics(namespace string, registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Requests routed to an origin",
			},
			[]string{"origin"},
		),
		ResponsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "responses_total",
				Help:      "Origin responses by status code",
			},
			[]string{"origin", "code"},
		),
		DispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Time from dispatch until the origin response arrived",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"origin"},
		),
		FailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_failures_total",
				Help:      "Dispatches that produced no origin response",
			},
			[]string{"origin", "kind"},
		),
		HostHealthy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "host_healthy",
				Help:      "1 if the upstream host passed its last health probe",
			},
			[]string{"host"},
		),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.ResponsesTotal,
		m.DispatchDuration,
		m.FailuresTotal,
		m.HostHealthy,
	)

	return m
}

func (m *Metrics) IncrementRequests(origin string) {
	m.RequestsTotal.WithLabelValues(origin).Inc()
}

func (m *Metrics) RecordResponse(origin string, duration time.Duration, statusCode int) {
	m.ResponsesTotal.WithLabelValues(origin, strconv.Itoa(statusCode)).Inc()
	m.DispatchDuration.WithLabelValues(origin).Observe(duration.Seconds())
}

func (m *Metrics) RecordFailure(origin, kind string) {
	m.FailuresTotal.WithLabelValues(origin, kind).Inc()
}

func (m *Metrics) UpdateHealthStatus(host string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1
	}
	m.HostHealthy.WithLabelValues(host).Set(v)
}
