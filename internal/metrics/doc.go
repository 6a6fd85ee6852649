// Package metrics exports proxy traffic as Prometheus metrics.
//
// Request handling never touches Prometheus directly. It emits MetricEvents
// through a buffered channel with non-blocking semantics; a single collector
// goroutine folds them into the vectors below and drains the channel on
// shutdown:
//
//   - <ns>_requests_total{origin}
//   - <ns>_responses_total{origin,code}
//   - <ns>_dispatch_duration_seconds{origin}
//   - <ns>_dispatch_failures_total{origin,kind}
//   - <ns>_host_healthy{host}
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, "origin_proxy", logger)
//	collector.Start(ctx)
//
//	collector.Emit(metrics.MetricEvent{
//		Type:       metrics.EventResponseCompleted,
//		Origin:     "checkout",
//		Duration:   150 * time.Millisecond,
//		StatusCode: 200,
//	})
//
//	mux.Handle("/metrics", collector.Handler())
package metrics
