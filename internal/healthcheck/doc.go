// Package healthcheck probes upstream hosts on an interval and flips their
// health flag based on the probe result. Unhealthy hosts are skipped by the
// load balancer until a probe succeeds again.
package healthcheck
