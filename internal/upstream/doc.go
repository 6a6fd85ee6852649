// Package upstream models the individual servers behind a named origin.
// A Host tracks its health, the number of in-flight requests and an
// exponentially weighted moving average of its response times, which the
// balancing strategies read when picking a host.
package upstream
