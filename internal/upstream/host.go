package upstream

import (
	"errors"
	"net/url"
	"sync"
	"time"
)

// ErrNoHealthyHosts is returned when an origin has no host able to take a request.
var ErrNoHealthyHosts = errors.New("no healthy hosts")

const ewmaAlpha = 0.2

// Host is a single upstream server with health status, connection tracking
// and response time monitoring.
type Host struct {
	url               *url.URL
	weight            int
	mutex             sync.Mutex
	isHealthy         bool
	activeConnections int
	ewmaResponseTime  time.Duration
	hasEWMA           bool
}

// New creates a Host for the given URL and weight.
// Hosts start healthy so traffic flows before the first probe completes.
// Weights below 1 are clamped to 1.
func New(u *url.URL, weight int) *Host {
	if weight < 1 {
		weight = 1
	}

	return &Host{
		url:       u,
		weight:    weight,
		isHealthy: true,
	}
}

// URL returns the host URL.
func (h *Host) URL() *url.URL {
	return h.url
}

// Weight returns the configured weight used by weighted strategies.
func (h *Host) Weight() int {
	return h.weight
}

// String returns the host URL as a string.
func (h *Host) String() string {
	return h.url.String()
}

// IncrementConn increments the active connection count.
func (h *Host) IncrementConn() {
	h.mutex.Lock()
	h.activeConnections++
	h.mutex.Unlock()
}

// DecrementConn decrements the active connection count, never below zero.
func (h *Host) DecrementConn() {
	h.mutex.Lock()
	if h.activeConnections > 0 {
		h.activeConnections--
	}
	h.mutex.Unlock()
}

// ActiveConnections returns the current number of active connections.
func (h *Host) ActiveConnections() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.activeConnections
}

// IsHealthy reports whether the host passed its last health probe.
func (h *Host) IsHealthy() bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.isHealthy
}

// SetHealthy updates the health status.
// Returns true if the status changed.
func (h *Host) SetHealthy(healthy bool) (changed bool) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.isHealthy == healthy {
		return false
	}

	h.isHealthy = healthy
	return true
}

// RecordResponse folds the latest request duration into the EWMA.
func (h *Host) RecordResponse(duration time.Duration) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if !h.hasEWMA {
		h.ewmaResponseTime = duration
		h.hasEWMA = true
		return
	}
	//ewma = (1 - α) * ewma + α * latest
	h.ewmaResponseTime = time.Duration((1-ewmaAlpha)*float64(h.ewmaResponseTime) + ewmaAlpha*float64(duration))
}

// EWMATime returns the moving average response time, or 0 before the first response.
func (h *Host) EWMATime() time.Duration {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if !h.hasEWMA {
		return 0
	}

	return h.ewmaResponseTime
}
