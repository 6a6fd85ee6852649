package circuitbreaker

import (
	"sync"
	"time"
)

// Registry hands out one breaker per host URL. Breakers survive origin
// reloads as long as the host is still configured.
type Registry struct {
	mutex     sync.RWMutex
	breakers  map[string]*CircuitBreaker
	threshold int
	timeout   time.Duration
}

func NewRegistry(threshold int, timeout time.Duration) *Registry {
	return &Registry{
		breakers:  make(map[string]*CircuitBreaker),
		threshold: threshold,
		timeout:   timeout,
	}
}

func (r *Registry) GetBreaker(hostURL string) *CircuitBreaker {
	r.mutex.RLock()
	cb, exists := r.breakers[hostURL]
	r.mutex.RUnlock()

	if exists {
		return cb
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// another goroutine may have created it meanwhile
	if cb, exists = r.breakers[hostURL]; exists {
		return cb
	}

	cb = NewCircuitBreaker(r.threshold, r.timeout)
	r.breakers[hostURL] = cb
	return cb
}

// Retain drops the breakers of every host not listed in keep.
func (r *Registry) Retain(keep []string) {
	wanted := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		wanted[k] = struct{}{}
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	for k := range r.breakers {
		if _, ok := wanted[k]; !ok {
			delete(r.breakers, k)
		}
	}
}

// Stats returns the current state of every tracked breaker.
func (r *Registry) Stats() map[string]State {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := make(map[string]State, len(r.breakers))
	for k, cb := range r.breakers {
		stats[k] = cb.State()
	}
	return stats
}
