package loadbalancer

import (
	"fmt"
	"sync"

	"github.com/angeloszaimis/origin-proxy/internal/strategy"
	"github.com/angeloszaimis/origin-proxy/internal/upstream"
)

// LoadBalancer selects and reserves hosts for one origin.
type LoadBalancer struct {
	strategy strategy.Strategy
	mutex    sync.Mutex
}

func NewLoadBalancer(strategy strategy.Strategy) *LoadBalancer {
	return &LoadBalancer{strategy: strategy}
}

// Reserve picks a host among those that are healthy and accepted by allow
// (nil accepts all), then counts a connection on it. The caller must call
// DecrementConn on the returned host once the request finished.
func (lb *LoadBalancer) Reserve(hosts []*upstream.Host, key string, allow func(*upstream.Host) bool) (*upstream.Host, error) {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()

	candidates := make([]*upstream.Host, 0, len(hosts))
	for _, h := range hosts {
		if h.IsHealthy() && (allow == nil || allow(h)) {
			candidates = append(candidates, h)
		}
	}

	if len(candidates) == 0 {
		return nil, upstream.ErrNoHealthyHosts
	}

	chosen := lb.strategy.Select(candidates, key)
	if chosen == nil {
		return nil, fmt.Errorf("strategy returned no host out of %d candidates", len(candidates))
	}

	chosen.IncrementConn()
	return chosen, nil
}

func (lb *LoadBalancer) Strategy() strategy.Strategy {
	return lb.strategy
}
