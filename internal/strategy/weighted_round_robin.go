package strategy

import (
	"sync"

	"github.com/angeloszaimis/origin-proxy/internal/upstream"
)

// weightedRoundRobinStrategy implements smooth weighted round-robin.
// Every pass adds each host's weight to its running value, picks the highest
// and subtracts the total weight from the winner.
type weightedRoundRobinStrategy struct {
	mutex   sync.Mutex
	current map[*upstream.Host]int
}

func NewWeightedRoundRobinStrategy() Strategy {
	return &weightedRoundRobinStrategy{
		current: make(map[*upstream.Host]int),
	}
}

func (w *weightedRoundRobinStrategy) Select(hosts []*upstream.Host, _ string) *upstream.Host {
	if len(hosts) == 0 {
		return nil
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.forget(hosts)

	total := 0
	var chosen *upstream.Host

	for _, h := range hosts {
		w.current[h] += h.Weight()
		total += h.Weight()

		if chosen == nil || w.current[h] > w.current[chosen] {
			chosen = h
		}
	}

	w.current[chosen] -= total
	return chosen
}

// forget drops running values of hosts that left the candidate list, e.g.
// after a failed health probe.
func (w *weightedRoundRobinStrategy) forget(hosts []*upstream.Host) {
	alive := make(map[*upstream.Host]struct{}, len(hosts))
	for _, h := range hosts {
		alive[h] = struct{}{}
	}

	for h := range w.current {
		if _, ok := alive[h]; !ok {
			delete(w.current, h)
		}
	}
}
