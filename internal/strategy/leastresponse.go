package strategy

import (
	"time"

	"github.com/angeloszaimis/origin-proxy/internal/upstream"
)

type leastResponseStrategy struct{}

// Select scores every host by EWMA * (active connections + 1). A host that has
// never answered wins immediately so it gets sampled.
func (l *leastResponseStrategy) Select(hosts []*upstream.Host, _ string) *upstream.Host {
	var chosen *upstream.Host
	var best time.Duration

	for _, h := range hosts {
		ewma := h.EWMATime()
		if ewma == 0 {
			return h
		}

		score := ewma * (time.Duration(h.ActiveConnections()) + 1)
		if chosen == nil || score < best {
			chosen = h
			best = score
		}
	}

	return chosen
}

func NewLeastResponseStrategy() Strategy {
	return &leastResponseStrategy{}
}
