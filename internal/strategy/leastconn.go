package strategy

import (
	"math"

	"github.com/angeloszaimis/origin-proxy/internal/upstream"
)

type leastConnStrategy struct{}

func (l *leastConnStrategy) Select(hosts []*upstream.Host, _ string) *upstream.Host {
	var best *upstream.Host
	bestConns := math.MaxInt

	for _, h := range hosts {
		if conns := h.ActiveConnections(); conns < bestConns {
			bestConns = conns
			best = h
		}
	}

	return best
}

func NewLeastConnStrategy() Strategy {
	return &leastConnStrategy{}
}
