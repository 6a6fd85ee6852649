package strategy

import (
	"sync/atomic"

	"github.com/angeloszaimis/origin-proxy/internal/upstream"
)

type roundRobinStrategy struct {
	current atomic.Uint64
}

func (rr *roundRobinStrategy) Select(hosts []*upstream.Host, _ string) *upstream.Host {
	if len(hosts) == 0 {
		return nil
	}

	n := rr.current.Add(1)

	return hosts[(n-1)%uint64(len(hosts))]
}

func NewRoundRobinStrategy() Strategy {
	return &roundRobinStrategy{}
}
