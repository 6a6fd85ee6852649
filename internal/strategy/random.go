package strategy

import (
	"math/rand/v2"

	"github.com/angeloszaimis/origin-proxy/internal/upstream"
)

type randomStrategy struct{}

func (r *randomStrategy) Select(hosts []*upstream.Host, _ string) *upstream.Host {
	if len(hosts) == 0 {
		return nil
	}

	return hosts[rand.IntN(len(hosts))]
}

func NewRandomStrategy() Strategy {
	return &randomStrategy{}
}
