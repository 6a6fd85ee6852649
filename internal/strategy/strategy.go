package strategy

import (
	"github.com/angeloszaimis/origin-proxy/internal/upstream"
)

// Strategy picks one host out of the candidates of an origin. The key is a
// per-request affinity key (the client address); strategies that do not hash
// ignore it.
type Strategy interface {
	Select(hosts []*upstream.Host, key string) *upstream.Host
}

// Names of the strategies accepted in origin configuration.
const (
	RoundRobin         = "round-robin"
	Random             = "random"
	LeastConn          = "least-conn"
	LeastResponse      = "least-response"
	ConsistentHash     = "consistent_hash"
	WeightedRoundRobin = "weighted-round-robin"
)

// Names lists every strategy name in configuration order.
var Names = []string{RoundRobin, Random, LeastConn, LeastResponse, ConsistentHash, WeightedRoundRobin}
