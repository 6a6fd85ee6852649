// Package loadbalancer narrows an origin's hosts to the usable ones and
// reserves one of them through the origin's strategy.
package loadbalancer
