// Package strategy defines how an origin spreads requests over its hosts:
//
//   - Round Robin: Sequential distribution across hosts
//   - Random: Random host selection
//   - Least Connections: Routes to the host with fewest active connections
//   - Least Response Time: Routes based on EWMA response times
//   - Consistent Hash: Client affinity keyed by the request's client address
//   - Weighted Round Robin: Distribution proportional to host weights
//
// Strategies only see the hosts the load balancer already filtered for health.
package strategy
