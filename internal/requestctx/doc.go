// Package requestctx holds the mutable state shared by every stage that
// processes one proxied request: the routing target, the debug flag and log,
// and an open set of typed side-channel values.
//
// Well-known keys:
//
//   - KeyOriginHTTPStatus ("origin_http_status", string): status code of the
//     origin response, written by the proxy endpoint once a response arrived.
//   - KeyClientIP ("client_ip", string): client address, written by the HTTP
//     handler and used as the affinity key by consistent-hash origins.
//
// A Context belongs to a single in-flight request. Its methods are safe for
// concurrent use since the completion of a dispatch may run on a goroutine
// other than the one that started it.
package requestctx
