// Package handler hosts the proxy endpoint behind net/http.
//
// A ProxyHandler serves one route. For every request it builds the request
// context (client IP, debug flag, routing target), optionally buffers the
// body for tracing, dispatches through the endpoint and copies the origin
// response back to the client. Dispatch failures map to 503 when no backend
// is registered for the route and 502 otherwise.
package handler
