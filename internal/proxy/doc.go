// Package proxy implements the endpoint that forwards a request to the
// backend named by its routing target and records the origin status code in
// the request context.
//
// DispatchAsync never blocks: it resolves the backend, submits the request
// and returns a future whose completion is ordered after the status write.
// Dispatch is DispatchAsync followed by a wait on that same future.
package proxy
