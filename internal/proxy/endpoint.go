package proxy

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/angeloszaimis/origin-proxy/internal/future"
	"github.com/angeloszaimis/origin-proxy/internal/origin"
	"github.com/angeloszaimis/origin-proxy/internal/requestctx"
	"github.com/angeloszaimis/origin-proxy/internal/tracer"
)

var (
	errNilResponse = errors.New("backend completed without a response")

	// ErrNoRequestContext is returned for requests dispatched without a request context.
	ErrNoRequestContext = errors.New("request has no request context")
)

// Endpoint dispatches requests to backends resolved from a registry.
type Endpoint struct {
	registry origin.Registry
	tracer   *tracer.Tracer
	logger   *slog.Logger
}

func NewEndpoint(logger *slog.Logger, registry origin.Registry, t *tracer.Tracer) *Endpoint {
	if t == nil {
		t = tracer.New(tracer.WithLogger(logger))
	}
	return &Endpoint{
		registry: registry,
		tracer:   t,
		logger:   logger,
	}
}

// DispatchAsync traces req, resolves its backend and submits it. The
// returned future fails immediately with a NoBackendFoundError when the
// routing target cannot be resolved; otherwise it completes with the
// backend's outcome after origin_http_status has been written.
func (e *Endpoint) DispatchAsync(req *origin.Request) *future.Future[*http.Response] {
	if req == nil || req.Context == nil {
		return future.Failed[*http.Response](ErrNoRequestContext)
	}
	rc := req.Context

	e.tracer.Trace(rc, req)

	backend, err := e.resolveBackend(rc)
	if err != nil {
		e.logger.Warn("Cannot resolve backend",
			slog.String("request_id", rc.ID()),
			slog.Any("err", err))
		return future.Failed[*http.Response](err)
	}

	return future.Map(backend.Submit(req), func(resp *http.Response) (*http.Response, error) {
		if resp == nil {
			return nil, errNilResponse
		}
		rc.Put(requestctx.KeyOriginHTTPStatus, requestctx.String(strconv.Itoa(resp.StatusCode)))
		return resp, nil
	})
}

// Dispatch blocks until the backend answered or failed.
func (e *Endpoint) Dispatch(req *origin.Request) (*http.Response, error) {
	return e.DispatchAsync(req).Await()
}

func (e *Endpoint) resolveBackend(rc *requestctx.Context) (origin.Backend, error) {
	target, ok := rc.RoutingTarget()
	if !ok || target == "" {
		return nil, &NoBackendFoundError{}
	}

	backend, ok := e.registry.Lookup(target)
	if !ok {
		return nil, &NoBackendFoundError{Target: target}
	}

	return backend, nil
}
