package origin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/textproto"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/angeloszaimis/origin-proxy/internal/circuitbreaker"
	"github.com/angeloszaimis/origin-proxy/internal/future"
	"github.com/angeloszaimis/origin-proxy/internal/loadbalancer"
	"github.com/angeloszaimis/origin-proxy/internal/requestctx"
	"github.com/angeloszaimis/origin-proxy/internal/upstream"
)

// ErrCircuitOpen is returned when every healthy host of an origin has an open breaker.
var ErrCircuitOpen = errors.New("circuit open for all healthy hosts")

const tracerName = "github.com/angeloszaimis/origin-proxy/internal/origin"

// hopHeaders are dropped from the outbound request.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// HTTPOrigin is a Backend forwarding to a balanced pool of upstream hosts.
type HTTPOrigin struct {
	name      string
	hosts     []*upstream.Host
	balancer  *loadbalancer.LoadBalancer
	breakers  *circuitbreaker.Registry
	transport http.RoundTripper
	timeout   time.Duration
	logger    *slog.Logger
	tracer    trace.Tracer
}

var _ Backend = (*HTTPOrigin)(nil)

type HTTPOriginOption func(*HTTPOrigin)

// WithTransport sets the round tripper used for upstream calls.
func WithTransport(rt http.RoundTripper) HTTPOriginOption {
	return func(o *HTTPOrigin) { o.transport = rt }
}

// WithTimeout bounds every upstream call including reading the response body.
func WithTimeout(d time.Duration) HTTPOriginOption {
	return func(o *HTTPOrigin) { o.timeout = d }
}

// WithBreakers enables per-host circuit breaking.
func WithBreakers(r *circuitbreaker.Registry) HTTPOriginOption {
	return func(o *HTTPOrigin) { o.breakers = r }
}

func WithLogger(l *slog.Logger) HTTPOriginOption {
	return func(o *HTTPOrigin) { o.logger = l }
}

func NewHTTPOrigin(name string, hosts []*upstream.Host, balancer *loadbalancer.LoadBalancer, opts ...HTTPOriginOption) *HTTPOrigin {
	o := &HTTPOrigin{
		name:      name,
		hosts:     hosts,
		balancer:  balancer,
		transport: http.DefaultTransport,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(slog.String("origin", name))
	return o
}

func (o *HTTPOrigin) Name() string {
	return o.name
}

func (o *HTTPOrigin) Hosts() []*upstream.Host {
	return o.hosts
}

// Submit reserves a host and performs the round trip on its own goroutine.
// Failing to reserve a host fails the returned future right away.
func (o *HTTPOrigin) Submit(req *Request) *future.Future[*http.Response] {
	key, _ := req.Context.GetString(requestctx.KeyClientIP)

	host, err := o.balancer.Reserve(o.hosts, key, o.allow)
	if err != nil {
		if errors.Is(err, upstream.ErrNoHealthyHosts) && o.anyHealthy() {
			err = ErrCircuitOpen
		}
		o.logger.Warn("No host available", slog.String("request_id", req.Context.ID()), slog.Any("err", err))
		return future.Failed[*http.Response](fmt.Errorf("origin %s: %w", o.name, err))
	}

	return future.Go(func() (*http.Response, error) {
		return o.roundTrip(req, host)
	})
}

func (o *HTTPOrigin) allow(h *upstream.Host) bool {
	if o.breakers == nil {
		return true
	}
	return o.breakers.GetBreaker(h.String()).Allow()
}

func (o *HTTPOrigin) anyHealthy() bool {
	for _, h := range o.hosts {
		if h.IsHealthy() {
			return true
		}
	}
	return false
}

func (o *HTTPOrigin) roundTrip(req *Request, host *upstream.Host) (*http.Response, error) {
	defer host.DecrementConn()

	ctx, span := o.tracer.Start(req.HTTP.Context(), "origin.submit",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("origin.name", o.name),
			attribute.String("origin.host", host.String()),
			attribute.String("request.id", req.Context.ID()),
		))
	defer span.End()

	cancel := context.CancelFunc(func() {})
	if o.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
	}

	out := o.outbound(ctx, req, host)

	start := time.Now()
	resp, err := o.transport.RoundTrip(out)
	elapsed := time.Since(start)

	// A client abort says nothing about the host; only the origin's own
	// deadline counts against it.
	aborted := req.HTTP.Context().Err() != nil
	if !aborted {
		host.RecordResponse(elapsed)
	}

	if err != nil {
		cancel()
		if !aborted {
			o.record(host, false)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Warn("Upstream request failed",
			slog.String("request_id", req.Context.ID()),
			slog.String("host", host.String()),
			slog.Duration("elapsed", elapsed),
			slog.Bool("client_aborted", aborted),
			slog.Any("err", err))
		return nil, fmt.Errorf("origin %s: host %s: %w", o.name, host, err)
	}

	if !aborted {
		o.record(host, resp.StatusCode < http.StatusInternalServerError)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, resp.Status)
	}

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// outbound clones the inbound request and points it at host.
func (o *HTTPOrigin) outbound(ctx context.Context, req *Request, host *upstream.Host) *http.Request {
	in := req.HTTP
	out := in.Clone(ctx)
	if in.ContentLength == 0 {
		out.Body = nil
	}
	out.RequestURI = ""
	out.Close = false

	RemoveHopHeaders(out.Header)

	pr := &httputil.ProxyRequest{In: in, Out: out}
	pr.SetURL(host.URL())
	pr.SetXForwarded()
	out.Header.Set("X-Request-Id", req.Context.ID())
	return out
}

// RemoveHopHeaders deletes hop-by-hop headers, including those named by Connection.
func RemoveHopHeaders(h http.Header) {
	for _, f := range h.Values("Connection") {
		for _, name := range strings.Split(f, ",") {
			if name = textproto.TrimString(name); name != "" {
				h.Del(name)
			}
		}
	}
	for _, name := range hopHeaders {
		h.Del(name)
	}
}

func (o *HTTPOrigin) record(host *upstream.Host, success bool) {
	if o.breakers == nil {
		return
	}

	cb := o.breakers.GetBreaker(host.String())
	if success {
		cb.RecordSuccess()
		return
	}
	cb.RecordFailure()
}

// cancelOnClose releases the per-call timeout once the body was consumed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
