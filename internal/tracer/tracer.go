// Package tracer appends a human readable dump of a request to the debug log
// of its request context when debugging is enabled for that request.
package tracer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/angeloszaimis/origin-proxy/internal/origin"
	"github.com/angeloszaimis/origin-proxy/internal/requestctx"
)

const linePrefix = "> "

// Tracer is safe for concurrent use; all per-request state lives in the
// request context.
type Tracer struct {
	headersOnly bool
	logger      *slog.Logger
}

type Option func(*Tracer)

// WithHeadersOnly suppresses the body line.
func WithHeadersOnly(headersOnly bool) Option {
	return func(t *Tracer) { t.headersOnly = headersOnly }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracer) { t.logger = l }
}

func New(opts ...Option) *Tracer {
	t := &Tracer{logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Trace appends one line per header value, then the request line, then the
// body if it is already buffered. It does nothing unless rc has debugging
// enabled and never fails the request.
func (t *Tracer) Trace(rc *requestctx.Context, req *origin.Request) {
	if rc == nil || !rc.DebugEnabled() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			t.logger.Debug("Request trace aborted",
				slog.String("request_id", rc.ID()),
				slog.String("panic", fmt.Sprint(r)))
		}
	}()

	for _, h := range req.Headers() {
		rc.AppendDebug(linePrefix + h.Key + "  " + h.Value)
	}

	rc.AppendDebug(linePrefix + requestLine(req))

	if t.headersOnly || !req.BodyBuffered() {
		return
	}

	if body := req.BodyBytes(); len(body) > 0 {
		rc.AppendDebug(linePrefix + strings.ToValidUTF8(string(body), "�"))
	}
}

// requestLine renders "METHOD  path?k=v&k=v& PROTO". Every parameter keeps
// its trailing separator; the "?" is left out when there is no parameter.
func requestLine(req *origin.Request) string {
	var b strings.Builder
	b.WriteString(req.Method())
	b.WriteString("  ")
	b.WriteString(req.Path())

	if params := req.QueryParams(); len(params) > 0 {
		b.WriteByte('?')
		for _, p := range params {
			b.WriteString(p.Key)
			b.WriteByte('=')
			b.WriteString(p.Value)
			b.WriteByte('&')
		}
	}

	b.WriteByte(' ')
	b.WriteString(req.Protocol())
	return b.String()
}
