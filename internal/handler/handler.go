package handler

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angeloszaimis/origin-proxy/internal/metrics"
	"github.com/angeloszaimis/origin-proxy/internal/origin"
	"github.com/angeloszaimis/origin-proxy/internal/proxy"
	"github.com/angeloszaimis/origin-proxy/internal/requestctx"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderErrorCode = "X-Error-Code"

	DefaultDebugHeader  = "X-Debug"
	DefaultMaxBodyBytes = 64 << 10
)

// Dispatcher sends a request to the backend named by its routing target.
type Dispatcher interface {
	Dispatch(req *origin.Request) (*http.Response, error)
}

// Options configures a ProxyHandler.
type Options struct {
	// Target is the routing target set on every request. Empty leaves it unset.
	Target       string
	DebugHeader  string
	HeadersOnly  bool
	MaxBodyBytes int64
}

type ProxyHandler struct {
	logger           *slog.Logger
	dispatcher       Dispatcher
	metricsCollector *metrics.Collector
	opts             Options
}

func NewProxyHandler(logger *slog.Logger, dispatcher Dispatcher, collector *metrics.Collector, opts Options) *ProxyHandler {
	if opts.DebugHeader == "" {
		opts.DebugHeader = DefaultDebugHeader
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return &ProxyHandler{
		logger:           logger.With(slog.String("route_target", opts.Target)),
		dispatcher:       dispatcher,
		metricsCollector: collector,
		opts:             opts,
	}
}

func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientIP := extractClientIP(r)

	rc := requestctx.New()
	rc.Put(requestctx.KeyClientIP, requestctx.String(clientIP))
	rc.SetDebug(debugRequested(r.Header.Get(h.opts.DebugHeader)))
	if h.opts.Target != "" {
		rc.SetRoutingTarget(h.opts.Target)
	}

	logger := h.logger.With(slog.String("request_id", rc.ID()))
	logger.Info("Received request",
		slog.String("from", clientIP),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("proto", r.Proto),
		slog.String("host", r.Host),
		slog.String("user_agent", r.UserAgent()))

	req := origin.NewRequest(r.WithContext(requestctx.NewContext(r.Context(), rc)), rc)
	if rc.DebugEnabled() && !h.opts.HeadersOnly {
		if err := req.BufferBody(h.opts.MaxBodyBytes); err != nil {
			logger.Debug("Request body not traced", slog.Any("err", err))
		}
	}

	w.Header().Set(HeaderRequestID, rc.ID())
	h.emitEvent(metrics.MetricEvent{
		Type:   metrics.EventRequestReceived,
		Origin: h.opts.Target,
	})

	start := time.Now()
	resp, err := h.dispatcher.Dispatch(req)
	h.logTrace(logger, rc)

	if err != nil {
		h.writeError(w, logger, err)
		return
	}
	defer resp.Body.Close()

	statusCode := resp.StatusCode
	if s, ok := rc.GetString(requestctx.KeyOriginHTTPStatus); ok {
		if code, convErr := strconv.Atoi(s); convErr == nil {
			statusCode = code
		}
	}

	h.emitEvent(metrics.MetricEvent{
		Type:       metrics.EventResponseCompleted,
		Origin:     h.opts.Target,
		Duration:   time.Since(start),
		StatusCode: statusCode,
	})

	copyResponse(w, resp, logger)

	logger.Info("Request completed",
		slog.Int("status", statusCode),
		slog.Duration("elapsed", time.Since(start)))
}

func (h *ProxyHandler) writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var notFound *proxy.NoBackendFoundError
	if errors.As(err, &notFound) {
		logger.Warn("No backend for route", slog.Any("err", err))
		h.emitEvent(metrics.MetricEvent{
			Type:   metrics.EventDispatchFailed,
			Origin: h.opts.Target,
			Kind:   metrics.KindUnknownTarget,
		})
		w.Header().Set(HeaderErrorCode, notFound.Code())
		http.Error(w, "No backend available for this route", http.StatusServiceUnavailable)
		return
	}

	logger.Warn("Dispatch failed", slog.Any("err", err))
	h.emitEvent(metrics.MetricEvent{
		Type:   metrics.EventDispatchFailed,
		Origin: h.opts.Target,
		Kind:   metrics.KindUpstream,
	})
	http.Error(w, "Bad gateway", http.StatusBadGateway)
}

func (h *ProxyHandler) logTrace(logger *slog.Logger, rc *requestctx.Context) {
	if !rc.DebugEnabled() {
		return
	}
	for _, line := range rc.DebugLog() {
		logger.Debug("Request trace", slog.String("line", line))
	}
}

func copyResponse(w http.ResponseWriter, resp *http.Response, logger *slog.Logger) {
	header := resp.Header.Clone()
	origin.RemoveHopHeaders(header)
	for k, vv := range header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}

	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		logger.Warn("Copying response body failed", slog.Any("err", err))
	}
}

func debugRequested(v string) bool {
	if v == "" {
		return false
	}
	on, err := strconv.ParseBool(v)
	return err == nil && on
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *ProxyHandler) emitEvent(event metrics.MetricEvent) {
	if h.metricsCollector == nil {
		return
	}
	h.metricsCollector.Emit(event)
}
