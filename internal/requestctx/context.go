package requestctx

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

const (
	KeyOriginHTTPStatus = "origin_http_status"
	KeyClientIP         = "client_ip"
)

// Context is the per-request side channel. The zero value is usable but
// has an empty ID; New assigns one.
type Context struct {
	mutex         sync.Mutex
	id            string
	values        map[string]Value
	routingTarget string
	hasTarget     bool
	debug         bool
	debugLog      []string
}

// New creates an empty context with a fresh request ID.
func New() *Context {
	return &Context{
		id:     uuid.NewString(),
		values: make(map[string]Value),
	}
}

// ID returns the request ID assigned at creation.
func (c *Context) ID() string {
	return c.id
}

func (c *Context) Get(key string) (Value, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	v, ok := c.values[key]
	return v, ok
}

func (c *Context) Put(key string, v Value) {
	c.mutex.Lock()
	if c.values == nil {
		c.values = make(map[string]Value)
	}
	c.values[key] = v
	c.mutex.Unlock()
}

// GetString returns the value under key if it holds a string.
func (c *Context) GetString(key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	return v.AsString()
}

// RoutingTarget returns the backend name chosen by routing, if any.
func (c *Context) RoutingTarget() (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.routingTarget, c.hasTarget
}

func (c *Context) SetRoutingTarget(name string) {
	c.mutex.Lock()
	c.routingTarget = name
	c.hasTarget = true
	c.mutex.Unlock()
}

func (c *Context) DebugEnabled() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.debug
}

func (c *Context) SetDebug(enabled bool) {
	c.mutex.Lock()
	c.debug = enabled
	c.mutex.Unlock()
}

// AppendDebug adds a line to the debug log. Lines are never rewritten.
func (c *Context) AppendDebug(line string) {
	c.mutex.Lock()
	c.debugLog = append(c.debugLog, line)
	c.mutex.Unlock()
}

// DebugLog returns a copy of the debug log.
func (c *Context) DebugLog() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]string(nil), c.debugLog...)
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying rc.
func NewContext(ctx context.Context, rc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// FromContext returns the request context stored in ctx, if any.
func FromContext(ctx context.Context) (*Context, bool) {
	rc, ok := ctx.Value(ctxKey{}).(*Context)
	return rc, ok
}
