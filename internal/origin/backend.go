package origin

import (
	"net/http"

	"github.com/angeloszaimis/origin-proxy/internal/future"
)

// Backend is one addressable upstream target. Submit must not block; the
// returned future completes with exactly one response or one error.
type Backend interface {
	Submit(req *Request) *future.Future[*http.Response]
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(req *Request) *future.Future[*http.Response]

func (f BackendFunc) Submit(req *Request) *future.Future[*http.Response] {
	return f(req)
}
