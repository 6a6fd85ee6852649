package origin

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/angeloszaimis/origin-proxy/internal/requestctx"
)

// ErrBodyTooLarge is returned by BufferBody when the body exceeds the limit.
var ErrBodyTooLarge = errors.New("request body exceeds buffer limit")

// Pair is one header or query parameter entry.
type Pair struct {
	Key   string
	Value string
}

// Request is an inbound request on its way to a backend together with the
// request context shared by all processing stages.
type Request struct {
	HTTP    *http.Request
	Context *requestctx.Context

	body     []byte
	buffered bool
}

func NewRequest(r *http.Request, rc *requestctx.Context) *Request {
	return &Request{HTTP: r, Context: rc}
}

// Headers returns one entry per header value, keys in sorted order. net/http
// moves Host out of the header map; it is listed first when known.
func (r *Request) Headers() []Pair {
	keys := slices.Sorted(maps.Keys(r.HTTP.Header))

	pairs := make([]Pair, 0, len(keys)+1)
	if r.HTTP.Host != "" {
		pairs = append(pairs, Pair{Key: "Host", Value: r.HTTP.Host})
	}
	for _, k := range keys {
		for _, v := range r.HTTP.Header[k] {
			pairs = append(pairs, Pair{Key: k, Value: v})
		}
	}
	return pairs
}

// QueryParams returns the query parameters in the order they appear in the
// raw query. Values that fail to unescape are kept verbatim.
func (r *Request) QueryParams() []Pair {
	raw := r.HTTP.URL.RawQuery
	if raw == "" {
		return nil
	}

	var pairs []Pair
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		pairs = append(pairs, Pair{Key: unescape(k), Value: unescape(v)})
	}
	return pairs
}

func unescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

func (r *Request) Method() string   { return r.HTTP.Method }
func (r *Request) Path() string     { return r.HTTP.URL.Path }
func (r *Request) Protocol() string { return r.HTTP.Proto }

// BodyBuffered reports whether the body is held in memory.
func (r *Request) BodyBuffered() bool { return r.buffered }

// BodyBytes returns the buffered body, nil unless BodyBuffered.
func (r *Request) BodyBytes() []byte { return r.body }

// BufferBody reads the body into memory and replaces it with a replayable
// reader so the backend still sees the full body. Bodies above limit bytes
// stay streaming and ErrBodyTooLarge is returned; nothing is lost.
func (r *Request) BufferBody(limit int64) error {
	if r.buffered {
		return nil
	}

	if r.HTTP.Body == nil || r.HTTP.Body == http.NoBody {
		r.buffered = true
		return nil
	}

	original := r.HTTP.Body
	data, err := io.ReadAll(io.LimitReader(original, limit+1))
	if err != nil {
		return fmt.Errorf("buffer request body: %w", err)
	}

	if int64(len(data)) > limit {
		r.HTTP.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(data), original), original}
		return ErrBodyTooLarge
	}

	original.Close()
	r.body = data
	r.buffered = true
	r.HTTP.Body = io.NopCloser(bytes.NewReader(data))
	r.HTTP.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	r.HTTP.ContentLength = int64(len(data))
	return nil
}
