package origin_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/origin-proxy/internal/origin"
	"github.com/angeloszaimis/origin-proxy/internal/requestctx"
)

var _ = Describe("Request", func() {
	newRequest := func(method, target, body string) *origin.Request {
		var r io.Reader
		if body != "" {
			r = strings.NewReader(body)
		}
		return origin.NewRequest(httptest.NewRequest(method, target, r), requestctx.New())
	}

	It("should expose the request line", func() {
		req := newRequest(http.MethodPost, "/some/where?k1=v1", "")
		Expect(req.Method()).To(Equal("POST"))
		Expect(req.Path()).To(Equal("/some/where"))
		Expect(req.Protocol()).To(Equal("HTTP/1.1"))
	})

	It("should keep query parameters in raw order", func() {
		req := newRequest(http.MethodGet, "/?z=1&a=2&z=3&flag&e=a%20b", "")
		Expect(req.QueryParams()).To(Equal([]origin.Pair{
			{Key: "z", Value: "1"},
			{Key: "a", Value: "2"},
			{Key: "z", Value: "3"},
			{Key: "flag", Value: ""},
			{Key: "e", Value: "a b"},
		}))
	})

	It("should have no query parameters without a query", func() {
		Expect(newRequest(http.MethodGet, "/", "").QueryParams()).To(BeEmpty())
	})

	It("should list headers sorted by key, one entry per value", func() {
		req := newRequest(http.MethodGet, "/", "")
		req.HTTP.Host = ""
		req.HTTP.Header = http.Header{}
		req.HTTP.Header.Add("X-B", "2")
		req.HTTP.Header.Add("X-A", "1")
		req.HTTP.Header.Add("X-B", "3")

		Expect(req.Headers()).To(Equal([]origin.Pair{
			{Key: "X-A", Value: "1"},
			{Key: "X-B", Value: "2"},
			{Key: "X-B", Value: "3"},
		}))
	})

	It("should list the Host header first", func() {
		req := newRequest(http.MethodGet, "/", "")
		req.HTTP.Host = "shop.example.com:8443"
		req.HTTP.Header = http.Header{"Accept": {"*/*"}}

		Expect(req.Headers()).To(Equal([]origin.Pair{
			{Key: "Host", Value: "shop.example.com:8443"},
			{Key: "Accept", Value: "*/*"},
		}))
	})

	Describe("BufferBody", func() {
		It("should not buffer by default", func() {
			req := newRequest(http.MethodPost, "/", "payload")
			Expect(req.BodyBuffered()).To(BeFalse())
			Expect(req.BodyBytes()).To(BeNil())
		})

		It("should keep the body readable after buffering", func() {
			req := newRequest(http.MethodPost, "/", "payload")
			Expect(req.BufferBody(1024)).To(Succeed())
			Expect(req.BodyBuffered()).To(BeTrue())
			Expect(string(req.BodyBytes())).To(Equal("payload"))

			data, err := io.ReadAll(req.HTTP.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("payload"))
			Expect(req.HTTP.ContentLength).To(Equal(int64(7)))
		})

		It("should treat a missing body as buffered and empty", func() {
			req := newRequest(http.MethodGet, "/", "")
			Expect(req.BufferBody(1024)).To(Succeed())
			Expect(req.BodyBuffered()).To(BeTrue())
			Expect(req.BodyBytes()).To(BeEmpty())
		})

		It("should leave oversized bodies streaming and intact", func() {
			req := newRequest(http.MethodPost, "/", "0123456789")
			Expect(req.BufferBody(4)).To(MatchError(origin.ErrBodyTooLarge))
			Expect(req.BodyBuffered()).To(BeFalse())

			data, err := io.ReadAll(req.HTTP.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("0123456789"))
		})
	})
})
