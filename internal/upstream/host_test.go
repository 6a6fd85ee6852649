package upstream_test

import (
	"net/url"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/origin-proxy/internal/upstream"
)

var _ = Describe("Host", func() {
	var (
		testURL *url.URL
		h       *upstream.Host
	)

	BeforeEach(func() {
		var err error
		testURL, err = url.Parse("http://localhost:8081")
		Expect(err).NotTo(HaveOccurred())
		h = upstream.New(testURL, 1)
	})

	Describe("New", func() {
		It("should keep the URL", func() {
			Expect(h.URL()).To(Equal(testURL))
			Expect(h.String()).To(Equal("http://localhost:8081"))
		})

		It("should start healthy", func() {
			Expect(h.IsHealthy()).To(BeTrue())
		})

		It("should have zero active connections", func() {
			Expect(h.ActiveConnections()).To(Equal(0))
		})

		It("should clamp weights below one", func() {
			Expect(upstream.New(testURL, 0).Weight()).To(Equal(1))
			Expect(upstream.New(testURL, -3).Weight()).To(Equal(1))
			Expect(upstream.New(testURL, 5).Weight()).To(Equal(5))
		})
	})

	Describe("SetHealthy", func() {
		It("should report a change only when the status flips", func() {
			Expect(h.SetHealthy(true)).To(BeFalse())
			Expect(h.SetHealthy(false)).To(BeTrue())
			Expect(h.IsHealthy()).To(BeFalse())
			Expect(h.SetHealthy(false)).To(BeFalse())
			Expect(h.SetHealthy(true)).To(BeTrue())
		})

		It("should be thread-safe", func() {
			var wg sync.WaitGroup
			for i := 0; i < 100; i++ {
				wg.Add(1)
				go func(healthy bool) {
					defer wg.Done()
					h.SetHealthy(healthy)
					_ = h.IsHealthy()
				}(i%2 == 0)
			}
			wg.Wait()
		})
	})

	Describe("Connection tracking", func() {
		It("should count increments and decrements", func() {
			h.IncrementConn()
			h.IncrementConn()
			h.IncrementConn()
			Expect(h.ActiveConnections()).To(Equal(3))

			h.DecrementConn()
			Expect(h.ActiveConnections()).To(Equal(2))
		})

		It("should not go below zero", func() {
			h.DecrementConn()
			h.DecrementConn()
			Expect(h.ActiveConnections()).To(Equal(0))
		})

		It("should be thread-safe", func() {
			var wg sync.WaitGroup
			for i := 0; i < 100; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					h.IncrementConn()
				}()
			}
			wg.Wait()
			Expect(h.ActiveConnections()).To(Equal(100))
		})
	})

	Describe("EWMA", func() {
		It("should be zero before any response", func() {
			Expect(h.EWMATime()).To(BeZero())
		})

		It("should take the first sample as is", func() {
			h.RecordResponse(100 * time.Millisecond)
			Expect(h.EWMATime()).To(Equal(100 * time.Millisecond))
		})

		It("should smooth subsequent samples", func() {
			h.RecordResponse(100 * time.Millisecond)
			h.RecordResponse(200 * time.Millisecond)
			Expect(h.EWMATime()).To(BeNumerically("~", 120*time.Millisecond, time.Millisecond))
		})
	})
})
