package healthcheck_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/origin-proxy/internal/healthcheck"
	"github.com/angeloszaimis/origin-proxy/internal/upstream"
)

var _ = Describe("Healthcheck", func() {
	var (
		server  *httptest.Server
		status  atomic.Int32
		probed  atomic.Value
		host    *upstream.Host
		log     *slog.Logger
		mu      sync.Mutex
		changes []bool
		checker *healthcheck.Checker
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
		status.Store(http.StatusOK)
		changes = nil

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			probed.Store(r.URL.Path)
			w.WriteHeader(int(status.Load()))
		}))

		u, err := url.Parse(server.URL)
		Expect(err).NotTo(HaveOccurred())
		host = upstream.New(u, 1)

		checker = healthcheck.New(50*time.Millisecond, "/ready", log,
			healthcheck.WithOnChange(func(_ *upstream.Host, healthy bool) {
				mu.Lock()
				defer mu.Unlock()
				changes = append(changes, healthy)
			}))
	})

	AfterEach(func() {
		server.Close()
	})

	recorded := func() []bool {
		mu.Lock()
		defer mu.Unlock()
		return append([]bool(nil), changes...)
	}

	Describe("Probe", func() {
		It("should probe the configured path", func() {
			Expect(checker.Probe(context.Background(), host)).To(BeTrue())
			Expect(probed.Load()).To(Equal("/ready"))
		})

		It("should default the path to /health", func() {
			c := healthcheck.New(time.Second, "", log)
			c.Probe(context.Background(), host)
			Expect(probed.Load()).To(Equal("/health"))
		})

		It("should mark a failing host unhealthy and report the change", func() {
			status.Store(http.StatusServiceUnavailable)

			Expect(checker.Probe(context.Background(), host)).To(BeFalse())
			Expect(host.IsHealthy()).To(BeFalse())
			Expect(recorded()).To(Equal([]bool{false}))
		})

		It("should not report when health is unchanged", func() {
			checker.Probe(context.Background(), host)
			checker.Probe(context.Background(), host)
			Expect(recorded()).To(BeEmpty())
		})

		It("should mark an unreachable host unhealthy", func() {
			server.Close()
			Expect(checker.Probe(context.Background(), host)).To(BeFalse())
			Expect(host.IsHealthy()).To(BeFalse())
		})

		It("should leave health alone when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			Expect(checker.Probe(ctx, host)).To(BeTrue())
			Expect(recorded()).To(BeEmpty())
		})
	})

	Describe("Run", func() {
		It("should bring a recovered host back", func() {
			host.SetHealthy(false)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			checker.Start(ctx, []*upstream.Host{host})

			Eventually(host.IsHealthy).Should(BeTrue())
			Eventually(recorded).Should(Equal([]bool{true}))
		})

		It("should stop when context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				checker.Run(ctx, host)
				close(done)
			}()

			cancel()
			Eventually(done).Should(BeClosed())
		})
	})
})
