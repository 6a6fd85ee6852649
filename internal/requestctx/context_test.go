package requestctx_test

import (
	"context"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/origin-proxy/internal/requestctx"
)

var _ = Describe("Context", func() {
	var rc *requestctx.Context

	BeforeEach(func() {
		rc = requestctx.New()
	})

	It("should assign a unique uuid request id", func() {
		_, err := uuid.Parse(rc.ID())
		Expect(err).NotTo(HaveOccurred())
		Expect(requestctx.New().ID()).NotTo(Equal(rc.ID()))
	})

	Describe("side-channel values", func() {
		It("should report absent keys", func() {
			_, ok := rc.Get(requestctx.KeyOriginHTTPStatus)
			Expect(ok).To(BeFalse())
		})

		It("should make written values readable by later stages", func() {
			rc.Put(requestctx.KeyOriginHTTPStatus, requestctx.String("202"))

			status, ok := rc.GetString(requestctx.KeyOriginHTTPStatus)
			Expect(ok).To(BeTrue())
			Expect(status).To(Equal("202"))
		})

		It("should not return non-string values as strings", func() {
			rc.Put("attempts", requestctx.Int(3))

			_, ok := rc.GetString("attempts")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("routing target", func() {
		It("should be unset initially", func() {
			_, ok := rc.RoutingTarget()
			Expect(ok).To(BeFalse())
		})

		It("should return the last target set", func() {
			rc.SetRoutingTarget("an-origin")
			target, ok := rc.RoutingTarget()
			Expect(ok).To(BeTrue())
			Expect(target).To(Equal("an-origin"))
		})
	})

	Describe("debug log", func() {
		It("should keep lines in append order", func() {
			rc.AppendDebug("first")
			rc.AppendDebug("second")
			Expect(rc.DebugLog()).To(Equal([]string{"first", "second"}))
		})

		It("should hand out copies", func() {
			rc.AppendDebug("first")
			snapshot := rc.DebugLog()
			snapshot[0] = "changed"
			Expect(rc.DebugLog()).To(Equal([]string{"first"}))
		})

		It("should toggle the debug flag", func() {
			Expect(rc.DebugEnabled()).To(BeFalse())
			rc.SetDebug(true)
			Expect(rc.DebugEnabled()).To(BeTrue())
		})
	})

	Describe("context.Context propagation", func() {
		It("should round-trip through context values", func() {
			ctx := requestctx.NewContext(context.Background(), rc)
			got, ok := requestctx.FromContext(ctx)
			Expect(ok).To(BeTrue())
			Expect(got).To(BeIdenticalTo(rc))
		})

		It("should report a missing request context", func() {
			_, ok := requestctx.FromContext(context.Background())
			Expect(ok).To(BeFalse())
		})
	})

	It("should be usable as a zero value", func() {
		var zero requestctx.Context

		zero.Put(requestctx.KeyOriginHTTPStatus, requestctx.String("200"))
		status, ok := zero.GetString(requestctx.KeyOriginHTTPStatus)
		Expect(ok).To(BeTrue())
		Expect(status).To(Equal("200"))

		_, ok = zero.RoutingTarget()
		Expect(ok).To(BeFalse())
		Expect(zero.DebugLog()).To(BeEmpty())
	})
})
