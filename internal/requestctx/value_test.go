package requestctx_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/origin-proxy/internal/requestctx"
)

var _ = Describe("Value", func() {
	DescribeTable("String renders every kind",
		func(v requestctx.Value, kind requestctx.Kind, want string) {
			Expect(v.Kind()).To(Equal(kind))
			Expect(v.String()).To(Equal(want))
		},
		Entry("string", requestctx.String("502"), requestctx.KindString, "502"),
		Entry("int", requestctx.Int(-7), requestctx.KindInt, "-7"),
		Entry("bool", requestctx.Bool(true), requestctx.KindBool, "true"),
		Entry("strings", requestctx.Strings("a", "b"), requestctx.KindStrings, "a,b"),
	)

	It("should only convert to its own kind", func() {
		v := requestctx.Int(42)

		i, ok := v.AsInt()
		Expect(ok).To(BeTrue())
		Expect(i).To(Equal(int64(42)))

		_, ok = v.AsBool()
		Expect(ok).To(BeFalse())
		_, ok = v.AsStrings()
		Expect(ok).To(BeFalse())
	})

	It("should not share its backing slice", func() {
		src := []string{"a", "b"}
		v := requestctx.Strings(src...)
		src[0] = "z"

		got, ok := v.AsStrings()
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal([]string{"a", "b"}))
	})
})
