package origin_test

import (
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/origin-proxy/internal/origin"
)

var _ = Describe("Table", func() {
	var table *origin.Table

	BeforeEach(func() {
		table = origin.NewTable()
	})

	It("should not find anything when empty", func() {
		b, ok := table.Lookup("an-origin")
		Expect(ok).To(BeFalse())
		Expect(b).To(BeNil())
	})

	It("should resolve registered names only", func() {
		backend := staticBackend(200)
		Expect(table.Register("an-origin", backend)).To(Succeed())

		b, ok := table.Lookup("an-origin")
		Expect(ok).To(BeTrue())
		Expect(b).NotTo(BeNil())

		_, ok = table.Lookup("a-different-origin")
		Expect(ok).To(BeFalse())
	})

	It("should reject empty names and nil backends", func() {
		Expect(table.Register("", staticBackend(200))).To(MatchError(origin.ErrEmptyName))
		Expect(table.Register("x", nil)).To(MatchError(origin.ErrNilBackend))
		Expect(table.Replace(map[string]origin.Backend{"x": nil})).To(MatchError(origin.ErrNilBackend))
		Expect(table.Names()).To(BeEmpty())
	})

	It("should remove names", func() {
		Expect(table.Register("an-origin", staticBackend(200))).To(Succeed())
		Expect(table.Remove("an-origin")).To(BeTrue())
		Expect(table.Remove("an-origin")).To(BeFalse())

		_, ok := table.Lookup("an-origin")
		Expect(ok).To(BeFalse())
	})

	It("should replace the whole set", func() {
		Expect(table.Register("old", staticBackend(200))).To(Succeed())
		Expect(table.Replace(map[string]origin.Backend{
			"b": staticBackend(200),
			"a": staticBackend(200),
		})).To(Succeed())

		Expect(table.Names()).To(Equal([]string{"a", "b"}))
	})

	It("should serve lookups while being mutated", func() {
		Expect(table.Register("stable", staticBackend(200))).To(Succeed())

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				Expect(table.Register(fmt.Sprintf("o-%d", i), staticBackend(200))).To(Succeed())
			}(i)
			go func() {
				defer wg.Done()
				_, ok := table.Lookup("stable")
				Expect(ok).To(BeTrue())
			}()
		}
		wg.Wait()

		Expect(table.Names()).To(HaveLen(21))
	})

	It("should be usable as a zero value", func() {
		var zero origin.Table

		_, ok := zero.Lookup("anything")
		Expect(ok).To(BeFalse())
		Expect(zero.Names()).To(BeEmpty())
		Expect(zero.Remove("anything")).To(BeFalse())

		Expect(zero.Register("an-origin", staticBackend(200))).To(Succeed())
		_, ok = zero.Lookup("an-origin")
		Expect(ok).To(BeTrue())
	})
})
