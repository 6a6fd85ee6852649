package future_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/origin-proxy/internal/future"
)

var errBoom = errors.New("boom")

var _ = Describe("Future", func() {
	Describe("Complete", func() {
		It("should keep only the first outcome", func() {
			f := future.New[int]()
			Expect(f.Complete(1, nil)).To(BeTrue())
			Expect(f.Complete(2, errBoom)).To(BeFalse())

			v, err := f.Await()
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(1))
		})

		It("should report pending futures", func() {
			f := future.New[int]()
			Expect(f.Ready()).To(BeFalse())
			f.Complete(1, nil)
			Expect(f.Ready()).To(BeTrue())
		})
	})

	Describe("OnComplete", func() {
		It("should run callbacks before Done is closed", func() {
			f := future.New[int]()
			var ran atomic.Bool
			f.OnComplete(func(int, error) { ran.Store(true) })

			go f.Complete(7, nil)

			Eventually(f.Done()).Should(BeClosed())
			Expect(ran.Load()).To(BeTrue())
		})

		It("should run immediately on a completed future", func() {
			f := future.Completed("x")
			var got string
			f.OnComplete(func(v string, _ error) { got = v })
			Expect(got).To(Equal("x"))
		})
	})

	Describe("Go", func() {
		It("should complete with the function result", func() {
			v, err := future.Go(func() (int, error) { return 42, nil }).Await()
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(42))
		})

		It("should complete with the function error", func() {
			_, err := future.Go(func() (int, error) { return 0, errBoom }).Await()
			Expect(err).To(MatchError(errBoom))
		})
	})

	Describe("Map", func() {
		It("should apply the continuation before the derived future completes", func() {
			src := future.New[int]()
			var seen atomic.Int64
			derived := future.Map(src, func(v int) (int, error) {
				seen.Store(int64(v))
				return v * 2, nil
			})

			Consistently(derived.Done(), 20*time.Millisecond).ShouldNot(BeClosed())
			src.Complete(21, nil)

			v, err := derived.Await()
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(42))
			Expect(seen.Load()).To(Equal(int64(21)))
		})

		It("should pass errors through without calling the continuation", func() {
			called := false
			derived := future.Map(future.Failed[int](errBoom), func(v int) (int, error) {
				called = true
				return v, nil
			})

			_, err := derived.Await()
			Expect(err).To(BeIdenticalTo(errBoom))
			Expect(called).To(BeFalse())
		})
	})

	Describe("AwaitContext", func() {
		It("should stop waiting when the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()

			_, err := future.New[int]().AwaitContext(ctx)
			Expect(err).To(MatchError(context.DeadlineExceeded))
		})

		It("should return the outcome when already complete", func() {
			v, err := future.Completed(3).AwaitContext(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(3))
		})
	})
})
