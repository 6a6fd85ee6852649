// Package future provides a single-assignment result cell for work that
// completes on another goroutine. Continuations registered with OnComplete or
// Map run before any future derived from them completes, so side effects they
// perform are visible to whoever observes the derived future.
package future

import (
	"context"
	"sync"
)

// Future holds exactly one value or one error once completed.
type Future[T any] struct {
	mutex     sync.Mutex
	done      chan struct{}
	completed bool
	value     T
	err       error
	callbacks []func(T, error)
}

func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Completed returns a future already holding v.
func Completed[T any](v T) *Future[T] {
	f := New[T]()
	f.Complete(v, nil)
	return f
}

// Failed returns a future already holding err.
func Failed[T any](err error) *Future[T] {
	f := New[T]()
	var zero T
	f.Complete(zero, err)
	return f
}

// Go runs fn on a new goroutine and completes the returned future with its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := New[T]()
	go func() {
		v, err := fn()
		f.Complete(v, err)
	}()
	return f
}

// Complete stores the outcome. Only the first call has an effect; it reports
// whether this call completed the future. Callbacks run on the calling
// goroutine before Done is closed.
func (f *Future[T]) Complete(v T, err error) bool {
	f.mutex.Lock()
	if f.completed {
		f.mutex.Unlock()
		return false
	}
	f.completed = true
	f.value, f.err = v, err
	callbacks := f.callbacks
	f.callbacks = nil
	f.mutex.Unlock()

	for _, cb := range callbacks {
		cb(v, err)
	}
	close(f.done)
	return true
}

// OnComplete registers fn to run with the outcome. If the future already
// completed, fn runs immediately on the calling goroutine.
func (f *Future[T]) OnComplete(fn func(T, error)) {
	f.mutex.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, fn)
		f.mutex.Unlock()
		return
	}
	v, err := f.value, f.err
	f.mutex.Unlock()

	fn(v, err)
}

// Done is closed once the future completed and its callbacks ran.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Ready reports whether the future completed.
func (f *Future[T]) Ready() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.completed
}

// Result returns the outcome without waiting; zero values while pending.
func (f *Future[T]) Result() (T, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.value, f.err
}

// Await blocks until the future completed.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.Result()
}

// AwaitContext blocks until the future completed or ctx is done. Giving up
// on the wait does not cancel the underlying work.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Map derives a future from f. fn runs only on success; errors from f pass
// through unchanged.
func Map[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := New[U]()
	f.OnComplete(func(v T, err error) {
		if err != nil {
			var zero U
			out.Complete(zero, err)
			return
		}
		out.Complete(fn(v))
	})
	return out
}
