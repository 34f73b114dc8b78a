package tasks

import "context"

// Future is the eventual result of a function running on its own goroutine
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Submit starts fn on a new goroutine and returns its future
func Submit[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn()
	}()
	return f
}

func failedFuture[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// Done is closed once the result is available
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx ends.
// Giving up on the wait does not stop the function.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
