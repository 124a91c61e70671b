// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelboot

import (
	"context"
	"sync/atomic"

	"github.com/z5labs/otelboot/internal/try"
)

// Future is a run-once initializer. The first call to [Future.Start]
// spawns the underlying [Builder] in its own goroutine; every later call
// is a no-op. Any number of callers may await the outcome with [Future.Wait].
type Future[T any] struct {
	b Builder[T]

	started atomic.Bool
	done    chan struct{}

	v   T
	err error
}

// NewFuture returns a [Future] which will build its value with b.
func NewFuture[T any](b Builder[T]) *Future[T] {
	return &Future[T]{
		b:    b,
		done: make(chan struct{}),
	}
}

// Start begins building the value if it has not been started yet. It
// reports whether this call was the one which started it.
//
// The build runs to completion regardless of ctx being cancelled afterwards;
// ctx is only handed to the [Builder].
func (f *Future[T]) Start(ctx context.Context) bool {
	if !f.started.CompareAndSwap(false, true) {
		return false
	}

	go func() {
		defer close(f.done)

		f.v, f.err = f.build(ctx)
	}()
	return true
}

func (f *Future[T]) build(ctx context.Context) (v T, err error) {
	defer try.Recover(&err)

	return f.b.Build(ctx)
}

// Started reports whether [Future.Start] has been called.
func (f *Future[T]) Started() bool {
	return f.started.Load()
}

// Done returns a channel which is closed once the build completes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the build completes or ctx is done, in which case
// ctx.Err() is returned.
func (f *Future[T]) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.done:
		return nil
	}
}

// Result returns the built value and error. It must only be called
// after [Future.Done] has been closed.
func (f *Future[T]) Result() (T, error) {
	return f.v, f.err
}
