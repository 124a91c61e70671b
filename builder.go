// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelboot

import (
	"context"
	"sync"

	"github.com/z5labs/otelboot/internal/try"
)

// Builder represents anything which can construct a value of type T.
type Builder[T any] interface {
	Build(context.Context) (T, error)
}

// BuilderFunc is a functional implementation of the [Builder] interface.
type BuilderFunc[T any] func(context.Context) (T, error)

// Build implements the [Builder] interface.
func (f BuilderFunc[T]) Build(ctx context.Context) (T, error) {
	return f(ctx)
}

// BuilderOf returns a [Builder] which always returns the given value.
func BuilderOf[T any](v T) Builder[T] {
	return BuilderFunc[T](func(ctx context.Context) (T, error) {
		return v, nil
	})
}

// Map transforms the output of a [Builder] using f. f is never called
// if the underlying [Builder] fails.
func Map[A, B any](b Builder[A], f func(A) (B, error)) Builder[B] {
	return BuilderFunc[B](func(ctx context.Context) (B, error) {
		a, err := b.Build(ctx)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a)
	})
}

type memoizedBuilder[T any] struct {
	b Builder[T]

	once sync.Once
	v    T
	err  error
}

func (mb *memoizedBuilder[T]) Build(ctx context.Context) (T, error) {
	mb.once.Do(func() {
		defer try.Recover(&mb.err)

		mb.v, mb.err = mb.b.Build(ctx)
	})
	return mb.v, mb.err
}

// MemoizeBuilder returns a [Builder] which only ever calls the underlying
// [Builder] once. Every later call returns the same value and error,
// including failures. A panic raised by the underlying [Builder] is
// recovered and memoized as an error.
func MemoizeBuilder[T any](b Builder[T]) Builder[T] {
	return &memoizedBuilder[T]{b: b}
}
