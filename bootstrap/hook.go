// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/z5labs/otelboot"
	"github.com/z5labs/otelboot/lifecycle"
	"github.com/z5labs/otelboot/telemetry"

	"go.uber.org/zap"
)

// Phase is the lifecycle phase of a [Hook].
type Phase int32

const (
	Idle Phase = iota
	Running
	Done
)

// String implements the [fmt.Stringer] interface.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("Phase(%d)", int32(p))
	}
}

// State is what a [Hook] exposes to the embedding layer.
//
// Loaded reports that the bootstrap attempt finished. It does not say
// whether the attempt succeeded, see [Hook.Result] for that.
type State struct {
	Loaded bool
}

// BuildError wraps whatever caused a bootstrap attempt to fail.
type BuildError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e BuildError) Error() string {
	return fmt.Sprintf("failed to setup tracer: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e BuildError) Unwrap() error {
	return e.Cause
}

// Result is the outcome of a bootstrap attempt. Exactly one of
// Telemetry and Err is set.
type Result struct {
	Telemetry *telemetry.Telemetry
	Err       error
}

// Ok reports whether the attempt succeeded.
func (r Result) Ok() bool {
	return r.Err == nil && r.Telemetry != nil
}

// Option configures a [Hook].
type Option func(*Hook)

// Logger sets the logger failures are reported to.
func Logger(l *zap.Logger) Option {
	return func(h *Hook) {
		h.log = l
	}
}

// OnResult registers f to be called with the outcome of the bootstrap
// attempt, from the goroutine which ran it.
func OnResult(f func(Result)) Option {
	return func(h *Hook) {
		h.onResult = f
	}
}

// Hook runs a telemetry pipeline at most once, in the background, and
// never lets its failure escape.
type Hook struct {
	log      *zap.Logger
	onResult func(Result)

	phase  atomic.Int32
	future *otelboot.Future[*telemetry.Telemetry]
	lc     *lifecycle.Context

	result     atomic.Pointer[Result]
	done       chan struct{}
	unmountOne sync.Once
	unmountErr error
}

// New returns an idle [Hook] which will construct telemetry with pipeline.
func New(pipeline otelboot.Builder[*telemetry.Telemetry], opts ...Option) *Hook {
	h := &Hook{
		log:    zap.NewNop(),
		future: otelboot.NewFuture(pipeline),
		lc:     &lifecycle.Context{},
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.Named("bootstrap")
	return h
}

// Mount starts the bootstrap attempt if the hook is idle and reports
// whether this call started it. It never blocks on construction.
func (h *Hook) Mount(ctx context.Context) bool {
	if !h.phase.CompareAndSwap(int32(Idle), int32(Running)) {
		return false
	}

	h.future.Start(lifecycle.NewContext(ctx, h.lc))
	go h.complete()
	return true
}

func (h *Hook) complete() {
	<-h.future.Done()

	tel, err := h.future.Result()
	res := Result{Telemetry: tel}
	if err != nil {
		res = Result{Err: BuildError{Cause: err}}
		h.log.Warn("failed to setup tracer", zap.Error(err))
	} else {
		h.log.Info("tracer setup complete")
	}

	h.result.Store(&res)
	h.phase.Store(int32(Done))
	close(h.done)

	if h.onResult != nil {
		h.onResult(res)
	}
}

// Phase returns the current lifecycle phase.
func (h *Hook) Phase() Phase {
	return Phase(h.phase.Load())
}

// State returns the state exposed to the embedding layer.
func (h *Hook) State() State {
	return State{Loaded: h.Phase() == Done}
}

// Done returns a channel which is closed once the bootstrap attempt finished.
func (h *Hook) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the bootstrap attempt finished. An error is only
// returned if ctx is done first.
func (h *Hook) Wait(ctx context.Context) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-h.done:
		return h.Result(), nil
	}
}

// Result returns the outcome of the bootstrap attempt, or the zero
// [Result] if it has not finished.
func (h *Hook) Result() Result {
	r := h.result.Load()
	if r == nil {
		return Result{}
	}
	return *r
}

// Unmount releases everything the bootstrap attempt set up, including its
// claim on the [telemetry.Registry], so that a new [Hook] may bootstrap
// again. It waits for a running attempt to finish first. Unmounting an idle
// hook does nothing and later calls return the outcome of the first.
func (h *Hook) Unmount(ctx context.Context) error {
	if h.Phase() == Idle {
		return nil
	}
	if _, err := h.Wait(ctx); err != nil {
		return err
	}

	h.unmountOne.Do(func() {
		h.unmountErr = h.lc.Teardown().Run(ctx)
		if h.unmountErr != nil {
			h.log.Warn("failed to tear down telemetry", zap.Error(h.unmountErr))
		}
	})
	return h.unmountErr
}
