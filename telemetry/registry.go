// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"errors"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ErrAlreadyRegistered is returned when a [Registry] has already accepted
// a registration.
var ErrAlreadyRegistered = errors.New("telemetry: providers already registered")

// Registry guards the process wide OpenTelemetry globals. The first
// registration wins and every later one is rejected without touching
// the globals, until the winner is released again. The zero value is
// ready to use.
type Registry struct {
	tracing atomic.Bool
	metrics atomic.Bool
}

// DefaultRegistry guards the globals of the running process.
var DefaultRegistry = &Registry{}

// Reserve claims the registry before anything is constructed. Exactly one
// caller holds a [Reservation] at a time, every other caller gets
// [ErrAlreadyRegistered].
func (r *Registry) Reserve() (*Reservation, error) {
	if !r.tracing.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRegistered
	}
	return &Reservation{r: r}, nil
}

// Register reserves the registry and installs tp and prop as the global
// tracer provider and text map propagator.
func (r *Registry) Register(tp trace.TracerProvider, prop propagation.TextMapPropagator) error {
	res, err := r.Reserve()
	if err != nil {
		return err
	}
	res.Register(tp, prop)
	return nil
}

// RegisterMeterProvider installs mp as the global meter provider.
func (r *Registry) RegisterMeterProvider(mp metric.MeterProvider) error {
	if !r.metrics.CompareAndSwap(false, true) {
		return ErrAlreadyRegistered
	}

	otel.SetMeterProvider(mp)
	return nil
}

// Registered reports whether tracing is reserved or registered.
func (r *Registry) Registered() bool {
	return r.tracing.Load()
}

// Release resets every global installed through r to a no-op
// implementation and lets the next registration through.
func (r *Registry) Release() {
	if r.metrics.CompareAndSwap(true, false) {
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
	}
	if r.tracing.Load() {
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())
		r.tracing.Store(false)
	}
}

// Reservation is the exclusive right to install the tracing globals
// guarded by a [Registry].
type Reservation struct {
	r *Registry

	once      sync.Once
	installed atomic.Bool
}

// Register installs tp and prop as the global tracer provider and text
// map propagator.
func (res *Reservation) Register(tp trace.TracerProvider, prop propagation.TextMapPropagator) {
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(prop)
	res.installed.Store(true)
}

// Release gives the reservation back. Globals installed through it are
// reset to no-op implementations. Only the first call has any effect.
func (res *Reservation) Release() {
	res.once.Do(func() {
		if res.installed.Load() {
			res.r.Release()
			return
		}
		res.r.tracing.Store(false)
	})
}
