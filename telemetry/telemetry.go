// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// ErrMetricsAttached is returned by [Telemetry.AttachMetrics] if the
// metric reader has already been attached.
var ErrMetricsAttached = errors.New("telemetry: metric reader already attached")

// Telemetry owns everything built for one application instance.
type Telemetry struct {
	resource   *resource.Resource
	propagator propagation.TextMapPropagator
	tp         *sdktrace.TracerProvider
	reader     sdkmetric.Reader

	mu sync.Mutex
	mp *sdkmetric.MeterProvider
}

// New returns a [Telemetry] owning the given pieces. reader may be nil.
func New(
	r *resource.Resource,
	prop propagation.TextMapPropagator,
	tp *sdktrace.TracerProvider,
	reader sdkmetric.Reader,
) *Telemetry {
	return &Telemetry{
		resource:   r,
		propagator: prop,
		tp:         tp,
		reader:     reader,
	}
}

func (t *Telemetry) Resource() *resource.Resource {
	return t.resource
}

func (t *Telemetry) Propagator() propagation.TextMapPropagator {
	return t.propagator
}

func (t *Telemetry) TracerProvider() *sdktrace.TracerProvider {
	return t.tp
}

func (t *Telemetry) MetricReader() sdkmetric.Reader {
	return t.reader
}

// MeterProvider returns the meter provider created by [Telemetry.AttachMetrics]
// or nil if metrics were never attached.
func (t *Telemetry) MeterProvider() *sdkmetric.MeterProvider {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mp
}

// Tracer returns a named tracer from the owned tracer provider.
func (t *Telemetry) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return t.tp.Tracer(name, opts...)
}

// Meter returns a named meter. Until metrics are attached every
// measurement is dropped.
func (t *Telemetry) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	mp := t.MeterProvider()
	if mp == nil {
		return metricnoop.NewMeterProvider().Meter(name, opts...)
	}
	return mp.Meter(name, opts...)
}

// AttachMetrics creates a meter provider around the owned metric reader and
// registers it with reg. The meter provider is kept even if reg rejects it,
// in which case [ErrAlreadyRegistered] is returned.
func (t *Telemetry) AttachMetrics(reg *Registry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.reader == nil {
		return errors.New("telemetry: no metric reader to attach")
	}
	if t.mp != nil {
		return ErrMetricsAttached
	}

	t.mp = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(t.resource),
		sdkmetric.WithReader(t.reader),
	)
	return reg.RegisterMeterProvider(t.mp)
}

// ForceFlush exports everything buffered by the owned providers.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	var errs []error
	if t.tp != nil {
		errs = append(errs, t.tp.ForceFlush(ctx))
	}
	if mp := t.MeterProvider(); mp != nil {
		errs = append(errs, mp.ForceFlush(ctx))
	}
	return errors.Join(errs...)
}

// Shutdown flushes and stops the owned providers concurrently. A metric
// reader which was never attached is shut down directly.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var g errgroup.Group
	errs := make([]error, 2)

	if t.tp != nil {
		g.Go(func() error {
			errs[0] = t.tp.Shutdown(ctx)
			return nil
		})
	}

	if mp := t.MeterProvider(); mp != nil {
		g.Go(func() error {
			errs[1] = mp.Shutdown(ctx)
			return nil
		})
	} else if t.reader != nil {
		g.Go(func() error {
			errs[1] = t.reader.Shutdown(ctx)
			return nil
		})
	}

	_ = g.Wait()
	return errors.Join(errs...)
}
