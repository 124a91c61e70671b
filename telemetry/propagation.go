// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"

	"github.com/z5labs/otelboot"

	"go.opentelemetry.io/otel/propagation"
)

// BuildBaggagePropagator returns a [otelboot.Builder] for the W3C Baggage propagator.
func BuildBaggagePropagator() otelboot.Builder[propagation.TextMapPropagator] {
	return otelboot.BuilderOf[propagation.TextMapPropagator](propagation.Baggage{})
}

// BuildTraceContextPropagator returns a [otelboot.Builder] for the W3C Trace Context propagator.
func BuildTraceContextPropagator() otelboot.Builder[propagation.TextMapPropagator] {
	return otelboot.BuilderOf[propagation.TextMapPropagator](propagation.TraceContext{})
}

// DefaultPropagators are the strategies used when none are configured, in order.
func DefaultPropagators() []otelboot.Builder[propagation.TextMapPropagator] {
	return []otelboot.Builder[propagation.TextMapPropagator]{
		BuildBaggagePropagator(),
		BuildTraceContextPropagator(),
	}
}

// BuildCompositePropagator builds every strategy in order and combines
// them into a single [propagation.TextMapPropagator]. Duplicates are not
// detected. Composing zero strategies yields a propagator which does nothing.
func BuildCompositePropagator(builders ...otelboot.Builder[propagation.TextMapPropagator]) otelboot.Builder[propagation.TextMapPropagator] {
	return otelboot.BuilderFunc[propagation.TextMapPropagator](func(ctx context.Context) (propagation.TextMapPropagator, error) {
		props := make([]propagation.TextMapPropagator, 0, len(builders))
		for _, b := range builders {
			p, err := b.Build(ctx)
			if err != nil {
				return nil, err
			}
			props = append(props, p)
		}
		return propagation.NewCompositeTextMapPropagator(props...), nil
	})
}
