// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"

	"github.com/z5labs/otelboot"
	"github.com/z5labs/otelboot/config"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// BuildTraceIDRatioBasedSampler samples the given fraction of root traces
// and otherwise follows the sampling decision of the parent span. An unset
// ratio samples every trace.
func BuildTraceIDRatioBasedSampler(ratio config.Reader[float64]) otelboot.Builder[sdktrace.Sampler] {
	return otelboot.BuilderFunc[sdktrace.Sampler](func(ctx context.Context) (sdktrace.Sampler, error) {
		r, err := config.Read(ctx, config.Default(1.0, ratio))
		if err != nil {
			return nil, err
		}

		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(r)), nil
	})
}

// BuildSimpleSpanProcessor wraps the exporter in a processor which exports
// every span synchronously as it ends.
func BuildSimpleSpanProcessor[E sdktrace.SpanExporter](exporterB otelboot.Builder[E]) otelboot.Builder[sdktrace.SpanProcessor] {
	return otelboot.BuilderFunc[sdktrace.SpanProcessor](func(ctx context.Context) (sdktrace.SpanProcessor, error) {
		exp, err := exporterB.Build(ctx)
		if err != nil {
			return nil, err
		}

		return sdktrace.NewSimpleSpanProcessor(exp), nil
	})
}

// BuildBatchSpanProcessor wraps the exporter in a processor which exports
// spans in batches.
func BuildBatchSpanProcessor[E sdktrace.SpanExporter](
	exporterB otelboot.Builder[E],
	opts ...sdktrace.BatchSpanProcessorOption,
) otelboot.Builder[sdktrace.SpanProcessor] {
	return otelboot.BuilderFunc[sdktrace.SpanProcessor](func(ctx context.Context) (sdktrace.SpanProcessor, error) {
		exp, err := exporterB.Build(ctx)
		if err != nil {
			return nil, err
		}

		return sdktrace.NewBatchSpanProcessor(exp, opts...), nil
	})
}

// BuildSpanProcessors builds the processor chain in order. Each processor
// receives every ended span independently of the others.
func BuildSpanProcessors(builders ...otelboot.Builder[sdktrace.SpanProcessor]) otelboot.Builder[[]sdktrace.SpanProcessor] {
	return otelboot.BuilderFunc[[]sdktrace.SpanProcessor](func(ctx context.Context) ([]sdktrace.SpanProcessor, error) {
		sps := make([]sdktrace.SpanProcessor, 0, len(builders))
		for _, b := range builders {
			sp, err := b.Build(ctx)
			if err != nil {
				return nil, err
			}
			sps = append(sps, sp)
		}
		return sps, nil
	})
}

// BuildTracerProvider returns a [otelboot.Builder] for a [sdktrace.TracerProvider]
// using the given resource, sampler and ordered span processor chain.
func BuildTracerProvider[S sdktrace.Sampler](
	resourceB otelboot.Builder[*resource.Resource],
	samplerB otelboot.Builder[S],
	processorsB otelboot.Builder[[]sdktrace.SpanProcessor],
) otelboot.Builder[*sdktrace.TracerProvider] {
	return otelboot.BuilderFunc[*sdktrace.TracerProvider](func(ctx context.Context) (*sdktrace.TracerProvider, error) {
		r, err := resourceB.Build(ctx)
		if err != nil {
			return nil, err
		}

		sampler, err := samplerB.Build(ctx)
		if err != nil {
			return nil, err
		}

		sps, err := processorsB.Build(ctx)
		if err != nil {
			return nil, err
		}

		opts := []sdktrace.TracerProviderOption{
			sdktrace.WithResource(r),
			sdktrace.WithSampler(sampler),
		}
		for _, sp := range sps {
			opts = append(opts, sdktrace.WithSpanProcessor(sp))
		}
		return sdktrace.NewTracerProvider(opts...), nil
	})
}
