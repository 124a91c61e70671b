// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package noop provides exporters which discard everything they are given.
package noop

import (
	"context"

	"github.com/z5labs/otelboot"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// SpanExporter is a [sdktrace.SpanExporter] which drops every span.
type SpanExporter struct{}

// BuildSpanExporter returns a [otelboot.Builder] for a [SpanExporter].
func BuildSpanExporter() otelboot.BuilderFunc[SpanExporter] {
	return func(ctx context.Context) (SpanExporter, error) {
		return SpanExporter{}, nil
	}
}

func (e SpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	return nil
}

func (e SpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// MetricExporter is a [sdkmetric.Exporter] which drops every metric.
type MetricExporter struct{}

// BuildMetricExporter returns a [otelboot.Builder] for a [MetricExporter].
func BuildMetricExporter() otelboot.BuilderFunc[MetricExporter] {
	return func(ctx context.Context) (MetricExporter, error) {
		return MetricExporter{}, nil
	}
}

func (e MetricExporter) Temporality(kind sdkmetric.InstrumentKind) metricdata.Temporality {
	return sdkmetric.DefaultTemporalitySelector(kind)
}

func (e MetricExporter) Aggregation(kind sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.DefaultAggregationSelector(kind)
}

func (e MetricExporter) Export(ctx context.Context, rm *metricdata.ResourceMetrics) error {
	return nil
}

func (e MetricExporter) ForceFlush(ctx context.Context) error {
	return nil
}

func (e MetricExporter) Shutdown(ctx context.Context) error {
	return nil
}
