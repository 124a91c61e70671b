// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package stdout provides console exporters for local debugging.
package stdout

import (
	"context"
	"io"

	"github.com/z5labs/otelboot"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// BuildSpanExporter returns a Builder that creates a span exporter which writes
// every span to the provided io.Writer as indented JSON.
func BuildSpanExporter[W io.Writer](writerB otelboot.Builder[W]) otelboot.BuilderFunc[*stdouttrace.Exporter] {
	return func(ctx context.Context) (*stdouttrace.Exporter, error) {
		w, err := writerB.Build(ctx)
		if err != nil {
			return nil, err
		}
		return stdouttrace.New(
			stdouttrace.WithWriter(w),
			stdouttrace.WithPrettyPrint(),
		)
	}
}

// BuildMetricExporter returns a Builder that creates a metric exporter which writes
// metric data to the provided io.Writer.
func BuildMetricExporter[W io.Writer](writerB otelboot.Builder[W]) otelboot.BuilderFunc[sdkmetric.Exporter] {
	return func(ctx context.Context) (sdkmetric.Exporter, error) {
		w, err := writerB.Build(ctx)
		if err != nil {
			return nil, err
		}
		return stdoutmetric.New(
			stdoutmetric.WithWriter(w),
		)
	}
}
