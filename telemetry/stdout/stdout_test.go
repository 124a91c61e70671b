// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package stdout

import (
	"bytes"
	"context"
	"testing"

	"github.com/z5labs/otelboot"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestBuildSpanExporter(t *testing.T) {
	var buf bytes.Buffer

	exp, err := BuildSpanExporter(otelboot.BuilderOf(&buf)).Build(context.Background())
	require.Nil(t, err)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))

	_, span := tp.Tracer("test").Start(context.Background(), "console-span")
	span.End()

	require.Nil(t, tp.Shutdown(context.Background()))
	require.Contains(t, buf.String(), "console-span")
}

func TestBuildMetricExporter(t *testing.T) {
	var buf bytes.Buffer

	exp, err := BuildMetricExporter(otelboot.BuilderOf(&buf)).Build(context.Background())
	require.Nil(t, err)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))

	counter, err := mp.Meter("test").Int64Counter("console_counter")
	require.Nil(t, err)
	counter.Add(context.Background(), 1)

	require.Nil(t, mp.Shutdown(context.Background()))
	require.Contains(t, buf.String(), "console_counter")
}
