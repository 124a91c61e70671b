// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/z5labs/otelboot"
	"github.com/z5labs/otelboot/config"
	"github.com/z5labs/otelboot/telemetry/noop"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTelemetry_AttachMetrics(t *testing.T) {
	t.Run("will drop measurements until metrics are attached", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		tel := New(resource.Empty(), propagation.TraceContext{}, sdktrace.NewTracerProvider(), reader)
		defer tel.Shutdown(context.Background())

		counter, err := tel.Meter("test").Int64Counter("requests")
		require.Nil(t, err)
		counter.Add(context.Background(), 1)

		require.Nil(t, tel.MeterProvider())
	})

	t.Run("will collect measurements once attached", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		tel := New(resource.Empty(), propagation.TraceContext{}, sdktrace.NewTracerProvider(), reader)
		defer tel.Shutdown(context.Background())

		err := tel.AttachMetrics(&Registry{})
		require.Nil(t, err)
		require.NotNil(t, tel.MeterProvider())

		counter, err := tel.Meter("test").Int64Counter("requests")
		require.Nil(t, err)
		counter.Add(context.Background(), 3)

		var rm metricdata.ResourceMetrics
		require.Nil(t, reader.Collect(context.Background(), &rm))
		require.Len(t, rm.ScopeMetrics, 1)
		require.Equal(t, "requests", rm.ScopeMetrics[0].Metrics[0].Name)

		sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Equal(t, int64(3), sum.DataPoints[0].Value)
	})

	t.Run("will only attach once", func(t *testing.T) {
		tel := New(resource.Empty(), propagation.TraceContext{}, sdktrace.NewTracerProvider(), sdkmetric.NewManualReader())
		defer tel.Shutdown(context.Background())

		require.Nil(t, tel.AttachMetrics(&Registry{}))
		require.ErrorIs(t, tel.AttachMetrics(&Registry{}), ErrMetricsAttached)
	})

	t.Run("will keep the meter provider if the registry rejects it", func(t *testing.T) {
		reg := &Registry{}
		require.Nil(t, reg.RegisterMeterProvider(sdkmetric.NewMeterProvider()))

		tel := New(resource.Empty(), propagation.TraceContext{}, sdktrace.NewTracerProvider(), sdkmetric.NewManualReader())
		defer tel.Shutdown(context.Background())

		require.ErrorIs(t, tel.AttachMetrics(reg), ErrAlreadyRegistered)
		require.NotNil(t, tel.MeterProvider())
	})

	t.Run("will fail without a metric reader", func(t *testing.T) {
		tel := New(resource.Empty(), propagation.TraceContext{}, sdktrace.NewTracerProvider(), nil)
		defer tel.Shutdown(context.Background())

		require.Error(t, tel.AttachMetrics(&Registry{}))
	})
}

func TestTelemetry_Shutdown(t *testing.T) {
	t.Run("will flush spans before shutting down", func(t *testing.T) {
		exp := tracetest.NewInMemoryExporter()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))

		tel := New(resource.Empty(), propagation.TraceContext{}, tp, sdkmetric.NewManualReader())

		_, span := tel.Tracer("test").Start(context.Background(), "work")
		span.End()

		require.Nil(t, tel.ForceFlush(context.Background()))
		require.Len(t, exp.GetSpans(), 1)
		require.Nil(t, tel.Shutdown(context.Background()))
	})

	t.Run("will shut down an attached meter provider", func(t *testing.T) {
		tel := New(resource.Empty(), propagation.TraceContext{}, sdktrace.NewTracerProvider(), sdkmetric.NewManualReader())
		require.Nil(t, tel.AttachMetrics(&Registry{}))

		require.Nil(t, tel.ForceFlush(context.Background()))
		require.Nil(t, tel.Shutdown(context.Background()))
	})

	t.Run("will tolerate missing providers", func(t *testing.T) {
		tel := New(nil, nil, nil, nil)
		require.Nil(t, tel.ForceFlush(context.Background()))
		require.Nil(t, tel.Shutdown(context.Background()))
	})
}

func TestBuildPeriodicReader(t *testing.T) {
	t.Run("will use the configured interval", func(t *testing.T) {
		pr, err := BuildPeriodicReader(
			noop.BuildMetricExporter(),
			config.ReaderOf(5*time.Second),
		).Build(context.Background())
		require.Nil(t, err)
		require.NotNil(t, pr)
		require.Nil(t, pr.Shutdown(context.Background()))
	})

	t.Run("will fail if the exporter fails to build", func(t *testing.T) {
		buildErr := context.DeadlineExceeded
		failing := otelboot.BuilderFunc[noop.MetricExporter](func(ctx context.Context) (noop.MetricExporter, error) {
			return noop.MetricExporter{}, buildErr
		})

		pr, err := BuildPeriodicReader(failing, config.ReaderOf(time.Second)).Build(context.Background())
		require.Nil(t, pr)
		require.ErrorIs(t, err, buildErr)
	})
}
