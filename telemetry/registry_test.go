// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestRegistry_Register(t *testing.T) {
	t.Run("will keep the first registration", func(t *testing.T) {
		first := sdktrace.NewTracerProvider()
		defer first.Shutdown(context.Background())
		second := sdktrace.NewTracerProvider()
		defer second.Shutdown(context.Background())

		reg := &Registry{}
		require.False(t, reg.Registered())

		err := reg.Register(first, propagation.TraceContext{})
		require.Nil(t, err)
		require.True(t, reg.Registered())
		require.Equal(t, first, otel.GetTracerProvider())

		err = reg.Register(second, propagation.Baggage{})
		require.ErrorIs(t, err, ErrAlreadyRegistered)
		require.Equal(t, first, otel.GetTracerProvider())
		require.Equal(t, propagation.TraceContext{}, otel.GetTextMapPropagator())
	})

	t.Run("will accept exactly one of many concurrent registrations", func(t *testing.T) {
		tp := sdktrace.NewTracerProvider()
		defer tp.Shutdown(context.Background())

		reg := &Registry{}

		var wg sync.WaitGroup
		errs := make([]error, 10)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = reg.Register(tp, propagation.TraceContext{})
			}(i)
		}
		wg.Wait()

		accepted := 0
		for _, err := range errs {
			if err == nil {
				accepted++
				continue
			}
			require.ErrorIs(t, err, ErrAlreadyRegistered)
		}
		require.Equal(t, 1, accepted)
	})
}

func TestRegistry_RegisterMeterProvider(t *testing.T) {
	first := sdkmetric.NewMeterProvider()
	defer first.Shutdown(context.Background())

	reg := &Registry{}
	require.Nil(t, reg.RegisterMeterProvider(first))
	require.ErrorIs(t, reg.RegisterMeterProvider(sdkmetric.NewMeterProvider()), ErrAlreadyRegistered)
	require.Equal(t, first, otel.GetMeterProvider())

	require.False(t, reg.Registered())
}

func TestRegistry_Reserve(t *testing.T) {
	t.Run("will reject others while reserved", func(t *testing.T) {
		reg := &Registry{}

		slot, err := reg.Reserve()
		require.Nil(t, err)
		require.True(t, reg.Registered())

		_, err = reg.Reserve()
		require.ErrorIs(t, err, ErrAlreadyRegistered)
		require.ErrorIs(t, reg.Register(sdktrace.NewTracerProvider(), propagation.TraceContext{}), ErrAlreadyRegistered)

		slot.Release()
		require.False(t, reg.Registered())

		_, err = reg.Reserve()
		require.Nil(t, err)
	})

	t.Run("will not touch the globals if released before registering", func(t *testing.T) {
		tp := sdktrace.NewTracerProvider()
		defer tp.Shutdown(context.Background())
		otel.SetTracerProvider(tp)

		reg := &Registry{}
		slot, err := reg.Reserve()
		require.Nil(t, err)

		slot.Release()
		require.Equal(t, tp, otel.GetTracerProvider())
	})

	t.Run("will only release once", func(t *testing.T) {
		reg := &Registry{}

		slot, err := reg.Reserve()
		require.Nil(t, err)
		slot.Release()

		other, err := reg.Reserve()
		require.Nil(t, err)

		slot.Release()
		require.True(t, reg.Registered())
		other.Release()
	})
}

func TestRegistry_Release(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	mp := sdkmetric.NewMeterProvider()
	defer mp.Shutdown(context.Background())

	reg := &Registry{}
	slot, err := reg.Reserve()
	require.Nil(t, err)
	slot.Register(tp, propagation.TraceContext{})
	require.Nil(t, reg.RegisterMeterProvider(mp))
	require.Equal(t, tp, otel.GetTracerProvider())

	slot.Release()
	require.False(t, reg.Registered())
	require.NotEqual(t, tp, otel.GetTracerProvider())
	require.NotEqual(t, mp, otel.GetMeterProvider())
	require.Empty(t, otel.GetTextMapPropagator().Fields())

	_, span := otel.Tracer("test").Start(context.Background(), "released")
	require.False(t, span.IsRecording())
	span.End()

	next := sdkmetric.NewMeterProvider()
	defer next.Shutdown(context.Background())
	require.Nil(t, reg.Register(tp, propagation.TraceContext{}))
	require.Nil(t, reg.RegisterMeterProvider(next))
}
