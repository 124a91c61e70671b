// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otlp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/z5labs/otelboot"
	"github.com/z5labs/otelboot/config"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type request struct {
	path          string
	authorization string
	team          string
}

type collector struct {
	mu       sync.Mutex
	requests []request
}

func (c *collector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = append(c.requests, request{
		path:          r.URL.Path,
		authorization: r.Header.Get("Authorization"),
		team:          r.Header.Get("X-Team"),
	})
	w.WriteHeader(http.StatusOK)
}

func (c *collector) received() []request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]request(nil), c.requests...)
}

func headers() config.Reader[map[string]string] {
	return BearerHeaders(
		config.ReaderOf(map[string]string{"X-Team": "mobile"}),
		config.ReaderOf("secret"),
	)
}

func TestBuildHttpSpanExporter(t *testing.T) {
	c := &collector{}
	srv := httptest.NewServer(c)
	defer srv.Close()

	exp, err := BuildHttpSpanExporter(
		config.ReaderOf(srv.URL+"/v1/traces"),
		headers(),
		otelboot.BuilderOf(srv.Client()),
	).Build(context.Background())
	require.Nil(t, err)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))

	_, span := tp.Tracer("test").Start(context.Background(), "remote-span")
	span.End()

	require.Nil(t, tp.Shutdown(context.Background()))

	reqs := c.received()
	require.Len(t, reqs, 1)
	require.Equal(t, "/v1/traces", reqs[0].path)
	require.Equal(t, "Bearer secret", reqs[0].authorization)
	require.Equal(t, "mobile", reqs[0].team)
}

func TestBuildHttpMetricExporter(t *testing.T) {
	c := &collector{}
	srv := httptest.NewServer(c)
	defer srv.Close()

	exp, err := BuildHttpMetricExporter(
		config.ReaderOf(srv.URL+"/v1/metrics"),
		headers(),
		otelboot.BuilderOf(srv.Client()),
	).Build(context.Background())
	require.Nil(t, err)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))

	counter, err := mp.Meter("test").Int64Counter("requests")
	require.Nil(t, err)
	counter.Add(context.Background(), 1)

	require.Nil(t, mp.Shutdown(context.Background()))

	reqs := c.received()
	require.NotEmpty(t, reqs)
	require.Equal(t, "/v1/metrics", reqs[0].path)
	require.Equal(t, "Bearer secret", reqs[0].authorization)
}

func TestBuildHttpSpanExporter_missingURL(t *testing.T) {
	_, err := BuildHttpSpanExporter(
		config.Env("OTELBOOT_TEST_UNSET_TRACES_URL"),
		headers(),
		otelboot.BuilderOf(http.DefaultClient),
	).Build(context.Background())
	require.ErrorIs(t, err, config.ErrValueNotSet)
}

func TestBuildGrpcExporters(t *testing.T) {
	t.Run("span exporter", func(t *testing.T) {
		exp, err := BuildGrpcSpanExporter(
			config.ReaderOf("localhost:4317"),
			headers(),
			config.ReaderOf(true),
		).Build(context.Background())
		require.Nil(t, err)
		require.NotNil(t, exp)
		require.Nil(t, exp.Shutdown(context.Background()))
	})

	t.Run("metric exporter", func(t *testing.T) {
		exp, err := BuildGrpcMetricExporter(
			config.ReaderOf("localhost:4317"),
			headers(),
			config.ReaderOf(false),
		).Build(context.Background())
		require.Nil(t, err)
		require.NotNil(t, exp)
		require.Nil(t, exp.Shutdown(context.Background()))
	})
}

func unset[T any]() config.Reader[T] {
	return config.ReaderFunc[T](func(ctx context.Context) (config.Value[T], error) {
		return config.Value[T]{}, nil
	})
}

func TestBearerHeaders(t *testing.T) {
	testCases := []struct {
		Name     string
		Headers  config.Reader[map[string]string]
		Token    config.Reader[string]
		Expected map[string]string
	}{
		{
			Name:     "adds the bearer token",
			Headers:  config.ReaderOf(map[string]string{"X-Team": "mobile"}),
			Token:    config.ReaderOf("abc"),
			Expected: map[string]string{"X-Team": "mobile", "Authorization": "Bearer abc"},
		},
		{
			Name:     "no token leaves headers untouched",
			Headers:  config.ReaderOf(map[string]string{"X-Team": "mobile"}),
			Token:    unset[string](),
			Expected: map[string]string{"X-Team": "mobile"},
		},
		{
			Name:     "no headers",
			Headers:  unset[map[string]string](),
			Token:    config.ReaderOf("abc"),
			Expected: map[string]string{"Authorization": "Bearer abc"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			h, err := config.Read(context.Background(), BearerHeaders(testCase.Headers, testCase.Token))
			require.Nil(t, err)
			require.Equal(t, testCase.Expected, h)
		})
	}
}
