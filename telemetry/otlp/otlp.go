// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otlp provides exporters which submit telemetry to an OTLP collector
// over HTTP or gRPC.
package otlp

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"

	"github.com/z5labs/otelboot"
	"github.com/z5labs/otelboot/config"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"google.golang.org/grpc/credentials"
)

// BearerHeaders adds an Authorization bearer header to headers when a token
// is set. Headers are passed through untouched otherwise.
func BearerHeaders(headers config.Reader[map[string]string], token config.Reader[string]) config.Reader[map[string]string] {
	return config.ReaderFunc[map[string]string](func(ctx context.Context) (config.Value[map[string]string], error) {
		h, err := config.Read(ctx, config.Default(map[string]string{}, headers))
		if err != nil {
			return config.Value[map[string]string]{}, err
		}

		tok, err := config.Read(ctx, token)
		if errors.Is(err, config.ErrValueNotSet) {
			return config.ValueOf(h), nil
		}
		if err != nil {
			return config.Value[map[string]string]{}, err
		}

		out := make(map[string]string, len(h)+1)
		for k, v := range h {
			out[k] = v
		}
		out["Authorization"] = "Bearer " + tok
		return config.ValueOf(out), nil
	})
}

// BuildHttpSpanExporter returns a Builder that creates an OTLP span exporter using
// HTTP transport. Spans are posted to the full url with the given static headers
// using the provided HTTP client.
func BuildHttpSpanExporter(
	url config.Reader[string],
	headers config.Reader[map[string]string],
	httpClientB otelboot.Builder[*http.Client],
) otelboot.BuilderFunc[*otlptrace.Exporter] {
	return func(ctx context.Context) (*otlptrace.Exporter, error) {
		u, err := config.Read(ctx, url)
		if err != nil {
			return nil, err
		}
		h, err := config.Read(ctx, config.Default(map[string]string{}, headers))
		if err != nil {
			return nil, err
		}
		hc, err := httpClientB.Build(ctx)
		if err != nil {
			return nil, err
		}

		return otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpointURL(u),
			otlptracehttp.WithHeaders(h),
			otlptracehttp.WithHTTPClient(hc),
		)
	}
}

// BuildHttpMetricExporter returns a Builder that creates an OTLP metric exporter using
// HTTP transport. Metrics are posted to the full url with the given static headers
// using the provided HTTP client.
func BuildHttpMetricExporter(
	url config.Reader[string],
	headers config.Reader[map[string]string],
	httpClientB otelboot.Builder[*http.Client],
) otelboot.BuilderFunc[*otlpmetrichttp.Exporter] {
	return func(ctx context.Context) (*otlpmetrichttp.Exporter, error) {
		u, err := config.Read(ctx, url)
		if err != nil {
			return nil, err
		}
		h, err := config.Read(ctx, config.Default(map[string]string{}, headers))
		if err != nil {
			return nil, err
		}
		hc, err := httpClientB.Build(ctx)
		if err != nil {
			return nil, err
		}

		return otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpointURL(u),
			otlpmetrichttp.WithHeaders(h),
			otlpmetrichttp.WithHTTPClient(hc),
		)
	}
}

func transportCredentials() credentials.TransportCredentials {
	return credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
}

// BuildGrpcSpanExporter returns a Builder that creates an OTLP span exporter using
// gRPC transport. target is the host:port of the collector. TLS is used unless
// insecure is set to true.
func BuildGrpcSpanExporter(
	target config.Reader[string],
	headers config.Reader[map[string]string],
	insecure config.Reader[bool],
) otelboot.BuilderFunc[*otlptrace.Exporter] {
	return func(ctx context.Context) (*otlptrace.Exporter, error) {
		t, err := config.Read(ctx, target)
		if err != nil {
			return nil, err
		}
		h, err := config.Read(ctx, config.Default(map[string]string{}, headers))
		if err != nil {
			return nil, err
		}
		plaintext, err := config.Read(ctx, config.Default(false, insecure))
		if err != nil {
			return nil, err
		}

		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(t),
			otlptracegrpc.WithHeaders(h),
		}
		if plaintext {
			opts = append(opts, otlptracegrpc.WithInsecure())
		} else {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(transportCredentials()))
		}
		return otlptracegrpc.New(ctx, opts...)
	}
}

// BuildGrpcMetricExporter returns a Builder that creates an OTLP metric exporter using
// gRPC transport. target is the host:port of the collector. TLS is used unless
// insecure is set to true.
func BuildGrpcMetricExporter(
	target config.Reader[string],
	headers config.Reader[map[string]string],
	insecure config.Reader[bool],
) otelboot.BuilderFunc[*otlpmetricgrpc.Exporter] {
	return func(ctx context.Context) (*otlpmetricgrpc.Exporter, error) {
		t, err := config.Read(ctx, target)
		if err != nil {
			return nil, err
		}
		h, err := config.Read(ctx, config.Default(map[string]string{}, headers))
		if err != nil {
			return nil, err
		}
		plaintext, err := config.Read(ctx, config.Default(false, insecure))
		if err != nil {
			return nil, err
		}

		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(t),
			otlpmetricgrpc.WithHeaders(h),
		}
		if plaintext {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		} else {
			opts = append(opts, otlpmetricgrpc.WithTLSCredentials(transportCredentials()))
		}
		return otlpmetricgrpc.New(ctx, opts...)
	}
}
