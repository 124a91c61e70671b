// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/z5labs/otelboot/config"
	"github.com/z5labs/otelboot/telemetry"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override,
// e.g. OTELBOOT_COLLECTOR_ENDPOINT.
const EnvPrefix = "OTELBOOT"

// Protocol is the transport telemetry is submitted to the collector with.
type Protocol string

const (
	HTTP Protocol = "http"
	GRPC Protocol = "grpc"
)

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
func (p *Protocol) UnmarshalText(b []byte) error {
	switch s := Protocol(strings.ToLower(strings.TrimSpace(string(b)))); s {
	case HTTP, GRPC:
		*p = s
		return nil
	default:
		return fmt.Errorf("unknown collector protocol: %q", string(b))
	}
}

// Config captures every knob of the telemetry bootstrap.
type Config struct {
	Service    ServiceConfig    `config:"service"`
	Collector  CollectorConfig  `config:"collector"`
	Traces     TracesConfig     `config:"traces"`
	Metrics    MetricsConfig    `config:"metrics"`
	Instrument InstrumentConfig `config:"instrument"`
	Logging    LoggingConfig    `config:"logging"`
}

// ServiceConfig identifies the application.
type ServiceConfig struct {
	Name string `config:"name"`
}

// CollectorConfig says where and how telemetry is submitted.
type CollectorConfig struct {
	// Endpoint is the base URL of the collector. When empty and Local is
	// set, a collector on the developer machine is used instead.
	Endpoint string `config:"endpoint"`
	Local    bool   `config:"local"`
	Port     int    `config:"port"`

	Protocol Protocol          `config:"protocol"`
	Token    string            `config:"token"`
	Headers  map[string]string `config:"headers"`
	Insecure bool              `config:"insecure"`
	Timeout  time.Duration     `config:"timeout"`

	Breaker BreakerConfig `config:"breaker"`
}

// BreakerConfig tunes the circuit breaker guarding the collector. TripOn
// lists the status codes counted as failures, empty means 429 and 5xx
// gateway errors.
type BreakerConfig struct {
	TripAfter        uint32        `config:"trip_after"`
	TripOn           []int         `config:"trip_on"`
	OpenTimeout      time.Duration `config:"open_timeout"`
	HalfOpenRequests uint32        `config:"half_open_requests"`
	ResetInterval    time.Duration `config:"reset_interval"`
}

type TracesConfig struct {
	Console     bool    `config:"console"`
	Batch       bool    `config:"batch"`
	SampleRatio float64 `config:"sample_ratio"`
}

type MetricsConfig struct {
	Interval time.Duration `config:"interval"`
	Attach   bool          `config:"attach"`
	Console  bool          `config:"console"`
}

type InstrumentConfig struct {
	DefaultClient    bool `config:"default_client"`
	DefaultTransport bool `config:"default_transport"`
}

type LoggingConfig struct {
	Development bool `config:"development"`
}

// LoadConfig builds a [Config] from the following sources, in increasing
// precedence:
//
//   - built in defaults
//   - the standard OpenTelemetry environment variables, see [OtelEnv]
//   - the optional file at path
//   - OTELBOOT_ prefixed environment variables
//
// The collector token is read from collector.token or, if that is empty,
// from the file named by collector.token_file.
func LoadConfig(path string) (Config, error) {
	ctx := context.Background()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := setDefaults(ctx, v); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := config.Unmarshal(v.AllSettings(), &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	token, err := config.Read(ctx, config.Or(
		config.NonEmpty(config.ViperString(v, "collector.token")),
		config.Bind(
			config.NonEmpty(config.ViperString(v, "collector.token_file")),
			func(ctx context.Context, path string) config.Reader[string] {
				return config.TrimmedString(config.ReadFile(path))
			},
		),
	))
	if err != nil && !errors.Is(err, config.ErrValueNotSet) {
		return Config{}, fmt.Errorf("read collector token: %w", err)
	}
	cfg.Collector.Token = token

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Standard OpenTelemetry environment variables honored by [LoadConfig].
const (
	EnvServiceName    = "OTEL_SERVICE_NAME"
	EnvOtlpEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvOtlpProtocol   = "OTEL_EXPORTER_OTLP_PROTOCOL"
	EnvOtlpInsecure   = "OTEL_EXPORTER_OTLP_INSECURE"
	EnvOtlpHeaders    = "OTEL_EXPORTER_OTLP_HEADERS"
	EnvSamplerArg     = "OTEL_TRACES_SAMPLER_ARG"
	EnvMetricInterval = "OTEL_METRIC_EXPORT_INTERVAL"
)

// OtelEnv holds the configuration derived from the standard OpenTelemetry
// environment variables. They replace the built in defaults and are
// themselves overridden by the config file and OTELBOOT_ variables.
type OtelEnv struct {
	ServiceName    config.Reader[string]
	Endpoint       config.Reader[string]
	Protocol       config.Reader[Protocol]
	Insecure       config.Reader[bool]
	Headers        config.Reader[map[string]string]
	SampleRatio    config.Reader[float64]
	MetricInterval config.Reader[time.Duration]
}

// ReadOtelEnv returns readers for the standard OpenTelemetry environment
// variables.
func ReadOtelEnv() OtelEnv {
	return OtelEnv{
		ServiceName: config.Env(EnvServiceName),
		Endpoint:    config.Env(EnvOtlpEndpoint),
		Protocol:    config.Map(config.Env(EnvOtlpProtocol), parseOtlpProtocol),
		Insecure:    config.BoolFromString(config.Env(EnvOtlpInsecure)),
		Headers:     config.Map(config.Env(EnvOtlpHeaders), parseOtlpHeaders),
		SampleRatio: config.Float64FromString(config.Env(EnvSamplerArg)),
		MetricInterval: config.Map(
			config.IntFromString(config.Env(EnvMetricInterval)),
			func(ctx context.Context, ms int) (time.Duration, error) {
				return time.Duration(ms) * time.Millisecond, nil
			},
		),
	}
}

func parseOtlpProtocol(ctx context.Context, s string) (Protocol, error) {
	switch strings.TrimSpace(s) {
	case "grpc":
		return GRPC, nil
	case "http/protobuf":
		return HTTP, nil
	default:
		return "", fmt.Errorf("unsupported otlp protocol: %q", s)
	}
}

// parseOtlpHeaders parses a comma separated list of key=value pairs with
// url encoded values.
func parseOtlpHeaders(ctx context.Context, s string) (map[string]string, error) {
	headers := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		k, val, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("malformed otlp header: %q", pair)
		}
		val, err := url.QueryUnescape(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("malformed otlp header value for %s: %w", k, err)
		}
		headers[k] = val
	}
	return headers, nil
}

func setDefaults(ctx context.Context, v *viper.Viper) error {
	v.SetDefault("collector.local", false)
	v.SetDefault("collector.port", 4318)
	v.SetDefault("collector.timeout", "10s")
	v.SetDefault("collector.breaker.trip_after", 5)
	v.SetDefault("collector.breaker.open_timeout", "30s")
	v.SetDefault("collector.breaker.half_open_requests", 1)
	v.SetDefault("collector.breaker.reset_interval", "0s")
	v.SetDefault("traces.console", true)
	v.SetDefault("traces.batch", false)
	v.SetDefault("metrics.attach", false)
	v.SetDefault("metrics.console", false)
	v.SetDefault("instrument.default_client", true)
	v.SetDefault("instrument.default_transport", true)
	v.SetDefault("logging.development", false)

	_ = v.BindEnv("collector.token")
	_ = v.BindEnv("collector.token_file")

	env := ReadOtelEnv()
	headers, err := config.Read(ctx, config.Default(map[string]string{}, env.Headers))
	if err != nil {
		return fmt.Errorf("%s: %w", EnvOtlpHeaders, err)
	}
	if len(headers) > 0 {
		m := make(map[string]any, len(headers))
		for k, val := range headers {
			m[k] = val
		}
		v.SetDefault("collector.headers", m)
	}

	return errors.Join(
		envDefault(ctx, v, "service.name", "otelboot-app", EnvServiceName, env.ServiceName),
		envDefault(ctx, v, "collector.endpoint", "", EnvOtlpEndpoint, env.Endpoint),
		envDefault(ctx, v, "collector.protocol", HTTP, EnvOtlpProtocol, env.Protocol),
		envDefault(ctx, v, "collector.insecure", false, EnvOtlpInsecure, env.Insecure),
		envDefault(ctx, v, "traces.sample_ratio", 1.0, EnvSamplerArg, env.SampleRatio),
		envDefault(ctx, v, "metrics.interval", telemetry.DefaultMetricInterval, EnvMetricInterval, env.MetricInterval),
	)
}

func envDefault[T any](ctx context.Context, v *viper.Viper, key string, def T, name string, r config.Reader[T]) error {
	val, err := config.Read(ctx, config.Default(def, r))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	v.SetDefault(key, val)
	return nil
}

// Validate enforces required values and reasonable limits. A missing
// collector endpoint is not an error here, bootstrapping reports it.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Service.Name) == "" {
		return errors.New("service.name must be set")
	}
	if c.Collector.Local && (c.Collector.Port <= 0 || c.Collector.Port > 65535) {
		return fmt.Errorf("collector.port must be within 1-65535 when collector.local is set")
	}
	if c.Collector.Protocol != HTTP && c.Collector.Protocol != GRPC {
		return fmt.Errorf("collector.protocol must be %q or %q", HTTP, GRPC)
	}
	if c.Collector.Timeout < 0 {
		return errors.New("collector.timeout must be >= 0")
	}
	if c.Collector.Breaker.TripAfter == 0 {
		return errors.New("collector.breaker.trip_after must be > 0")
	}
	for _, code := range c.Collector.Breaker.TripOn {
		if code < 100 || code > 599 {
			return fmt.Errorf("collector.breaker.trip_on contains an invalid status code: %d", code)
		}
	}
	if c.Traces.SampleRatio < 0 || c.Traces.SampleRatio > 1 {
		return errors.New("traces.sample_ratio must be within 0-1")
	}
	if c.Metrics.Interval <= 0 {
		return errors.New("metrics.interval must be > 0")
	}
	return nil
}
