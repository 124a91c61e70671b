// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bootstrap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/z5labs/otelboot"
	"github.com/z5labs/otelboot/collector"
	"github.com/z5labs/otelboot/config"
	"github.com/z5labs/otelboot/device"
	"github.com/z5labs/otelboot/httpclient"
	"github.com/z5labs/otelboot/instrument"
	"github.com/z5labs/otelboot/lifecycle"
	"github.com/z5labs/otelboot/telemetry"
	"github.com/z5labs/otelboot/telemetry/otlp"
	"github.com/z5labs/otelboot/telemetry/stdout"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// PipelineOption customizes the pipeline returned by [Pipeline].
type PipelineOption func(*pipelineOptions)

type pipelineOptions struct {
	log      *zap.Logger
	registry *telemetry.Registry
	console  io.Writer

	spanExporter   func(collector.Endpoint) otelboot.Builder[sdktrace.SpanExporter]
	metricExporter func(collector.Endpoint) otelboot.Builder[sdkmetric.Exporter]
}

// PipelineLogger sets the logger each construction step is reported to.
func PipelineLogger(l *zap.Logger) PipelineOption {
	return func(po *pipelineOptions) {
		po.log = l
	}
}

// PipelineRegistry sets the [telemetry.Registry] the providers are
// registered with. Defaults to [telemetry.DefaultRegistry].
func PipelineRegistry(r *telemetry.Registry) PipelineOption {
	return func(po *pipelineOptions) {
		po.registry = r
	}
}

// Console sets where the console sinks write to. Defaults to [os.Stdout].
func Console(w io.Writer) PipelineOption {
	return func(po *pipelineOptions) {
		po.console = w
	}
}

// RemoteSpanExporter replaces the OTLP span exporter.
func RemoteSpanExporter(f func(collector.Endpoint) otelboot.Builder[sdktrace.SpanExporter]) PipelineOption {
	return func(po *pipelineOptions) {
		po.spanExporter = f
	}
}

// RemoteMetricExporter replaces the OTLP metric exporter.
func RemoteMetricExporter(f func(collector.Endpoint) otelboot.Builder[sdkmetric.Exporter]) PipelineOption {
	return func(po *pipelineOptions) {
		po.metricExporter = f
	}
}

// Pipeline returns a [otelboot.Builder] which constructs the complete
// telemetry pipeline for the application running on info.
//
// The [telemetry.Registry] is reserved before anything else, so a second
// pipeline in the same process fails with [telemetry.ErrAlreadyRegistered]
// without querying the device or constructing any exporter. Then the
// steps run in order: resource, propagator, collector endpoint, span
// processors, tracer provider, metric reader, global registration,
// instrumentation and finally the optional meter provider. The endpoint is
// resolved before any exporter is constructed and nothing is registered
// unless every exporter could be constructed. Any failure gives the
// reservation back.
//
// If the context carries a [lifecycle.Context], a single teardown action is
// registered which removes instrumentation, shuts the providers down and
// releases the registry, in that order.
func Pipeline(cfg Config, info device.Info, opts ...PipelineOption) otelboot.Builder[*telemetry.Telemetry] {
	po := &pipelineOptions{
		log:      zap.NewNop(),
		registry: telemetry.DefaultRegistry,
		console:  os.Stdout,
	}
	for _, opt := range opts {
		opt(po)
	}
	client := collectorClient(cfg, po.log)
	if po.spanExporter == nil {
		po.spanExporter = remoteSpanExporter(cfg, client)
	}
	if po.metricExporter == nil {
		po.metricExporter = remoteMetricExporter(cfg, client)
	}

	p := &pipeline{
		cfg:  cfg,
		info: info,
		opts: po,
		log:  po.log.Named("pipeline"),
	}
	return otelboot.BuilderFunc[*telemetry.Telemetry](p.build)
}

type pipeline struct {
	cfg  Config
	info device.Info
	opts *pipelineOptions
	log  *zap.Logger
}

func (p *pipeline) build(ctx context.Context) (_ *telemetry.Telemetry, err error) {
	slot, err := p.opts.registry.Reserve()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			slot.Release()
		}
	}()

	lc, ok := lifecycle.FromContext(ctx)
	if !ok {
		lc = &lifecycle.Context{}
	}

	resourceB := otelboot.MemoizeBuilder(telemetry.BuildResource(
		config.NonEmpty(config.ReaderOf(p.cfg.Service.Name)),
		p.info,
	))
	res, err := resourceB.Build(ctx)
	if err != nil {
		return nil, err
	}
	p.log.Debug("built resource", zap.Int("attributes", res.Len()))

	prop, err := telemetry.BuildCompositePropagator(telemetry.DefaultPropagators()...).Build(ctx)
	if err != nil {
		return nil, err
	}
	p.log.Debug("built propagator", zap.Strings("fields", prop.Fields()))

	endpoint, err := p.endpoint(ctx)
	if err != nil {
		p.log.Error("collector endpoint is not usable, no exporter will be constructed", zap.Error(err))
		return nil, err
	}
	p.log.Debug(
		"resolved collector endpoint",
		zap.String("traces_url", endpoint.TracesURL()),
		zap.String("metrics_url", endpoint.MetricsURL()),
	)

	tp, err := telemetry.BuildTracerProvider(
		resourceB,
		telemetry.BuildTraceIDRatioBasedSampler(config.ReaderOf(p.cfg.Traces.SampleRatio)),
		telemetry.BuildSpanProcessors(p.spanProcessors(endpoint)...),
	).Build(ctx)
	if err != nil {
		return nil, err
	}
	p.log.Debug("built tracer provider")

	reader, err := telemetry.BuildPeriodicReader(
		p.metricExporter(endpoint),
		config.ReaderOf(p.cfg.Metrics.Interval),
	).Build(ctx)
	if err != nil {
		return nil, errors.Join(err, tp.Shutdown(ctx))
	}
	p.log.Debug("built metric reader", zap.Duration("interval", p.cfg.Metrics.Interval))

	tel := telemetry.New(res, prop, tp, reader)
	slot.Register(tp, prop)
	p.log.Debug("registered tracer provider and propagator")

	instrs := p.instrumentations()
	ierr := instrument.Register(instrument.Options{TracerProvider: tp, Propagators: prop}, instrs...)
	if ierr != nil {
		p.log.Warn("failed to activate instrumentation", zap.Error(ierr))
	}

	lc.OnTeardown(lifecycle.MultiHook(
		lifecycle.HookFunc(func(ctx context.Context) error {
			if len(instrs) > 0 {
				instrument.Restore()
			}
			return nil
		}),
		lifecycle.HookFunc(tel.Shutdown),
		lifecycle.HookFunc(func(ctx context.Context) error {
			slot.Release()
			return nil
		}),
	))

	if !p.cfg.Metrics.Attach {
		p.log.Info(
			"metric reader not attached, metrics will be dropped",
			zap.Duration("interval", p.cfg.Metrics.Interval),
		)
		return tel, nil
	}
	aerr := tel.AttachMetrics(p.opts.registry)
	if aerr != nil {
		p.log.Warn("failed to register meter provider", zap.Error(aerr))
	}
	return tel, nil
}

func (p *pipeline) endpoint(ctx context.Context) (collector.Endpoint, error) {
	base := config.NonEmpty(config.ReaderOf(p.cfg.Collector.Endpoint))
	if p.cfg.Collector.Local && p.cfg.Collector.Endpoint == "" {
		base = config.ReaderFunc[string](func(ctx context.Context) (config.Value[string], error) {
			e, err := collector.LocalEndpoint(ctx, p.info, p.cfg.Collector.Port)
			if err != nil {
				return config.Value[string]{}, err
			}
			return config.ValueOf(e.Base), nil
		})
	}
	return collector.BuildEndpoint(base).Build(ctx)
}

func (p *pipeline) spanProcessors(endpoint collector.Endpoint) []otelboot.Builder[sdktrace.SpanProcessor] {
	var sps []otelboot.Builder[sdktrace.SpanProcessor]
	if p.cfg.Traces.Console {
		sps = append(sps, telemetry.BuildSimpleSpanProcessor(
			stdout.BuildSpanExporter(otelboot.BuilderOf(p.opts.console)),
		))
	}

	remote := p.opts.spanExporter(endpoint)
	if p.cfg.Traces.Batch {
		return append(sps, telemetry.BuildBatchSpanProcessor(remote))
	}
	return append(sps, telemetry.BuildSimpleSpanProcessor(remote))
}

func (p *pipeline) metricExporter(endpoint collector.Endpoint) otelboot.Builder[sdkmetric.Exporter] {
	if p.cfg.Metrics.Console {
		return stdout.BuildMetricExporter(otelboot.BuilderOf(p.opts.console))
	}
	return p.opts.metricExporter(endpoint)
}

func (p *pipeline) instrumentations() []instrument.Instrumentation {
	var instrs []instrument.Instrumentation
	if p.cfg.Instrument.DefaultClient {
		instrs = append(instrs, instrument.DefaultClient{})
	}
	if p.cfg.Instrument.DefaultTransport {
		instrs = append(instrs, instrument.DefaultTransport{})
	}
	return instrs
}

func collectorHeaders(cfg Config) config.Reader[map[string]string] {
	return otlp.BearerHeaders(
		config.ReaderOf(cfg.Collector.Headers),
		config.NonEmpty(config.ReaderOf(cfg.Collector.Token)),
	)
}

func collectorClient(cfg Config, log *zap.Logger) otelboot.Builder[*http.Client] {
	return otelboot.MemoizeBuilder(httpclient.Build(
		httpclient.Name("collector"),
		httpclient.Logger(log.Named("collector")),
		httpclient.RoundTripper(instrument.BaseTransport()),
		httpclient.Timeout(cfg.Collector.Timeout),
		httpclient.TripAfter(cfg.Collector.Breaker.TripAfter),
		httpclient.TripOn(cfg.Collector.Breaker.TripOn...),
		httpclient.OpenStateTimeout(cfg.Collector.Breaker.OpenTimeout),
		httpclient.HalfOpenRequests(cfg.Collector.Breaker.HalfOpenRequests),
		httpclient.CountResetInterval(cfg.Collector.Breaker.ResetInterval),
	))
}

func remoteSpanExporter(cfg Config, client otelboot.Builder[*http.Client]) func(collector.Endpoint) otelboot.Builder[sdktrace.SpanExporter] {
	return func(e collector.Endpoint) otelboot.Builder[sdktrace.SpanExporter] {
		if cfg.Collector.Protocol == GRPC {
			return otelboot.Map(
				otlp.BuildGrpcSpanExporter(
					config.ReaderOf(e.Host()),
					collectorHeaders(cfg),
					config.ReaderOf(cfg.Collector.Insecure),
				),
				toSpanExporter[*otlptrace.Exporter],
			)
		}
		return otelboot.Map(
			otlp.BuildHttpSpanExporter(
				config.ReaderOf(e.TracesURL()),
				collectorHeaders(cfg),
				client,
			),
			toSpanExporter[*otlptrace.Exporter],
		)
	}
}

func remoteMetricExporter(cfg Config, client otelboot.Builder[*http.Client]) func(collector.Endpoint) otelboot.Builder[sdkmetric.Exporter] {
	return func(e collector.Endpoint) otelboot.Builder[sdkmetric.Exporter] {
		if cfg.Collector.Protocol == GRPC {
			return otelboot.Map(
				otlp.BuildGrpcMetricExporter(
					config.ReaderOf(e.Host()),
					collectorHeaders(cfg),
					config.ReaderOf(cfg.Collector.Insecure),
				),
				toMetricExporter[*otlpmetricgrpc.Exporter],
			)
		}
		return otelboot.Map(
			otlp.BuildHttpMetricExporter(
				config.ReaderOf(e.MetricsURL()),
				collectorHeaders(cfg),
				client,
			),
			toMetricExporter[*otlpmetrichttp.Exporter],
		)
	}
}

func toSpanExporter[E sdktrace.SpanExporter](e E) (sdktrace.SpanExporter, error) {
	return e, nil
}

func toMetricExporter[E sdkmetric.Exporter](e E) (sdkmetric.Exporter, error) {
	return e, nil
}
