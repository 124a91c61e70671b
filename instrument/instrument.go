// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package instrument activates automatic tracing of outbound HTTP calls
// made through the net/http package level defaults.
//
// Activation is not idempotent. Activating the same [Instrumentation]
// twice wraps the transport twice and every request is then recorded
// as two spans. Callers are expected to activate each mechanism once.
package instrument

import (
	"errors"
	"net/http"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var (
	mu sync.Mutex

	// uninstrumented defaults, captured before anything could wrap them
	baseTransport   = http.DefaultTransport
	clientTransport = http.DefaultClient.Transport
)

// Options configures the spans recorded by an [Instrumentation]. Unset
// fields fall back to the OpenTelemetry globals.
type Options struct {
	TracerProvider trace.TracerProvider
	Propagators    propagation.TextMapPropagator
}

func (o Options) transport(base http.RoundTripper) http.RoundTripper {
	var opts []otelhttp.Option
	if o.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(o.TracerProvider))
	}
	if o.Propagators != nil {
		opts = append(opts, otelhttp.WithPropagators(o.Propagators))
	}
	return otelhttp.NewTransport(base, opts...)
}

// Instrumentation is a process wide mechanism for recording outbound calls.
type Instrumentation interface {
	Name() string
	Activate(Options) error
}

// Register activates every instrumentation in order. A failed activation
// does not stop the remaining ones.
func Register(opts Options, instrs ...Instrumentation) error {
	var errs []error
	for _, instr := range instrs {
		if err := instr.Activate(opts); err != nil {
			errs = append(errs, ActivationError{Name: instr.Name(), Cause: err})
		}
	}
	return errors.Join(errs...)
}

// ActivationError is returned by [Register] for every [Instrumentation]
// which failed to activate.
type ActivationError struct {
	Name  string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e ActivationError) Error() string {
	return "failed to activate " + e.Name + " instrumentation: " + e.Cause.Error()
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ActivationError) Unwrap() error {
	return e.Cause
}

// DefaultClient instruments [http.DefaultClient], which backs the package
// level helpers like [http.Get] and [http.Post].
type DefaultClient struct{}

// Name implements the [Instrumentation] interface.
func (DefaultClient) Name() string {
	return "http.DefaultClient"
}

// Activate implements the [Instrumentation] interface.
func (DefaultClient) Activate(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	base := http.DefaultClient.Transport
	if base == nil {
		base = baseTransport
	}
	http.DefaultClient.Transport = opts.transport(base)
	return nil
}

// DefaultTransport instruments [http.DefaultTransport], which is used by
// every [http.Client] without its own Transport.
type DefaultTransport struct{}

// Name implements the [Instrumentation] interface.
func (DefaultTransport) Name() string {
	return "http.DefaultTransport"
}

// Activate implements the [Instrumentation] interface.
func (DefaultTransport) Activate(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	http.DefaultTransport = opts.transport(http.DefaultTransport)
	return nil
}

// Restore undoes every activation.
func Restore() {
	mu.Lock()
	defer mu.Unlock()

	http.DefaultTransport = baseTransport
	http.DefaultClient.Transport = clientTransport
}

// BaseTransport returns the uninstrumented [http.DefaultTransport]. Clients
// which must never be traced, like the one submitting telemetry, use it.
func BaseTransport() http.RoundTripper {
	return baseTransport
}
