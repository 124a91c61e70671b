// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package collector describes where telemetry is submitted to.
package collector

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/z5labs/otelboot"
	"github.com/z5labs/otelboot/config"
	"github.com/z5labs/otelboot/device"
)

const (
	TracesPath  = "/v1/traces"
	MetricsPath = "/v1/metrics"
)

// ErrIncompleteEndpoint is returned when no collector base URL is configured.
var ErrIncompleteEndpoint = errors.New("collector endpoint is incomplete")

// InvalidEndpointError is returned when the base URL is not an absolute URL.
type InvalidEndpointError struct {
	Base  string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e InvalidEndpointError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("invalid collector endpoint: %q", e.Base)
	}
	return fmt.Sprintf("invalid collector endpoint: %q: %s", e.Base, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InvalidEndpointError) Unwrap() error {
	return e.Cause
}

// Endpoint is the base URL of an OTLP collector. The submission URLs are
// always derived from it.
type Endpoint struct {
	Base string
}

func (e Endpoint) join(path string) string {
	base := strings.TrimRight(strings.TrimSpace(e.Base), "/")
	if base == "" {
		return ""
	}
	return base + path
}

// TracesURL returns the URL spans are submitted to.
func (e Endpoint) TracesURL() string {
	return e.join(TracesPath)
}

// MetricsURL returns the URL metrics are submitted to.
func (e Endpoint) MetricsURL() string {
	return e.join(MetricsPath)
}

// Validate reports whether both submission URLs can be derived from the base.
func (e Endpoint) Validate() error {
	if e.TracesURL() == "" || e.MetricsURL() == "" {
		return ErrIncompleteEndpoint
	}

	u, err := url.Parse(strings.TrimSpace(e.Base))
	if err != nil {
		return InvalidEndpointError{Base: e.Base, Cause: err}
	}
	if !u.IsAbs() || u.Host == "" {
		return InvalidEndpointError{Base: e.Base}
	}
	return nil
}

// Host returns host:port of the base URL.
func (e Endpoint) Host() string {
	u, err := url.Parse(strings.TrimSpace(e.Base))
	if err != nil {
		return ""
	}
	return u.Host
}

// BuildEndpoint returns a [otelboot.Builder] for a validated [Endpoint].
// An unset base fails with [ErrIncompleteEndpoint].
func BuildEndpoint(base config.Reader[string]) otelboot.Builder[Endpoint] {
	return otelboot.BuilderFunc[Endpoint](func(ctx context.Context) (Endpoint, error) {
		s, err := config.Read(ctx, base)
		if errors.Is(err, config.ErrValueNotSet) {
			return Endpoint{}, ErrIncompleteEndpoint
		}
		if err != nil {
			return Endpoint{}, err
		}

		e := Endpoint{Base: s}
		if err := e.Validate(); err != nil {
			return Endpoint{}, err
		}
		return e, nil
	})
}

// LocalEndpoint returns the [Endpoint] of a collector listening on port of
// the developer machine, as seen from the device described by info.
func LocalEndpoint(ctx context.Context, info device.Info, port int) (Endpoint, error) {
	host, err := device.LocalhostOf(ctx, info)
	if err != nil {
		return Endpoint{}, err
	}
	u := url.URL{
		Scheme: "http",
		Host:   host + ":" + strconv.Itoa(port),
	}
	return Endpoint{Base: u.String()}, nil
}
