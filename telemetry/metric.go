// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"
	"time"

	"github.com/z5labs/otelboot"
	"github.com/z5labs/otelboot/config"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultMetricInterval is how often a periodic reader pushes metrics
// when no interval is configured.
const DefaultMetricInterval = 60 * time.Second

// BuildPeriodicReader returns a [otelboot.Builder] for a reader which
// collects and pushes metrics to the exporter on a fixed interval.
//
// The reader exports nothing until it is attached to a meter provider,
// see [Telemetry.AttachMetrics]. Its ticker still runs while unattached and
// reports [sdkmetric.ErrReaderNotRegistered] to the otel error handler on
// every interval. That error means metrics are being dropped, not that the
// collector failed.
func BuildPeriodicReader[E sdkmetric.Exporter](
	exporterB otelboot.Builder[E],
	interval config.Reader[time.Duration],
) otelboot.Builder[*sdkmetric.PeriodicReader] {
	return otelboot.BuilderFunc[*sdkmetric.PeriodicReader](func(ctx context.Context) (*sdkmetric.PeriodicReader, error) {
		d, err := config.Read(ctx, config.Default(DefaultMetricInterval, interval))
		if err != nil {
			return nil, err
		}

		exp, err := exporterB.Build(ctx)
		if err != nil {
			return nil, err
		}

		return sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(d)), nil
	})
}
