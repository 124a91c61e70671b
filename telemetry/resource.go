// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"

	"github.com/z5labs/otelboot"
	"github.com/z5labs/otelboot/config"
	"github.com/z5labs/otelboot/device"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// BuildResource returns a [otelboot.Builder] for the [resource.Resource]
// identifying the application instance running on info.
//
// The resource carries exactly the service name, OS name, OS version,
// service version and device id. Any failed query fails the build and
// no resource is returned.
func BuildResource(serviceName config.Reader[string], info device.Info) otelboot.Builder[*resource.Resource] {
	return otelboot.BuilderFunc[*resource.Resource](func(ctx context.Context) (*resource.Resource, error) {
		name, err := config.Read(ctx, serviceName)
		if err != nil {
			return nil, err
		}

		deviceID, err := device.Query(ctx, "device_id", info.DeviceID)
		if err != nil {
			return nil, err
		}

		osVersion, err := device.Query(ctx, "os_version", info.OSVersion)
		if err != nil {
			return nil, err
		}

		appVersion, err := device.Query(ctx, "app_version", info.AppVersion)
		if err != nil {
			return nil, err
		}

		r := resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(name),
			semconv.OSName(info.Platform().String()),
			semconv.OSVersion(osVersion),
			semconv.ServiceVersion(appVersion),
			semconv.DeviceID(deviceID),
		)
		return r, nil
	})
}
