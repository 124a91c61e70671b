// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/z5labs/otelboot/config"
	"github.com/z5labs/otelboot/device"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestBuildResource(t *testing.T) {
	t.Run("will only contain the five identifying keys", func(t *testing.T) {
		info := device.Static{
			OS:      device.Android,
			ID:      "device-1",
			Version: "14",
			App:     "2.3.0",
		}

		r, err := BuildResource(config.ReaderOf("checkout"), info).Build(context.Background())
		require.Nil(t, err)
		require.Equal(t, 5, r.Len())

		expected := map[attribute.Key]string{
			"service.name":    "checkout",
			"os.name":         "android",
			"os.version":      "14",
			"service.version": "2.3.0",
			"device.id":       "device-1",
		}
		for _, kv := range r.Attributes() {
			v, ok := expected[kv.Key]
			require.True(t, ok, "unexpected key: %s", kv.Key)
			require.Equal(t, v, kv.Value.AsString())
		}
	})

	t.Run("will not return a partial resource if a query fails", func(t *testing.T) {
		queryErr := errors.New("metadata unavailable")
		info := device.Static{OS: device.IOS, Err: queryErr}

		r, err := BuildResource(config.ReaderOf("checkout"), info).Build(context.Background())
		require.Nil(t, r)

		var qe device.QueryError
		require.ErrorAs(t, err, &qe)
		require.Equal(t, "device_id", qe.Query)
		require.ErrorIs(t, err, queryErr)
	})

	t.Run("will fail if the service name is not set", func(t *testing.T) {
		r, err := BuildResource(config.Env("OTELBOOT_TEST_UNSET_SERVICE"), device.Static{}).Build(context.Background())
		require.Nil(t, r)
		require.ErrorIs(t, err, config.ErrValueNotSet)
	})
}
