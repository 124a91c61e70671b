// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestHost_DeviceID(t *testing.T) {
	t.Run("will read the id from the id file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "machine-id")
		require.Nil(t, os.WriteFile(path, []byte("abc123\n"), 0o600))

		h := &Host{IDFile: path}
		id, err := h.DeviceID(context.Background())
		require.Nil(t, err)
		require.Equal(t, "abc123", id)
	})

	t.Run("will generate a stable uuid if the id file is missing", func(t *testing.T) {
		h := &Host{IDFile: filepath.Join(t.TempDir(), "missing")}

		first, err := h.DeviceID(context.Background())
		require.Nil(t, err)

		_, err = uuid.Parse(first)
		require.Nil(t, err)

		second, err := h.DeviceID(context.Background())
		require.Nil(t, err)
		require.Equal(t, first, second)
	})
}

func TestHost(t *testing.T) {
	h := &Host{Version: "1.2.3"}

	emulated, err := h.IsEmulator(context.Background())
	require.Nil(t, err)
	require.False(t, emulated)

	version, err := h.AppVersion(context.Background())
	require.Nil(t, err)
	require.Equal(t, "1.2.3", version)

	osVersion, err := h.OSVersion(context.Background())
	require.Nil(t, err)
	require.NotEmpty(t, osVersion)
	require.NotEmpty(t, h.Platform().String())
}
