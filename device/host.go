// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"context"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Host is an [Info] backed by the machine the process runs on. It is
// never an emulator.
type Host struct {
	// Version of the running application.
	Version string

	// IDFile optionally names a file holding a stable device id,
	// e.g. /etc/machine-id. When it can not be read a random id is
	// generated once per process.
	IDFile string

	once sync.Once
	id   string
}

// Platform implements the [Info] interface.
func (h *Host) Platform() Platform {
	return Platform(runtime.GOOS)
}

// IsEmulator implements the [Info] interface.
func (h *Host) IsEmulator(ctx context.Context) (bool, error) {
	return false, nil
}

// DeviceID implements the [Info] interface.
func (h *Host) DeviceID(ctx context.Context) (string, error) {
	h.once.Do(func() {
		if h.IDFile != "" {
			b, err := os.ReadFile(h.IDFile)
			if err == nil && len(strings.TrimSpace(string(b))) > 0 {
				h.id = strings.TrimSpace(string(b))
				return
			}
		}
		h.id = uuid.NewString()
	})
	return h.id, nil
}

// OSVersion implements the [Info] interface. Only linux exposes its
// kernel release; other platforms report "unknown".
func (h *Host) OSVersion(ctx context.Context) (string, error) {
	b, err := os.ReadFile("/proc/sys/kernel/osrelease")
	if err != nil {
		return "unknown", nil
	}
	if v := strings.TrimSpace(string(b)); v != "" {
		return v, nil
	}
	return "unknown", nil
}

// AppVersion implements the [Info] interface.
func (h *Host) AppVersion(ctx context.Context) (string, error) {
	return h.Version, nil
}
