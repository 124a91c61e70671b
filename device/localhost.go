// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import "context"

const (
	// EmulatorLoopback is the address the Android emulator maps to the
	// loopback interface of its host machine.
	EmulatorLoopback = "10.0.2.2"

	Loopback = "localhost"
)

// EmulatorQuery reports whether the process runs inside an emulator.
type EmulatorQuery func(context.Context) (bool, error)

// Localhost returns the host which reaches a collector running on the
// developer machine. The emulator query is only consulted on [Android].
func Localhost(ctx context.Context, platform Platform, isEmulator EmulatorQuery) (string, error) {
	if platform != Android {
		return Loopback, nil
	}

	emulated, err := isEmulator(ctx)
	if err != nil {
		return "", QueryError{Query: "is_emulator", Cause: err}
	}
	if emulated {
		return EmulatorLoopback, nil
	}
	return Loopback, nil
}

// LocalhostOf is [Localhost] with the platform and emulator query taken from info.
func LocalhostOf(ctx context.Context, info Info) (string, error) {
	return Localhost(ctx, info.Platform(), info.IsEmulator)
}
