// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"context"
	"fmt"
)

// Platform identifies the operating system an application is running on.
type Platform string

const (
	Android Platform = "android"
	IOS     Platform = "ios"
	Linux   Platform = "linux"
	Darwin  Platform = "darwin"
	Windows Platform = "windows"
)

// String implements the [fmt.Stringer] interface.
func (p Platform) String() string {
	return string(p)
}

// Info is a source of platform metadata. Every query may block on the
// underlying platform and may fail.
type Info interface {
	Platform() Platform
	IsEmulator(context.Context) (bool, error)
	DeviceID(context.Context) (string, error)
	OSVersion(context.Context) (string, error)
	AppVersion(context.Context) (string, error)
}

// QueryError is returned when a metadata query against an [Info] fails.
type QueryError struct {
	Query string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e QueryError) Error() string {
	return fmt.Sprintf("device query %s failed: %s", e.Query, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e QueryError) Unwrap() error {
	return e.Cause
}

// Query calls f and wraps any failure in a [QueryError] named name.
func Query(ctx context.Context, name string, f func(context.Context) (string, error)) (string, error) {
	s, err := f(ctx)
	if err != nil {
		return "", QueryError{Query: name, Cause: err}
	}
	return s, nil
}

// Static is an [Info] with fixed answers. A non-nil Err is returned
// from every query.
type Static struct {
	OS       Platform
	Emulator bool
	ID       string
	Version  string
	App      string
	Err      error
}

// Platform implements the [Info] interface.
func (s Static) Platform() Platform {
	return s.OS
}

// IsEmulator implements the [Info] interface.
func (s Static) IsEmulator(ctx context.Context) (bool, error) {
	return s.Emulator, s.Err
}

// DeviceID implements the [Info] interface.
func (s Static) DeviceID(ctx context.Context) (string, error) {
	return s.ID, s.Err
}

// OSVersion implements the [Info] interface.
func (s Static) OSVersion(ctx context.Context) (string, error) {
	return s.Version, s.Err
}

// AppVersion implements the [Info] interface.
func (s Static) AppVersion(ctx context.Context) (string, error) {
	return s.App, s.Err
}
