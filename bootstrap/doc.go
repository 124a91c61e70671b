// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package bootstrap initializes telemetry for an application exactly once,
// in the background, without ever surfacing a failure to its caller.
//
// A [Hook] is mounted by the embedding layer, e.g. when the root view of an
// application appears. Mounting starts the [Pipeline] in its own goroutine
// and returns immediately. [Hook.State] flips to loaded once the attempt
// finished, whether it succeeded or not.
//
// Metrics are inert unless metrics.attach is set. The unattached metric
// reader keeps ticking and raises sdkmetric.ErrReaderNotRegistered every
// metrics.interval, which the error handler from the logging package
// reports at debug level.
//
// [Hook.Unmount] tears everything down and releases the
// [telemetry.Registry], after which a new [Hook] may bootstrap again.
package bootstrap
