// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelboot provides the building blocks for bootstrapping client-side
// OpenTelemetry tracing and metrics exactly once per process.
//
// The package is built around two abstractions:
//
//   - Builder[T]: a generic interface for constructing telemetry components with context support
//   - Future[T]: a run-once initializer which builds a value in the background and can be awaited
//
// # Functional Composition
//
// Builders compose with a small set of combinators:
//
//   - Map: transform builder outputs using pure functions
//   - MemoizeBuilder: share one built value between several consumers, e.g. a resource
//
// # Basic Usage
//
//	resourceB := otelboot.MemoizeBuilder(telemetry.BuildResource(
//	    config.ReaderOf("my-app"),
//	    info,
//	))
//
//	f := otelboot.NewFuture(bootstrap.Pipeline(cfg, info))
//	f.Start(ctx)
//	if err := f.Wait(ctx); err != nil {
//	    return err
//	}
//	tel, err := f.Result()
//
// Most applications use the bootstrap package which wraps a Future with
// logging and failure containment.
package otelboot
