// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package telemetry builds the OpenTelemetry tracing and metrics pipeline
// for an application instance.
//
// Every piece is exposed as a [otelboot.Builder] so that pipelines can be
// composed before anything is constructed. Process wide registration of
// the resulting providers goes through a [Registry], which only ever
// accepts the first registration.
package telemetry
