// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config provides a functional approach to reading and composing configuration values.
//
// The package is built around the concept of a Reader[T], which represents a source of
// configuration values that may or may not be present. Readers can be composed using
// functional combinators to build complex configuration logic from simple building blocks.
//
// # Core Concepts
//
// Value[T] represents a configuration value that may or may not be set. This distinguishes
// between "not set" and "set to zero value", which is important for configuration with defaults.
//
// Reader[T] is an interface for reading configuration values. Readers are composable and
// can be chained together using combinators like Or, Map, Bind, and Default.
//
// # Basic Usage
//
// Read the collector endpoint from the environment, falling back to a config file:
//
//	endpoint, err := config.Read(ctx,
//	    config.Or(
//	        config.Env("OTELBOOT_COLLECTOR_ENDPOINT"),
//	        config.ViperString(v, "collector.endpoint"),
//	    ),
//	)
//
// Read the sample ratio from the standard OpenTelemetry variable with a default:
//
//	ratio := config.Default(
//	    1.0,
//	    config.Float64FromString(config.Env("OTEL_TRACES_SAMPLER_ARG")),
//	)
//
// Read a secret from the file named by another value:
//
//	token := config.Bind(
//	    config.ViperString(v, "collector.token_file"),
//	    func(ctx context.Context, path string) config.Reader[string] {
//	        return config.TrimmedString(config.ReadFile(path))
//	    },
//	)
//
// # Error Handling
//
// Readers distinguish between three states:
//   - Value is set (returns Value with set=true)
//   - Value is not set (returns Value with set=false, no error)
//   - Error occurred (returns error)
//
// The Read function converts "not set" to ErrValueNotSet for convenience.
//
// # Structured Config
//
// Unmarshal decodes a generic key value tree, e.g. the settings of a viper
// instance, into a struct using the `config` struct tag.
package config
