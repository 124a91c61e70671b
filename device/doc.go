// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device describes the platform metadata a telemetry source is
// identified by, and resolves the loopback host used to reach a collector
// running on the developer machine.
package device
