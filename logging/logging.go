// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package logging builds the zap loggers used across otelboot.
package logging

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a [zap.Logger] configured for development or production.
// Development logs are colored console lines, production logs are JSON.
func New(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build dev logger: %w", err)
		}
		return logger, nil
	}
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build prod logger: %w", err)
	}
	return logger, nil
}

// OtelErrorHandler reports errors raised inside the OpenTelemetry SDK,
// e.g. failed exports, to logger.
//
// An unattached metric reader raises [sdkmetric.ErrReaderNotRegistered]
// on every collection. It is logged at debug level since it only means
// metrics are being dropped.
func OtelErrorHandler(logger *zap.Logger) otel.ErrorHandler {
	logger = logger.Named("otel")
	return otel.ErrorHandlerFunc(func(err error) {
		if errors.Is(err, sdkmetric.ErrReaderNotRegistered) {
			logger.Debug("metric reader not attached, dropping metrics", zap.Error(err))
			return
		}
		logger.Warn("opentelemetry error", zap.Error(err))
	})
}
