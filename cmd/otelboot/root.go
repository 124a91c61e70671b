// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/z5labs/otelboot/bootstrap"
	"github.com/z5labs/otelboot/device"
	"github.com/z5labs/otelboot/internal/try"
	"github.com/z5labs/otelboot/logging"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
	appVersion string
	idFile     string
	probe      string
	hold       bool
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := rootOptions{}

	cmd := &cobra.Command{
		Use:          "otelboot",
		Short:        "Bootstrap OpenTelemetry tracing and metrics for this host",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to a config file (yaml, json or toml)")
	flags.StringVar(&opts.appVersion, "app-version", "0.0.0", "version reported as service.version")
	flags.StringVar(&opts.idFile, "device-id-file", "/etc/machine-id", "file holding a stable device id")
	flags.StringVar(&opts.probe, "probe", "", "URL to issue one traced GET request against once loaded")
	flags.BoolVar(&opts.hold, "hold", false, "keep telemetry running until interrupted")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "how long to wait for bootstrap and teardown")

	return cmd
}

func run(ctx context.Context, out io.Writer, opts rootOptions) error {
	cfg, err := bootstrap.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer logger.Sync()

	otel.SetErrorHandler(logging.OtelErrorHandler(logger))

	info := &device.Host{
		Version: opts.appVersion,
		IDFile:  opts.idFile,
	}

	hook := bootstrap.New(
		bootstrap.Pipeline(
			cfg,
			info,
			bootstrap.PipelineLogger(logger),
			bootstrap.Console(out),
		),
		bootstrap.Logger(logger),
	)
	hook.Mount(ctx)

	waitCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	res, err := hook.Wait(waitCtx)
	if err != nil {
		return fmt.Errorf("bootstrap did not finish: %w", err)
	}
	logger.Info(
		"telemetry bootstrap finished",
		zap.Bool("loaded", hook.State().Loaded),
		zap.Bool("ok", res.Ok()),
	)

	if opts.probe != "" && res.Ok() {
		status, err := probe(ctx, opts.probe)
		if err != nil {
			logger.Warn("probe request failed", zap.String("url", opts.probe), zap.Error(err))
		} else {
			logger.Info("probe request finished", zap.String("url", opts.probe), zap.Int("status_code", status))
		}
	}

	if opts.hold {
		<-ctx.Done()
	}

	teardownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opts.timeout)
	defer cancel()
	return hook.Unmount(teardownCtx)
}

func probe(ctx context.Context, url string) (status int, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer try.Close(&err, resp.Body)

	_, err = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, err
}
