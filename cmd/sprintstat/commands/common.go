// Package commands implements CLI command handlers for sprintstat.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sprintstat/internal/config"
	"github.com/Sumatoshi-tech/sprintstat/internal/source/file"
	"github.com/Sumatoshi-tech/sprintstat/internal/source/github"
	"github.com/Sumatoshi-tech/sprintstat/pkg/observability"
	"github.com/Sumatoshi-tech/sprintstat/pkg/version"
	"github.com/Sumatoshi-tech/sprintstat/pkg/workitem"
)

const (
	flagConfig = "config"
	flagOutput = "output"
)

// registerConfigFlags adds the flags every command resolves its configuration from.
func registerConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagConfig, "", "Config file path (default: .sprintstat.yaml in CWD or $HOME)")
	cmd.Flags().StringP(flagOutput, "o", "", "Output directory (overrides output.dir)")
}

// loadConfig loads the configuration and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("read --%s: %w", flagConfig, err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	output, err := cmd.Flags().GetString(flagOutput)
	if err != nil {
		return nil, fmt.Errorf("read --%s: %w", flagOutput, err)
	}

	if output != "" {
		cfg.Output.Dir = output
	}

	return cfg, nil
}

// observabilityConfig maps the file configuration onto the observability layer.
func observabilityConfig(cfg *config.Config, mode observability.AppMode) (observability.Config, error) {
	level, err := observability.ParseLevel(cfg.Observability.LogLevel)
	if err != nil {
		return observability.Config{}, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Observability.Environment
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Observability.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Observability.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Observability.OTLPInsecure
	obsCfg.SampleRatio = cfg.Observability.SampleRatio
	obsCfg.TraceVerbose = cfg.Observability.TraceVerbose
	obsCfg.PushgatewayURL = cfg.Observability.PushgatewayURL

	if cfg.Observability.PushJob != "" {
		obsCfg.PushJob = cfg.Observability.PushJob
	}
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Observability.LogJSON

	return obsCfg, nil
}

func initObservability(cfg *config.Config, mode observability.AppMode) (observability.Providers, error) {
	obsCfg, err := observabilityConfig(cfg, mode)
	if err != nil {
		return observability.Providers{}, err
	}

	if mode == observability.ModeSchedule && cfg.Schedule.DiagnosticsAddr != "" {
		obsCfg.Prometheus = true
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return observability.Providers{}, fmt.Errorf("init observability: %w", err)
	}

	return providers, nil
}

// shutdownProviders flushes telemetry, logging instead of failing the command.
func shutdownProviders(providers observability.Providers) {
	err := providers.Shutdown(context.Background())
	if err != nil {
		providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

// newSource builds the configured item source.
func newSource(cfg *config.Config, logger *slog.Logger, providers observability.Providers) (workitem.Source, error) {
	err := cfg.Source.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate source: %w", err)
	}

	switch cfg.Source.Kind {
	case config.SourceFile:
		return file.New(cfg.Source.File.Path), nil
	default:
		return github.New(cfg.Source.GitHub, cfg.Source.Fields,
			github.WithLogger(logger),
			github.WithTracer(providers.Tracer),
		), nil
	}
}
