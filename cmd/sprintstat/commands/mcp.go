package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sprintstat/internal/mcp"
	"github.com/Sumatoshi-tech/sprintstat/pkg/observability"
	"github.com/Sumatoshi-tech/sprintstat/pkg/snapshot"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes read-only queries over the persisted statistics as tools
that AI agents can discover and invoke:
  - sprintstat_burndown: reconstruct an iteration burn-down
  - sprintstat_snapshot: read one persisted daily snapshot
  - sprintstat_last_run: summarize the last successful run`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cobraCmd)
			if err != nil {
				return err
			}

			obsCfg, err := observabilityConfig(cfg, observability.ModeMCP)
			if err != nil {
				return err
			}

			// Stdout carries the protocol; logs go to stderr as JSON.
			obsCfg.LogJSON = true

			if debug {
				obsCfg.LogLevel = slog.LevelDebug
				obsCfg.DebugTrace = true
			}

			providers, err := observability.Init(obsCfg)
			if err != nil {
				return fmt.Errorf("init observability: %w", err)
			}
			defer shutdownProviders(providers)

			red, err := observability.NewREDMetrics(providers.Meter)
			if err != nil {
				return err
			}

			store := snapshot.NewStore(cfg.Output.Dir,
				snapshot.WithCompressedItems(cfg.Snapshots.CompressItems),
				snapshot.WithLogger(providers.Logger),
			)

			srv := mcp.NewServer(mcp.ServerDeps{
				Store:   store,
				Logger:  providers.Logger,
				Metrics: red,
				Tracer:  providers.Tracer,
			})

			return srv.Run(cobraCmd.Context())
		},
	}

	registerConfigFlags(cmd)
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}
