// Package main provides the entry point for the sprintstat CLI tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sprintstat/cmd/sprintstat/commands"
	"github.com/Sumatoshi-tech/sprintstat/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	// Tokens are commonly kept in a local .env; real environment variables win.
	envErr := godotenv.Load()
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: load .env: %v\n", envErr)
	}

	rootCmd := &cobra.Command{
		Use:   "sprintstat",
		Short: "Sprint statistics - charts, burn-downs and reports for project iterations",
		Long: `Sprintstat reads the work items of a project board and writes daily
statistics: complexity distributions, per-iteration status charts and
burn-downs reconstructed from persisted snapshots.

Commands:
  run       Fetch items and write every chart and report once
  burndown  Print an iteration burn-down from persisted snapshots
  schedule  Run on a cron schedule
  mcp       Serve read-only queries over the Model Context Protocol`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewBurnDownCommand())
	rootCmd.AddCommand(commands.NewScheduleCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
