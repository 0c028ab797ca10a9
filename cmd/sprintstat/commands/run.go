package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sprintstat/internal/config"
	"github.com/Sumatoshi-tech/sprintstat/internal/stats"
	"github.com/Sumatoshi-tech/sprintstat/pkg/observability"
)

// RunCommand holds the flags of the run command.
type RunCommand struct {
	sourceFile string
	quiet      bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	rc := &RunCommand{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch items and write every chart and report once",
		Long: `Fetch the project items once and write the total and member complexity
charts, the status, QA and burn-down charts of every active iteration, and the
markdown reports. Today's burn-down point is persisted before it is read back.`,
		Args: cobra.NoArgs,
		RunE: rc.run,
	}

	registerConfigFlags(cmd)
	cmd.Flags().StringVar(&rc.sourceFile, "source-file", "", "Read items from an export file instead of the configured source")
	cmd.Flags().BoolVarP(&rc.quiet, "quiet", "q", false, "Do not print the run summary")

	return cmd
}

func (rc *RunCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if rc.sourceFile != "" {
		cfg.Source.Kind = config.SourceFile
		cfg.Source.File.Path = rc.sourceFile
	}

	providers, err := initObservability(cfg, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer shutdownProviders(providers)

	runner, err := newRunner(cfg, providers)
	if err != nil {
		return err
	}

	summary, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	if !rc.quiet {
		printSummary(cmd.OutOrStdout(), cfg.Output.Dir, summary)
	}

	return nil
}

// newRunner wires a stats runner to the configured source and telemetry.
func newRunner(cfg *config.Config, providers observability.Providers) (*stats.Runner, error) {
	source, err := newSource(cfg, providers.Logger, providers)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewRunMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}

	return stats.NewRunner(*cfg, source,
		stats.WithLogger(providers.Logger),
		stats.WithTracer(providers.Tracer),
		stats.WithMetrics(metrics),
	), nil
}
