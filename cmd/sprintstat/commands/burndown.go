package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sprintstat/internal/config"
	"github.com/Sumatoshi-tech/sprintstat/internal/stats"
	"github.com/Sumatoshi-tech/sprintstat/pkg/burndown"
	"github.com/Sumatoshi-tech/sprintstat/pkg/observability"
	"github.com/Sumatoshi-tech/sprintstat/pkg/snapshot"
	"github.com/Sumatoshi-tech/sprintstat/pkg/workitem"
)

var (
	// ErrUnknownIteration indicates the iteration is neither given by dates nor part of the last run.
	ErrUnknownIteration = errors.New("iteration is not part of the last run; pass --start-date and --duration")
	// ErrNoSnapshots indicates a scope has nothing persisted to read statuses from.
	ErrNoSnapshots = errors.New("no snapshots persisted for scope; pass --statuses")
)

// BurnDownCommand holds the flags of the burndown command.
type BurnDownCommand struct {
	scope     string
	startDate string
	duration  int
	statuses  []string
	asJSON    bool
}

// NewBurnDownCommand creates the read-only burndown command.
func NewBurnDownCommand() *cobra.Command {
	bc := &BurnDownCommand{}

	cmd := &cobra.Command{
		Use:   "burndown <iteration>",
		Short: "Print an iteration burn-down from persisted snapshots",
		Long: `Reconstruct the burn-down of an iteration scope from the persisted daily
snapshots. Nothing is fetched and nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: bc.run,
	}

	registerConfigFlags(cmd)
	cmd.Flags().StringVar(&bc.scope, "scope", stats.ScopeCore, "Burn-down scope: core, qa or a team name (team_core, team_qa for teams named core or qa)")
	cmd.Flags().StringVar(&bc.startDate, "start-date", "", "Iteration start date YYYY-MM-DD (default: from the last run)")
	cmd.Flags().IntVar(&bc.duration, "duration", 0, "Iteration duration in days, used with --start-date")
	cmd.Flags().StringSliceVar(&bc.statuses, "statuses", nil, "Ordered statuses (default: those of the latest snapshot)")
	cmd.Flags().BoolVar(&bc.asJSON, "json", false, "Print the series as JSON")

	return cmd
}

func (bc *BurnDownCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	obsCfg, err := observabilityConfig(cfg, observability.ModeCLI)
	if err != nil {
		return err
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}
	defer shutdownProviders(providers)

	root := snapshot.NewStore(cfg.Output.Dir,
		snapshot.WithCompressedItems(cfg.Snapshots.CompressItems),
		snapshot.WithLogger(providers.Logger),
	)

	iteration, err := bc.iteration(cfg, strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}

	scope := workitem.Clean(bc.scope)
	store := stats.IterationStore(root, iteration.Title)

	statuses := bc.statuses
	if len(statuses) == 0 {
		latest, _, ok, latestErr := store.Latest(scope)
		if latestErr != nil {
			return latestErr
		}

		if !ok {
			return fmt.Errorf("%w: %s", ErrNoSnapshots, scope)
		}

		statuses = latest.Groups()
	}

	series, err := burndown.NewReconstructor(store,
		burndown.WithLogger(providers.Logger),
		burndown.WithTracer(providers.Tracer),
	).History(cmd.Context(), iteration, scope, statuses)
	if err != nil {
		return err
	}

	if bc.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(series)
	}

	printSeries(cmd.OutOrStdout(), iteration, series)

	return nil
}

func (bc *BurnDownCommand) iteration(cfg *config.Config, title string) (workitem.Iteration, error) {
	if bc.startDate != "" {
		start, err := workitem.ParseDate(bc.startDate)
		if err != nil {
			return workitem.Iteration{}, err
		}

		it := workitem.Iteration{Title: title, StartDate: start, Duration: bc.duration}

		return it, it.Validate()
	}

	summary, err := stats.LoadLastRun(cfg.Output.Dir)
	if err != nil {
		return workitem.Iteration{}, errors.Join(ErrUnknownIteration, err)
	}

	it, ok, err := summary.Iteration(title)
	if err != nil {
		return workitem.Iteration{}, err
	}

	if !ok {
		return workitem.Iteration{}, fmt.Errorf("%w: %s", ErrUnknownIteration, title)
	}

	return it, nil
}

// printSeries renders a burn-down as one row per day and one column per status.
func printSeries(w io.Writer, iteration workitem.Iteration, series burndown.Series) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Footer = text.FormatDefault
	tw.SetTitle("%s %s burn-down", iteration.Title, series.Scope)

	header := table.Row{"Day"}
	for _, ds := range series.Datasets {
		header = append(header, ds.Label)
	}

	tw.AppendHeader(append(header, "Total"))

	for day, label := range series.Days {
		row := table.Row{label}
		total := 0

		for _, ds := range series.Datasets {
			row = append(row, ds.Values[day])
			total += ds.Values[day]
		}

		tw.AppendRow(append(row, total))
	}

	tw.AppendFooter(table.Row{"Missing days", series.Missing})
	tw.Render()
}
