package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/sprintstat/internal/stats"
)

// printSummary writes a human readable account of a finished run.
func printSummary(w io.Writer, outputDir string, summary stats.Summary) {
	color.New(color.FgGreen).Fprintf(w, "Run %s finished in %s\n", summary.RunID, summary.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Items: %s, total complexity: %s\n",
		humanize.Comma(int64(summary.Items)), humanize.Comma(int64(summary.TotalComplexity)))
	fmt.Fprintf(w, "  Artifacts: %d (%s) in %s\n",
		len(summary.Artifacts), humanize.Bytes(artifactBytes(summary.Artifacts)), outputDir)

	if len(summary.Iterations) == 0 {
		color.New(color.FgYellow).Fprintln(w, "  No active iteration")

		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Iteration", "Start", "Days", "Items", "Complexity", "Burn-downs", "Missing days"})

	for _, it := range summary.Iterations {
		tw.AppendRow(table.Row{
			it.Title,
			it.StartDate,
			it.Duration + 1,
			humanize.Comma(int64(it.Items)),
			humanize.Comma(int64(it.Complexity)),
			len(it.BurnDowns),
			strconv.Itoa(it.MissingDays),
		})
	}

	tw.Render()

	if summary.Current != "" {
		fmt.Fprintf(w, "  Current iteration: %s\n", summary.Current)
	}
}

func artifactBytes(paths []string) uint64 {
	var total uint64

	for _, path := range paths {
		info, err := os.Stat(filepath.Clean(path))
		if err != nil {
			continue
		}

		total += uint64(info.Size()) //nolint:gosec // file sizes are non-negative
	}

	return total
}
