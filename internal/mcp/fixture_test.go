package mcp

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sprintstat/internal/stats"
	"github.com/Sumatoshi-tech/sprintstat/pkg/aggregate"
	"github.com/Sumatoshi-tech/sprintstat/pkg/persist"
	"github.com/Sumatoshi-tech/sprintstat/pkg/snapshot"
)

// seedStore persists two core burn-down days of "Sprint 1" and a last run
// summary describing it.
func seedStore(t *testing.T) *snapshot.Store {
	t.Helper()

	store := snapshot.NewStore(t.TempDir())
	iteration := stats.IterationStore(store, "Sprint 1")

	for day, values := range map[string][2]int{
		"2024-01-01": {8, 2},
		"2024-01-02": {5, 5},
	} {
		m := aggregate.NewMatrix([]string{day}, []string{"Todo", "Done"})
		m.Set("Todo", day, values[0])
		m.Set("Done", day, values[1])

		require.NoError(t, iteration.Persist(stats.ScopeCore, day, m))
	}

	summary := &stats.Summary{
		RunID: "2024-01-02",
		Iterations: []stats.IterationSummary{
			{Title: "Sprint 1", Dir: "sprint1", StartDate: "2024-01-01", Duration: 2},
		},
	}
	require.NoError(t, persist.SaveState(store.Root(), "last_run", persist.NewJSONCodec(), summary))

	return store
}

func newQueries(t *testing.T) *queries {
	t.Helper()

	return &queries{store: seedStore(t), logger: slog.New(slog.DiscardHandler)}
}
