package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/sprintstat/internal/stats"
	"github.com/Sumatoshi-tech/sprintstat/pkg/aggregate"
	"github.com/Sumatoshi-tech/sprintstat/pkg/burndown"
	"github.com/Sumatoshi-tech/sprintstat/pkg/snapshot"
	"github.com/Sumatoshi-tech/sprintstat/pkg/workitem"
)

// queries answers tool calls from the snapshot store. Nothing is written.
type queries struct {
	store  *snapshot.Store
	logger *slog.Logger
}

// SnapshotResult is the payload of the sprintstat_snapshot tool.
type SnapshotResult struct {
	Iteration string            `json:"iteration"`
	Scope     string            `json:"scope"`
	RunID     string            `json:"run_id"`
	Matrix    *aggregate.Matrix `json:"matrix"`
}

// handleBurnDown processes sprintstat_burndown tool calls.
func (q *queries) handleBurnDown(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input BurnDownInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	iteration, err := q.resolveIteration(input)
	if err != nil {
		return errorResult(err)
	}

	scope := scopeOrDefault(input.Scope)
	store := stats.IterationStore(q.store, iteration.Title)

	statuses := input.Statuses
	if len(statuses) == 0 {
		latest, _, latestErr := latestSnapshot(store, scope)
		if latestErr != nil {
			return errorResult(latestErr)
		}

		statuses = latest.Groups()
	}

	series, err := burndown.NewReconstructor(store, burndown.WithLogger(q.logger)).
		History(ctx, iteration, scope, statuses)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(series)
}

// handleSnapshot processes sprintstat_snapshot tool calls.
func (q *queries) handleSnapshot(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input SnapshotInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	title := strings.TrimSpace(input.Iteration)
	if title == "" {
		return errorResult(ErrEmptyIteration)
	}

	scope := scopeOrDefault(input.Scope)
	store := stats.IterationStore(q.store, title)

	if input.RunID == "" {
		m, runID, err := latestSnapshot(store, scope)
		if err != nil {
			return errorResult(err)
		}

		return jsonResult(SnapshotResult{Iteration: title, Scope: scope, RunID: runID, Matrix: m})
	}

	m, ok, err := store.Load(scope, input.RunID)
	if err != nil {
		return errorResult(err)
	}

	if !ok {
		return errorResult(fmt.Errorf("%w: %s on %s", ErrNoSnapshots, scope, input.RunID))
	}

	return jsonResult(SnapshotResult{Iteration: title, Scope: scope, RunID: input.RunID, Matrix: m})
}

// handleLastRun processes sprintstat_last_run tool calls.
func (q *queries) handleLastRun(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	_ LastRunInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	summary, err := stats.LoadLastRun(q.store.Root())
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(summary)
}

// resolveIteration builds the iteration from explicit dates or looks it up in
// the last run summary.
func (q *queries) resolveIteration(input BurnDownInput) (workitem.Iteration, error) {
	title := strings.TrimSpace(input.Iteration)
	if title == "" {
		return workitem.Iteration{}, ErrEmptyIteration
	}

	if input.StartDate != "" {
		if input.Duration < 0 {
			return workitem.Iteration{}, ErrNegativeDuration
		}

		start, err := workitem.ParseDate(input.StartDate)
		if err != nil {
			return workitem.Iteration{}, err
		}

		return workitem.Iteration{Title: title, StartDate: start, Duration: input.Duration}, nil
	}

	summary, err := stats.LoadLastRun(q.store.Root())
	if err != nil {
		return workitem.Iteration{}, errors.Join(ErrIterationNotFound, err)
	}

	iteration, ok, err := summary.Iteration(title)
	if err != nil {
		return workitem.Iteration{}, err
	}

	if ok {
		return iteration, nil
	}

	return workitem.Iteration{}, fmt.Errorf("%w: %s", ErrIterationNotFound, title)
}

// latestSnapshot loads the most recent persisted matrix of a scope.
func latestSnapshot(store *snapshot.Store, scope string) (*aggregate.Matrix, string, error) {
	m, runID, ok, err := store.Latest(scope)
	if err != nil {
		return nil, "", err
	}

	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrNoSnapshots, scope)
	}

	return m, runID, nil
}

func scopeOrDefault(scope string) string {
	if scope = workitem.Clean(scope); scope == "" {
		return stats.ScopeCore
	}

	return scope
}
