package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool name constants.
const (
	ToolNameBurnDown = "sprintstat_burndown"
	ToolNameSnapshot = "sprintstat_snapshot"
	ToolNameLastRun  = "sprintstat_last_run"
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyIteration indicates the iteration parameter is empty.
	ErrEmptyIteration = errors.New("iteration parameter is required and must not be empty")
	// ErrIterationNotFound indicates the iteration is not part of the last run.
	ErrIterationNotFound = errors.New("iteration not found in the last run; pass start_date and duration")
	// ErrNegativeDuration indicates a negative duration parameter.
	ErrNegativeDuration = errors.New("duration must be non-negative")
	// ErrNoSnapshots indicates the scope has no persisted snapshot yet.
	ErrNoSnapshots = errors.New("no snapshots persisted for scope")
)

// Input types (auto-generate JSON schemas via struct tags).

// BurnDownInput is the input schema for the sprintstat_burndown tool.
type BurnDownInput struct {
	Iteration string   `json:"iteration"            jsonschema:"iteration title (e.g. Sprint 12)"`
	Scope     string   `json:"scope,omitempty"      jsonschema:"burn-down scope: core, qa or a team name (default: core)"`
	StartDate string   `json:"start_date,omitempty" jsonschema:"iteration start date YYYY-MM-DD (default: taken from the last run)"`
	Duration  int      `json:"duration,omitempty"   jsonschema:"iteration duration in days, used with start_date"`
	Statuses  []string `json:"statuses,omitempty"   jsonschema:"ordered statuses (default: those of the latest snapshot)"`
}

// SnapshotInput is the input schema for the sprintstat_snapshot tool.
type SnapshotInput struct {
	Iteration string `json:"iteration"         jsonschema:"iteration title (e.g. Sprint 12)"`
	Scope     string `json:"scope,omitempty"   jsonschema:"burn-down scope: core, qa or a team name (default: core)"`
	RunID     string `json:"run_id,omitempty"  jsonschema:"run day YYYY-MM-DD (default: the most recent run)"`
}

// LastRunInput is the input schema for the sprintstat_last_run tool.
type LastRunInput struct{}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
