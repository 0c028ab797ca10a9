package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sprintstat/pkg/workitem"
)

const exportTemplate = `iterations:
  - title: Sprint 1
    start_date: "%s"
    duration: 13
fields:
  Team:
    - {value: Backend, color: BLUE}
  Status:
    - {value: Todo, color: GRAY}
    - {value: Done, color: GREEN}
  QA:
    - {value: Passed, color: GREEN}
items:
  - iteration: {value: Sprint 1}
    team: {value: Backend}
    status: {value: Todo}
    complexity: {value: "3"}
    assignees: [{value: alice}]
  - iteration: {value: Sprint 1}
    team: {value: Backend}
    status: {value: Done}
    qa: {value: Passed}
    complexity: {value: "1200"}
`

const configTemplate = `source:
  kind: file
  file:
    path: %s
output:
  dir: %s
observability:
  log_level: error
`

type fixture struct {
	dir        string
	configPath string
	exportPath string
	outputDir  string
	today      string
}

// newFixture writes an export whose only iteration started yesterday and a
// config file reading it.
func newFixture(t *testing.T) fixture {
	t.Helper()

	dir := t.TempDir()
	now := time.Now().UTC()

	f := fixture{
		dir:        dir,
		configPath: filepath.Join(dir, "sprintstat.yaml"),
		exportPath: filepath.Join(dir, "export.yaml"),
		outputDir:  filepath.Join(dir, "stats"),
		today:      workitem.DayLabel(now),
	}

	start := workitem.DayLabel(workitem.Day(now, -1))

	require.NoError(t, os.WriteFile(f.exportPath, fmt.Appendf(nil, exportTemplate, start), 0o600))
	require.NoError(t, os.WriteFile(f.configPath, fmt.Appendf(nil, configTemplate, f.exportPath, f.outputDir), 0o600))

	return f
}

// execute runs cmd with args and returns its standard output.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}
