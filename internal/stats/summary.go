package stats

import (
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/Sumatoshi-tech/sprintstat/pkg/render"
	"github.com/Sumatoshi-tech/sprintstat/pkg/report"
	"github.com/Sumatoshi-tech/sprintstat/pkg/workitem"
)

// Summary describes a finished run. The last successful one is kept in
// {output}/last_run.json.
type Summary struct {
	RunID           string             `json:"run_id"`
	Invocation      string             `json:"invocation"`
	StartedAt       time.Time          `json:"started_at"`
	Duration        time.Duration      `json:"duration"`
	Items           int                `json:"items"`
	TotalComplexity int                `json:"total_complexity"`
	Iterations      []IterationSummary `json:"iterations"`
	Current         string             `json:"current,omitempty"`
	Artifacts       []string           `json:"artifacts"`
}

// IterationSummary describes the artifacts of one active iteration.
// Chart paths are relative to the iteration directory.
type IterationSummary struct {
	Title       string `json:"title"`
	Dir         string `json:"dir"`
	StartDate   string `json:"start_date"`
	Duration    int    `json:"duration"`
	Items       int    `json:"items"`
	Complexity  int    `json:"complexity"`
	StatusChart string `json:"status_chart"`
	MemberChart string `json:"member_chart"`
	// BurnDowns maps a burn-down scope to its chart file.
	BurnDowns   map[string]string `json:"burn_downs"`
	MissingDays int               `json:"missing_days"`
}

// Iteration returns the processed iteration matching title by title or by
// directory name.
func (s *Summary) Iteration(title string) (workitem.Iteration, bool, error) {
	for _, it := range s.Iterations {
		if it.Title != title && it.Dir != workitem.Clean(title) {
			continue
		}

		start, err := workitem.ParseDate(it.StartDate)
		if err != nil {
			return workitem.Iteration{}, false, fmt.Errorf("iteration %s: %w", it.Title, err)
		}

		return workitem.Iteration{Title: it.Title, StartDate: start, Duration: it.Duration}, true, nil
	}

	return workitem.Iteration{}, false, nil
}

// writeRootReport writes {output}/README.md and, when an iteration is active,
// refreshes the badge copies in {output}/{current_dir}.
func (r *Runner) writeRootReport(rn *run, p project, current *IterationSummary) error {
	out := r.cfg.Output.Dir
	w := report.New(out)

	w.Heading(1, r.cfg.Output.Title).
		Line("Run %s: %d items, total complexity %d", rn.id, rn.summary.Items, rn.summary.TotalComplexity).
		NewLine().
		Chart("Total complexity", filepath.Join(out, DirTotalComplexity, rn.id+render.Extension)).
		Chart("Member complexity", filepath.Join(out, DirMemberComplexity, rn.id+render.Extension))

	if current != nil {
		dir := filepath.Join(out, current.Dir)

		w.Heading(2, "Current iteration: "+current.Title).
			Heading(3, "Status "+rn.id).
			Chart("Current status", filepath.Join(dir, current.StatusChart)).
			Heading(3, "Core burn-down").
			Chart("Core burn-down chart", filepath.Join(dir, current.BurnDowns[ScopeCore]))

		for _, team := range p.teams {
			scope := TeamScope(team.Value)

			w.Heading(3, team.Value+" burn-down").
				Chart(team.Value+" burn-down chart", filepath.Join(dir, current.BurnDowns[scope]))
		}

		err := r.copyBadges(rn, current)
		if err != nil {
			return err
		}
	}

	path, err := w.Write("")
	if err != nil {
		return fmt.Errorf("root report: %w", err)
	}

	rn.wrote(kindReport, path)

	return nil
}

// copyBadges copies the current status and burn-down charts to stable names
// in the current directory so they can be deep linked.
func (r *Runner) copyBadges(rn *run, current *IterationSummary) error {
	src := filepath.Join(r.cfg.Output.Dir, current.Dir)
	dst := filepath.Join(r.cfg.Output.Dir, r.cfg.Output.CurrentDir)

	copies := map[string]string{
		filepath.Join(src, current.StatusChart): filepath.Join(dst, "core_status"+render.Extension),
	}

	for _, file := range current.BurnDowns {
		copies[filepath.Join(src, file)] = filepath.Join(dst, file)
	}

	for _, from := range slices.Sorted(maps.Keys(copies)) {
		to := copies[from]

		err := copyFile(from, to)
		if err != nil {
			return fmt.Errorf("copy badge: %w", err)
		}

		rn.wrote(kindBadge, to)
	}

	return nil
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("open %s: %w", from, err)
	}
	defer in.Close()

	err = os.MkdirAll(filepath.Dir(to), 0o755)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(to), err)
	}

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("create %s: %w", to, err)
	}

	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()

	if copyErr != nil {
		return fmt.Errorf("copy %s: %w", from, copyErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close %s: %w", to, closeErr)
	}

	return nil
}
