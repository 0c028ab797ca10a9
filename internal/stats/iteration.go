package stats

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/sprintstat/pkg/aggregate"
	"github.com/Sumatoshi-tech/sprintstat/pkg/burndown"
	"github.com/Sumatoshi-tech/sprintstat/pkg/classify"
	"github.com/Sumatoshi-tech/sprintstat/pkg/render"
	"github.com/Sumatoshi-tech/sprintstat/pkg/report"
	"github.com/Sumatoshi-tech/sprintstat/pkg/snapshot"
	"github.com/Sumatoshi-tech/sprintstat/pkg/workitem"
)

// Artifact kinds counted in run metrics.
const (
	kindChart    = "chart"
	kindSnapshot = "snapshot"
	kindReport   = "report"
	kindBadge    = "badge"
)

// burnSpec is one burn-down of an iteration: the items it sums and the
// axis and ordered options their status is read from.
type burnSpec struct {
	scope    string
	items    []workitem.Item
	axis     classify.Axis
	statuses []string
	palette  map[string]string
}

// processIteration writes every artifact of one active iteration below
// {output}/{clean(title)}.
func (r *Runner) processIteration(
	ctx context.Context, rn *run, p project, iteration workitem.Iteration, items []workitem.Item,
) (IterationSummary, error) {
	name := workitem.Clean(iteration.Title)
	dir := filepath.Join(r.cfg.Output.Dir, name)
	store := IterationStore(r.store, iteration.Title)
	reconstructor := burndown.NewReconstructor(store, burndown.WithLogger(rn.logger), burndown.WithTracer(r.tracer))

	ctx, span := r.tracer.Start(ctx, "stats.iteration", trace.WithAttributes(
		attribute.String("iteration.title", iteration.Title),
		attribute.Int("iteration.items", len(items)),
	))
	defer span.End()

	summary := IterationSummary{
		Title:      iteration.Title,
		Dir:        name,
		StartDate:  workitem.DayLabel(iteration.StartDate),
		Duration:   iteration.Duration,
		Items:      len(items),
		Complexity: totalComplexity(items),
		BurnDowns:  make(map[string]string),
	}

	err := store.PersistItems(ScopeCore, rn.id, items)
	if err != nil {
		return IterationSummary{}, fmt.Errorf("iteration %s: %w", iteration.Title, err)
	}

	rn.wrote(kindSnapshot, store.ItemsPath(ScopeCore, rn.id))

	statuses := values(p.statuses)
	qaOptions := values(p.qa)
	statusColors := colors(p.statuses)

	perMember := aggregate.Aggregate(items,
		classify.Derived(classify.AxisAssignee),
		classify.FromFields(p.statuses),
		aggregate.ComplexitySum(classify.AxisAssignee, classify.AxisStatus),
	)

	perTeam := aggregate.Aggregate(items,
		classify.Derived(classify.AxisTeam),
		classify.FromFields(p.statuses),
		aggregate.ComplexitySum(classify.AxisTeam, classify.AxisStatus),
	)

	qa := aggregate.Aggregate(items,
		classify.FromFields(p.qa),
		classify.Derived(classify.AxisTeam),
		aggregate.ComplexitySum(classify.AxisQA, classify.AxisTeam),
	)

	charts := []struct {
		matrix  *aggregate.Matrix
		palette map[string]string
		opts    render.Options
	}{
		{perMember, statusColors, render.Options{
			Kind: render.KindBar, Stacked: true, Path: filepath.Join(dir, DirStatusPerMember), Name: rn.id,
			Title: "Status per team member", Subtitle: iteration.Title, XAxis: "Assignee", YAxis: "Complexity",
		}},
		{perTeam, statusColors, render.Options{
			Kind: render.KindBar, Stacked: true, Path: filepath.Join(dir, DirStatusPerTeam), Name: rn.id,
			Title: "Status per team", Subtitle: iteration.Title, XAxis: "Team", YAxis: "Complexity",
		}},
		{qa, colors(p.teams), render.Options{
			Kind: render.KindBar, Stacked: true, Path: filepath.Join(dir, DirQA), Name: rn.id,
			Title: "QA per team", Subtitle: iteration.Title, XAxis: "QA", YAxis: "Complexity",
		}},
	}

	for _, c := range charts {
		err = r.chart(rn, c.matrix, c.palette, c.opts)
		if err != nil {
			return IterationSummary{}, err
		}
	}

	summary.StatusChart = filepath.Join(DirStatusPerTeam, rn.id+render.Extension)
	summary.MemberChart = filepath.Join(DirStatusPerMember, rn.id+render.Extension)

	burns := []burnSpec{
		{ScopeCore, items, classify.AxisStatus, statuses, statusColors},
		{ScopeQA, items, classify.AxisQA, qaOptions, colors(p.qa)},
	}

	byTeam := classify.GroupBy(items, classify.AxisTeam)
	for _, team := range p.teams {
		burns = append(burns, burnSpec{TeamScope(team.Value), byTeam[team.Value], classify.AxisStatus, statuses, statusColors})
	}

	for _, b := range burns {
		today := burndown.Snapshot(b.items, b.axis, b.statuses, rn.id)

		series, buildErr := reconstructor.Build(ctx, iteration, b.scope, b.statuses, today, rn.id)
		if buildErr != nil {
			return IterationSummary{}, fmt.Errorf("iteration %s: %w", iteration.Title, buildErr)
		}

		rn.wrote(kindSnapshot, store.Path(b.scope, rn.id))

		path, renderErr := r.burnDownChart(rn, dir, series, b.palette)
		if renderErr != nil {
			return IterationSummary{}, renderErr
		}

		summary.BurnDowns[b.scope] = filepath.Base(path)
		summary.MissingDays += series.Missing
	}

	err = r.writeIterationReport(rn, p, summary, perTeam)
	if err != nil {
		return IterationSummary{}, err
	}

	rn.logger.InfoContext(ctx, "iteration processed",
		"iteration", iteration.Title, "items", len(items), "burn_downs", len(burns))

	return summary, nil
}

func (r *Runner) writeIterationReport(rn *run, p project, it IterationSummary, perTeam *aggregate.Matrix) error {
	dir := filepath.Join(r.cfg.Output.Dir, it.Dir)
	w := report.New(dir)

	w.Heading(2, "Current iteration: "+it.Title).
		Line("%s, %d days, %d items, complexity %d", it.StartDate, it.Duration+1, it.Items, it.Complexity).
		NewLine().
		Heading(3, "Last status "+rn.id).
		Chart("Current status", filepath.Join(dir, it.StatusChart)).
		Table(statusTable(perTeam)).
		Heading(3, "Core burn-down").
		Chart("Core burn-down chart", filepath.Join(dir, it.BurnDowns[ScopeCore])).
		Heading(3, "QA burn-down").
		Chart("QA burn-down chart", filepath.Join(dir, it.BurnDowns[ScopeQA]))

	for _, team := range p.teams {
		w.Heading(3, team.Value+" burn-down").
			Chart(team.Value+" burn-down chart", filepath.Join(dir, it.BurnDowns[TeamScope(team.Value)]))
	}

	w.Heading(3, "Team member status "+rn.id).
		Chart("Current member status", filepath.Join(dir, it.MemberChart))

	path, err := w.Write("")
	if err != nil {
		return fmt.Errorf("iteration %s report: %w", it.Title, err)
	}

	rn.wrote(kindReport, path)

	return nil
}

// statusTable renders a status by team matrix as table rows with a total column.
func statusTable(m *aggregate.Matrix) ([]string, [][]string) {
	labels := m.Labels()
	header := append([]string{"Status"}, labels...)
	header = append(header, "Total")

	rows := make([][]string, 0, len(m.Groups()))

	for _, group := range m.Groups() {
		row := []string{group}
		sum := 0

		for _, v := range m.Row(group) {
			row = append(row, strconv.Itoa(v))
			sum += v
		}

		rows = append(rows, append(row, strconv.Itoa(sum)))
	}

	return header, rows
}

// IterationStore returns the snapshot store of an iteration below the output root.
func IterationStore(root *snapshot.Store, title string) *snapshot.Store {
	return root.Within(workitem.Clean(title))
}

// TeamScope is the burn-down scope of a team: its cleaned name, prefixed
// with team_ when that name is one of the project-wide scopes.
func TeamScope(team string) string {
	scope := workitem.Clean(team)
	if scope == ScopeCore || scope == ScopeQA {
		return teamScopePrefix + scope
	}

	return scope
}
