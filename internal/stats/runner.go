// Package stats runs the daily sprint statistics job: it fetches the project
// items once, renders the distribution charts, rebuilds every burn-down of the
// active iterations and writes the markdown reports.
package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/sprintstat/internal/config"
	"github.com/Sumatoshi-tech/sprintstat/pkg/aggregate"
	"github.com/Sumatoshi-tech/sprintstat/pkg/burndown"
	"github.com/Sumatoshi-tech/sprintstat/pkg/classify"
	"github.com/Sumatoshi-tech/sprintstat/pkg/observability"
	"github.com/Sumatoshi-tech/sprintstat/pkg/persist"
	"github.com/Sumatoshi-tech/sprintstat/pkg/render"
	"github.com/Sumatoshi-tech/sprintstat/pkg/snapshot"
	"github.com/Sumatoshi-tech/sprintstat/pkg/workitem"
)

const tracerName = "sprintstat/stats"

// Artifact directories and scopes below the output root.
const (
	DirTotalComplexity  = "total_complexity"
	DirMemberComplexity = "member_complexity"
	DirStatusPerMember  = "status_per_teammember"
	DirStatusPerTeam    = "status_per_team"
	DirQA               = "qa"

	ScopeCore = "core"
	ScopeQA   = "qa"

	teamScopePrefix = "team_"

	burnDownSuffix = "_burn_down"
	lastRunName    = "last_run"
)

// ErrNoSource is returned when a Runner is built without an item source.
var ErrNoSource = errors.New("stats runner has no item source")

// Runner executes one statistics run against a source and an output directory.
type Runner struct {
	cfg     config.Config
	source  workitem.Source
	store   *snapshot.Store
	sink    render.Sink
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.RunMetrics
	now     func() time.Time
	loc     *time.Location
	last    *persist.Persister[Summary]
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithTracer sets the tracer used for run spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) {
		r.tracer = tracer
	}
}

// WithMetrics records every finished run on m.
func WithMetrics(m *observability.RunMetrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithClock replaces the wall clock the run id and active iterations derive from.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithSink replaces the chart sink.
func WithSink(sink render.Sink) Option {
	return func(r *Runner) {
		r.sink = sink
	}
}

// NewRunner creates a runner writing below cfg.Output.Dir.
func NewRunner(cfg config.Config, source workitem.Source, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		source: source,
		sink:   render.NewHTMLSink(render.ParseTheme(cfg.Output.Theme)),
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
		loc:    runLocation(cfg.Schedule.Timezone),
		last:   newLastRun(),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.store = snapshot.NewStore(cfg.Output.Dir,
		snapshot.WithCompressedItems(cfg.Snapshots.CompressItems),
		snapshot.WithLogger(r.logger),
	)

	return r
}

// runLocation is the zone whose calendar day names a run: the schedule
// timezone, or UTC when none is set.
func runLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}

	return loc
}

// Store returns the snapshot store rooted at the output directory.
func (r *Runner) Store() *snapshot.Store {
	return r.store
}

// LastRun loads the summary of the previous successful run.
func (r *Runner) LastRun() (*Summary, error) {
	return r.last.Load(r.cfg.Output.Dir)
}

// LoadLastRun loads the summary of the last successful run written below dir.
// A directory without one yields an error wrapping persist.ErrStateNotFound.
func LoadLastRun(dir string) (*Summary, error) {
	return newLastRun().Load(dir)
}

func newLastRun() *persist.Persister[Summary] {
	return persist.NewPersister[Summary](lastRunName, persist.NewJSONCodec())
}

// project is everything fetched from the source for one run.
type project struct {
	items      []workitem.Item
	teams      []workitem.Field
	statuses   []workitem.Field
	qa         []workitem.Field
	iterations []workitem.Iteration
}

// run is the per-invocation state.
type run struct {
	id        string
	today     time.Time
	logger    *slog.Logger
	summary   *Summary
	artifacts map[string]int
	found     int
	missing   int
	stages    []observability.Stage
}

func (rn *run) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	rn.stages = append(rn.stages, observability.Stage{Name: name, Duration: time.Since(start)})

	return err
}

func (rn *run) wrote(kind, path string) {
	rn.artifacts[kind]++
	rn.summary.Artifacts = append(rn.summary.Artifacts, path)
}

// Run fetches the project, renders every chart and report and returns the
// run summary. A fetch failure aborts the run before anything is written.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if r.source == nil {
		return Summary{}, ErrNoSource
	}

	logger, invocation := observability.WithInvocation(r.logger)
	started := r.now().In(r.loc)
	runID := workitem.DayLabel(started)

	ctx, span := r.tracer.Start(ctx, "stats.Run", trace.WithAttributes(attribute.String("run.id", runID)))
	defer span.End()

	rn := &run{
		id:        runID,
		today:     workitem.Day(started, 0),
		logger:    logger,
		summary:   &Summary{RunID: runID, Invocation: invocation, StartedAt: started},
		artifacts: make(map[string]int),
	}

	logger.InfoContext(ctx, "run started", "run_id", runID, "output", r.cfg.Output.Dir)

	err := r.execute(ctx, rn)

	rn.summary.Duration = time.Since(started)
	r.metrics.RecordRun(ctx, observability.RunStats{
		Failed:      err != nil,
		Duration:    rn.summary.Duration,
		Items:       rn.summary.Items,
		Iterations:  len(rn.summary.Iterations),
		Artifacts:   rn.artifacts,
		DaysFound:   rn.found,
		DaysMissing: rn.missing,
		Stages:      rn.stages,
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		logger.ErrorContext(ctx, "run failed", "error", err)

		return Summary{}, err
	}

	saveErr := r.last.Save(r.cfg.Output.Dir, rn.summary)
	if saveErr != nil {
		return Summary{}, fmt.Errorf("save run summary: %w", saveErr)
	}

	logger.InfoContext(ctx, "run finished",
		"items", rn.summary.Items, "iterations", len(rn.summary.Iterations),
		"artifacts", len(rn.summary.Artifacts), "duration", rn.summary.Duration)

	return *rn.summary, nil
}

func (r *Runner) execute(ctx context.Context, rn *run) error {
	var p project

	err := rn.stage("fetch", func() error {
		var fetchErr error

		p, fetchErr = r.fetch(ctx)

		return fetchErr
	})
	if err != nil {
		return err
	}

	rn.summary.Items = len(p.items)
	rn.summary.TotalComplexity = totalComplexity(p.items)

	err = rn.stage("overview", func() error {
		return r.renderOverview(rn, p)
	})
	if err != nil {
		return err
	}

	byIteration := classify.GroupBy(p.items, classify.AxisIteration)

	var current *IterationSummary

	for _, iteration := range p.iterations {
		items := byIteration[iteration.Title]
		if len(items) == 0 || !iteration.Active(rn.today) {
			continue
		}

		var it IterationSummary

		err = rn.stage("iteration", func() error {
			var iterErr error

			it, iterErr = r.processIteration(ctx, rn, p, iteration, items)

			return iterErr
		})
		if err != nil {
			return err
		}

		rn.summary.Iterations = append(rn.summary.Iterations, it)
		current = &rn.summary.Iterations[len(rn.summary.Iterations)-1]
	}

	if current != nil {
		rn.summary.Current = current.Title
	}

	return rn.stage("report", func() error {
		return r.writeRootReport(rn, p, current)
	})
}

func (r *Runner) fetch(ctx context.Context) (project, error) {
	ctx, span := r.tracer.Start(ctx, "stats.fetch")
	defer span.End()

	fields := r.cfg.Source.Fields

	var (
		p   project
		err error
	)

	p.items, err = r.source.FetchItems(ctx)
	if err != nil {
		return fail(span, fmt.Errorf("fetch items: %w", err))
	}

	p.teams, err = r.source.FetchEnumeration(ctx, fields.Team)
	if err != nil {
		return fail(span, fmt.Errorf("fetch teams: %w", err))
	}

	p.statuses, err = r.source.FetchEnumeration(ctx, fields.Status)
	if err != nil {
		return fail(span, fmt.Errorf("fetch statuses: %w", err))
	}

	p.qa, err = r.source.FetchEnumeration(ctx, fields.QA)
	if err != nil {
		return fail(span, fmt.Errorf("fetch qa options: %w", err))
	}

	p.iterations, err = r.source.FetchIterations(ctx, false)
	if err != nil {
		return fail(span, fmt.Errorf("fetch iterations: %w", err))
	}

	span.SetAttributes(
		attribute.Int("sprintstat.items", len(p.items)),
		attribute.Int("sprintstat.iterations", len(p.iterations)),
	)

	return p, nil
}

func fail(span trace.Span, err error) (project, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "fetch failed")

	return project{}, err
}

// renderOverview renders the project-wide total and recent member complexity charts.
func (r *Runner) renderOverview(rn *run, p project) error {
	out := r.cfg.Output.Dir

	total := aggregate.Aggregate(p.items,
		classify.Derived(classify.AxisIteration),
		classify.Derived(classify.AxisTeam),
		aggregate.ComplexitySum(classify.AxisIteration, classify.AxisTeam),
	)

	err := r.chart(rn, total, colors(p.teams), render.Options{
		Kind:  render.KindBar,
		Path:  filepath.Join(out, DirTotalComplexity),
		Name:  rn.id,
		Title: "Total complexity",
		XAxis: "Iteration",
		YAxis: "Complexity",
	})
	if err != nil {
		return err
	}

	recent := recentTitles(p.iterations, rn.today, r.cfg.Output.RecentIterations)
	recentItems := slices.DeleteFunc(slices.Clone(p.items), func(item workitem.Item) bool {
		return !slices.Contains(recent, classify.Classify(item, classify.AxisIteration))
	})

	members := aggregate.Aggregate(recentItems,
		classify.Derived(classify.AxisAssignee),
		classify.Derived(classify.AxisIteration),
		aggregate.ComplexitySum(classify.AxisAssignee, classify.AxisIteration),
	)

	return r.chart(rn, members, nil, render.Options{
		Kind:  render.KindBar,
		Path:  filepath.Join(out, DirMemberComplexity),
		Name:  rn.id,
		Title: "Member complexity",
		XAxis: "Assignee",
		YAxis: "Complexity",
	})
}

func (r *Runner) chart(rn *run, m *aggregate.Matrix, palette map[string]string, o render.Options) error {
	labels, datasets := render.FromMatrix(m, palette)

	path, err := r.sink.Render(labels, datasets, o)
	if err != nil {
		return fmt.Errorf("render %s: %w", o.Name, err)
	}

	rn.wrote(kindChart, path)

	return nil
}

func (r *Runner) burnDownChart(rn *run, dir string, series burndown.Series, palette map[string]string) (string, error) {
	labels, datasets := render.FromSeries(series, palette)

	path, err := r.sink.Render(labels, datasets, render.Options{
		Kind:    render.KindLine,
		Stacked: true,
		Path:    dir,
		Name:    series.Scope + burnDownSuffix,
		Title:   series.Scope + " burn-down",
		XAxis:   "Day",
		YAxis:   "Complexity",
	})
	if err != nil {
		return "", fmt.Errorf("render %s burn-down: %w", series.Scope, err)
	}

	rn.wrote(kindChart, path)
	rn.found += len(series.Days) - series.Missing
	rn.missing += series.Missing

	return path, nil
}

// recentTitles returns the titles of the n most recently started iterations.
func recentTitles(iterations []workitem.Iteration, today time.Time, n int) []string {
	started := make([]workitem.Iteration, 0, len(iterations))

	for _, it := range iterations {
		if it.Started(today) {
			started = append(started, it)
		}
	}

	slices.SortStableFunc(started, func(a, b workitem.Iteration) int {
		return a.StartDate.Compare(b.StartDate)
	})

	if n > 0 && len(started) > n {
		started = started[len(started)-n:]
	}

	titles := make([]string, 0, len(started))
	for _, it := range started {
		titles = append(titles, it.Title)
	}

	return titles
}

func values(fields []workitem.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Value)
	}

	return out
}

func colors(fields []workitem.Field) map[string]string {
	out := make(map[string]string, len(fields))

	for _, f := range fields {
		if f.Color != "" {
			out[f.Value] = f.Color
		}
	}

	return out
}

func totalComplexity(items []workitem.Item) int {
	var total int

	for _, item := range items {
		if v, ok := aggregate.Complexity(item); ok {
			total += v
		}
	}

	return total
}
