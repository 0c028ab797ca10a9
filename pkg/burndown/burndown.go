// Package burndown reconstructs per-status burn-down series for an iteration
// from the daily snapshots persisted in a snapshot.Store.
package burndown

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/sprintstat/pkg/aggregate"
	"github.com/Sumatoshi-tech/sprintstat/pkg/classify"
	"github.com/Sumatoshi-tech/sprintstat/pkg/snapshot"
	"github.com/Sumatoshi-tech/sprintstat/pkg/workitem"
)

const tracerName = "sprintstat/burndown"

// Dataset is the series of one status, one value per iteration day.
type Dataset struct {
	Label  string `json:"label"`
	Values []int  `json:"values"`
}

// Series is a reconstructed burn-down: parallel day labels and per-status values.
type Series struct {
	Scope    string    `json:"scope"`
	Days     []string  `json:"days"`
	Datasets []Dataset `json:"datasets"`
	// Missing counts the days without a persisted snapshot.
	Missing int `json:"missing"`
}

// Values returns the series of a status, or nil when the status is not part of it.
func (s Series) Values(status string) []int {
	for _, ds := range s.Datasets {
		if ds.Label == status {
			return ds.Values
		}
	}

	return nil
}

// Snapshot computes today's single-column burn-down matrix: one complexity sum per
// status, where an item's status is read on axis, under the run id label.
func Snapshot(items []workitem.Item, axis classify.Axis, statuses []string, runID string) *aggregate.Matrix {
	return aggregate.Aggregate(items,
		classify.Static(runID),
		classify.Static(statuses...),
		aggregate.ComplexitySum(classify.AxisNone, axis),
	)
}

// Reconstructor rebuilds burn-down series from a snapshot store.
type Reconstructor struct {
	store  *snapshot.Store
	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithLogger sets the reconstructor's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconstructor) {
		r.logger = logger
	}
}

// WithTracer sets the tracer used for reconstruction spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Reconstructor) {
		r.tracer = tracer
	}
}

// NewReconstructor creates a reconstructor reading and writing store.
func NewReconstructor(store *snapshot.Store, opts ...Option) *Reconstructor {
	r := &Reconstructor{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Build persists today's matrix under (scope, runID) and then reconstructs the
// iteration's series, so today's point is read back through the same path as
// every historical day.
func (r *Reconstructor) Build(
	ctx context.Context, iteration workitem.Iteration, scope string,
	statuses []string, today *aggregate.Matrix, runID string,
) (Series, error) {
	err := iteration.Validate()
	if err != nil {
		return Series{}, err
	}

	err = r.store.Persist(scope, runID, today)
	if err != nil {
		return Series{}, fmt.Errorf("build burn-down %s: %w", scope, err)
	}

	return r.History(ctx, iteration, scope, statuses)
}

// History reconstructs the iteration's series from persisted snapshots only.
// The result always holds iteration.Duration+1 points per status. A day without
// a snapshot is all zeros; a status missing from a snapshot is zero for that day.
func (r *Reconstructor) History(
	ctx context.Context, iteration workitem.Iteration, scope string, statuses []string,
) (Series, error) {
	ctx, span := r.tracer.Start(ctx, "burndown.History", trace.WithAttributes(
		attribute.String("burndown.scope", scope),
		attribute.String("burndown.iteration", iteration.Title),
		attribute.Int("burndown.duration", iteration.Duration),
	))
	defer span.End()

	err := iteration.Validate()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return Series{}, err
	}

	statuses = classify.Static(statuses...)
	days := iteration.Days()

	series := Series{
		Scope:    scope,
		Days:     make([]string, len(days)),
		Datasets: make([]Dataset, len(statuses)),
	}

	for si, status := range statuses {
		series.Datasets[si] = Dataset{Label: status, Values: make([]int, len(days))}
	}

	for di, day := range days {
		label := workitem.DayLabel(day)
		series.Days[di] = label

		m, ok, loadErr := r.loadDay(ctx, scope, label)
		if loadErr != nil {
			span.RecordError(loadErr)
			span.SetStatus(codes.Error, "snapshot load failed")

			return Series{}, fmt.Errorf("burn-down %s day %d: %w", scope, di, loadErr)
		}

		if !ok {
			series.Missing++

			continue
		}

		fill(series.Datasets, di, m)
	}

	span.SetAttributes(attribute.Int("burndown.missing_days", series.Missing))
	r.logger.DebugContext(ctx, "burn-down reconstructed",
		"scope", scope, "iteration", iteration.Title, "days", len(days), "missing", series.Missing)

	return series, nil
}

func (r *Reconstructor) loadDay(ctx context.Context, scope, day string) (*aggregate.Matrix, bool, error) {
	_, span := r.tracer.Start(ctx, "burndown.day", trace.WithAttributes(attribute.String("burndown.day", day)))
	defer span.End()

	m, ok, err := r.store.Load(scope, day)
	span.SetAttributes(attribute.Bool("snapshot.found", ok))

	return m, ok, err
}

// fill copies the first label column of m into position day of each dataset.
func fill(datasets []Dataset, day int, m *aggregate.Matrix) {
	labels := m.Labels()
	if len(labels) == 0 {
		return
	}

	column := m.Column(labels[0])

	for i := range datasets {
		datasets[i].Values[day] = column[datasets[i].Label]
	}
}
