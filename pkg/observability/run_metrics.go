package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRunsTotal         = "sprintstat.runs.total"
	metricRunDuration       = "sprintstat.run.duration.seconds"
	metricItemsFetched      = "sprintstat.items.fetched.total"
	metricIterationsTotal   = "sprintstat.iterations.processed.total"
	metricArtifactsTotal    = "sprintstat.artifacts.written.total"
	metricSnapshotDaysTotal = "sprintstat.snapshot.days.total"
	metricStageDuration     = "sprintstat.stage.duration.seconds"
	metricNextRun           = "sprintstat.schedule.next_run.timestamp"

	attrStage  = "stage"
	attrKind   = "kind"
	attrResult = "result"

	resultFound   = "found"
	resultMissing = "missing"
)

// Stage is the timing of one named step of a run.
type Stage struct {
	Name     string
	Duration time.Duration
}

// RunStats summarizes one batch run, decoupled from the stats package types.
type RunStats struct {
	Failed      bool
	Duration    time.Duration
	Items       int
	Iterations  int
	Artifacts   map[string]int
	DaysFound   int
	DaysMissing int
	Stages      []Stage
}

// RunMetrics holds the instruments describing batch runs.
type RunMetrics struct {
	runsTotal     metric.Int64Counter
	runDuration   metric.Float64Histogram
	itemsFetched  metric.Int64Counter
	iterations    metric.Int64Counter
	artifacts     metric.Int64Counter
	snapshotDays  metric.Int64Counter
	stageDuration metric.Float64Histogram
}

// NewRunMetrics creates run instruments from the given meter.
func NewRunMetrics(mt metric.Meter) (*RunMetrics, error) {
	set := newInstrumentSet(mt)

	rm := &RunMetrics{
		runsTotal:     set.counter(metricRunsTotal, "Completed runs by status", "{run}"),
		runDuration:   set.seconds(metricRunDuration, "Run duration in seconds"),
		itemsFetched:  set.counter(metricItemsFetched, "Work items fetched from the source", "{item}"),
		iterations:    set.counter(metricIterationsTotal, "Active iterations processed", "{iteration}"),
		artifacts:     set.counter(metricArtifactsTotal, "Artifacts written by kind", "{artifact}"),
		snapshotDays:  set.counter(metricSnapshotDaysTotal, "Burn-down days read back by result", "{day}"),
		stageDuration: set.seconds(metricStageDuration, "Run stage duration in seconds"),
	}

	err := set.err()
	if err != nil {
		return nil, fmt.Errorf("run metrics: %w", err)
	}

	return rm, nil
}

// RecordRun records the statistics of a finished run. Safe on a nil receiver.
func (rm *RunMetrics) RecordRun(ctx context.Context, stats RunStats) {
	if rm == nil {
		return
	}

	status := StatusOK
	if stats.Failed {
		status = StatusError
	}

	rm.runsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
	rm.runDuration.Record(ctx, stats.Duration.Seconds())
	rm.itemsFetched.Add(ctx, int64(stats.Items))
	rm.iterations.Add(ctx, int64(stats.Iterations))

	for kind, n := range stats.Artifacts {
		rm.artifacts.Add(ctx, int64(n), metric.WithAttributes(attribute.String(attrKind, kind)))
	}

	rm.snapshotDays.Add(ctx, int64(stats.DaysFound), metric.WithAttributes(attribute.String(attrResult, resultFound)))
	rm.snapshotDays.Add(ctx, int64(stats.DaysMissing), metric.WithAttributes(attribute.String(attrResult, resultMissing)))

	for _, st := range stats.Stages {
		rm.stageDuration.Record(ctx, st.Duration.Seconds(), metric.WithAttributes(attribute.String(attrStage, st.Name)))
	}
}

// RegisterNextRun reports the unix time returned by next as the scheduler's
// next planned run. A zero time is not reported.
func RegisterNextRun(mt metric.Meter, next func() time.Time) error {
	set := newInstrumentSet(mt)
	gauge := set.timestamp(metricNextRun, "Unix time of the next scheduled run")

	err := set.err()
	if err != nil {
		return err
	}

	_, err = mt.RegisterCallback(func(_ context.Context, obs metric.Observer) error {
		if t := next(); !t.IsZero() {
			obs.ObserveInt64(gauge, t.Unix())
		}

		return nil
	}, gauge)
	if err != nil {
		return fmt.Errorf("register %s: %w", metricNextRun, err)
	}

	return nil
}
