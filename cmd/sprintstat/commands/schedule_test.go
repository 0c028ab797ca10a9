package commands

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sprintstat/internal/config"
	"github.com/Sumatoshi-tech/sprintstat/internal/stats"
)

type stubRunner struct {
	err   error
	calls int
}

func (s *stubRunner) Run(context.Context) (stats.Summary, error) {
	s.calls++

	return stats.Summary{RunID: "2024-01-02"}, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNewScheduler_NextRun(t *testing.T) {
	t.Parallel()

	job := &scheduledJob{runner: &stubRunner{}, logger: discardLogger()}

	scheduler, err := newScheduler(config.ScheduleConfig{Cron: "0 6 * * *", Timezone: "Europe/Berlin"}, job, discardLogger())
	require.NoError(t, err)

	scheduler.Start()
	defer scheduler.Stop()

	next := nextRun(scheduler)()

	require.False(t, next.IsZero())
	assert.True(t, next.After(time.Now()))
	assert.Equal(t, 6, next.Hour())
	assert.Equal(t, "Europe/Berlin", next.Location().String())
}

func TestNewScheduler_Errors(t *testing.T) {
	t.Parallel()

	job := &scheduledJob{runner: &stubRunner{}, logger: discardLogger()}

	_, err := newScheduler(config.ScheduleConfig{Cron: "not a schedule"}, job, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse schedule")

	_, err = newScheduler(config.ScheduleConfig{Cron: "0 6 * * *", Timezone: "Mars/Olympus"}, job, discardLogger())
	require.ErrorIs(t, err, config.ErrInvalidTimezone)
}

func TestScheduledJob_Readiness(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{err: errors.New("upstream down")}
	job := &scheduledJob{runner: runner, logger: discardLogger()}

	require.NoError(t, job.ready(context.Background()), "ready before the first run")

	job.Run()

	err := job.ready(context.Background())
	require.ErrorIs(t, err, ErrNoSuccessfulRun)
	assert.Contains(t, err.Error(), "upstream down")

	runner.err = nil
	job.Run()

	require.NoError(t, job.ready(context.Background()))
	assert.Equal(t, 2, runner.calls)
}

func TestCronLogger(t *testing.T) {
	t.Parallel()

	var records []slog.Record

	logger := slog.New(recordHandler{records: &records})
	cl := cronLogger{logger: logger}

	cl.Info("wake", "now", "2024-01-02")
	cl.Error(errors.New("boom"), "panic", "job", "stats")

	require.Len(t, records, 2)
	assert.Equal(t, slog.LevelDebug, records[0].Level)
	assert.Equal(t, "cron: wake", records[0].Message)
	assert.Equal(t, slog.LevelError, records[1].Level)
	assert.Equal(t, 2, records[1].NumAttrs())
}

type recordHandler struct {
	records *[]slog.Record
}

func (h recordHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h recordHandler) Handle(_ context.Context, r slog.Record) error {
	*h.records = append(*h.records, r)

	return nil
}

func (h recordHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h recordHandler) WithGroup(string) slog.Handler      { return h }
