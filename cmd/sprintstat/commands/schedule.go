package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sprintstat/internal/config"
	"github.com/Sumatoshi-tech/sprintstat/internal/stats"
	"github.com/Sumatoshi-tech/sprintstat/pkg/observability"
)

// ErrNoSuccessfulRun is reported by the readiness probe after a failed run.
var ErrNoSuccessfulRun = errors.New("last scheduled run failed")

// diagnosticsShutdownTimeout bounds the diagnostics server shutdown.
const diagnosticsShutdownTimeout = 5 * time.Second

// ScheduleCommand holds the flags of the schedule command.
type ScheduleCommand struct {
	cron     string
	timezone string
	runNow   bool
}

// NewScheduleCommand creates the schedule command.
func NewScheduleCommand() *cobra.Command {
	sc := &ScheduleCommand{}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the statistics job on a cron schedule",
		Long: `Run the statistics job on a cron schedule (default: daily at 06:00) until
interrupted. With schedule.diagnostics_addr set, /healthz, /readyz and /metrics
are served on that address.`,
		Args: cobra.NoArgs,
		RunE: sc.run,
	}

	registerConfigFlags(cmd)
	cmd.Flags().StringVar(&sc.cron, "cron", "", "Cron expression (overrides schedule.cron)")
	cmd.Flags().StringVar(&sc.timezone, "timezone", "", "IANA timezone the expression is read in (overrides schedule.timezone)")
	cmd.Flags().BoolVar(&sc.runNow, "run-now", false, "Run once immediately before waiting for the schedule")

	return cmd
}

func (sc *ScheduleCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if sc.cron != "" {
		cfg.Schedule.Cron = sc.cron
	}

	if sc.timezone != "" {
		cfg.Schedule.Timezone = sc.timezone
	}

	providers, err := initObservability(cfg, observability.ModeSchedule)
	if err != nil {
		return err
	}
	defer shutdownProviders(providers)

	runner, err := newRunner(cfg, providers)
	if err != nil {
		return err
	}

	job := &scheduledJob{runner: runner, logger: providers.Logger}

	scheduler, err := newScheduler(cfg.Schedule, job, providers.Logger)
	if err != nil {
		return err
	}

	err = observability.RegisterNextRun(providers.Meter, nextRun(scheduler))
	if err != nil {
		return err
	}

	if cfg.Schedule.DiagnosticsAddr != "" {
		diag, diagErr := observability.NewDiagnosticsServer(cfg.Schedule.DiagnosticsAddr,
			providers.Registry, providers.Tracer, providers.Logger, job.ready)
		if diagErr != nil {
			return diagErr
		}

		defer closeDiagnostics(diag, providers.Logger)

		providers.Logger.Info("diagnostics server listening", "addr", diag.Addr())
	}

	ctx := cmd.Context()
	job.ctx = ctx

	if sc.runNow {
		job.Run()
	}

	scheduler.Start()
	providers.Logger.Info("scheduler started",
		"cron", cfg.Schedule.Cron, "timezone", cfg.Schedule.Timezone, "next_run", nextRun(scheduler)())

	<-ctx.Done()

	<-scheduler.Stop().Done()
	providers.Logger.Info("scheduler stopped")

	return nil
}

// newScheduler parses the configured expression in its timezone and
// registers job, skipping a tick while the previous run is still going.
func newScheduler(cfg config.ScheduleConfig, job cron.Job, logger *slog.Logger) (*cron.Cron, error) {
	loc := time.UTC

	if cfg.Timezone != "" {
		var err error

		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", config.ErrInvalidTimezone, cfg.Timezone)
		}
	}

	cronLogger := cronLogger{logger: logger}

	scheduler := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	_, err := scheduler.AddJob(cfg.Cron, job)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", cfg.Cron, err)
	}

	return scheduler, nil
}

// nextRun reports the next planned run of the scheduler, zero when none is planned.
func nextRun(scheduler *cron.Cron) func() time.Time {
	return func() time.Time {
		entries := scheduler.Entries()
		if len(entries) == 0 {
			return time.Time{}
		}

		return entries[0].Next
	}
}

func closeDiagnostics(diag *observability.DiagnosticsServer, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), diagnosticsShutdownTimeout)
	defer cancel()

	err := diag.Close(ctx)
	if err != nil {
		logger.Warn("diagnostics shutdown failed", "error", err)
	}
}

// scheduledJob runs the statistics job on each tick and remembers the outcome
// for the readiness probe.
type scheduledJob struct {
	runner interface {
		Run(ctx context.Context) (stats.Summary, error)
	}
	logger *slog.Logger
	ctx    context.Context //nolint:containedctx // cron jobs take no context

	mu      sync.Mutex
	lastErr error
}

// Run implements cron.Job.
func (j *scheduledJob) Run() {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	summary, err := j.runner.Run(ctx)

	j.mu.Lock()
	j.lastErr = err
	j.mu.Unlock()

	if err != nil {
		j.logger.Error("scheduled run failed", "error", err)

		return
	}

	j.logger.Info("scheduled run finished",
		"run_id", summary.RunID, "iterations", len(summary.Iterations), "artifacts", len(summary.Artifacts))
}

// ready fails while the most recent run failed.
func (j *scheduledJob) ready(_ context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.lastErr != nil {
		return fmt.Errorf("%w: %w", ErrNoSuccessfulRun, j.lastErr)
	}

	return nil
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

// Info implements cron.Logger. Routine scheduler chatter is logged at debug.
func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

// Error implements cron.Logger.
func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
