package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/berkedogan/tasks-api/internal/localtime"
	"github.com/berkedogan/tasks-api/internal/redact"
	"github.com/berkedogan/tasks-api/internal/service"
)

// resetTimeout bounds one scheduled reset pass.
const resetTimeout = 2 * time.Minute

type resetRunner interface {
	Reset(ctx context.Context) (*service.ResetResult, error)
}

// newResetCron returns an unstarted cron running the reset pass on schedule,
// a standard five-field expression in the local zone. An empty schedule
// returns nil: the pass is then triggered over HTTP only.
func newResetCron(schedule string, tasks resetRunner, logger *slog.Logger) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "reset_cron"))

	c := cron.New(
		cron.WithLocation(localtime.Zone),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(schedule, func() { runScheduledReset(tasks, log) }); err != nil {
		return nil, err
	}
	return c, nil
}

func runScheduledReset(tasks resetRunner, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), resetTimeout)
	defer cancel()

	start := time.Now()
	result, err := tasks.Reset(ctx)
	if err != nil {
		log.Error("scheduled reset failed", slog.String("error", redact.Error(err)))
		return
	}

	log.Info("scheduled reset completed",
		slog.Int("hidden", result.Hidden),
		slog.Int("recycled", result.Recycled),
		slog.Int("rescheduled", result.Rescheduled),
		slog.Int("schedule_failures", result.ScheduleFailures),
		slog.Duration("duration", time.Since(start)))
}
