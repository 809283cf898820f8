package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/berkedogan/tasks-api/internal/domain"
	"github.com/berkedogan/tasks-api/internal/localtime"
	"github.com/berkedogan/tasks-api/internal/platform/logger"
	"github.com/berkedogan/tasks-api/internal/platform/qstash"
	"github.com/berkedogan/tasks-api/internal/redact"
	"github.com/berkedogan/tasks-api/internal/store"
)

// DefaultTestDelay is how far ahead a reminder with the TEST notify time fires.
const DefaultTestDelay = 30 * time.Second

// ReminderQueue publishes and deletes delayed messages.
// Delete must return an error wrapping qstash.ErrMessageNotFound when the
// message has already fired or never existed.
type ReminderQueue interface {
	Publish(ctx context.Context, destination string, payload any, notBefore time.Time) (string, error)
	Delete(ctx context.Context, messageID string) error
}

// Scheduler schedules and cancels task reminders.
type Scheduler interface {
	// Schedule publishes a reminder for the task and records its job id.
	// It returns "" and a nil error when the task wants no reminder.
	Schedule(ctx context.Context, task *domain.Task) (string, error)

	// Cancel deletes a pending reminder job. Unknown jobs are not an error.
	Cancel(ctx context.Context, jobID string) error
}

// SchedulerConfig holds the scheduler settings.
type SchedulerConfig struct {
	// CallbackURL is the delivery endpoint the queue calls when a reminder fires.
	CallbackURL string
	// TestDelay overrides DefaultTestDelay when positive.
	TestDelay time.Duration
}

// ReminderScheduler is the Scheduler backed by a delayed-message queue.
// A nil queue means the queue is unconfigured and every call is a no-op.
type ReminderScheduler struct {
	queue       ReminderQueue
	tasks       store.TaskStore
	callbackURL string
	testDelay   time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

var _ Scheduler = (*ReminderScheduler)(nil)

// NewReminderScheduler creates a ReminderScheduler.
// It returns an error if the task store is nil, or if a queue is given
// without a callback URL.
func NewReminderScheduler(
	queue ReminderQueue,
	tasks store.TaskStore,
	cfg SchedulerConfig,
	logger *slog.Logger,
) (*ReminderScheduler, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if queue != nil && cfg.CallbackURL == "" {
		return nil, domain.NewValidationError("callbackURL", "is required when a queue is configured", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	testDelay := cfg.TestDelay
	if testDelay <= 0 {
		testDelay = DefaultTestDelay
	}

	return &ReminderScheduler{
		queue:       queue,
		tasks:       tasks,
		callbackURL: cfg.CallbackURL,
		testDelay:   testDelay,
		now:         time.Now,
		logger:      logger.With(slog.String("component", "reminder_scheduler")),
	}, nil
}

// FireTime returns the instant a reminder with the given notify time should
// fire, relative to now.
func (s *ReminderScheduler) FireTime(notifyTime string, now time.Time) (time.Time, error) {
	if notifyTime == domain.TestNotifyTime {
		return now.Add(s.testDelay), nil
	}
	hour, minute, err := localtime.ParseWallClock(notifyTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid notify time %q: %w", notifyTime, err)
	}
	return localtime.NextOccurrence(hour, minute, now), nil
}

// Schedule implements Scheduler. Any job the task already holds is cancelled
// first on a best-effort basis.
func (s *ReminderScheduler) Schedule(ctx context.Context, task *domain.Task) (string, error) {
	if task == nil || !task.WantsReminder() || s.queue == nil {
		return "", nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("task_id", task.ID))

	previousJobID := task.JobID()
	if previousJobID != "" {
		// failures are logged by Cancel; the new job replaces the old id either way
		_ = s.Cancel(ctx, previousJobID)
	}

	fireAt, err := s.FireTime(task.NotifyTimeValue(), s.now())
	if err != nil {
		log.Warn("cannot compute reminder fire time",
			slog.String("notify_time", task.NotifyTimeValue()),
			slog.String("error", err.Error()))
		if previousJobID != "" {
			s.clearStaleJobID(ctx, log, task.ID)
		}
		return "", &SchedulerError{Operation: "schedule", TaskID: task.ID, Err: err}
	}

	jobID, err := s.queue.Publish(ctx, s.callbackURL, domain.ReminderTrigger{TaskID: task.ID}, fireAt)
	if err != nil {
		log.Warn("failed to publish reminder",
			slog.String("fire_at", localtime.ISOString(fireAt)),
			slog.String("error", redact.Error(err)))
		if previousJobID != "" {
			s.clearStaleJobID(ctx, log, task.ID)
		}
		return "", &SchedulerError{Operation: "schedule", TaskID: task.ID, Err: err}
	}

	if err := s.tasks.SetReminderJobID(ctx, task.ID, jobID); err != nil {
		log.Warn("failed to record reminder job id",
			slog.String("job_id", jobID),
			slog.String("error", redact.Error(err)))
		return "", &SchedulerError{Operation: "schedule", TaskID: task.ID, JobID: jobID, Err: err}
	}

	log.Info("reminder scheduled",
		slog.String("job_id", jobID),
		slog.String("fire_at", localtime.ISOString(fireAt)))
	return jobID, nil
}

// Cancel implements Scheduler.
func (s *ReminderScheduler) Cancel(ctx context.Context, jobID string) error {
	if jobID == "" || s.queue == nil {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("job_id", jobID))

	err := s.queue.Delete(ctx, jobID)
	switch {
	case err == nil:
		log.Debug("reminder cancelled")
		return nil
	case errors.Is(err, qstash.ErrMessageNotFound):
		log.Debug("reminder already fired or unknown")
		return nil
	default:
		log.Warn("failed to cancel reminder", slog.String("error", redact.Error(err)))
		return &SchedulerError{Operation: "cancel", JobID: jobID, Err: err}
	}
}

func (s *ReminderScheduler) clearStaleJobID(ctx context.Context, log *slog.Logger, taskID int64) {
	if err := s.tasks.ClearReminderJobID(ctx, taskID); err != nil {
		log.Warn("failed to clear stale reminder job id", slog.String("error", redact.Error(err)))
	}
}
