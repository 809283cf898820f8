package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/berkedogan/tasks-api/internal/domain"
	"github.com/berkedogan/tasks-api/internal/platform/logger"
	"github.com/berkedogan/tasks-api/internal/redact"
	"github.com/berkedogan/tasks-api/internal/store"
)

// ResetResult summarizes a reconciliation pass.
type ResetResult struct {
	Hidden           int `json:"hidden"`
	Recycled         int `json:"recycled"`
	Rescheduled      int `json:"rescheduled"`
	ScheduleFailures int `json:"scheduleFailures"`
}

// TaskService is the task lifecycle engine. Callers are expected to be
// authenticated before reaching it.
type TaskService struct {
	db        *sql.DB
	tasks     store.TaskStore
	scheduler Scheduler
	now       func() time.Time
	logger    *slog.Logger
}

// TaskServiceOption configures optional TaskService behavior.
type TaskServiceOption func(*TaskService)

// WithClock replaces time.Now as the source of the current instant.
func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *TaskService) {
		s.now = now
	}
}

// NewTaskService creates a TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	db *sql.DB,
	tasks store.TaskStore,
	scheduler Scheduler,
	logger *slog.Logger,
	opts ...TaskServiceOption,
) (*TaskService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if scheduler == nil {
		return nil, domain.NewValidationError("scheduler", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &TaskService{
		db:        db,
		tasks:     tasks,
		scheduler: scheduler,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "task_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// List returns the visible tasks ordered by id.
func (s *TaskService) List(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListVisible(ctx)
	if err != nil {
		return nil, newServiceError("task", "list", "failed to list tasks", err)
	}
	return tasks, nil
}

// Create stores a new task with a deadline interval days from now and
// schedules its reminder when one is wanted. A scheduling failure does not
// fail the creation.
func (s *TaskService) Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	input.Normalize()
	if err := input.ValidateForCreate(); err != nil {
		return nil, err
	}

	task, err := s.tasks.Create(ctx, input, domain.DeadlineFrom(s.now(), input.Interval))
	if err != nil {
		log.Error("failed to create task", slog.String("error", redact.Error(err)))
		return nil, newServiceError("task", "create", "failed to save task", err)
	}

	s.scheduleFor(ctx, task)

	log.Info("task created", slog.Int64("task_id", task.ID))
	return task, nil
}

// Complete toggles the completed flag of a task. Completing cancels a
// pending reminder; uncompleting schedules a fresh one when wanted.
func (s *TaskService) Complete(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("task_id", id))

	if id <= 0 {
		return nil, domain.NewValidationError("id", "must be a positive integer", domain.ErrInvalidID)
	}

	result, err := s.tasks.ToggleCompleted(ctx, id, s.now())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to toggle task", slog.String("error", redact.Error(err)))
		}
		return nil, newServiceError("task", "complete", "failed to toggle task", err)
	}
	task := result.Task

	if task.Completed {
		// the store already cleared the stored id in the toggle statement
		if result.PreviousJobID != "" {
			_ = s.scheduler.Cancel(ctx, result.PreviousJobID)
		}
	} else {
		s.scheduleFor(ctx, task)
	}

	log.Info("task toggled", slog.Bool("completed", task.Completed))
	return task, nil
}

// Update replaces the editable fields of a task. The deadline is recomputed
// from a positive interval and cleared otherwise. The reminder is
// rescheduled when the new state wants one and cancelled when it doesn't.
func (s *TaskService) Update(ctx context.Context, id int64, input domain.TaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("task_id", id))

	if id <= 0 {
		return nil, domain.NewValidationError("id", "must be a positive integer", domain.ErrInvalidID)
	}
	input.Normalize()
	if err := input.ValidateForUpdate(); err != nil {
		return nil, err
	}

	task, err := s.tasks.Update(ctx, id, input, domain.DeadlineFrom(s.now(), input.Interval))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to update task", slog.String("error", redact.Error(err)))
		}
		return nil, newServiceError("task", "update", "failed to update task", err)
	}

	switch {
	case task.WantsReminder():
		s.scheduleFor(ctx, task)
	case task.HasPendingReminder():
		_ = s.scheduler.Cancel(ctx, task.JobID())
		if err := s.tasks.ClearReminderJobID(ctx, task.ID); err != nil {
			log.Warn("failed to clear reminder job id", slog.String("error", redact.Error(err)))
		} else {
			task.ReminderJobID = nil
		}
	}

	log.Info("task updated")
	return task, nil
}

// Delete removes a task and cancels its pending reminder.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("task_id", id))

	if id <= 0 {
		return domain.NewValidationError("id", "must be a positive integer", domain.ErrInvalidID)
	}

	jobID, err := s.tasks.Delete(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to delete task", slog.String("error", redact.Error(err)))
		}
		return newServiceError("task", "delete", "failed to delete task", err)
	}

	if jobID != "" {
		_ = s.scheduler.Cancel(ctx, jobID)
	}

	log.Info("task deleted")
	return nil
}

// Reset is the reconciliation pass. It hides non-recurring tasks that have
// been past their terminal instant for ExpiryGrace and recycles recurring
// tasks whose deadline has passed, in one transaction. Reminders for the
// recycled tasks are scheduled after commit; a failure for one row does not
// stop the rest. Running Reset twice in a row changes nothing the second time.
func (s *TaskService) Reset(ctx context.Context) (*ResetResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	var (
		hidden   []int64
		recycled []*domain.Task
	)
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		var err error
		hidden, err = txTasks.HideExpired(ctx, now.Add(-domain.ExpiryGrace))
		if err != nil {
			return err
		}
		recycled, err = txTasks.RecycleExpired(ctx, now)
		return err
	})
	if err != nil {
		log.Error("reset pass failed", slog.String("error", redact.Error(err)))
		return nil, newServiceError("task", "reset", "failed to reset tasks", err)
	}

	result := &ResetResult{Hidden: len(hidden), Recycled: len(recycled)}
	for _, task := range recycled {
		if !task.NotifyEnabled {
			continue
		}
		jobID, err := s.scheduler.Schedule(ctx, task)
		switch {
		case err != nil:
			result.ScheduleFailures++
		case jobID != "":
			result.Rescheduled++
		}
	}

	log.Info("reset pass complete",
		slog.Int("hidden", result.Hidden),
		slog.Int("recycled", result.Recycled),
		slog.Int("rescheduled", result.Rescheduled),
		slog.Int("schedule_failures", result.ScheduleFailures))
	return result, nil
}

// scheduleFor schedules the task's reminder when wanted and reflects the new
// job id on the returned row. Failures are already logged by the scheduler.
func (s *TaskService) scheduleFor(ctx context.Context, task *domain.Task) {
	if !task.WantsReminder() {
		return
	}
	jobID, err := s.scheduler.Schedule(ctx, task)
	if err != nil {
		return
	}
	if jobID != "" {
		task.ReminderJobID = &jobID
	}
}
