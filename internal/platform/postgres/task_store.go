package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/berkedogan/tasks-api/internal/domain"
	"github.com/berkedogan/tasks-api/internal/platform/logger"
	"github.com/berkedogan/tasks-api/internal/store"
)

const taskEntity = "task"

var taskColumnNames = []string{
	"id", "title", "completed", "completed_at", "is_recurring", "interval_days",
	"deadline", "is_visible", "notify_enabled", "notify_time", "reminder_job_id",
	"created_at", "updated_at",
}

// taskColumns returns the task column list, each column qualified by alias when given.
func taskColumns(alias string) string {
	if alias == "" {
		return strings.Join(taskColumnNames, ", ")
	}
	qualified := make([]string, len(taskColumnNames))
	for i, c := range taskColumnNames {
		qualified[i] = alias + "." + c
	}
	return strings.Join(qualified, ", ")
}

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// db may be a *sql.DB or a *sql.Tx. If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads the taskColumns list, followed by any extra destinations.
func scanTask(row rowScanner, extra ...any) (*domain.Task, error) {
	var (
		task        domain.Task
		completedAt sql.NullTime
		interval    sql.NullInt32
		deadline    sql.NullTime
		notifyTime  sql.NullString
		jobID       sql.NullString
	)

	dest := []any{
		&task.ID,
		&task.Title,
		&task.Completed,
		&completedAt,
		&task.IsRecurring,
		&interval,
		&deadline,
		&task.IsVisible,
		&task.NotifyEnabled,
		&notifyTime,
		&jobID,
		&task.CreatedAt,
		&task.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if completedAt.Valid {
		t := completedAt.Time.UTC()
		task.CompletedAt = &t
	}
	if interval.Valid {
		v := int(interval.Int32)
		task.Interval = &v
	}
	if deadline.Valid {
		t := deadline.Time.UTC()
		task.Deadline = &t
	}
	if notifyTime.Valid {
		v := notifyTime.String
		task.NotifyTime = &v
	}
	if jobID.Valid && jobID.String != "" {
		v := jobID.String
		task.ReminderJobID = &v
	}
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()

	return &task, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC()
}

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(
	ctx context.Context,
	input domain.TaskInput,
	deadline *time.Time,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tasks (title, is_recurring, interval_days, deadline, notify_enabled, notify_time, is_visible, completed)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, FALSE)
		RETURNING ` + taskColumns("")

	task, err := scanTask(s.db.QueryRowContext(
		ctx,
		query,
		input.Title,
		input.IsRecurring,
		nullableInt(input.Interval),
		nullableTime(deadline),
		input.NotifyEnabled,
		nullableString(input.NotifyTime),
	))
	if err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return nil, storeError(taskEntity, "create", "failed to insert task", err)
	}

	log.Debug("task created", slog.Int64("task_id", task.ID))
	return task, nil
}

// GetByID implements store.TaskStore.GetByID.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns("") + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task", slog.String("error", err.Error()), slog.Int64("task_id", id))
		return nil, storeError(taskEntity, "get", "failed to query task", err)
	}

	return task, nil
}

// ListVisible implements store.TaskStore.ListVisible.
func (s *PostgresTaskStore) ListVisible(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns("") + ` FROM tasks WHERE is_visible ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, storeError(taskEntity, "list", "failed to query tasks", err)
	}
	defer func() { _ = rows.Close() }()

	tasks, err := collectTasks(rows)
	if err != nil {
		log.Error("failed to read tasks", slog.String("error", err.Error()))
		return nil, storeError(taskEntity, "list", "failed to read tasks", err)
	}
	return tasks, nil
}

func collectTasks(rows *sql.Rows) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// ToggleCompleted implements store.TaskStore.ToggleCompleted.
// The CTE locks the row and captures the job id held before the update, which
// clears it when the task becomes completed.
func (s *PostgresTaskStore) ToggleCompleted(
	ctx context.Context,
	id int64,
	now time.Time,
) (*store.ToggleResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		WITH prev AS (
			SELECT id, reminder_job_id FROM tasks WHERE id = $1 FOR UPDATE
		)
		UPDATE tasks t
		SET completed       = NOT t.completed,
		    completed_at    = CASE WHEN t.completed THEN NULL ELSE $2::timestamptz END,
		    reminder_job_id = CASE WHEN t.completed THEN t.reminder_job_id ELSE NULL END,
		    updated_at      = $2::timestamptz
		FROM prev
		WHERE t.id = prev.id
		RETURNING ` + taskColumns("t") + `, prev.reminder_job_id`

	var previous sql.NullString
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, now.UTC()), &previous)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for toggle", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to toggle task", slog.String("error", err.Error()), slog.Int64("task_id", id))
		return nil, storeError(taskEntity, "toggle", "failed to toggle task", err)
	}

	log.Debug("task toggled",
		slog.Int64("task_id", id),
		slog.Bool("completed", task.Completed))
	return &store.ToggleResult{Task: task, PreviousJobID: previous.String}, nil
}

// Update implements store.TaskStore.Update.
// Returns store.ErrTaskNotFound if no row was updated.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	id int64,
	input domain.TaskInput,
	deadline *time.Time,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET title = $2, interval_days = $3, is_recurring = $4, notify_enabled = $5,
		    notify_time = $6, deadline = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + taskColumns("")

	task, err := scanTask(s.db.QueryRowContext(
		ctx,
		query,
		id,
		input.Title,
		nullableInt(input.Interval),
		input.IsRecurring,
		input.NotifyEnabled,
		nullableString(input.NotifyTime),
		nullableTime(deadline),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for update", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to update task", slog.String("error", err.Error()), slog.Int64("task_id", id))
		return nil, storeError(taskEntity, "update", "failed to update task", err)
	}

	return task, nil
}

// Delete implements store.TaskStore.Delete.
// Returns store.ErrTaskNotFound if no row was removed.
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var jobID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM tasks WHERE id = $1 RETURNING reminder_job_id`, id,
	).Scan(&jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for delete", slog.Int64("task_id", id))
			return "", store.ErrTaskNotFound
		}
		log.Error("failed to delete task", slog.String("error", err.Error()), slog.Int64("task_id", id))
		return "", storeError(taskEntity, "delete", "failed to delete task", err)
	}

	log.Debug("task deleted", slog.Int64("task_id", id))
	return jobID.String, nil
}

// SetReminderJobID implements store.TaskStore.SetReminderJobID.
func (s *PostgresTaskStore) SetReminderJobID(ctx context.Context, id int64, jobID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET reminder_job_id = $2, updated_at = NOW() WHERE id = $1`, id, jobID)
	if err != nil {
		log.Error("failed to store reminder job id",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return storeError(taskEntity, "set_reminder_job", "failed to store reminder job id", err)
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// ClearReminderJobID implements store.TaskStore.ClearReminderJobID.
func (s *PostgresTaskStore) ClearReminderJobID(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET reminder_job_id = NULL, updated_at = NOW()
		 WHERE id = $1 AND reminder_job_id IS NOT NULL`, id)
	if err != nil {
		log.Error("failed to clear reminder job id",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return storeError(taskEntity, "clear_reminder_job", "failed to clear reminder job id", err)
	}
	return nil
}

// HideExpired implements store.TaskStore.HideExpired.
func (s *PostgresTaskStore) HideExpired(ctx context.Context, cutoff time.Time) ([]int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET is_visible = FALSE, updated_at = NOW()
		WHERE is_visible
		  AND NOT is_recurring
		  AND ((NOT completed AND deadline IS NOT NULL AND deadline <= $1)
		    OR (completed AND completed_at IS NOT NULL AND completed_at <= $1))
		RETURNING id`

	rows, err := s.db.QueryContext(ctx, query, cutoff.UTC())
	if err != nil {
		log.Error("failed to hide expired tasks", slog.String("error", err.Error()))
		return nil, storeError(taskEntity, "hide_expired", "failed to hide expired tasks", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storeError(taskEntity, "hide_expired", "failed to read hidden ids", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(taskEntity, "hide_expired", "failed to read hidden ids", err)
	}

	return ids, nil
}

// RecycleExpired implements store.TaskStore.RecycleExpired.
// Deadlines advance by whole 24 hour days so the result matches domain.DeadlineFrom.
func (s *PostgresTaskStore) RecycleExpired(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET completed    = FALSE,
		    completed_at = NULL,
		    is_visible   = TRUE,
		    deadline     = CASE
		        WHEN interval_days IS NOT NULL AND interval_days > 0
		        THEN $1::timestamptz + interval_days * INTERVAL '24 hours'
		        ELSE NULL
		    END,
		    updated_at   = $1::timestamptz
		WHERE is_recurring
		  AND deadline IS NOT NULL
		  AND deadline <= $1::timestamptz
		RETURNING ` + taskColumns("")

	rows, err := s.db.QueryContext(ctx, query, now.UTC())
	if err != nil {
		log.Error("failed to recycle expired tasks", slog.String("error", err.Error()))
		return nil, storeError(taskEntity, "recycle_expired", "failed to recycle expired tasks", err)
	}
	defer func() { _ = rows.Close() }()

	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, storeError(taskEntity, "recycle_expired", "failed to read recycled tasks", err)
	}
	return tasks, nil
}

// Now implements store.TaskStore.Now.
func (s *PostgresTaskStore) Now(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := s.db.QueryRowContext(ctx, `SELECT NOW()`).Scan(&now); err != nil {
		return time.Time{}, storeError("database", "now", "failed to read database clock", err)
	}
	return now.UTC(), nil
}
