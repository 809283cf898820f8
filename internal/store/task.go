package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/berkedogan/tasks-api/internal/domain"
)

// ToggleResult is the outcome of an atomic completion toggle.
type ToggleResult struct {
	// Task is the row as it is after the toggle.
	Task *domain.Task

	// PreviousJobID is the reminder job id the row held before the toggle.
	// When the toggle lands on completed, the stored id has already been
	// cleared by the same statement and the caller only needs to cancel it.
	PreviousJobID string
}

// TaskStore defines the interface for task persistence.
// Every mutation is a single conditional statement with RETURNING so that
// concurrent invocations never read-modify-write a row.
type TaskStore interface {
	// Create inserts a new visible, incomplete task and returns the stored row.
	Create(ctx context.Context, input domain.TaskInput, deadline *time.Time) (*domain.Task, error)

	// GetByID retrieves a task by id.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// ListVisible returns all visible tasks ordered by id.
	ListVisible(ctx context.Context) ([]*domain.Task, error)

	// ToggleCompleted flips the completed flag of a task.
	// completed_at is set to now on false->true and cleared on true->false.
	// Returns ErrTaskNotFound if the task does not exist.
	ToggleCompleted(ctx context.Context, id int64, now time.Time) (*ToggleResult, error)

	// Update replaces the editable fields of a task and its deadline.
	// The stored reminder job id is left untouched and returned on the row.
	// Returns ErrTaskNotFound if no row was updated.
	Update(ctx context.Context, id int64, input domain.TaskInput, deadline *time.Time) (*domain.Task, error)

	// Delete removes a task and returns the reminder job id the removed row held.
	// Returns ErrTaskNotFound if no row was removed.
	Delete(ctx context.Context, id int64) (string, error)

	// SetReminderJobID records the external message id of a pending reminder.
	// Returns ErrTaskNotFound if the task no longer exists.
	SetReminderJobID(ctx context.Context, id int64, jobID string) error

	// ClearReminderJobID removes any stored reminder job id. Clearing a
	// missing task is not an error.
	ClearReminderJobID(ctx context.Context, id int64) error

	// HideExpired hides every visible non-recurring task whose deadline (when
	// incomplete) or completion instant (when completed) is at or before cutoff.
	// It returns the ids of the rows that were hidden.
	HideExpired(ctx context.Context, cutoff time.Time) ([]int64, error)

	// RecycleExpired resets every recurring task whose deadline is at or before
	// now: incomplete, visible, and a deadline recomputed from its interval.
	// It returns the recycled rows.
	RecycleExpired(ctx context.Context, now time.Time) ([]*domain.Task, error)

	// Now returns the database clock.
	Now(ctx context.Context) (time.Time, error)

	// WithTx returns a TaskStore that runs its statements on the given transaction.
	WithTx(tx *sql.Tx) TaskStore
}
