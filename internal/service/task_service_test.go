package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/berkedogan/tasks-api/internal/domain"
	"github.com/berkedogan/tasks-api/internal/platform/logger"
	"github.com/berkedogan/tasks-api/internal/store"
)

var fixedNow = time.Date(2025, 4, 11, 9, 0, 0, 0, time.UTC)

type taskServiceFixture struct {
	svc       *TaskService
	tasks     *MockTaskStore
	scheduler *MockScheduler
	dbMock    sqlmock.Sqlmock
}

func newTaskServiceFixture(t *testing.T) *taskServiceFixture {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tasks := new(MockTaskStore)
	scheduler := new(MockScheduler)
	log, _ := logger.GetTestLogger(t)

	svc, err := NewTaskService(db, tasks, scheduler, log, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	return &taskServiceFixture{svc: svc, tasks: tasks, scheduler: scheduler, dbMock: dbMock}
}

func deadlineAt(expected time.Time) any {
	return mock.MatchedBy(func(d *time.Time) bool { return d != nil && d.Equal(expected) })
}

func noDeadline() any {
	return mock.MatchedBy(func(d *time.Time) bool { return d == nil })
}

func TestNewTaskService_Validation(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	tests := []struct {
		name      string
		db        *sql.DB
		tasks     store.TaskStore
		scheduler Scheduler
	}{
		{"nil db", nil, new(MockTaskStore), new(MockScheduler)},
		{"nil tasks", db, nil, new(MockScheduler)},
		{"nil scheduler", db, new(MockTaskStore), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTaskService(tt.db, tt.tasks, tt.scheduler, nil)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("deadline is interval days from now", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		stored := &domain.Task{ID: 1, Title: "Pay rent", Interval: intPtr(5), IsVisible: true,
			Deadline: timePtr(fixedNow.Add(5 * 24 * time.Hour))}
		f.tasks.On("Create", mock.Anything, mock.MatchedBy(func(in domain.TaskInput) bool {
			return in.Title == "Pay rent"
		}), deadlineAt(fixedNow.Add(5*24*time.Hour))).Return(stored, nil).Once()

		task, err := f.svc.Create(ctx, domain.TaskInput{Title: "  Pay rent ", Interval: intPtr(5)})

		require.NoError(t, err)
		assert.True(t, task.IsVisible)
		assert.False(t, task.Completed)
		assert.Nil(t, task.CompletedAt)
		f.tasks.AssertExpectations(t)
		f.scheduler.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything)
	})

	t.Run("schedules a wanted reminder", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		stored := &domain.Task{ID: 2, Title: "Call mom", Interval: intPtr(1), IsVisible: true,
			NotifyEnabled: true, NotifyTime: strPtr("18:00")}
		f.tasks.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(stored, nil).Once()
		f.scheduler.On("Schedule", mock.Anything, stored).Return("msg_1", nil).Once()

		task, err := f.svc.Create(ctx, domain.TaskInput{Title: "Call mom", Interval: intPtr(1),
			NotifyEnabled: true, NotifyTime: strPtr("18:00")})

		require.NoError(t, err)
		assert.Equal(t, "msg_1", task.JobID())
		f.scheduler.AssertExpectations(t)
	})

	t.Run("scheduling failure does not fail creation", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		stored := &domain.Task{ID: 3, Title: "Call mom", Interval: intPtr(1), IsVisible: true,
			NotifyEnabled: true, NotifyTime: strPtr("18:00")}
		f.tasks.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(stored, nil).Once()
		f.scheduler.On("Schedule", mock.Anything, stored).
			Return("", &SchedulerError{Operation: "schedule", TaskID: 3, Err: errors.New("queue down")}).Once()

		task, err := f.svc.Create(ctx, domain.TaskInput{Title: "Call mom", Interval: intPtr(1),
			NotifyEnabled: true, NotifyTime: strPtr("18:00")})

		require.NoError(t, err)
		assert.Equal(t, int64(3), task.ID)
		assert.False(t, task.HasPendingReminder())
	})

	t.Run("validation", func(t *testing.T) {
		f := newTaskServiceFixture(t)

		_, err := f.svc.Create(ctx, domain.TaskInput{Title: "   ", Interval: intPtr(1)})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = f.svc.Create(ctx, domain.TaskInput{Title: "x"})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = f.svc.Create(ctx, domain.TaskInput{Title: "x", Interval: intPtr(-2)})
		assert.ErrorIs(t, err, domain.ErrValidation)

		f.tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.tasks.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, store.NewStoreError("task", "create", "insert failed", errors.New("conn reset"))).Once()

		_, err := f.svc.Create(ctx, domain.TaskInput{Title: "x", Interval: intPtr(1)})

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "create", svcErr.Operation)
	})
}

func TestTaskService_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("completing cancels pending reminder even when cancel fails", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		completed := &domain.Task{ID: 5, Title: "x", Completed: true, CompletedAt: timePtr(fixedNow),
			NotifyEnabled: true, NotifyTime: strPtr("09:00")}
		f.tasks.On("ToggleCompleted", mock.Anything, int64(5), fixedNow).
			Return(&store.ToggleResult{Task: completed, PreviousJobID: "m1"}, nil).Once()
		f.scheduler.On("Cancel", mock.Anything, "m1").
			Return(&SchedulerError{Operation: "cancel", JobID: "m1", Err: errors.New("queue down")}).Once()

		task, err := f.svc.Complete(ctx, 5)

		require.NoError(t, err)
		assert.True(t, task.Completed)
		require.NotNil(t, task.CompletedAt)
		assert.Nil(t, task.ReminderJobID)
		f.scheduler.AssertExpectations(t)
		f.scheduler.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything)
	})

	t.Run("uncompleting schedules a fresh reminder", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		reopened := &domain.Task{ID: 5, Title: "x", NotifyEnabled: true, NotifyTime: strPtr("09:00")}
		f.tasks.On("ToggleCompleted", mock.Anything, int64(5), fixedNow).
			Return(&store.ToggleResult{Task: reopened}, nil).Once()
		f.scheduler.On("Schedule", mock.Anything, reopened).Return("m2", nil).Once()

		task, err := f.svc.Complete(ctx, 5)

		require.NoError(t, err)
		assert.False(t, task.Completed)
		assert.Nil(t, task.CompletedAt)
		assert.Equal(t, "m2", task.JobID())
		f.scheduler.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
	})

	t.Run("uncompleting without notifications schedules nothing", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.tasks.On("ToggleCompleted", mock.Anything, int64(5), fixedNow).
			Return(&store.ToggleResult{Task: &domain.Task{ID: 5, Title: "x"}}, nil).Once()

		_, err := f.svc.Complete(ctx, 5)

		require.NoError(t, err)
		f.scheduler.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.tasks.On("ToggleCompleted", mock.Anything, int64(404), fixedNow).Return(nil, store.ErrTaskNotFound).Once()

		_, err := f.svc.Complete(ctx, 404)

		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		_, err := f.svc.Complete(ctx, 0)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestTaskService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("reschedules when reminder wanted", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		updated := &domain.Task{ID: 8, Title: "y", Interval: intPtr(2), NotifyEnabled: true,
			NotifyTime: strPtr("10:00"), ReminderJobID: strPtr("old")}
		f.tasks.On("Update", mock.Anything, int64(8), mock.Anything, deadlineAt(fixedNow.Add(48*time.Hour))).
			Return(updated, nil).Once()
		f.scheduler.On("Schedule", mock.Anything, updated).Return("new", nil).Once()

		task, err := f.svc.Update(ctx, 8, domain.TaskInput{Title: "y", Interval: intPtr(2),
			NotifyEnabled: true, NotifyTime: strPtr("10:00")})

		require.NoError(t, err)
		assert.Equal(t, "new", task.JobID())
		f.scheduler.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
	})

	t.Run("cancels and clears when reminder no longer wanted", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		updated := &domain.Task{ID: 8, Title: "y", NotifyEnabled: false, ReminderJobID: strPtr("old")}
		f.tasks.On("Update", mock.Anything, int64(8), mock.Anything, noDeadline()).Return(updated, nil).Once()
		f.scheduler.On("Cancel", mock.Anything, "old").Return(nil).Once()
		f.tasks.On("ClearReminderJobID", mock.Anything, int64(8)).Return(nil).Once()

		task, err := f.svc.Update(ctx, 8, domain.TaskInput{Title: "y"})

		require.NoError(t, err)
		assert.Nil(t, task.ReminderJobID)
		assert.Nil(t, task.Deadline)
		f.scheduler.AssertExpectations(t)
		f.tasks.AssertExpectations(t)
	})

	t.Run("zero interval leaves no deadline", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.tasks.On("Update", mock.Anything, int64(8), mock.Anything, noDeadline()).
			Return(&domain.Task{ID: 8, Title: "y"}, nil).Once()

		_, err := f.svc.Update(ctx, 8, domain.TaskInput{Title: "y", Interval: intPtr(0)})

		require.NoError(t, err)
		f.tasks.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		f := newTaskServiceFixture(t)

		_, err := f.svc.Update(ctx, 8, domain.TaskInput{Title: ""})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = f.svc.Update(ctx, -1, domain.TaskInput{Title: "y"})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = f.svc.Update(ctx, 8, domain.TaskInput{Title: "y", NotifyEnabled: true, NotifyTime: strPtr("7am")})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("not found", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.tasks.On("Update", mock.Anything, int64(9), mock.Anything, mock.Anything).Return(nil, store.ErrTaskNotFound).Once()

		_, err := f.svc.Update(ctx, 9, domain.TaskInput{Title: "y"})

		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels pending reminder", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.tasks.On("Delete", mock.Anything, int64(4)).Return("m4", nil).Once()
		f.scheduler.On("Cancel", mock.Anything, "m4").Return(errors.New("queue down")).Once()

		require.NoError(t, f.svc.Delete(ctx, 4))
		f.scheduler.AssertExpectations(t)
	})

	t.Run("no pending reminder", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.tasks.On("Delete", mock.Anything, int64(4)).Return("", nil).Once()

		require.NoError(t, f.svc.Delete(ctx, 4))
		f.scheduler.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
	})

	t.Run("nonexistent task issues no cancel", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.tasks.On("Delete", mock.Anything, int64(404)).Return("", store.ErrTaskNotFound).Once()

		err := f.svc.Delete(ctx, 404)

		assert.ErrorIs(t, err, store.ErrNotFound)
		f.scheduler.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
	})
}

func TestTaskService_Reset(t *testing.T) {
	ctx := context.Background()
	cutoff := fixedNow.Add(-24 * time.Hour)

	t.Run("hides, recycles and reschedules notifying tasks", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()

		notifying := &domain.Task{ID: 10, Title: "weekly", IsRecurring: true, Interval: intPtr(7),
			Deadline: timePtr(fixedNow.Add(7 * 24 * time.Hour)), IsVisible: true,
			NotifyEnabled: true, NotifyTime: strPtr("08:00")}
		silent := &domain.Task{ID: 11, Title: "daily", IsRecurring: true, Interval: intPtr(1),
			Deadline: timePtr(fixedNow.Add(24 * time.Hour)), IsVisible: true}

		f.tasks.On("HideExpired", mock.Anything, instant(cutoff)).Return([]int64{1, 2}, nil).Once()
		f.tasks.On("RecycleExpired", mock.Anything, instant(fixedNow)).
			Return([]*domain.Task{notifying, silent}, nil).Once()
		f.scheduler.On("Schedule", mock.Anything, notifying).Return("m10", nil).Once()

		result, err := f.svc.Reset(ctx)

		require.NoError(t, err)
		assert.Equal(t, &ResetResult{Hidden: 2, Recycled: 2, Rescheduled: 1}, result)
		f.scheduler.AssertNumberOfCalls(t, "Schedule", 1)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("one scheduling failure does not stop the batch", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()

		a := &domain.Task{ID: 20, Title: "a", IsRecurring: true, NotifyEnabled: true, NotifyTime: strPtr("08:00")}
		b := &domain.Task{ID: 21, Title: "b", IsRecurring: true, NotifyEnabled: true, NotifyTime: strPtr("09:00")}

		f.tasks.On("HideExpired", mock.Anything, mock.Anything).Return([]int64{}, nil).Once()
		f.tasks.On("RecycleExpired", mock.Anything, mock.Anything).Return([]*domain.Task{a, b}, nil).Once()
		f.scheduler.On("Schedule", mock.Anything, a).Return("", &SchedulerError{Operation: "schedule", TaskID: 20}).Once()
		f.scheduler.On("Schedule", mock.Anything, b).Return("m21", nil).Once()

		result, err := f.svc.Reset(ctx)

		require.NoError(t, err)
		assert.Equal(t, &ResetResult{Recycled: 2, Rescheduled: 1, ScheduleFailures: 1}, result)
	})

	t.Run("nothing to do", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()
		f.tasks.On("HideExpired", mock.Anything, mock.Anything).Return([]int64{}, nil).Once()
		f.tasks.On("RecycleExpired", mock.Anything, mock.Anything).Return([]*domain.Task{}, nil).Once()

		result, err := f.svc.Reset(ctx)

		require.NoError(t, err)
		assert.Equal(t, &ResetResult{}, result)
		f.scheduler.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything)
	})

	t.Run("store failure rolls back and schedules nothing", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectRollback()
		f.tasks.On("HideExpired", mock.Anything, mock.Anything).Return([]int64{1}, nil).Once()
		f.tasks.On("RecycleExpired", mock.Anything, mock.Anything).
			Return(nil, store.NewStoreError("task", "recycle_expired", "update failed", errors.New("conn reset"))).Once()

		_, err := f.svc.Reset(ctx)

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "reset", svcErr.Operation)
		f.scheduler.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})
}

func TestTaskService_List(t *testing.T) {
	f := newTaskServiceFixture(t)
	visible := []*domain.Task{{ID: 1, Title: "a", IsVisible: true}, {ID: 2, Title: "b", IsVisible: true}}
	f.tasks.On("ListVisible", mock.Anything).Return(visible, nil).Once()

	tasks, err := f.svc.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, visible, tasks)
}
