package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/berkedogan/tasks-api/internal/domain"
	"github.com/berkedogan/tasks-api/internal/store"
)

// MockTaskStore mocks store.TaskStore. WithTx returns the same mock so
// expectations hold inside a transaction.
type MockTaskStore struct {
	mock.Mock
}

var _ store.TaskStore = (*MockTaskStore)(nil)

func (m *MockTaskStore) Create(ctx context.Context, input domain.TaskInput, deadline *time.Time) (*domain.Task, error) {
	args := m.Called(ctx, input, deadline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) ListVisible(ctx context.Context) ([]*domain.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskStore) ToggleCompleted(ctx context.Context, id int64, now time.Time) (*store.ToggleResult, error) {
	args := m.Called(ctx, id, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.ToggleResult), args.Error(1)
}

func (m *MockTaskStore) Update(ctx context.Context, id int64, input domain.TaskInput, deadline *time.Time) (*domain.Task, error) {
	args := m.Called(ctx, id, input, deadline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) Delete(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockTaskStore) SetReminderJobID(ctx context.Context, id int64, jobID string) error {
	args := m.Called(ctx, id, jobID)
	return args.Error(0)
}

func (m *MockTaskStore) ClearReminderJobID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskStore) HideExpired(ctx context.Context, cutoff time.Time) ([]int64, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockTaskStore) RecycleExpired(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskStore) Now(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// MockSubscriptionStore mocks store.SubscriptionStore.
type MockSubscriptionStore struct {
	mock.Mock
}

var _ store.SubscriptionStore = (*MockSubscriptionStore)(nil)

func (m *MockSubscriptionStore) Upsert(ctx context.Context, sub *domain.PushSubscription) (*domain.PushSubscription, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PushSubscription), args.Error(1)
}

func (m *MockSubscriptionStore) ListActive(ctx context.Context) ([]*domain.PushSubscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PushSubscription), args.Error(1)
}

func (m *MockSubscriptionStore) Deactivate(ctx context.Context, endpoint string) error {
	args := m.Called(ctx, endpoint)
	return args.Error(0)
}

// MockScheduler mocks Scheduler.
type MockScheduler struct {
	mock.Mock
}

var _ Scheduler = (*MockScheduler)(nil)

func (m *MockScheduler) Schedule(ctx context.Context, task *domain.Task) (string, error) {
	args := m.Called(ctx, task)
	return args.String(0), args.Error(1)
}

func (m *MockScheduler) Cancel(ctx context.Context, jobID string) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

// MockQueue mocks ReminderQueue.
type MockQueue struct {
	mock.Mock
}

var _ ReminderQueue = (*MockQueue)(nil)

func (m *MockQueue) Publish(ctx context.Context, destination string, payload any, notBefore time.Time) (string, error) {
	args := m.Called(ctx, destination, payload, notBefore)
	return args.String(0), args.Error(1)
}

func (m *MockQueue) Delete(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

// MockPushSender mocks PushSender.
type MockPushSender struct {
	mock.Mock
}

var _ PushSender = (*MockPushSender)(nil)

func (m *MockPushSender) Send(ctx context.Context, sub *domain.PushSubscription, payload any) error {
	args := m.Called(ctx, sub, payload)
	return args.Error(0)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func timePtr(v time.Time) *time.Time { return &v }
