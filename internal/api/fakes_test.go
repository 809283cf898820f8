package api

import (
	"context"
	"time"

	"github.com/berkedogan/tasks-api/internal/domain"
	"github.com/berkedogan/tasks-api/internal/service"
)

type fakeTaskService struct {
	ListFunc     func(ctx context.Context) ([]*domain.Task, error)
	CreateFunc   func(ctx context.Context, input domain.TaskInput) (*domain.Task, error)
	UpdateFunc   func(ctx context.Context, id int64, input domain.TaskInput) (*domain.Task, error)
	CompleteFunc func(ctx context.Context, id int64) (*domain.Task, error)
	DeleteFunc   func(ctx context.Context, id int64) error
	ResetFunc    func(ctx context.Context) (*service.ResetResult, error)
}

func (f *fakeTaskService) List(ctx context.Context) ([]*domain.Task, error) {
	return f.ListFunc(ctx)
}

func (f *fakeTaskService) Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	return f.CreateFunc(ctx, input)
}

func (f *fakeTaskService) Update(ctx context.Context, id int64, input domain.TaskInput) (*domain.Task, error) {
	return f.UpdateFunc(ctx, id, input)
}

func (f *fakeTaskService) Complete(ctx context.Context, id int64) (*domain.Task, error) {
	return f.CompleteFunc(ctx, id)
}

func (f *fakeTaskService) Delete(ctx context.Context, id int64) error {
	return f.DeleteFunc(ctx, id)
}

func (f *fakeTaskService) Reset(ctx context.Context) (*service.ResetResult, error) {
	return f.ResetFunc(ctx)
}

type fakeSubscriptionService struct {
	publicKey     string
	publicKeyErr  error
	SubscribeFunc func(ctx context.Context, input service.SubscriptionInput) (*domain.PushSubscription, error)
}

func (f *fakeSubscriptionService) PublicKey() (string, error) {
	return f.publicKey, f.publicKeyErr
}

func (f *fakeSubscriptionService) Subscribe(ctx context.Context, input service.SubscriptionInput) (*domain.PushSubscription, error) {
	return f.SubscribeFunc(ctx, input)
}

type fakeReminderService struct {
	DeliverFunc func(ctx context.Context, taskID int64) (*service.DeliveryResult, error)
}

func (f *fakeReminderService) Deliver(ctx context.Context, taskID int64) (*service.DeliveryResult, error) {
	return f.DeliverFunc(ctx, taskID)
}

type fakeClock struct {
	now time.Time
	err error
}

func (f fakeClock) Now(ctx context.Context) (time.Time, error) {
	return f.now, f.err
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
