package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/berkedogan/tasks-api/internal/domain"
)

func TestSubscriptionService_PublicKey(t *testing.T) {
	svc, err := NewSubscriptionService(new(MockSubscriptionStore), "", nil)
	require.NoError(t, err)
	_, err = svc.PublicKey()
	assert.ErrorIs(t, err, ErrPushNotConfigured)

	svc, err = NewSubscriptionService(new(MockSubscriptionStore), "BPub", nil)
	require.NoError(t, err)
	key, err := svc.PublicKey()
	require.NoError(t, err)
	assert.Equal(t, "BPub", key)
}

func TestSubscriptionService_Subscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts an active subscription", func(t *testing.T) {
		subs := new(MockSubscriptionStore)
		svc, err := NewSubscriptionService(subs, "BPub", nil)
		require.NoError(t, err)

		stored := &domain.PushSubscription{ID: 3, Endpoint: "https://push.example.com/a", IsActive: true}
		subs.On("Upsert", mock.Anything, mock.MatchedBy(func(s *domain.PushSubscription) bool {
			return s.Endpoint == "https://push.example.com/a" && s.P256dh == "p" && s.Auth == "a" && s.IsActive
		})).Return(stored, nil).Once()

		got, err := svc.Subscribe(ctx, SubscriptionInput{Endpoint: " https://push.example.com/a ", P256dh: "p", Auth: "a"})

		require.NoError(t, err)
		assert.Equal(t, stored, got)
		subs.AssertExpectations(t)
	})

	t.Run("missing keys", func(t *testing.T) {
		subs := new(MockSubscriptionStore)
		svc, err := NewSubscriptionService(subs, "BPub", nil)
		require.NoError(t, err)

		_, err = svc.Subscribe(ctx, SubscriptionInput{Endpoint: "https://push.example.com/a"})

		assert.ErrorIs(t, err, domain.ErrValidation)
		subs.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		subs := new(MockSubscriptionStore)
		svc, err := NewSubscriptionService(subs, "BPub", nil)
		require.NoError(t, err)
		subs.On("Upsert", mock.Anything, mock.Anything).Return(nil, errors.New("conn reset")).Once()

		_, err = svc.Subscribe(ctx, SubscriptionInput{Endpoint: "https://push.example.com/a", P256dh: "p", Auth: "a"})

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
	})
}

func TestServiceError(t *testing.T) {
	inner := errors.New("boom")
	err := newServiceError("task", "create", "failed to save task", inner)
	assert.Equal(t, "task service create failed: failed to save task: boom", err.Error())
	assert.ErrorIs(t, err, inner)

	validation := domain.NewValidationError("title", "cannot be empty", nil)
	assert.Same(t, validation, newServiceError("task", "create", "x", validation))
	assert.Nil(t, newServiceError("task", "create", "x", nil))
}

func TestSchedulerError(t *testing.T) {
	inner := errors.New("queue down")
	assert.Equal(t, "reminder schedule failed for task 4: queue down",
		(&SchedulerError{Operation: "schedule", TaskID: 4, Err: inner}).Error())
	assert.Equal(t, "reminder cancel failed for job m1: queue down",
		(&SchedulerError{Operation: "cancel", JobID: "m1", Err: inner}).Error())
	assert.ErrorIs(t, &SchedulerError{Err: inner}, inner)
}
