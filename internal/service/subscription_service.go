package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/berkedogan/tasks-api/internal/domain"
	"github.com/berkedogan/tasks-api/internal/platform/logger"
	"github.com/berkedogan/tasks-api/internal/redact"
	"github.com/berkedogan/tasks-api/internal/store"
)

// SubscriptionInput is a browser PushSubscription as serialized by
// PushSubscription.toJSON().
type SubscriptionInput struct {
	Endpoint       string
	ExpirationTime *time.Time
	P256dh         string
	Auth           string
}

// SubscriptionService registers browsers for push reminders.
type SubscriptionService struct {
	subs      store.SubscriptionStore
	publicKey string
	logger    *slog.Logger
}

// NewSubscriptionService creates a SubscriptionService. An empty publicKey
// means push is unconfigured.
func NewSubscriptionService(
	subs store.SubscriptionStore,
	publicKey string,
	logger *slog.Logger,
) (*SubscriptionService, error) {
	if subs == nil {
		return nil, domain.NewValidationError("subs", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SubscriptionService{
		subs:      subs,
		publicKey: publicKey,
		logger:    logger.With(slog.String("component", "subscription_service")),
	}, nil
}

// PublicKey returns the VAPID public key browsers subscribe with.
func (s *SubscriptionService) PublicKey() (string, error) {
	if s.publicKey == "" {
		return "", ErrPushNotConfigured
	}
	return s.publicKey, nil
}

// Subscribe stores the subscription keyed by endpoint. Subscribing an
// endpoint again refreshes its keys and reactivates it.
func (s *SubscriptionService) Subscribe(ctx context.Context, input SubscriptionInput) (*domain.PushSubscription, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sub := &domain.PushSubscription{
		Endpoint:       strings.TrimSpace(input.Endpoint),
		P256dh:         input.P256dh,
		Auth:           input.Auth,
		ExpirationTime: input.ExpirationTime,
		IsActive:       true,
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	stored, err := s.subs.Upsert(ctx, sub)
	if err != nil {
		log.Error("failed to store push subscription", slog.String("error", redact.Error(err)))
		return nil, newServiceError("subscription", "subscribe", "failed to store subscription", err)
	}

	log.Info("push subscription stored", slog.Int64("subscription_id", stored.ID))
	return stored, nil
}
