package store

import (
	"context"

	"github.com/berkedogan/tasks-api/internal/domain"
)

// SubscriptionStore defines the interface for push subscription persistence.
type SubscriptionStore interface {
	// Upsert stores a subscription keyed by endpoint. An existing row gets the
	// new keys and is reactivated.
	Upsert(ctx context.Context, sub *domain.PushSubscription) (*domain.PushSubscription, error)

	// ListActive returns all subscriptions with is_active = true.
	ListActive(ctx context.Context) ([]*domain.PushSubscription, error)

	// Deactivate marks the subscription with the given endpoint inactive.
	// Deactivating an already inactive subscription succeeds.
	// Returns ErrSubscriptionNotFound if the endpoint is unknown.
	Deactivate(ctx context.Context, endpoint string) error
}
