package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/berkedogan/tasks-api/internal/domain"
	"github.com/berkedogan/tasks-api/internal/platform/logger"
	"github.com/berkedogan/tasks-api/internal/store"
)

const (
	subscriptionEntity  = "push_subscription"
	subscriptionColumns = "id, endpoint, p256dh, auth, expiration_time, is_active, created_at, updated_at"
)

// PostgresSubscriptionStore implements store.SubscriptionStore on PostgreSQL.
type PostgresSubscriptionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSubscriptionStore creates a new PostgresSubscriptionStore.
// If logger is nil, a default logger will be used.
func NewPostgresSubscriptionStore(db store.DBTX, logger *slog.Logger) *PostgresSubscriptionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSubscriptionStore{
		db:     db,
		logger: logger.With(slog.String("component", "subscription_store")),
	}
}

var _ store.SubscriptionStore = (*PostgresSubscriptionStore)(nil)

func scanSubscription(row rowScanner) (*domain.PushSubscription, error) {
	var (
		sub        domain.PushSubscription
		expiration sql.NullTime
	)
	if err := row.Scan(
		&sub.ID,
		&sub.Endpoint,
		&sub.P256dh,
		&sub.Auth,
		&expiration,
		&sub.IsActive,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if expiration.Valid {
		t := expiration.Time.UTC()
		sub.ExpirationTime = &t
	}
	sub.CreatedAt = sub.CreatedAt.UTC()
	sub.UpdatedAt = sub.UpdatedAt.UTC()
	return &sub, nil
}

// Upsert implements store.SubscriptionStore.Upsert.
func (s *PostgresSubscriptionStore) Upsert(
	ctx context.Context,
	sub *domain.PushSubscription,
) (*domain.PushSubscription, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := sub.Validate(); err != nil {
		log.Warn("push subscription validation failed", slog.String("error", err.Error()))
		return nil, err
	}

	query := `
		INSERT INTO push_subscriptions (endpoint, p256dh, auth, expiration_time, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (endpoint) DO UPDATE
		SET p256dh          = EXCLUDED.p256dh,
		    auth            = EXCLUDED.auth,
		    expiration_time = EXCLUDED.expiration_time,
		    is_active       = TRUE,
		    updated_at      = NOW()
		RETURNING ` + subscriptionColumns

	stored, err := scanSubscription(s.db.QueryRowContext(
		ctx,
		query,
		sub.Endpoint,
		sub.P256dh,
		sub.Auth,
		nullableTime(sub.ExpirationTime),
	))
	if err != nil {
		log.Error("failed to upsert push subscription", slog.String("error", err.Error()))
		return nil, storeError(subscriptionEntity, "upsert", "failed to store subscription", err)
	}

	log.Debug("push subscription stored", slog.Int64("subscription_id", stored.ID))
	return stored, nil
}

// ListActive implements store.SubscriptionStore.ListActive.
func (s *PostgresSubscriptionStore) ListActive(ctx context.Context) ([]*domain.PushSubscription, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM push_subscriptions WHERE is_active ORDER BY id`)
	if err != nil {
		log.Error("failed to list push subscriptions", slog.String("error", err.Error()))
		return nil, storeError(subscriptionEntity, "list_active", "failed to query subscriptions", err)
	}
	defer func() { _ = rows.Close() }()

	subs := make([]*domain.PushSubscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, storeError(subscriptionEntity, "list_active", "failed to read subscription", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(subscriptionEntity, "list_active", "failed to read subscriptions", err)
	}
	return subs, nil
}

// Deactivate implements store.SubscriptionStore.Deactivate.
func (s *PostgresSubscriptionStore) Deactivate(ctx context.Context, endpoint string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE push_subscriptions SET is_active = FALSE, updated_at = NOW() WHERE endpoint = $1`,
		endpoint)
	if err != nil {
		log.Error("failed to deactivate push subscription", slog.String("error", err.Error()))
		return storeError(subscriptionEntity, "deactivate", "failed to deactivate subscription", err)
	}

	return CheckRowsAffected(result, store.ErrSubscriptionNotFound)
}
