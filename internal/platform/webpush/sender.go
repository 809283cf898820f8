// Package webpush delivers Web Push notifications signed with VAPID keys.
package webpush

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/berkedogan/tasks-api/internal/domain"
)

// DefaultTimeout bounds a single push request.
const DefaultTimeout = 5 * time.Second

// StatusError is returned when the push service answers with a non-2xx
// status that does not mean the subscription is gone.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("push service returned status %d: %s", e.StatusCode, e.Body)
}

// Config configures a Sender.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	// Subject identifies the sender to push services, either a mailto: address or an https URL.
	Subject string
	// TTL is how long push services keep an undelivered message.
	TTL     time.Duration
	Timeout time.Duration
	// HTTPClient overrides the default client built from Timeout.
	HTTPClient webpush.HTTPClient
	Logger     *slog.Logger
}

// Sender sends encrypted payloads to push subscriptions.
type Sender struct {
	publicKey  string
	privateKey string
	subscriber string
	ttl        int
	httpClient webpush.HTTPClient
	logger     *slog.Logger
}

// NewSender creates a Sender. Both VAPID keys are required.
func NewSender(cfg Config) (*Sender, error) {
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return nil, errors.New("webpush: VAPID public and private keys are required")
	}
	if cfg.Subject == "" {
		return nil, errors.New("webpush: subject is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Sender{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		// the library adds the mailto: scheme itself
		subscriber: strings.TrimPrefix(cfg.Subject, "mailto:"),
		ttl:        int(cfg.TTL / time.Second),
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "webpush_sender")),
	}, nil
}

// PublicKey returns the VAPID public key browsers subscribe with.
func (s *Sender) PublicKey() string {
	return s.publicKey
}

// Send delivers payload (JSON-encoded) to sub. A 404 or 410 from the push
// service wraps domain.ErrSubscriptionGone.
func (s *Sender) Send(ctx context.Context, sub *domain.PushSubscription, payload any) error {
	message, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webpush: failed to marshal payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, message, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      s.httpClient,
		Subscriber:      s.subscriber,
		TTL:             s.ttl,
		Urgency:         webpush.UrgencyHigh,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
	})
	if err != nil {
		return fmt.Errorf("webpush: send failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%w: push service returned %d", domain.ErrSubscriptionGone, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	s.logger.Debug("push delivered",
		slog.Int64("subscription_id", sub.ID),
		slog.Int("status", resp.StatusCode))
	return nil
}
