package domain

import (
	"errors"
	"strings"
	"time"
)

// Push subscription validation errors
var (
	ErrEmptyEndpoint   = errors.New("push subscription endpoint cannot be empty")
	ErrMissingPushKeys = errors.New("push subscription keys p256dh and auth are required")
)

// PushSubscription is a browser Web Push registration. The endpoint is the
// unique key; a subscription is deactivated rather than deleted when the push
// service reports it gone.
type PushSubscription struct {
	ID             int64      `json:"id"`
	Endpoint       string     `json:"endpoint"`
	P256dh         string     `json:"p256dh"`
	Auth           string     `json:"auth"`
	ExpirationTime *time.Time `json:"expiration_time,omitempty"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Validate checks that the subscription can be delivered to.
func (s *PushSubscription) Validate() error {
	if strings.TrimSpace(s.Endpoint) == "" {
		return NewValidationError("endpoint", "cannot be empty", ErrEmptyEndpoint)
	}
	if s.P256dh == "" || s.Auth == "" {
		return NewValidationError("keys", "p256dh and auth are required", ErrMissingPushKeys)
	}
	return nil
}

// ReminderTrigger is the queue message body that asks the delivery endpoint
// to fire the reminder for a task.
type ReminderTrigger struct {
	TaskID int64 `json:"taskId"`
}

// ReminderPayload is the JSON pushed to the browser service worker.
type ReminderPayload struct {
	Title string              `json:"title"`
	Body  string              `json:"body"`
	Icon  string              `json:"icon,omitempty"`
	Badge string              `json:"badge,omitempty"`
	Data  ReminderPayloadData `json:"data"`
}

// ReminderPayloadData is opened by the service worker on notification click.
type ReminderPayloadData struct {
	URL    string `json:"url"`
	TaskID int64  `json:"taskId"`
}
