package api

import (
	"time"

	"github.com/berkedogan/tasks-api/internal/domain"
	"github.com/berkedogan/tasks-api/internal/localtime"
	"github.com/berkedogan/tasks-api/internal/service"
)

// TaskRequest is the body of task create and update requests.
// Title and interval rules live in the domain; the tags only bound sizes.
type TaskRequest struct {
	Title         string  `json:"title"         validate:"max=500"`
	Interval      *int    `json:"interval"      validate:"omitempty,gte=0,lte=3650"`
	IsRecurring   bool    `json:"isRecurring"`
	NotifyEnabled bool    `json:"notifyEnabled"`
	NotifyTime    *string `json:"notifyTime"    validate:"omitempty,max=5"`
}

func (r TaskRequest) toInput() domain.TaskInput {
	return domain.TaskInput{
		Title:         r.Title,
		Interval:      r.Interval,
		IsRecurring:   r.IsRecurring,
		NotifyEnabled: r.NotifyEnabled,
		NotifyTime:    r.NotifyTime,
	}
}

// TaskResponse is the wire form of a task. Instants are rendered in the
// fixed local zone.
type TaskResponse struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Completed     bool    `json:"completed"`
	CompletedAt   *string `json:"completedAt"`
	IsRecurring   bool    `json:"isRecurring"`
	Interval      *int    `json:"interval"`
	Deadline      *string `json:"deadline"`
	IsVisible     bool    `json:"isVisible"`
	NotifyEnabled bool    `json:"notifyEnabled"`
	NotifyTime    *string `json:"notifyTime"`
	HasReminder   bool    `json:"hasReminder"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

func localPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := localtime.ISOString(*t)
	return &s
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:            task.ID,
		Title:         task.Title,
		Completed:     task.Completed,
		CompletedAt:   localPtr(task.CompletedAt),
		IsRecurring:   task.IsRecurring,
		Interval:      task.Interval,
		Deadline:      localPtr(task.Deadline),
		IsVisible:     task.IsVisible,
		NotifyEnabled: task.NotifyEnabled,
		NotifyTime:    task.NotifyTime,
		HasReminder:   task.HasPendingReminder(),
		CreatedAt:     localtime.ISOString(task.CreatedAt),
		UpdatedAt:     localtime.ISOString(task.UpdatedAt),
	}
}

// TaskListResponse is returned by GET /api/tasks.
type TaskListResponse struct {
	Success bool           `json:"success"`
	Tasks   []TaskResponse `json:"tasks"`
}

// TaskEnvelope wraps a single task.
type TaskEnvelope struct {
	Success bool         `json:"success"`
	Task    TaskResponse `json:"task"`
}

// DeleteTaskResponse is returned by DELETE /api/tasks/{id}.
type DeleteTaskResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

// ResetResponse is returned by POST /api/tasks/reset.
type ResetResponse struct {
	Success bool `json:"success"`
	service.ResetResult
}

// PushKeyResponse carries the VAPID public key.
type PushKeyResponse struct {
	Success   bool   `json:"success"`
	PublicKey string `json:"publicKey"`
}

// SubscribeRequest is a browser PushSubscription.toJSON() body.
type SubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url,max=2048"`
	// ExpirationTime is epoch milliseconds, or null.
	ExpirationTime *int64 `json:"expirationTime"`
	Keys           struct {
		P256dh string `json:"p256dh" validate:"required,max=256"`
		Auth   string `json:"auth"   validate:"required,max=256"`
	} `json:"keys"`
}

func (r SubscribeRequest) toInput() service.SubscriptionInput {
	input := service.SubscriptionInput{
		Endpoint: r.Endpoint,
		P256dh:   r.Keys.P256dh,
		Auth:     r.Keys.Auth,
	}
	if r.ExpirationTime != nil {
		expires := time.UnixMilli(*r.ExpirationTime).UTC()
		input.ExpirationTime = &expires
	}
	return input
}

// SubscribeResponse is returned by POST /api/push/subscribe.
type SubscribeResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

// DeliverRequest is the queue callback body.
type DeliverRequest struct {
	TaskID int64 `json:"taskId" validate:"required,gt=0"`
}

// DeliverResponse is returned to the queue after a delivery attempt.
type DeliverResponse struct {
	Success bool `json:"success"`
	service.DeliveryResult
}

// TimeResponse reports the server and database clocks.
type TimeResponse struct {
	Success     bool   `json:"success"`
	ServerUTC   string `json:"serverUtc"`
	ServerLocal string `json:"serverLocal"`
	// LocalClock is the HH:MM notify times are compared against.
	LocalClock  string `json:"localClock"`
	DatabaseUTC string `json:"databaseUtc,omitempty"`
	// DriftMillis is database minus server clock.
	DriftMillis *int64 `json:"driftMillis,omitempty"`
	Offset      string `json:"offset"`
}
