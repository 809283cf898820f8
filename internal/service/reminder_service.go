package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/berkedogan/tasks-api/internal/domain"
	"github.com/berkedogan/tasks-api/internal/platform/logger"
	"github.com/berkedogan/tasks-api/internal/redact"
	"github.com/berkedogan/tasks-api/internal/store"
)

// ReminderTitle is the notification title shown for every task reminder.
const ReminderTitle = "Hatırlatma"

// DefaultDeliveryConcurrency bounds parallel pushes when none is configured.
const DefaultDeliveryConcurrency = 8

// Reasons reported on a skipped delivery.
const (
	SkipTaskNotFound      = "task_not_found"
	SkipTaskCompleted     = "task_completed"
	SkipNotifyDisabled    = "notifications_disabled"
	SkipPushNotConfigured = "push_not_configured"
)

// PushSender delivers a JSON payload to one push subscription.
// A subscription the push service no longer knows yields an error wrapping
// domain.ErrSubscriptionGone.
type PushSender interface {
	Send(ctx context.Context, sub *domain.PushSubscription, payload any) error
}

// PayloadConfig holds the static parts of a reminder notification.
type PayloadConfig struct {
	Icon     string
	Badge    string
	ClickURL string
}

// DeliveryResult summarizes one delivery callback.
type DeliveryResult struct {
	Skipped     bool   `json:"skipped"`
	Reason      string `json:"reason,omitempty"`
	Sent        int    `json:"sent"`
	Failed      int    `json:"failed"`
	Deactivated int    `json:"deactivated"`
}

// ReminderService handles the queue callback for a fired reminder. The queue
// delivers at least once, so every call re-checks the task row before acting.
type ReminderService struct {
	tasks       store.TaskStore
	subs        store.SubscriptionStore
	sender      PushSender
	payload     PayloadConfig
	concurrency int
	logger      *slog.Logger
}

// NewReminderService creates a ReminderService. A nil sender means push is
// unconfigured; deliveries are then skipped.
func NewReminderService(
	tasks store.TaskStore,
	subs store.SubscriptionStore,
	sender PushSender,
	payload PayloadConfig,
	concurrency int,
	logger *slog.Logger,
) (*ReminderService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if subs == nil {
		return nil, domain.NewValidationError("subs", "cannot be nil", domain.ErrValidation)
	}
	if concurrency <= 0 {
		concurrency = DefaultDeliveryConcurrency
	}
	if payload.ClickURL == "" {
		payload.ClickURL = "/panel/tasks"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReminderService{
		tasks:       tasks,
		subs:        subs,
		sender:      sender,
		payload:     payload,
		concurrency: concurrency,
		logger:      logger.With(slog.String("component", "reminder_service")),
	}, nil
}

// Payload builds the notification for a task.
func (s *ReminderService) Payload(task *domain.Task) domain.ReminderPayload {
	return domain.ReminderPayload{
		Title: ReminderTitle,
		Body:  task.Title,
		Icon:  s.payload.Icon,
		Badge: s.payload.Badge,
		Data: domain.ReminderPayloadData{
			URL:    s.payload.ClickURL,
			TaskID: task.ID,
		},
	}
}

// Deliver pushes the reminder for taskID to every active subscription.
// Missing, completed or notification-disabled tasks are skipped without side
// effects. After an attempt the task's job id is cleared whatever the
// outcome; the reminder is not rescheduled here. Failing subscriptions do not
// fail the call.
func (s *ReminderService) Deliver(ctx context.Context, taskID int64) (*DeliveryResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("task_id", taskID))

	if taskID <= 0 {
		return nil, domain.NewValidationError("taskId", "must be a positive integer", domain.ErrInvalidID)
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("reminder skipped", slog.String("reason", SkipTaskNotFound))
			return &DeliveryResult{Skipped: true, Reason: SkipTaskNotFound}, nil
		}
		log.Error("failed to load task", slog.String("error", redact.Error(err)))
		return nil, newServiceError("reminder", "deliver", "failed to load task", err)
	}

	if reason := skipReason(task); reason != "" {
		log.Info("reminder skipped", slog.String("reason", reason))
		return &DeliveryResult{Skipped: true, Reason: reason}, nil
	}

	if s.sender == nil {
		log.Warn("reminder fired but push is not configured")
		s.clearJobID(ctx, log, taskID)
		return &DeliveryResult{Skipped: true, Reason: SkipPushNotConfigured}, nil
	}

	subs, err := s.subs.ListActive(ctx)
	if err != nil {
		log.Error("failed to load push subscriptions", slog.String("error", redact.Error(err)))
		return nil, newServiceError("reminder", "deliver", "failed to load subscriptions", err)
	}

	result := s.fanOut(ctx, log, subs, s.Payload(task))
	s.clearJobID(ctx, log, taskID)

	log.Info("reminder delivered",
		slog.Int("subscriptions", len(subs)),
		slog.Int("sent", result.Sent),
		slog.Int("failed", result.Failed),
		slog.Int("deactivated", result.Deactivated))
	return result, nil
}

func skipReason(task *domain.Task) string {
	switch {
	case task.Completed:
		return SkipTaskCompleted
	case !task.NotifyEnabled:
		return SkipNotifyDisabled
	default:
		return ""
	}
}

// fanOut sends to every subscription with bounded parallelism. Goroutines
// never return an error so one failure cancels nothing.
func (s *ReminderService) fanOut(
	ctx context.Context,
	log *slog.Logger,
	subs []*domain.PushSubscription,
	payload domain.ReminderPayload,
) *DeliveryResult {
	var (
		mu     sync.Mutex
		result DeliveryResult
	)

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)

	for _, sub := range subs {
		g.Go(func() error {
			err := s.sender.Send(ctx, sub, payload)

			var deactivated bool
			if errors.Is(err, domain.ErrSubscriptionGone) {
				deactivated = s.deactivate(ctx, log, sub)
			} else if err != nil {
				log.Warn("push delivery failed",
					slog.Int64("subscription_id", sub.ID),
					slog.String("error", redact.Error(err)))
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Sent++
			case deactivated:
				result.Deactivated++
			default:
				result.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	return &result
}

func (s *ReminderService) deactivate(ctx context.Context, log *slog.Logger, sub *domain.PushSubscription) bool {
	err := s.subs.Deactivate(ctx, sub.Endpoint)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Warn("failed to deactivate gone subscription",
			slog.Int64("subscription_id", sub.ID),
			slog.String("error", redact.Error(err)))
		return false
	}
	log.Info("push subscription deactivated", slog.Int64("subscription_id", sub.ID))
	return true
}

func (s *ReminderService) clearJobID(ctx context.Context, log *slog.Logger, taskID int64) {
	if err := s.tasks.ClearReminderJobID(ctx, taskID); err != nil {
		log.Warn("failed to clear reminder job id", slog.String("error", redact.Error(err)))
	}
}
