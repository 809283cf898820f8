package api

import (
	"context"
	"net/http"

	"github.com/berkedogan/tasks-api/internal/api/shared"
	"github.com/berkedogan/tasks-api/internal/domain"
	"github.com/berkedogan/tasks-api/internal/service"
)

// SubscriptionService registers browsers for push reminders.
type SubscriptionService interface {
	PublicKey() (string, error)
	Subscribe(ctx context.Context, input service.SubscriptionInput) (*domain.PushSubscription, error)
}

var _ SubscriptionService = (*service.SubscriptionService)(nil)

// PushHandler handles push subscription HTTP requests.
type PushHandler struct {
	subs SubscriptionService
}

// NewPushHandler creates a new PushHandler.
func NewPushHandler(subs SubscriptionService) *PushHandler {
	return &PushHandler{subs: subs}
}

// PublicKey handles GET /api/push/key.
func (h *PushHandler) PublicKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.subs.PublicKey()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, PushKeyResponse{Success: true, PublicKey: key})
}

// Subscribe handles POST /api/push/subscribe.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sub, err := h.subs.Subscribe(r.Context(), req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to store subscription")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubscribeResponse{Success: true, ID: sub.ID})
}
