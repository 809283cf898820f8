package api

import (
	"context"
	"net/http"

	"github.com/berkedogan/tasks-api/internal/api/shared"
	"github.com/berkedogan/tasks-api/internal/service"
)

// ReminderService delivers a fired reminder.
type ReminderService interface {
	Deliver(ctx context.Context, taskID int64) (*service.DeliveryResult, error)
}

var _ ReminderService = (*service.ReminderService)(nil)

// ReminderHandler handles the delayed-queue callback.
type ReminderHandler struct {
	reminders ReminderService
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminders ReminderService) *ReminderHandler {
	return &ReminderHandler{reminders: reminders}
}

// Deliver handles POST /api/reminders/deliver. Skipped deliveries still
// answer 200 so the queue does not retry them.
func (h *ReminderHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	var req DeliverRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.reminders.Deliver(r.Context(), req.TaskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to deliver reminder")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeliverResponse{Success: true, DeliveryResult: *result})
}
