package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/berkedogan/tasks-api/internal/api/shared"
	"github.com/berkedogan/tasks-api/internal/localtime"
	"github.com/berkedogan/tasks-api/internal/platform/logger"
	"github.com/berkedogan/tasks-api/internal/redact"
)

// DatabaseClock reports the database's current time.
type DatabaseClock interface {
	Now(ctx context.Context) (time.Time, error)
}

// SystemHandler serves health and clock diagnostics.
type SystemHandler struct {
	db     DatabaseClock
	now    func() time.Time
	logger *slog.Logger
}

// NewSystemHandler creates a new SystemHandler. A nil db omits the database
// clock from the diagnostics.
func NewSystemHandler(db DatabaseClock, logger *slog.Logger) *SystemHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SystemHandler{
		db:     db,
		now:    time.Now,
		logger: logger.With(slog.String("component", "system_handler")),
	}
}

// Health handles GET /health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Time handles GET /api/time. A database failure is logged and reported
// only as a missing database clock.
func (h *SystemHandler) Time(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	response := TimeResponse{
		Success:     true,
		ServerUTC:   now.UTC().Format(time.RFC3339),
		ServerLocal: localtime.ISOString(now),
		LocalClock:  localtime.WallClock(now),
		Offset:      now.In(localtime.Zone).Format("-07:00"),
	}

	if h.db != nil {
		dbNow, err := h.db.Now(r.Context())
		if err != nil {
			logger.FromContextOrDefault(r.Context(), h.logger).
				Warn("failed to read database clock", slog.String("error", redact.Error(err)))
		} else {
			drift := dbNow.Sub(now).Milliseconds()
			response.DatabaseUTC = dbNow.UTC().Format(time.RFC3339)
			response.DriftMillis = &drift
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}
