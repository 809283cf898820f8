package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/berkedogan/tasks-api/internal/api"
	apiMiddleware "github.com/berkedogan/tasks-api/internal/api/middleware"
	"github.com/berkedogan/tasks-api/internal/service/auth"
)

// routerDeps are the handler dependencies. Verifier is nil when queue
// callbacks are accepted unsigned.
type routerDeps struct {
	Tasks         api.TaskService
	Subscriptions api.SubscriptionService
	Reminders     api.ReminderService
	Clock         api.DatabaseClock
	JWT           auth.JWTService
	Verifier      apiMiddleware.SignatureVerifier

	CookieName   string
	TriggerToken string
	CallbackURL  string
	Logger       *slog.Logger
}

// setupRouter creates the chi router with all routes and middleware.
func setupRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(deps.Logger))

	taskHandler := api.NewTaskHandler(deps.Tasks, deps.Logger)
	pushHandler := api.NewPushHandler(deps.Subscriptions)
	reminderHandler := api.NewReminderHandler(deps.Reminders)
	systemHandler := api.NewSystemHandler(deps.Clock, deps.Logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(deps.JWT, deps.CookieName)

	r.Get("/health", systemHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/time", systemHandler.Time)

		// Called by the delayed queue, never by a browser.
		r.Group(func(r chi.Router) {
			if deps.Verifier != nil {
				r.Use(apiMiddleware.QStashSignature(deps.Verifier, deps.CallbackURL))
			}
			r.Post("/reminders/deliver", reminderHandler.Deliver)
		})

		r.With(authMiddleware.AuthenticateOrTrigger(deps.TriggerToken)).
			Post("/tasks/reset", taskHandler.ResetTasks)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/tasks", taskHandler.ListTasks)
			r.Post("/tasks", taskHandler.CreateTask)
			r.Put("/tasks/{id}", taskHandler.UpdateTask)
			r.Post("/tasks/{id}/toggle", taskHandler.ToggleTask)
			r.Delete("/tasks/{id}", taskHandler.DeleteTask)

			r.Get("/push/key", pushHandler.PublicKey)
			r.Post("/push/subscribe", pushHandler.Subscribe)
		})
	})

	return r
}
