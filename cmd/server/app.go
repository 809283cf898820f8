package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/berkedogan/tasks-api/internal/api"
	"github.com/berkedogan/tasks-api/internal/config"
	"github.com/berkedogan/tasks-api/internal/platform/postgres"
	"github.com/berkedogan/tasks-api/internal/platform/qstash"
	"github.com/berkedogan/tasks-api/internal/platform/webpush"
	"github.com/berkedogan/tasks-api/internal/service"
	"github.com/berkedogan/tasks-api/internal/service/auth"
)

var (
	_ service.ReminderQueue = (*qstash.Client)(nil)
	_ service.PushSender    = (*webpush.Sender)(nil)
	_ api.DatabaseClock     = (*postgres.PostgresTaskStore)(nil)
)

// application holds the shared dependencies and owns their cleanup.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	taskStore         *postgres.PostgresTaskStore
	subscriptionStore *postgres.PostgresSubscriptionStore

	jwtService          auth.JWTService
	verifier            *qstash.Verifier
	taskService         *service.TaskService
	reminderService     *service.ReminderService
	subscriptionService *service.SubscriptionService

	resetCron *cron.Cron
}

// newApplication wires stores, transports and services. QStash and Web Push
// are optional; when either is unconfigured the matching feature degrades
// to a no-op instead of failing startup.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.subscriptionStore = postgres.NewPostgresSubscriptionStore(db, logger)

	// Interfaces stay literally nil when a transport is off, so the services
	// see "unconfigured" rather than a typed nil.
	var queue service.ReminderQueue
	if cfg.QStash.Enabled() {
		client, err := qstash.NewClient(qstash.Config{
			BaseURL: cfg.QStash.BaseURL,
			Token:   cfg.QStash.Token,
			Timeout: cfg.QStash.Timeout(),
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create qstash client: %w", err)
		}
		queue = client
		logger.Info("QStash reminder queue configured")
	} else {
		logger.Warn("QStash is not configured, reminders will not be scheduled")
	}

	if cfg.QStash.VerifiesSignatures() {
		app.verifier, err = qstash.NewVerifier(cfg.QStash.CurrentSigningKey, cfg.QStash.NextSigningKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create qstash verifier: %w", err)
		}
	} else {
		logger.Warn("QStash signing keys are not configured, reminder callbacks are not verified")
	}

	var sender service.PushSender
	var publicKey string
	if cfg.Push.Enabled() {
		s, err := webpush.NewSender(webpush.Config{
			VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
			Subject:         cfg.Push.Subject,
			TTL:             time.Duration(cfg.Push.TTLSeconds) * time.Second,
			Timeout:         cfg.Push.Timeout(),
			Logger:          logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create push sender: %w", err)
		}
		sender = s
		publicKey = s.PublicKey()
		logger.Info("Web Push sender configured")
	} else {
		logger.Warn("VAPID keys are not configured, push delivery is disabled")
	}

	scheduler, err := service.NewReminderScheduler(queue, app.taskStore, service.SchedulerConfig{
		CallbackURL: cfg.QStash.CallbackURL,
		TestDelay:   time.Duration(cfg.QStash.TestDelaySeconds) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder scheduler: %w", err)
	}

	app.taskService, err = service.NewTaskService(db, app.taskStore, scheduler, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.reminderService, err = service.NewReminderService(
		app.taskStore,
		app.subscriptionStore,
		sender,
		service.PayloadConfig{
			Icon:     cfg.Push.Icon,
			Badge:    cfg.Push.Badge,
			ClickURL: cfg.Push.ClickURL,
		},
		cfg.Push.Concurrency,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder service: %w", err)
	}

	app.subscriptionService, err = service.NewSubscriptionService(app.subscriptionStore, publicKey, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription service: %w", err)
	}

	app.resetCron, err = newResetCron(cfg.Reset.Schedule, app.taskService, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up reset schedule: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// routerDeps collects what setupRouter needs from the application.
func (app *application) routerDeps() routerDeps {
	deps := routerDeps{
		Tasks:         app.taskService,
		Subscriptions: app.subscriptionService,
		Reminders:     app.reminderService,
		Clock:         app.taskStore,
		JWT:           app.jwtService,
		CookieName:    app.config.Auth.CookieName,
		TriggerToken:  app.config.Reset.TriggerToken,
		CallbackURL:   app.config.QStash.CallbackURL,
		Logger:        app.logger,
	}
	if app.verifier != nil {
		deps.Verifier = app.verifier
	}
	return deps
}

// Run serves HTTP until a shutdown signal arrives or ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	router := setupRouter(app.routerDeps())

	if app.resetCron != nil {
		app.resetCron.Start()
		app.logger.Info("Reset schedule started", slog.String("schedule", app.config.Reset.Schedule))
	}

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops the reset schedule and closes the database.
func (app *application) cleanup() {
	if app.resetCron != nil {
		<-app.resetCron.Stop().Done()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("Application shutdown completed")
}
