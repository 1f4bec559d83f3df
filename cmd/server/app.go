package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/pvasek/taskhub/internal/config"
	"github.com/pvasek/taskhub/internal/events"
	"github.com/pvasek/taskhub/internal/notify"
	"github.com/pvasek/taskhub/internal/platform/mailer"
	"github.com/pvasek/taskhub/internal/platform/postgres"
	"github.com/pvasek/taskhub/internal/service"
	"github.com/pvasek/taskhub/internal/service/auth"
	"github.com/pvasek/taskhub/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	taskStore         store.TaskStore
	notificationStore store.NotificationStore
	userDirectory     store.UserDirectory

	// Service interfaces
	tokenService      auth.TokenService
	taskService       service.TaskService
	workflowService   service.WorkflowService
	collabService     service.CollabService
	assignmentService service.AssignmentService

	// Event system
	eventEmitter events.EventEmitter
	dispatcher   *notify.Dispatcher
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize token service
	var err error
	app.tokenService, err = auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	logger.Info("JWT authentication service initialized")

	// Initialize stores
	app.taskStore = postgres.NewPostgresTaskStore(db)
	app.notificationStore = postgres.NewPostgresNotificationStore(db)
	app.userDirectory = postgres.NewPostgresUserDirectory(db)

	// Initialize event emitter
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	// The email gateway is optional: without an SMTP host the dispatcher
	// still persists in-app notifications and simply skips email delivery.
	var emailSender notify.EmailSender
	if cfg.SMTP.Host != "" {
		sender, err := mailer.NewSMTPSender(mailer.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SMTP sender: %w", err)
		}
		emailSender = sender
		logger.Info("Email gateway initialized", "host", cfg.SMTP.Host)
	} else {
		logger.Info("Email gateway disabled, in-app notifications only")
	}

	// Initialize the notification dispatcher and register it as the event
	// handler
	app.dispatcher, err = notify.NewDispatcher(
		app.userDirectory,
		app.notificationStore,
		emailSender,
		notify.DispatcherConfig{
			Workers:      cfg.Notify.Workers,
			EmailTimeout: time.Duration(cfg.Notify.EmailTimeoutSecs) * time.Second,
			BaseURL:      cfg.Notify.BaseURL,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification dispatcher: %w", err)
	}

	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(app.dispatcher)
	} else {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register dispatcher")
	}

	// Initialize task service
	app.taskService, err = service.NewTaskService(app.taskStore, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	// Initialize workflow service
	app.workflowService, err = service.NewWorkflowService(
		app.taskStore,
		app.userDirectory,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow service: %w", err)
	}

	// Initialize collaboration service
	app.collabService, err = service.NewCollabService(
		app.taskStore,
		app.eventEmitter,
		service.CollabOptions{NotifyOnWorkLog: cfg.Notify.OnWorkLog},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create collaboration service: %w", err)
	}

	// Initialize assignment service
	app.assignmentService, err = service.NewAssignmentService(
		app.taskStore,
		app.eventEmitter,
		service.AssignmentOptions{NotifyOnRemoval: cfg.Notify.OnAssigneeRemoval},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Let in-flight notification fan-out finish before closing the database
	if app.dispatcher != nil {
		app.dispatcher.Wait()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
