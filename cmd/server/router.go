package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pvasek/taskhub/internal/api"
	apiMiddleware "github.com/pvasek/taskhub/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(
		apiMiddleware.NewTraceMiddleware(app.logger),
	) // Add trace IDs for improved error handling

	// Create API handlers using the application's services
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokenService)

	taskHandler := api.NewTaskHandler(
		app.taskService,
		app.workflowService,
		app.collabService,
		app.assignmentService,
		app.logger,
	)
	notificationHandler := api.NewNotificationHandler(app.notificationStore, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Task endpoints
			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Post("/tasks/{id}/transition", taskHandler.Transition)
			r.Post("/tasks/{id}/comments", taskHandler.AddComment)
			r.Post("/tasks/{id}/work-logs", taskHandler.AddWorkLog)
			r.Put("/tasks/{id}/assignees", taskHandler.UpdateAssignees)

			// Notification endpoints
			r.Get("/notifications", notificationHandler.ListNotifications)
			r.Post("/notifications/{id}/read", notificationHandler.MarkNotificationRead)
		})
	})

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
