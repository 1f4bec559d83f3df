package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/api/shared"
	"github.com/pvasek/taskhub/internal/platform/logger"
	"github.com/pvasek/taskhub/internal/store"
)

// NotificationHandler handles notification-related HTTP requests.
// Notifications are always scoped to the authenticated actor; there is no
// way to read or modify another recipient's inbox.
type NotificationHandler struct {
	notifications store.NotificationStore
	logger        *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(
	notifications store.NotificationStore,
	logger *slog.Logger,
) *NotificationHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for NotificationHandler")
	}

	return &NotificationHandler{
		notifications: notifications,
		logger:        logger.With(slog.String("component", "notification_handler")),
	}
}

// ListNotifications handles GET /notifications requests.
// Supports limit and offset query parameters; results are newest first.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		log.Warn("actor not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	records, err := h.notifications.ListByRecipient(r.Context(), actor.ID, limit, offset)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]NotificationResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, notificationToResponse(record))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// MarkNotificationRead handles POST /notifications/{id}/read requests.
// Marking an already-read notification is a no-op and still returns 204.
func (h *NotificationHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	pathID := chi.URLParam(r, "id")
	notificationID, err := uuid.Parse(pathID)
	if err != nil {
		log.Warn("invalid notification ID format", slog.String("notification_id", pathID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid notification ID format")
		return
	}

	if err := h.notifications.MarkRead(r.Context(), notificationID, actor.ID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an integer query parameter, returning the fallback on a
// missing or malformed value.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
