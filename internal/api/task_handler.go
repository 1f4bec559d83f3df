package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/api/shared"
	"github.com/pvasek/taskhub/internal/domain"
	"github.com/pvasek/taskhub/internal/platform/logger"
	"github.com/pvasek/taskhub/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService       service.TaskService
	workflowService   service.WorkflowService
	collabService     service.CollabService
	assignmentService service.AssignmentService
	logger            *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(
	taskService service.TaskService,
	workflowService service.WorkflowService,
	collabService service.CollabService,
	assignmentService service.AssignmentService,
	logger *slog.Logger,
) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService:       taskService,
		workflowService:   workflowService,
		collabService:     collabService,
		assignmentService: assignmentService,
		logger:            logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks requests.
// Only admins may create tasks; the workflow starts in the pending state.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		log.Warn("actor not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	assigneeIDs, err := parseUUIDs(req.AssigneeIDs)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid assignee ID format")
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), actor, service.CreateTaskInput{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		AssigneeIDs: assigneeIDs,
		DueDate:     req.DueDate,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("actor_id", actor.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// GetTask handles GET /tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// Transition handles POST /tasks/{id}/transition requests.
// It moves the task through the workflow state machine on behalf of the
// authenticated actor.
func (h *TaskHandler) Transition(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req TransitionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	task, err := h.workflowService.Transition(r.Context(), taskID, actor, domain.TaskStatus(req.Status))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task transitioned",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)),
		slog.String("actor_id", actor.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// AddComment handles POST /tasks/{id}/comments requests.
func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req AddCommentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	input := service.CommentInput{Body: req.Body}
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid comment ID format")
			return
		}
		input.ID = id
	}

	task, err := h.collabService.AddComment(r.Context(), taskID, actor, input)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// AddWorkLog handles POST /tasks/{id}/work-logs requests.
func (h *TaskHandler) AddWorkLog(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req AddWorkLogRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	input := service.WorkLogInput{HoursSpent: req.HoursSpent, Description: req.Description}
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid work log ID format")
			return
		}
		input.ID = id
	}

	task, err := h.collabService.AddWorkLog(r.Context(), taskID, actor, input)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// UpdateAssignees handles PUT /tasks/{id}/assignees requests.
// Admin-only; notifies users who were newly added.
func (h *TaskHandler) UpdateAssignees(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateAssigneesRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	assigneeIDs, err := parseUUIDs(req.AssigneeIDs)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid assignee ID format")
		return
	}

	task, err := h.assignmentService.UpdateAssignees(r.Context(), taskID, actor, assigneeIDs)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task assignees updated",
		slog.String("task_id", task.ID.String()),
		slog.Int("assignee_count", len(task.AssigneeIDs)),
		slog.String("actor_id", actor.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// taskIDFromPath extracts and parses the task ID from the URL path,
// writing the error response itself when the ID is missing or malformed.
func (h *TaskHandler) taskIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	pathID := chi.URLParam(r, "id")
	if pathID == "" {
		log.Warn("task ID not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID is required")
		return uuid.Nil, false
	}

	taskID, err := uuid.Parse(pathID)
	if err != nil {
		log.Warn("invalid task ID format", slog.String("task_id", pathID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return uuid.Nil, false
	}

	return taskID, true
}

// parseUUIDs parses a slice of string IDs into UUIDs.
func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
