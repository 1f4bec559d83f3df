package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/domain"
	"github.com/pvasek/taskhub/internal/events"
	"github.com/pvasek/taskhub/internal/store"
)

// CreateTaskInput carries the caller's task data.
type CreateTaskInput struct {
	ProjectID   uuid.UUID
	Title       string
	Description string
	Priority    domain.TaskPriority
	AssigneeIDs []uuid.UUID
	DueDate     *time.Time
}

// TaskService creates and retrieves tasks. Creation is admin-only and
// always starts the workflow in the pending state.
type TaskService interface {
	// CreateTask validates and persists a new task, then emits an
	// assignment event to its initial assignees.
	CreateTask(ctx context.Context, actor domain.Actor, input CreateTaskInput) (*domain.Task, error)

	// GetTask retrieves a task by its ID.
	// Returns store.ErrTaskNotFound if the task does not exist.
	GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	taskStore store.TaskStore
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	taskStore store.TaskStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, domain.NewValidationError("emitter", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskStore: taskStore,
		emitter:   emitter,
		logger:    logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	actor domain.Actor,
	input CreateTaskInput,
) (*domain.Task, error) {
	if !actor.IsAdmin {
		return nil, domain.ErrPermissionDenied
	}

	task, err := domain.NewTask(
		input.ProjectID,
		input.Title,
		input.Description,
		input.Priority,
		actor.ID,
		input.AssigneeIDs,
		input.DueDate,
	)
	if err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		return nil, NewTaskServiceError("create", "failed to persist task", err)
	}

	s.logger.Info("task created",
		"task_id", task.ID,
		"creator_id", actor.ID,
		"assignee_count", len(task.AssigneeIDs))

	if len(task.AssigneeIDs) > 0 {
		event := events.NewTaskEvent(events.EventTaskAssigned, task, task.AssigneeIDs, actor)
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			s.logger.Warn("assignment event emission failed",
				"task_id", task.ID, "error", err)
		}
	}

	return task, nil
}

// GetTask implements TaskService.GetTask.
func (s *taskServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	return s.taskStore.GetByID(ctx, taskID)
}
