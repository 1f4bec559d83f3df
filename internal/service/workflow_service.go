package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/domain"
	"github.com/pvasek/taskhub/internal/events"
	"github.com/pvasek/taskhub/internal/store"
)

// WorkflowService applies task status transitions. It is the only writer of
// task status: every transition is validated against the workflow graph and
// applied with a conditional update, so two actors racing each other on a
// stale read cannot both win.
type WorkflowService interface {
	// Transition moves the task to the requested status on behalf of the
	// actor. Returns domain.ErrInvalidTransition for a nonexistent edge,
	// domain.ErrPermissionDenied when the actor lacks the required role, and
	// store.ErrConcurrentModification when the task keeps changing under the
	// caller after one retry.
	Transition(
		ctx context.Context,
		taskID uuid.UUID,
		actor domain.Actor,
		to domain.TaskStatus,
	) (*domain.Task, error)
}

// workflowServiceImpl implements the WorkflowService interface
type workflowServiceImpl struct {
	taskStore store.TaskStore
	directory store.UserDirectory
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewWorkflowService creates a new WorkflowService.
// It returns an error if any of the required dependencies are nil.
func NewWorkflowService(
	taskStore store.TaskStore,
	directory store.UserDirectory,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (WorkflowService, error) {
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if directory == nil {
		return nil, domain.NewValidationError("directory", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, domain.NewValidationError("emitter", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &workflowServiceImpl{
		taskStore: taskStore,
		directory: directory,
		emitter:   emitter,
		logger:    logger.With(slog.String("component", "workflow_service")),
	}, nil
}

// Transition implements WorkflowService.Transition.
func (s *workflowServiceImpl) Transition(
	ctx context.Context,
	taskID uuid.UUID,
	actor domain.Actor,
	to domain.TaskStatus,
) (*domain.Task, error) {
	log := s.logger.With(
		slog.String("task_id", taskID.String()),
		slog.String("actor_id", actor.ID.String()),
		slog.String("to_status", string(to)),
	)

	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updated, err := s.applyTransition(ctx, task, actor, to)
	if errors.Is(err, store.ErrConcurrentModification) {
		// Someone else moved the task between our read and our write.
		// Re-read, re-validate against the fresh state and try once more.
		log.Debug("status CAS failed, retrying once")

		task, err = s.taskStore.GetByID(ctx, taskID)
		if err != nil {
			return nil, err
		}

		updated, err = s.applyTransition(ctx, task, actor, to)
	}
	if err != nil {
		return nil, err
	}

	log.Info("task transitioned",
		slog.String("from_status", string(task.Status)))

	s.emitTransitionEvent(ctx, task.Status, updated, actor)

	return updated, nil
}

// applyTransition validates the edge against the current snapshot and
// performs the conditional status update.
func (s *workflowServiceImpl) applyTransition(
	ctx context.Context,
	task *domain.Task,
	actor domain.Actor,
	to domain.TaskStatus,
) (*domain.Task, error) {
	if err := task.AuthorizeTransition(actor, to); err != nil {
		return nil, err
	}

	return s.taskStore.UpdateStatus(ctx, task.ID, task.Status, to)
}

// emitTransitionEvent publishes the domain event for a committed transition.
// The task state is already durable at this point, so event failures are
// logged and swallowed: "your action succeeded; some people may not have
// been notified".
func (s *workflowServiceImpl) emitTransitionEvent(
	ctx context.Context,
	from domain.TaskStatus,
	task *domain.Task,
	actor domain.Actor,
) {
	var (
		kind       events.EventKind
		recipients []uuid.UUID
	)

	switch {
	case task.Status == domain.TaskStatusCompleted:
		kind = events.EventTaskCompleted
		admins, err := s.directory.ListAdmins(ctx)
		if err != nil {
			s.logger.Error("failed to resolve admin recipients, skipping event",
				"task_id", task.ID,
				"error", err)
			return
		}
		for _, admin := range admins {
			recipients = append(recipients, admin.ID)
		}

	case from == domain.TaskStatusCompleted && task.Status == domain.TaskStatusApproved:
		kind = events.EventTaskApproved
		recipients = task.AssigneeIDs

	case from == domain.TaskStatusCompleted && task.Status == domain.TaskStatusInProgress:
		kind = events.EventTaskRejected
		recipients = task.AssigneeIDs

	default:
		// Pending -> InProgress: starting work notifies nobody.
		return
	}

	event := events.NewTaskEvent(kind, task, recipients, actor)
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("transition event emission failed",
			"task_id", task.ID,
			"event_kind", kind,
			"error", err)
	}
}
