package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/domain"
	"github.com/pvasek/taskhub/internal/events"
	"github.com/pvasek/taskhub/internal/store"
)

// AssignmentOptions controls notification behavior for assignment edits.
// Removal notifications are off by default: being taken off a task can read
// as punitive, and the original behavior never notified on removal.
type AssignmentOptions struct {
	NotifyOnRemoval bool
}

// AssignmentService replaces a task's assignee set and notifies the right
// people about it: only users newly added are told, never assignees who
// were already on the task.
type AssignmentService interface {
	// UpdateAssignees replaces the assignee set. Admin-only: assignment is a
	// planning operation, not a collaboration one.
	UpdateAssignees(
		ctx context.Context,
		taskID uuid.UUID,
		actor domain.Actor,
		assigneeIDs []uuid.UUID,
	) (*domain.Task, error)
}

// DiffAssignees computes the set difference between an old and a new
// assignee set: added = new \ old, removed = old \ new. Order follows the
// input slices; duplicates are ignored.
func DiffAssignees(oldIDs, newIDs []uuid.UUID) (added, removed []uuid.UUID) {
	oldSet := make(map[uuid.UUID]struct{}, len(oldIDs))
	for _, id := range oldIDs {
		oldSet[id] = struct{}{}
	}
	newSet := make(map[uuid.UUID]struct{}, len(newIDs))
	for _, id := range newIDs {
		newSet[id] = struct{}{}
	}

	for _, id := range newIDs {
		if _, ok := oldSet[id]; !ok && !containsID(added, id) {
			added = append(added, id)
		}
	}
	for _, id := range oldIDs {
		if _, ok := newSet[id]; !ok && !containsID(removed, id) {
			removed = append(removed, id)
		}
	}

	return added, removed
}

// assignmentServiceImpl implements the AssignmentService interface
type assignmentServiceImpl struct {
	taskStore store.TaskStore
	emitter   events.EventEmitter
	opts      AssignmentOptions
	logger    *slog.Logger
}

// NewAssignmentService creates a new AssignmentService.
// It returns an error if any of the required dependencies are nil.
func NewAssignmentService(
	taskStore store.TaskStore,
	emitter events.EventEmitter,
	opts AssignmentOptions,
	logger *slog.Logger,
) (AssignmentService, error) {
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, domain.NewValidationError("emitter", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &assignmentServiceImpl{
		taskStore: taskStore,
		emitter:   emitter,
		opts:      opts,
		logger:    logger.With(slog.String("component", "assignment_service")),
	}, nil
}

// UpdateAssignees implements AssignmentService.UpdateAssignees.
func (s *assignmentServiceImpl) UpdateAssignees(
	ctx context.Context,
	taskID uuid.UUID,
	actor domain.Actor,
	assigneeIDs []uuid.UUID,
) (*domain.Task, error) {
	if !actor.IsAdmin {
		return nil, domain.ErrPermissionDenied
	}

	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	added, removed := DiffAssignees(task.AssigneeIDs, assigneeIDs)

	updated, err := s.taskStore.ReplaceAssignees(ctx, taskID, assigneeIDs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("assignees updated",
		"task_id", taskID,
		"added_count", len(added),
		"removed_count", len(removed))

	if len(added) > 0 {
		event := events.NewTaskEvent(events.EventTaskAssigned, updated, added, actor)
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			s.logger.Warn("assignment event emission failed",
				"task_id", taskID, "error", err)
		}
	}

	if s.opts.NotifyOnRemoval && len(removed) > 0 {
		event := events.NewTaskEvent(events.EventTaskUnassigned, updated, removed, actor)
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			s.logger.Warn("unassignment event emission failed",
				"task_id", taskID, "error", err)
		}
	}

	return updated, nil
}
