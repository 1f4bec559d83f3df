package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/domain"
)

// EventKind identifies the domain event produced by a workflow operation.
type EventKind string

// Domain event kinds. Pending→InProgress deliberately has no event: starting
// work is not worth anyone's attention.
const (
	// EventTaskAssigned is emitted for users newly added to a task's
	// assignee set. Recipients are the added users only.
	EventTaskAssigned EventKind = "task_assigned"

	// EventTaskCompleted is emitted when a task is submitted for approval.
	// Recipients are all admins.
	EventTaskCompleted EventKind = "task_completed"

	// EventTaskApproved is emitted when an admin approves a completed task.
	// Recipients are the task's assignees.
	EventTaskApproved EventKind = "task_approved"

	// EventTaskRejected is emitted when an admin sends a completed task back
	// to work. Recipients are the task's assignees.
	EventTaskRejected EventKind = "task_rejected"

	// EventTaskUnassigned is emitted for users removed from a task's
	// assignee set, only when the engine is configured to notify on removal.
	EventTaskUnassigned EventKind = "task_unassigned"

	// EventCommentAdded is emitted when a comment lands on a task.
	// Recipients are the task participants minus the author, plus anyone
	// the comment mentions.
	EventCommentAdded EventKind = "comment_added"

	// EventWorkLogAdded is emitted for work-log entries only when the
	// engine is configured to notify on them.
	EventWorkLogAdded EventKind = "work_log_added"
)

// TaskEvent is a domain event consumed by the notification dispatcher.
// Recipients is a set of user IDs; the dispatcher always excludes the
// triggering actor regardless of what the set contains.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID

	// Kind indicates which workflow operation produced the event
	Kind EventKind

	// Task is a snapshot of the task after the operation committed
	Task *domain.Task

	// Recipients are the user IDs this event should reach
	Recipients []uuid.UUID

	// Mentioned marks the subset of recipients who were explicitly
	// mentioned, which elevates the notification wording
	Mentioned map[uuid.UUID]bool

	// TriggeredBy is the actor whose operation produced the event
	TriggeredBy domain.Actor

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time
}

// NewTaskEvent creates a new TaskEvent for the given task and recipients.
func NewTaskEvent(
	kind EventKind,
	task *domain.Task,
	recipients []uuid.UUID,
	triggeredBy domain.Actor,
) *TaskEvent {
	return &TaskEvent{
		ID:          uuid.New(),
		Kind:        kind,
		Task:        task,
		Recipients:  recipients,
		TriggeredBy: triggeredBy,
		CreatedAt:   time.Now().UTC(),
	}
}

// IsMentioned reports whether the given recipient was explicitly mentioned.
func (e *TaskEvent) IsMentioned(id uuid.UUID) bool {
	return e.Mentioned[id]
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}
