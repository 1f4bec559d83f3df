package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the workflow state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusApproved   TaskStatus = "approved"
)

// IsValid reports whether the status is one of the known workflow states.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusApproved:
		return true
	}
	return false
}

// TaskPriority represents the urgency of a task
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// IsValid reports whether the priority is one of the known levels.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Common validation errors for Task
var (
	ErrEmptyTaskID        = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle     = errors.New("task title cannot be empty")
	ErrEmptyTaskCreator   = errors.New("task creator ID cannot be empty")
	ErrInvalidTaskStatus  = errors.New("invalid task status")
	ErrInvalidTaskPriority = errors.New("invalid task priority")
)

// transitionRole encodes who is allowed to take a workflow edge.
type transitionRole int

const (
	roleAssignee transitionRole = iota
	roleAdmin
	roleAssigneeOrAdmin
)

// transitions is the single source of truth for the task workflow graph.
// An edge absent from this table does not exist; the role guards who may
// take an edge that does.
var transitions = map[TaskStatus]map[TaskStatus]transitionRole{
	TaskStatusPending: {
		TaskStatusInProgress: roleAssigneeOrAdmin,
		TaskStatusCompleted:  roleAssignee,
	},
	TaskStatusInProgress: {
		TaskStatusCompleted: roleAssignee,
	},
	TaskStatusCompleted: {
		TaskStatusApproved:   roleAdmin,
		TaskStatusInProgress: roleAdmin,
	},
}

// Task represents a unit of work tracked through the workflow.
// Comments and WorkLogs are ordered append-only collections; AssigneeIDs is
// a set (order irrelevant, no duplicates) and may be empty.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	ProjectID   uuid.UUID    `json:"project_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	AssigneeIDs []uuid.UUID  `json:"assignee_ids"`
	CreatorID   uuid.UUID    `json:"creator_id"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Comments    []Comment    `json:"comments"`
	WorkLogs    []WorkLog    `json:"work_logs"`
}

// NewTask creates a new Task with the given fields. The workflow always
// begins in the pending state. Returns an error if validation fails.
func NewTask(
	projectID uuid.UUID,
	title, description string,
	priority TaskPriority,
	creatorID uuid.UUID,
	assigneeIDs []uuid.UUID,
	dueDate *time.Time,
) (*Task, error) {
	task := &Task{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      TaskStatusPending,
		AssigneeIDs: dedupeIDs(assigneeIDs),
		CreatorID:   creatorID,
		DueDate:     dueDate,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if t.CreatorID == uuid.Nil {
		return ErrEmptyTaskCreator
	}

	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}

	if !t.Priority.IsValid() {
		return ErrInvalidTaskPriority
	}

	return nil
}

// IsAssignee reports whether the given user is currently assigned to the task.
func (t *Task) IsAssignee(userID uuid.UUID) bool {
	for _, id := range t.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Participants returns the task's assignees plus its creator, deduplicated.
// This is the audience eligible for collaborative notifications and mentions.
func (t *Task) Participants() []uuid.UUID {
	return dedupeIDs(append(append([]uuid.UUID{}, t.AssigneeIDs...), t.CreatorID))
}

// AuthorizeTransition checks whether the actor may move the task to the
// requested status. It distinguishes a nonexistent edge (ErrInvalidTransition)
// from an existing edge the actor lacks the role for (ErrPermissionDenied).
func (t *Task) AuthorizeTransition(actor Actor, to TaskStatus) error {
	edges, ok := transitions[t.Status]
	if !ok {
		return ErrInvalidTransition
	}

	role, ok := edges[to]
	if !ok {
		return ErrInvalidTransition
	}

	switch role {
	case roleAssignee:
		if !t.IsAssignee(actor.ID) {
			return ErrPermissionDenied
		}
	case roleAdmin:
		if !actor.IsAdmin {
			return ErrPermissionDenied
		}
	case roleAssigneeOrAdmin:
		if !t.IsAssignee(actor.ID) && !actor.IsAdmin {
			return ErrPermissionDenied
		}
	}

	return nil
}

// dedupeIDs returns the input IDs with duplicates and nil entries removed,
// preserving first-seen order.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
