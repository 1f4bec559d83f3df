package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/domain"
)

// TaskStore defines the interface for task persistence. The task row is the
// only shared mutable resource in the engine, so every mutation here is a
// conditional update: callers state what they believe the current value is,
// and a mismatch comes back as ErrConcurrentModification instead of a
// silent lost update.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID, including its comment and
	// work-log collections and assignee set.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// UpdateStatus moves the task to newStatus only if the stored status
	// still equals expectedStatus. Returns the updated task on success and
	// ErrConcurrentModification if the stored status has moved on.
	UpdateStatus(
		ctx context.Context,
		id uuid.UUID,
		expectedStatus, newStatus domain.TaskStatus,
	) (*domain.Task, error)

	// AppendComment appends a comment to the task's thread only if the
	// stored thread still has expectedLength entries. Returns the updated
	// task on success, ErrConcurrentModification on a length mismatch, and
	// ErrDuplicate if a comment with the same ID was already appended.
	AppendComment(
		ctx context.Context,
		id uuid.UUID,
		expectedLength int,
		comment *domain.Comment,
	) (*domain.Task, error)

	// AppendWorkLog appends a work log under the same conditional-append
	// discipline as AppendComment.
	AppendWorkLog(
		ctx context.Context,
		id uuid.UUID,
		expectedLength int,
		log *domain.WorkLog,
	) (*domain.Task, error)

	// ReplaceAssignees atomically replaces the task's assignee set.
	// Returns ErrTaskNotFound if the task does not exist.
	ReplaceAssignees(ctx context.Context, id uuid.UUID, assigneeIDs []uuid.UUID) (*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) TaskStore
}
