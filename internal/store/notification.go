package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/domain"
)

// InsertResult reports the outcome of persisting a single notification
// record within a batch. InsertMany is never all-or-nothing: one failed
// record must not prevent the rest of the batch from landing.
type InsertResult struct {
	RecordID    uuid.UUID
	RecipientID uuid.UUID
	Err         error
}

// Ok reports whether the record was persisted.
func (r InsertResult) Ok() bool {
	return r.Err == nil
}

// NotificationStore defines the interface for notification persistence.
type NotificationStore interface {
	// InsertMany persists each record independently and returns one result
	// per input record, in input order. It only returns an error for
	// failures that prevent the batch from being attempted at all.
	InsertMany(ctx context.Context, records []*domain.NotificationRecord) ([]InsertResult, error)

	// ListByRecipient retrieves notifications for a recipient, newest first.
	// Returns an empty slice if the recipient has none.
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*domain.NotificationRecord, error)

	// MarkRead sets the read timestamp on a notification owned by the given
	// recipient. Returns ErrNotificationNotFound if no such notification
	// exists for that recipient. Marking an already-read notification is a
	// no-op.
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error

	// DeleteByTask removes all notifications related to a task. Used when an
	// external collaborator hard-deletes the task itself.
	DeleteByTask(ctx context.Context, taskID uuid.UUID) error

	// WithTx returns a new NotificationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) NotificationStore
}
