package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/domain"
	"github.com/pvasek/taskhub/internal/platform/logger"
	"github.com/pvasek/taskhub/internal/store"
)

// PostgresNotificationStore implements the store.NotificationStore interface
// using PostgreSQL.
type PostgresNotificationStore struct {
	db store.DBTX
}

// NewPostgresNotificationStore creates a new PostgresNotificationStore.
func NewPostgresNotificationStore(db store.DBTX) *PostgresNotificationStore {
	return &PostgresNotificationStore{
		db: db,
	}
}

// WithTx implements store.NotificationStore.WithTx.
func (s *PostgresNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore {
	return &PostgresNotificationStore{db: tx}
}

// InsertMany implements store.NotificationStore.InsertMany. Records are
// inserted one at a time, deliberately outside any shared transaction: a
// failed insert for one recipient must not take the rest of the batch down
// with it.
func (s *PostgresNotificationStore) InsertMany(
	ctx context.Context,
	records []*domain.NotificationRecord,
) ([]store.InsertResult, error) {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO notifications
			(id, recipient_id, message, link, kind, related_task_id,
			 triggered_by_user_id, created_at, read_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	results := make([]store.InsertResult, 0, len(records))
	for _, record := range records {
		result := store.InsertResult{
			RecordID:    record.ID,
			RecipientID: record.RecipientID,
		}

		if err := record.Validate(); err != nil {
			result.Err = fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
			results = append(results, result)
			continue
		}

		_, err := s.db.ExecContext(ctx, query,
			record.ID,
			record.RecipientID,
			record.Message,
			record.Link,
			record.Kind,
			record.RelatedTaskID,
			record.TriggeredByUserID,
			record.CreatedAt,
			record.ReadAt,
		)
		if err != nil {
			log.Error("failed to insert notification",
				"notification_id", record.ID,
				"recipient_id", record.RecipientID,
				"error", err)
			result.Err = MapError(err)
		}

		results = append(results, result)
	}

	return results, nil
}

// ListByRecipient implements store.NotificationStore.ListByRecipient.
func (s *PostgresNotificationStore) ListByRecipient(
	ctx context.Context,
	recipientID uuid.UUID,
	limit, offset int,
) ([]*domain.NotificationRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recipient_id, message, link, kind, related_task_id,
		       triggered_by_user_id, created_at, read_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, recipientID, limit, offset)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]*domain.NotificationRecord, 0)
	for rows.Next() {
		record := &domain.NotificationRecord{}
		if err := rows.Scan(
			&record.ID,
			&record.RecipientID,
			&record.Message,
			&record.Link,
			&record.Kind,
			&record.RelatedTaskID,
			&record.TriggeredByUserID,
			&record.CreatedAt,
			&record.ReadAt,
		); err != nil {
			return nil, MapError(err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// MarkRead implements store.NotificationStore.MarkRead. Marking an
// already-read notification is a no-op, not an error.
func (s *PostgresNotificationStore) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET read_at = $1
		WHERE id = $2 AND recipient_id = $3 AND read_at IS NULL
	`, time.Now().UTC(), id, recipientID)
	if err != nil {
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// Distinguish "already read" from "not yours / does not exist".
	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications WHERE id = $1 AND recipient_id = $2
		)
	`, id, recipientID).Scan(&exists)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return MapError(err)
	}
	if !exists {
		return store.ErrNotificationNotFound
	}

	return nil
}

// DeleteByTask implements store.NotificationStore.DeleteByTask.
func (s *PostgresNotificationStore) DeleteByTask(ctx context.Context, taskID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE related_task_id = $1`, taskID)
	if err != nil {
		return MapError(err)
	}
	return nil
}
