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

// PostgresTaskStore implements the store.TaskStore interface using PostgreSQL.
//
// Comments and work logs live in their own append-only tables rather than in
// an embedded array column; the task row carries per-collection counters
// that serve as the compare-and-swap guard for appends. Status transitions
// CAS on the status column itself.
type PostgresTaskStore struct {
	db store.DBTX
}

// NewPostgresTaskStore creates a new PostgresTaskStore.
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{
		db: db,
	}
}

// WithTx implements store.TaskStore.WithTx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx}
}

// inTx runs fn against a transactional copy of the store. When the store is
// already inside a transaction, fn runs against it directly.
func (s *PostgresTaskStore) inTx(ctx context.Context, fn func(txStore *PostgresTaskStore) error) error {
	if db, ok := s.db.(*sql.DB); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return fn(&PostgresTaskStore{db: tx})
		})
	}
	return fn(s)
}

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	return s.inTx(ctx, func(txStore *PostgresTaskStore) error {
		query := `
			INSERT INTO tasks
				(id, project_id, title, description, priority, status,
				 creator_id, due_date, comment_count, work_log_count,
				 created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, $9, $10)
		`
		_, err := txStore.db.ExecContext(ctx, query,
			task.ID,
			task.ProjectID,
			task.Title,
			task.Description,
			task.Priority,
			task.Status,
			task.CreatorID,
			task.DueDate,
			task.CreatedAt,
			task.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to insert task", "task_id", task.ID, "error", err)
			return MapError(err)
		}

		if err := txStore.insertAssignees(ctx, task.ID, task.AssigneeIDs); err != nil {
			return err
		}

		return nil
	})
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT id, project_id, title, description, priority, status,
		       creator_id, due_date, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	task := &domain.Task{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Status,
		&task.CreatorID,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}

	if task.AssigneeIDs, err = s.loadAssignees(ctx, id); err != nil {
		return nil, err
	}
	if task.Comments, err = s.loadComments(ctx, id); err != nil {
		return nil, err
	}
	if task.WorkLogs, err = s.loadWorkLogs(ctx, id); err != nil {
		return nil, err
	}

	return task, nil
}

// UpdateStatus implements store.TaskStore.UpdateStatus. The guard is the
// status column itself: the update only lands if the stored status still
// matches what the caller read.
func (s *PostgresTaskStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	expectedStatus, newStatus domain.TaskStatus,
) (*domain.Task, error) {
	log := logger.FromContext(ctx)

	query := `
		UPDATE tasks
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		newStatus,
		time.Now().UTC(),
		id,
		expectedStatus,
	)
	if err != nil {
		log.Error("failed to update task status",
			"task_id", id, "new_status", newStatus, "error", err)
		return nil, MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Either the task is gone or someone else changed the status first.
		if _, err := s.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, store.NewStoreError("task", "update_status",
			"stored status no longer matches expected status",
			store.ErrConcurrentModification)
	}

	return s.GetByID(ctx, id)
}

// AppendComment implements store.TaskStore.AppendComment. The comment row
// insert and the counter bump commit together; a counter mismatch rolls the
// insert back and surfaces as a concurrent modification.
func (s *PostgresTaskStore) AppendComment(
	ctx context.Context,
	id uuid.UUID,
	expectedLength int,
	comment *domain.Comment,
) (*domain.Task, error) {
	if err := comment.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	err := s.inTx(ctx, func(txStore *PostgresTaskStore) error {
		insert := `
			INSERT INTO task_comments
				(id, task_id, author_id, author_name, author_avatar, body, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := txStore.db.ExecContext(ctx, insert,
			comment.ID,
			id,
			comment.AuthorID,
			comment.AuthorName,
			comment.AuthorAvatar,
			comment.Body,
			comment.CreatedAt,
		)
		if err != nil {
			return MapError(err)
		}

		return txStore.bumpCounter(ctx, id, "comment_count", expectedLength)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// AppendWorkLog implements store.TaskStore.AppendWorkLog.
func (s *PostgresTaskStore) AppendWorkLog(
	ctx context.Context,
	id uuid.UUID,
	expectedLength int,
	workLog *domain.WorkLog,
) (*domain.Task, error) {
	if err := workLog.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	err := s.inTx(ctx, func(txStore *PostgresTaskStore) error {
		insert := `
			INSERT INTO task_work_logs
				(id, task_id, author_id, author_name, hours_spent, description, logged_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := txStore.db.ExecContext(ctx, insert,
			workLog.ID,
			id,
			workLog.AuthorID,
			workLog.AuthorName,
			workLog.HoursSpent,
			workLog.Description,
			workLog.LoggedAt,
		)
		if err != nil {
			return MapError(err)
		}

		return txStore.bumpCounter(ctx, id, "work_log_count", expectedLength)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// ReplaceAssignees implements store.TaskStore.ReplaceAssignees.
func (s *PostgresTaskStore) ReplaceAssignees(
	ctx context.Context,
	id uuid.UUID,
	assigneeIDs []uuid.UUID,
) (*domain.Task, error) {
	err := s.inTx(ctx, func(txStore *PostgresTaskStore) error {
		touch := `UPDATE tasks SET updated_at = $1 WHERE id = $2`
		result, err := txStore.db.ExecContext(ctx, touch, time.Now().UTC(), id)
		if err != nil {
			return MapError(err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return store.ErrTaskNotFound
		}

		if _, err := txStore.db.ExecContext(ctx,
			`DELETE FROM task_assignees WHERE task_id = $1`, id); err != nil {
			return MapError(err)
		}

		return txStore.insertAssignees(ctx, id, assigneeIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// bumpCounter advances a collection counter only if it still holds the
// expected value. Zero rows affected means another append won the race.
func (s *PostgresTaskStore) bumpCounter(
	ctx context.Context,
	id uuid.UUID,
	column string,
	expected int,
) error {
	// column is one of two compile-time constants, never caller input.
	query := fmt.Sprintf(`
		UPDATE tasks
		SET %s = %s + 1, updated_at = $1
		WHERE id = $2 AND %s = $3
	`, column, column, column)

	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id, expected)
	if err != nil {
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.NewStoreError("task", "append",
			"collection length no longer matches expected length",
			store.ErrConcurrentModification)
	}

	return nil
}

func (s *PostgresTaskStore) insertAssignees(
	ctx context.Context,
	taskID uuid.UUID,
	assigneeIDs []uuid.UUID,
) error {
	for _, userID := range assigneeIDs {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO task_assignees (task_id, user_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			taskID, userID)
		if err != nil {
			return MapError(err)
		}
	}
	return nil
}

func (s *PostgresTaskStore) loadAssignees(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM task_assignees WHERE task_id = $1 ORDER BY user_id`,
		taskID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresTaskStore) loadComments(ctx context.Context, taskID uuid.UUID) ([]domain.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author_id, author_name, author_avatar, body, created_at
		FROM task_comments
		WHERE task_id = $1
		ORDER BY created_at ASC, id ASC
	`, taskID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(
			&c.ID, &c.AuthorID, &c.AuthorName, &c.AuthorAvatar, &c.Body, &c.CreatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *PostgresTaskStore) loadWorkLogs(ctx context.Context, taskID uuid.UUID) ([]domain.WorkLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author_id, author_name, hours_spent, description, logged_at
		FROM task_work_logs
		WHERE task_id = $1
		ORDER BY logged_at ASC, id ASC
	`, taskID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var workLogs []domain.WorkLog
	for rows.Next() {
		var w domain.WorkLog
		if err := rows.Scan(
			&w.ID, &w.AuthorID, &w.AuthorName, &w.HoursSpent, &w.Description, &w.LoggedAt,
		); err != nil {
			return nil, MapError(err)
		}
		workLogs = append(workLogs, w)
	}
	return workLogs, rows.Err()
}
