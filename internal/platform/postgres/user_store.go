package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/domain"
	"github.com/pvasek/taskhub/internal/store"
)

// PostgresUserDirectory implements the store.UserDirectory interface using
// PostgreSQL. The engine only reads the users table; identity issuance and
// user management belong to an external collaborator.
type PostgresUserDirectory struct {
	db store.DBTX
}

// NewPostgresUserDirectory creates a new PostgresUserDirectory.
func NewPostgresUserDirectory(db store.DBTX) *PostgresUserDirectory {
	return &PostgresUserDirectory{
		db: db,
	}
}

// GetUsersByIDs implements store.UserDirectory.GetUsersByIDs.
// IDs with no matching user are simply absent from the result.
func (s *PostgresUserDirectory) GetUsersByIDs(
	ctx context.Context,
	ids []uuid.UUID,
) ([]domain.UserProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, email, is_admin
		FROM users
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var profiles []domain.UserProfile
	for rows.Next() {
		var p domain.UserProfile
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Email, &p.IsAdmin); err != nil {
			return nil, MapError(err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

// ListAdmins implements store.UserDirectory.ListAdmins.
func (s *PostgresUserDirectory) ListAdmins(ctx context.Context) ([]domain.UserProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, email, is_admin
		FROM users
		WHERE is_admin
	`)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var profiles []domain.UserProfile
	for rows.Next() {
		var p domain.UserProfile
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Email, &p.IsAdmin); err != nil {
			return nil, MapError(err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}
