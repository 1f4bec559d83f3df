package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/domain"
)

// UserDirectory is the engine's read-only view of the identity provider.
// The engine never creates or authenticates users; it only resolves
// recipient profiles and enumerates admins for approval notifications.
type UserDirectory interface {
	// GetUsersByIDs resolves profiles for the given IDs. Partial results are
	// allowed: IDs with no matching user are simply absent from the result,
	// not an error.
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.UserProfile, error)

	// ListAdmins returns the profiles of all users with the admin capability.
	ListAdmins(ctx context.Context) ([]domain.UserProfile, error)
}
