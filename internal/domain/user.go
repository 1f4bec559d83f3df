package domain

import (
	"github.com/google/uuid"
)

// UserProfile is the directory view of a user: just enough to address a
// notification. Profiles come from the identity provider and may be absent
// for stale IDs; an empty Email means the user is reachable in-app only.
type UserProfile struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	IsAdmin     bool      `json:"is_admin"`
}
