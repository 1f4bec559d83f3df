package domain

import (
	"github.com/google/uuid"
)

// Actor is the pre-authenticated identity performing an engine operation.
// The engine never authenticates; it only authorizes against this value.
// Identity issuance lives outside the engine, so an Actor is always passed
// explicitly rather than read from ambient state.
type Actor struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	IsAdmin     bool      `json:"is_admin"`
}

// Validate checks if the Actor has valid data.
func (a Actor) Validate() error {
	if a.ID == uuid.Nil {
		return NewValidationError("actor_id", "cannot be empty", ErrInvalidID)
	}
	return nil
}
