package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxWorkLogHours caps a single work-log entry. Larger amounts must be
// logged as separate entries.
const MaxWorkLogHours = 100

// MinWorkLogDescriptionLen is the minimum length of a work-log description.
const MinWorkLogDescriptionLen = 10

// Common validation errors for WorkLog
var (
	ErrEmptyWorkLogID          = errors.New("work log ID cannot be empty")
	ErrEmptyWorkLogAuthor      = errors.New("work log author ID cannot be empty")
	ErrInvalidWorkLogHours     = errors.New("work log hours must be greater than 0 and at most 100")
	ErrShortWorkLogDescription = errors.New("work log description must be at least 10 characters")
)

// WorkLog is a single immutable record of hours spent on a task.
// Like comments, the ID is caller-generated for request-level idempotency.
type WorkLog struct {
	ID          uuid.UUID `json:"id"`
	AuthorID    uuid.UUID `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	HoursSpent  float64   `json:"hours_spent"`
	Description string    `json:"description"`
	LoggedAt    time.Time `json:"logged_at"`
}

// NewWorkLog creates a new WorkLog authored by the given actor.
// Returns an error if validation fails.
func NewWorkLog(actor Actor, hoursSpent float64, description string) (*WorkLog, error) {
	log := &WorkLog{
		ID:          uuid.New(),
		AuthorID:    actor.ID,
		AuthorName:  actor.DisplayName,
		HoursSpent:  hoursSpent,
		Description: description,
		LoggedAt:    time.Now().UTC(),
	}

	if err := log.Validate(); err != nil {
		return nil, err
	}

	return log, nil
}

// Validate checks if the WorkLog has valid data.
// Hours must satisfy 0 < hours <= 100; the boundary value 100 is accepted.
func (w *WorkLog) Validate() error {
	if w.ID == uuid.Nil {
		return ErrEmptyWorkLogID
	}

	if w.AuthorID == uuid.Nil {
		return ErrEmptyWorkLogAuthor
	}

	if w.HoursSpent <= 0 || w.HoursSpent > MaxWorkLogHours {
		return ErrInvalidWorkLogHours
	}

	if len(strings.TrimSpace(w.Description)) < MinWorkLogDescriptionLen {
		return ErrShortWorkLogDescription
	}

	return nil
}
