package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Comment
var (
	ErrEmptyCommentID     = errors.New("comment ID cannot be empty")
	ErrEmptyCommentAuthor = errors.New("comment author ID cannot be empty")
	ErrEmptyCommentBody   = errors.New("comment body cannot be empty")
)

// Comment is a single immutable entry in a task's discussion thread.
// The ID is generated by the caller so retried requests can be deduplicated
// before appending.
type Comment struct {
	ID           uuid.UUID `json:"id"`
	AuthorID     uuid.UUID `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar,omitempty"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewComment creates a new Comment authored by the given actor.
// It generates a new UUID for the comment ID and sets the creation timestamp.
// Returns an error if validation fails.
func NewComment(actor Actor, body string) (*Comment, error) {
	comment := &Comment{
		ID:         uuid.New(),
		AuthorID:   actor.ID,
		AuthorName: actor.DisplayName,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks if the Comment has valid data.
// A body consisting only of whitespace is rejected.
func (c *Comment) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCommentID
	}

	if c.AuthorID == uuid.Nil {
		return ErrEmptyCommentAuthor
	}

	if strings.TrimSpace(c.Body) == "" {
		return ErrEmptyCommentBody
	}

	return nil
}
