package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// NotificationKind identifies which workflow event produced a notification.
type NotificationKind string

// Possible notification kinds
const (
	NotificationTaskAssigned             NotificationKind = "task_assigned"
	NotificationTaskCompletedForApproval NotificationKind = "task_completed_for_approval"
	NotificationTaskApproved             NotificationKind = "task_approved"
	NotificationTaskRejected             NotificationKind = "task_rejected"
	NotificationNewComment               NotificationKind = "new_comment_on_task"
	NotificationTaskUnassigned           NotificationKind = "task_unassigned"
	NotificationNewWorkLog               NotificationKind = "new_work_log_on_task"
)

// IsValid reports whether the kind is one of the known notification kinds.
func (k NotificationKind) IsValid() bool {
	switch k {
	case NotificationTaskAssigned,
		NotificationTaskCompletedForApproval,
		NotificationTaskApproved,
		NotificationTaskRejected,
		NotificationNewComment,
		NotificationTaskUnassigned,
		NotificationNewWorkLog:
		return true
	}
	return false
}

// Common validation errors for NotificationRecord
var (
	ErrEmptyNotificationID        = errors.New("notification ID cannot be empty")
	ErrEmptyNotificationRecipient = errors.New("notification recipient ID cannot be empty")
	ErrEmptyNotificationMessage   = errors.New("notification message cannot be empty")
	ErrInvalidNotificationKind    = errors.New("invalid notification kind")
)

// NotificationRecord is the durable in-app notification. One record is
// created per (event, recipient) pair. Email delivery is best-effort and
// never affects the record; ReadAt is set later by the recipient.
type NotificationRecord struct {
	ID                uuid.UUID        `json:"id"`
	RecipientID       uuid.UUID        `json:"recipient_id"`
	Message           string           `json:"message"`
	Link              string           `json:"link"`
	Kind              NotificationKind `json:"kind"`
	RelatedTaskID     uuid.UUID        `json:"related_task_id"`
	TriggeredByUserID uuid.UUID        `json:"triggered_by_user_id"`
	CreatedAt         time.Time        `json:"created_at"`
	ReadAt            *time.Time       `json:"read_at,omitempty"`
}

// NewNotificationRecord creates a new NotificationRecord for the given
// recipient. Returns an error if validation fails.
func NewNotificationRecord(
	recipientID uuid.UUID,
	kind NotificationKind,
	message, link string,
	relatedTaskID, triggeredBy uuid.UUID,
) (*NotificationRecord, error) {
	record := &NotificationRecord{
		ID:                uuid.New(),
		RecipientID:       recipientID,
		Message:           message,
		Link:              link,
		Kind:              kind,
		RelatedTaskID:     relatedTaskID,
		TriggeredByUserID: triggeredBy,
		CreatedAt:         time.Now().UTC(),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the NotificationRecord has valid data.
func (n *NotificationRecord) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNotificationID
	}

	if n.RecipientID == uuid.Nil {
		return ErrEmptyNotificationRecipient
	}

	if n.Message == "" {
		return ErrEmptyNotificationMessage
	}

	if !n.Kind.IsValid() {
		return ErrInvalidNotificationKind
	}

	return nil
}

// MarkRead sets the read timestamp if not already set.
func (n *NotificationRecord) MarkRead() {
	if n.ReadAt == nil {
		now := time.Now().UTC()
		n.ReadAt = &now
	}
}
