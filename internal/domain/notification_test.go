package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewNotificationRecord(t *testing.T) {
	t.Parallel() // Enable parallel execution
	recipientID := uuid.New()
	taskID := uuid.New()
	triggeredBy := uuid.New()

	record, err := NewNotificationRecord(
		recipientID,
		NotificationTaskAssigned,
		"Lead assigned you to the task \"Ship it\"",
		"/tasks/"+taskID.String(),
		taskID,
		triggeredBy,
	)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if record.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if record.ReadAt != nil {
		t.Error("Expected new record to be unread")
	}

	// Test missing recipient
	_, err = NewNotificationRecord(uuid.Nil, NotificationTaskAssigned, "m", "", taskID, triggeredBy)
	if err != ErrEmptyNotificationRecipient {
		t.Errorf("Expected error %v, got %v", ErrEmptyNotificationRecipient, err)
	}

	// Test empty message
	_, err = NewNotificationRecord(recipientID, NotificationTaskAssigned, "", "", taskID, triggeredBy)
	if err != ErrEmptyNotificationMessage {
		t.Errorf("Expected error %v, got %v", ErrEmptyNotificationMessage, err)
	}

	// Test unknown kind
	_, err = NewNotificationRecord(recipientID, NotificationKind("pager_duty"), "m", "", taskID, triggeredBy)
	if err != ErrInvalidNotificationKind {
		t.Errorf("Expected error %v, got %v", ErrInvalidNotificationKind, err)
	}
}

func TestMarkRead(t *testing.T) {
	t.Parallel()

	record := &NotificationRecord{
		ID:          uuid.New(),
		RecipientID: uuid.New(),
		Message:     "m",
		Kind:        NotificationNewComment,
	}

	record.MarkRead()
	if record.ReadAt == nil {
		t.Fatal("Expected ReadAt to be set")
	}

	first := *record.ReadAt
	record.MarkRead()
	if !record.ReadAt.Equal(first) {
		t.Error("Expected second MarkRead to be a no-op")
	}
}
