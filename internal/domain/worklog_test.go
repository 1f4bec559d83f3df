package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewWorkLog(t *testing.T) {
	t.Parallel() // Enable parallel execution
	actor := Actor{ID: uuid.New(), DisplayName: "Dev"}

	log, err := NewWorkLog(actor, 2.5, "implemented the dispatcher retry path")

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if log.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if log.HoursSpent != 2.5 {
		t.Errorf("Expected 2.5 hours, got %f", log.HoursSpent)
	}

	if log.LoggedAt.IsZero() {
		t.Error("Expected non-zero LoggedAt time")
	}
}

func TestWorkLogHoursBounds(t *testing.T) {
	t.Parallel()

	actor := Actor{ID: uuid.New(), DisplayName: "Dev"}
	description := "a perfectly valid work log description"

	testCases := []struct {
		name     string
		hours    float64
		expected error
	}{
		{"zero hours rejected", 0, ErrInvalidWorkLogHours},
		{"negative hours rejected", -1, ErrInvalidWorkLogHours},
		{"fractional hours accepted", 0.25, nil},
		{"boundary value 100 accepted", 100, nil},
		{"just above cap rejected", 100.01, ErrInvalidWorkLogHours},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewWorkLog(actor, tc.hours, description)
			if err != tc.expected {
				t.Errorf("hours=%f: expected %v, got %v", tc.hours, tc.expected, err)
			}
		})
	}
}

func TestWorkLogDescriptionLength(t *testing.T) {
	t.Parallel()

	actor := Actor{ID: uuid.New(), DisplayName: "Dev"}

	// Nine characters, too short
	if _, err := NewWorkLog(actor, 1, "nine char"); err != ErrShortWorkLogDescription {
		t.Errorf("Expected error %v, got %v", ErrShortWorkLogDescription, err)
	}

	// Padding with whitespace does not help
	if _, err := NewWorkLog(actor, 1, "  short  \t\n   "); err != ErrShortWorkLogDescription {
		t.Errorf("Expected error %v, got %v", ErrShortWorkLogDescription, err)
	}

	// Exactly ten characters passes
	if _, err := NewWorkLog(actor, 1, "ten chars!"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
