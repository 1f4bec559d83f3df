// Package service provides the application-level workflow operations over
// tasks: status transitions, collaborative appends, and assignment edits.
package service

import (
	"fmt"
)

// Error handling principles:
// 1. Expected conditions surface as domain/store sentinels (errors.Is-able):
//    domain.ErrInvalidTransition, domain.ErrPermissionDenied,
//    store.ErrConcurrentModification, store.ErrTaskNotFound.
// 2. Unexpected failures are wrapped in TaskServiceError for context.
// 3. The API layer maps sentinels to HTTP status codes.

// TaskServiceError is a custom error type for task workflow service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
