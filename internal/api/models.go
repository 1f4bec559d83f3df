package api

import (
	"time"

	"github.com/pvasek/taskhub/internal/domain"
)

// CreateTaskRequest represents the request body for creating a task.
// The workflow always starts in the pending state, so no status field
// is accepted here.
type CreateTaskRequest struct {
	ProjectID   string     `json:"project_id"  validate:"required,uuid"`
	Title       string     `json:"title"       validate:"required,max=500"`
	Description string     `json:"description" validate:"max=10000"`
	Priority    string     `json:"priority"    validate:"required,oneof=low medium high"`
	AssigneeIDs []string   `json:"assignee_ids" validate:"dive,uuid"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// TransitionRequest represents the request body for a workflow transition.
type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed approved"`
}

// AddCommentRequest represents the request body for appending a comment.
// ID is optional; callers that retry a failed request can supply their own
// ID to make the append idempotent.
type AddCommentRequest struct {
	ID   string `json:"id,omitempty" validate:"omitempty,uuid"`
	Body string `json:"body"         validate:"required"`
}

// AddWorkLogRequest represents the request body for appending a work log.
// ID works like AddCommentRequest.ID.
type AddWorkLogRequest struct {
	ID          string  `json:"id,omitempty" validate:"omitempty,uuid"`
	HoursSpent  float64 `json:"hours_spent"  validate:"required,gt=0"`
	Description string  `json:"description"  validate:"required,min=10"`
}

// UpdateAssigneesRequest represents the request body for replacing the
// assignee set of a task.
type UpdateAssigneesRequest struct {
	AssigneeIDs []string `json:"assignee_ids" validate:"dive,uuid"`
}

// CommentResponse represents a single comment on a task.
type CommentResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// WorkLogResponse represents a single work log entry on a task.
type WorkLogResponse struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	HoursSpent  float64   `json:"hours_spent"`
	Description string    `json:"description"`
	LoggedAt    time.Time `json:"logged_at"`
}

// TaskResponse represents the response data for a task, including its
// append-only comment and work-log histories.
type TaskResponse struct {
	ID          string            `json:"id"`
	ProjectID   string            `json:"project_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Priority    string            `json:"priority"`
	Status      string            `json:"status"`
	AssigneeIDs []string          `json:"assignee_ids"`
	CreatorID   string            `json:"creator_id"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Comments    []CommentResponse `json:"comments"`
	WorkLogs    []WorkLogResponse `json:"work_logs"`
}

// NotificationResponse represents a single in-app notification.
type NotificationResponse struct {
	ID                string     `json:"id"`
	Message           string     `json:"message"`
	Link              string     `json:"link"`
	Kind              string     `json:"kind"`
	RelatedTaskID     string     `json:"related_task_id"`
	TriggeredByUserID string     `json:"triggered_by_user_id"`
	CreatedAt         time.Time  `json:"created_at"`
	ReadAt            *time.Time `json:"read_at,omitempty"`
}

// taskToResponse converts a domain.Task to a TaskResponse
func taskToResponse(task *domain.Task) TaskResponse {
	assignees := make([]string, 0, len(task.AssigneeIDs))
	for _, id := range task.AssigneeIDs {
		assignees = append(assignees, id.String())
	}

	comments := make([]CommentResponse, 0, len(task.Comments))
	for _, c := range task.Comments {
		comments = append(comments, CommentResponse{
			ID:         c.ID.String(),
			AuthorID:   c.AuthorID.String(),
			AuthorName: c.AuthorName,
			Body:       c.Body,
			CreatedAt:  c.CreatedAt,
		})
	}

	workLogs := make([]WorkLogResponse, 0, len(task.WorkLogs))
	for _, w := range task.WorkLogs {
		workLogs = append(workLogs, WorkLogResponse{
			ID:          w.ID.String(),
			AuthorID:    w.AuthorID.String(),
			AuthorName:  w.AuthorName,
			HoursSpent:  w.HoursSpent,
			Description: w.Description,
			LoggedAt:    w.LoggedAt,
		})
	}

	return TaskResponse{
		ID:          task.ID.String(),
		ProjectID:   task.ProjectID.String(),
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		Status:      string(task.Status),
		AssigneeIDs: assignees,
		CreatorID:   task.CreatorID.String(),
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Comments:    comments,
		WorkLogs:    workLogs,
	}
}

// notificationToResponse converts a domain.NotificationRecord to a
// NotificationResponse
func notificationToResponse(n *domain.NotificationRecord) NotificationResponse {
	return NotificationResponse{
		ID:                n.ID.String(),
		Message:           n.Message,
		Link:              n.Link,
		Kind:              string(n.Kind),
		RelatedTaskID:     n.RelatedTaskID.String(),
		TriggeredByUserID: n.TriggeredByUserID.String(),
		CreatedAt:         n.CreatedAt,
		ReadAt:            n.ReadAt,
	}
}
