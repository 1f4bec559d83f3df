package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/domain"
	"github.com/pvasek/taskhub/internal/events"
	"github.com/pvasek/taskhub/internal/store"
)

// CommentInput carries the caller's comment data. ID is optional: callers
// that supply one get request-level idempotency, because an ID already
// present in the thread is treated as a replay and not appended again.
type CommentInput struct {
	ID   uuid.UUID
	Body string
}

// WorkLogInput carries the caller's work-log data. ID works like
// CommentInput.ID.
type WorkLogInput struct {
	ID          uuid.UUID
	HoursSpent  float64
	Description string
}

// CollabOptions controls which collaborative events produce notifications.
// Work-log notifications are off by default: logs are informational, not
// alerting.
type CollabOptions struct {
	NotifyOnWorkLog bool
}

// CollabService appends comments and work logs to a task's collections.
// Appends use the same conditional-update discipline as status transitions,
// keyed on the collection length, so two actors writing within the same
// request window cannot silently clobber each other's entry.
type CollabService interface {
	// AddComment validates and appends a comment, then emits a comment event
	// to the task participants and anyone mentioned in the body.
	AddComment(
		ctx context.Context,
		taskID uuid.UUID,
		actor domain.Actor,
		input CommentInput,
	) (*domain.Task, error)

	// AddWorkLog validates and appends a work-log entry. It emits no event
	// unless the service was configured with NotifyOnWorkLog.
	AddWorkLog(
		ctx context.Context,
		taskID uuid.UUID,
		actor domain.Actor,
		input WorkLogInput,
	) (*domain.Task, error)
}

// collabServiceImpl implements the CollabService interface
type collabServiceImpl struct {
	taskStore store.TaskStore
	emitter   events.EventEmitter
	opts      CollabOptions
	logger    *slog.Logger
}

// NewCollabService creates a new CollabService.
// It returns an error if any of the required dependencies are nil.
func NewCollabService(
	taskStore store.TaskStore,
	emitter events.EventEmitter,
	opts CollabOptions,
	logger *slog.Logger,
) (CollabService, error) {
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, domain.NewValidationError("emitter", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &collabServiceImpl{
		taskStore: taskStore,
		emitter:   emitter,
		opts:      opts,
		logger:    logger.With(slog.String("component", "collab_service")),
	}, nil
}

// AddComment implements CollabService.AddComment.
func (s *collabServiceImpl) AddComment(
	ctx context.Context,
	taskID uuid.UUID,
	actor domain.Actor,
	input CommentInput,
) (*domain.Task, error) {
	comment, err := domain.NewComment(actor, input.Body)
	if err != nil {
		return nil, err
	}
	if input.ID != uuid.Nil {
		comment.ID = input.ID
	}

	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if hasCommentID(task, comment.ID) {
		// Replay of an already-appended comment: idempotent no-op.
		s.logger.Debug("comment already appended, skipping",
			"task_id", taskID, "comment_id", comment.ID)
		return task, nil
	}

	updated, err := s.taskStore.AppendComment(ctx, taskID, len(task.Comments), comment)
	if errors.Is(err, store.ErrConcurrentModification) {
		// Another entry landed first. Re-read and append after it.
		task, err = s.taskStore.GetByID(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if hasCommentID(task, comment.ID) {
			return task, nil
		}
		updated, err = s.taskStore.AppendComment(ctx, taskID, len(task.Comments), comment)
	}
	if errors.Is(err, store.ErrDuplicate) {
		return s.taskStore.GetByID(ctx, taskID)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment appended",
		"task_id", taskID,
		"comment_id", comment.ID,
		"author_id", actor.ID)

	s.emitCommentEvent(ctx, updated, actor, comment.Body)

	return updated, nil
}

// AddWorkLog implements CollabService.AddWorkLog.
func (s *collabServiceImpl) AddWorkLog(
	ctx context.Context,
	taskID uuid.UUID,
	actor domain.Actor,
	input WorkLogInput,
) (*domain.Task, error) {
	workLog, err := domain.NewWorkLog(actor, input.HoursSpent, input.Description)
	if err != nil {
		return nil, err
	}
	if input.ID != uuid.Nil {
		workLog.ID = input.ID
	}

	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if hasWorkLogID(task, workLog.ID) {
		s.logger.Debug("work log already appended, skipping",
			"task_id", taskID, "work_log_id", workLog.ID)
		return task, nil
	}

	updated, err := s.taskStore.AppendWorkLog(ctx, taskID, len(task.WorkLogs), workLog)
	if errors.Is(err, store.ErrConcurrentModification) {
		task, err = s.taskStore.GetByID(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if hasWorkLogID(task, workLog.ID) {
			return task, nil
		}
		updated, err = s.taskStore.AppendWorkLog(ctx, taskID, len(task.WorkLogs), workLog)
	}
	if errors.Is(err, store.ErrDuplicate) {
		return s.taskStore.GetByID(ctx, taskID)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("work log appended",
		"task_id", taskID,
		"work_log_id", workLog.ID,
		"author_id", actor.ID,
		"hours_spent", workLog.HoursSpent)

	if s.opts.NotifyOnWorkLog {
		recipients := excludeID(updated.Participants(), actor.ID)
		event := events.NewTaskEvent(events.EventWorkLogAdded, updated, recipients, actor)
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			s.logger.Warn("work log event emission failed",
				"task_id", taskID, "error", err)
		}
	}

	return updated, nil
}

// emitCommentEvent publishes the comment event: participants minus the
// author, plus any mentioned participant, with mention flags for wording.
func (s *collabServiceImpl) emitCommentEvent(
	ctx context.Context,
	task *domain.Task,
	actor domain.Actor,
	body string,
) {
	participants := task.Participants()
	recipients := excludeID(participants, actor.ID)

	mentioned := make(map[uuid.UUID]bool)
	participantSet := make(map[uuid.UUID]struct{}, len(participants))
	for _, id := range participants {
		participantSet[id] = struct{}{}
	}
	for _, id := range ExtractMentions(body) {
		// Mentions only elevate people who are actually on the task.
		if _, ok := participantSet[id]; !ok {
			continue
		}
		if id == actor.ID {
			continue
		}
		mentioned[id] = true
		if !containsID(recipients, id) {
			recipients = append(recipients, id)
		}
	}

	event := events.NewTaskEvent(events.EventCommentAdded, task, recipients, actor)
	event.Mentioned = mentioned
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("comment event emission failed",
			"task_id", task.ID, "error", err)
	}
}

func hasCommentID(task *domain.Task, id uuid.UUID) bool {
	for _, c := range task.Comments {
		if c.ID == id {
			return true
		}
	}
	return false
}

func hasWorkLogID(task *domain.Task, id uuid.UUID) bool {
	for _, w := range task.WorkLogs {
		if w.ID == id {
			return true
		}
	}
	return false
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func excludeID(ids []uuid.UUID, exclude uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != exclude {
			out = append(out, id)
		}
	}
	return out
}
