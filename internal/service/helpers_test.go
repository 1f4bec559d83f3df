package service_test

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/domain"
	"github.com/pvasek/taskhub/internal/events"
	"github.com/pvasek/taskhub/internal/store"
)

// fakeTaskStore is an in-memory store.TaskStore with the same conditional
// update semantics as the Postgres implementation. The before* hooks let
// tests interleave a competing write between a service's read and its write.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task

	beforeUpdateStatus  func(task *domain.Task)
	beforeAppendComment func(task *domain.Task)
	beforeAppendWorkLog func(task *domain.Task)
}

func newFakeTaskStore(tasks ...*domain.Task) *fakeTaskStore {
	s := &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
	for _, task := range tasks {
		s.tasks[task.ID] = cloneTask(task)
	}
	return s
}

func cloneTask(task *domain.Task) *domain.Task {
	clone := *task
	clone.AssigneeIDs = append([]uuid.UUID(nil), task.AssigneeIDs...)
	clone.Comments = append([]domain.Comment(nil), task.Comments...)
	clone.WorkLogs = append([]domain.WorkLog(nil), task.WorkLogs...)
	return &clone
}

func (s *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; ok {
		return store.ErrDuplicate
	}
	s.tasks[task.ID] = cloneTask(task)
	return nil
}

func (s *fakeTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

func (s *fakeTaskStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	expectedStatus, newStatus domain.TaskStatus,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}

	if s.beforeUpdateStatus != nil {
		hook := s.beforeUpdateStatus
		s.beforeUpdateStatus = nil
		hook(task)
	}

	if task.Status != expectedStatus {
		return nil, store.NewStoreError("task", "update_status",
			"stored status no longer matches expected status",
			store.ErrConcurrentModification)
	}

	task.Status = newStatus
	return cloneTask(task), nil
}

func (s *fakeTaskStore) AppendComment(
	ctx context.Context,
	id uuid.UUID,
	expectedLength int,
	comment *domain.Comment,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}

	if s.beforeAppendComment != nil {
		hook := s.beforeAppendComment
		s.beforeAppendComment = nil
		hook(task)
	}

	for _, existing := range task.Comments {
		if existing.ID == comment.ID {
			return nil, store.ErrDuplicate
		}
	}

	if len(task.Comments) != expectedLength {
		return nil, store.NewStoreError("task", "append",
			"collection length no longer matches expected length",
			store.ErrConcurrentModification)
	}

	task.Comments = append(task.Comments, *comment)
	return cloneTask(task), nil
}

func (s *fakeTaskStore) AppendWorkLog(
	ctx context.Context,
	id uuid.UUID,
	expectedLength int,
	log *domain.WorkLog,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}

	if s.beforeAppendWorkLog != nil {
		hook := s.beforeAppendWorkLog
		s.beforeAppendWorkLog = nil
		hook(task)
	}

	for _, existing := range task.WorkLogs {
		if existing.ID == log.ID {
			return nil, store.ErrDuplicate
		}
	}

	if len(task.WorkLogs) != expectedLength {
		return nil, store.NewStoreError("task", "append",
			"collection length no longer matches expected length",
			store.ErrConcurrentModification)
	}

	task.WorkLogs = append(task.WorkLogs, *log)
	return cloneTask(task), nil
}

func (s *fakeTaskStore) ReplaceAssignees(
	ctx context.Context,
	id uuid.UUID,
	assigneeIDs []uuid.UUID,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	task.AssigneeIDs = append([]uuid.UUID(nil), assigneeIDs...)
	return cloneTask(task), nil
}

func (s *fakeTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return s
}

// fakeEmitter records every emitted event. Err, when set, is returned from
// EmitEvent to exercise the emit-failure paths.
type fakeEmitter struct {
	mu     sync.Mutex
	events []*events.TaskEvent
	Err    error
}

func (e *fakeEmitter) EmitEvent(ctx context.Context, event *events.TaskEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.Err
}

func (e *fakeEmitter) Events() []*events.TaskEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*events.TaskEvent(nil), e.events...)
}

// fakeDirectory serves a fixed set of user profiles.
type fakeDirectory struct {
	profiles map[uuid.UUID]domain.UserProfile
	Err      error
}

func newFakeDirectory(profiles ...domain.UserProfile) *fakeDirectory {
	d := &fakeDirectory{profiles: make(map[uuid.UUID]domain.UserProfile)}
	for _, p := range profiles {
		d.profiles[p.ID] = p
	}
	return d
}

func (d *fakeDirectory) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.UserProfile, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	var out []domain.UserProfile
	for _, id := range ids {
		if p, ok := d.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (d *fakeDirectory) ListAdmins(ctx context.Context) ([]domain.UserProfile, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	var out []domain.UserProfile
	for _, p := range d.profiles {
		if p.IsAdmin {
			out = append(out, p)
		}
	}
	return out, nil
}

func recipientSet(event *events.TaskEvent) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(event.Recipients))
	for _, id := range event.Recipients {
		set[id] = true
	}
	return set
}
