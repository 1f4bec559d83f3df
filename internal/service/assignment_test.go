package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/domain"
	"github.com/pvasek/taskhub/internal/events"
	"github.com/pvasek/taskhub/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffAssignees(t *testing.T) {
	t.Parallel()

	a, b, c := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name        string
		oldIDs      []uuid.UUID
		newIDs      []uuid.UUID
		wantAdded   []uuid.UUID
		wantRemoved []uuid.UUID
	}{
		{
			name:        "swap one member",
			oldIDs:      []uuid.UUID{a, b},
			newIDs:      []uuid.UUID{b, c},
			wantAdded:   []uuid.UUID{c},
			wantRemoved: []uuid.UUID{a},
		},
		{
			name:   "no change",
			oldIDs: []uuid.UUID{a, b},
			newIDs: []uuid.UUID{b, a},
		},
		{
			name:        "clear all",
			oldIDs:      []uuid.UUID{a, b},
			newIDs:      nil,
			wantRemoved: []uuid.UUID{a, b},
		},
		{
			name:      "from empty",
			oldIDs:    nil,
			newIDs:    []uuid.UUID{a},
			wantAdded: []uuid.UUID{a},
		},
		{
			name:      "duplicates in input counted once",
			oldIDs:    []uuid.UUID{a},
			newIDs:    []uuid.UUID{a, b, b},
			wantAdded: []uuid.UUID{b},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			added, removed := service.DiffAssignees(tc.oldIDs, tc.newIDs)
			assert.Equal(t, tc.wantAdded, added)
			assert.Equal(t, tc.wantRemoved, removed)
		})
	}
}

func newAssignmentFixture(t *testing.T) (*domain.Task, domain.Actor, uuid.UUID, uuid.UUID, *fakeTaskStore, *fakeEmitter) {
	t.Helper()

	admin := domain.Actor{ID: uuid.New(), DisplayName: "Lead", IsAdmin: true}
	a, b := uuid.New(), uuid.New()

	task := &domain.Task{
		ID:          uuid.New(),
		ProjectID:   uuid.New(),
		Title:       "Rework the importer",
		Priority:    domain.TaskPriorityLow,
		Status:      domain.TaskStatusPending,
		AssigneeIDs: []uuid.UUID{a, b},
		CreatorID:   admin.ID,
	}

	return task, admin, a, b, newFakeTaskStore(task), &fakeEmitter{}
}

func TestUpdateAssigneesNotifiesOnlyNewcomers(t *testing.T) {
	t.Parallel()

	task, admin, a, b, taskStore, emitter := newAssignmentFixture(t)

	svc, err := service.NewAssignmentService(taskStore, emitter, service.AssignmentOptions{}, nil)
	require.NoError(t, err)

	c := uuid.New()
	updated, err := svc.UpdateAssignees(context.Background(), task.ID, admin, []uuid.UUID{b, c})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b, c}, updated.AssigneeIDs)

	emitted := emitter.Events()
	require.Len(t, emitted, 1)
	assert.Equal(t, events.EventTaskAssigned, emitted[0].Kind)
	assert.Equal(t, []uuid.UUID{c}, emitted[0].Recipients,
		"only newly added assignees should be notified")
	assert.NotContains(t, emitted[0].Recipients, a)
	assert.NotContains(t, emitted[0].Recipients, b)
}

func TestUpdateAssigneesRequiresAdmin(t *testing.T) {
	t.Parallel()

	task, _, a, b, taskStore, emitter := newAssignmentFixture(t)

	svc, err := service.NewAssignmentService(taskStore, emitter, service.AssignmentOptions{}, nil)
	require.NoError(t, err)

	regular := domain.Actor{ID: a, DisplayName: "Alice"}
	_, err = svc.UpdateAssignees(context.Background(), task.ID, regular, []uuid.UUID{b})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Empty(t, emitter.Events())

	stored, err := taskStore.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, stored.AssigneeIDs)
}

func TestUpdateAssigneesNoEventWhenUnchanged(t *testing.T) {
	t.Parallel()

	task, admin, a, b, taskStore, emitter := newAssignmentFixture(t)

	svc, err := service.NewAssignmentService(taskStore, emitter, service.AssignmentOptions{}, nil)
	require.NoError(t, err)

	_, err = svc.UpdateAssignees(context.Background(), task.ID, admin, []uuid.UUID{b, a})
	require.NoError(t, err)
	assert.Empty(t, emitter.Events())
}

func TestUpdateAssigneesRemovalNotification(t *testing.T) {
	t.Parallel()

	t.Run("silent by default", func(t *testing.T) {
		t.Parallel()
		task, admin, _, b, taskStore, emitter := newAssignmentFixture(t)

		svc, err := service.NewAssignmentService(taskStore, emitter, service.AssignmentOptions{}, nil)
		require.NoError(t, err)

		_, err = svc.UpdateAssignees(context.Background(), task.ID, admin, []uuid.UUID{b})
		require.NoError(t, err)
		assert.Empty(t, emitter.Events())
	})

	t.Run("emitted when enabled", func(t *testing.T) {
		t.Parallel()
		task, admin, a, b, taskStore, emitter := newAssignmentFixture(t)

		svc, err := service.NewAssignmentService(taskStore, emitter,
			service.AssignmentOptions{NotifyOnRemoval: true}, nil)
		require.NoError(t, err)

		_, err = svc.UpdateAssignees(context.Background(), task.ID, admin, []uuid.UUID{b})
		require.NoError(t, err)

		emitted := emitter.Events()
		require.Len(t, emitted, 1)
		assert.Equal(t, events.EventTaskUnassigned, emitted[0].Kind)
		assert.Equal(t, []uuid.UUID{a}, emitted[0].Recipients)
	})
}
