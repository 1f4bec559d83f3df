package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/domain"
	"github.com/pvasek/taskhub/internal/events"
	"github.com/pvasek/taskhub/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCollabFixture(t *testing.T) (*domain.Task, domain.Actor, domain.Actor, domain.Actor, *fakeTaskStore, *fakeEmitter) {
	t.Helper()

	creator := domain.Actor{ID: uuid.New(), DisplayName: "PM", IsAdmin: true}
	assigneeA := domain.Actor{ID: uuid.New(), DisplayName: "Alice"}
	assigneeB := domain.Actor{ID: uuid.New(), DisplayName: "Bob"}

	task := &domain.Task{
		ID:          uuid.New(),
		ProjectID:   uuid.New(),
		Title:       "Write migration plan",
		Priority:    domain.TaskPriorityMedium,
		Status:      domain.TaskStatusInProgress,
		AssigneeIDs: []uuid.UUID{assigneeA.ID, assigneeB.ID},
		CreatorID:   creator.ID,
	}

	return task, creator, assigneeA, assigneeB, newFakeTaskStore(task), &fakeEmitter{}
}

func TestAddCommentNotifiesOtherParticipants(t *testing.T) {
	t.Parallel()

	task, creator, alice, bob, taskStore, emitter := newCollabFixture(t)

	svc, err := service.NewCollabService(taskStore, emitter, service.CollabOptions{}, nil)
	require.NoError(t, err)

	updated, err := svc.AddComment(context.Background(), task.ID, alice,
		service.CommentInput{Body: "first draft is up"})
	require.NoError(t, err)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, alice.ID, updated.Comments[0].AuthorID)
	assert.Equal(t, "Alice", updated.Comments[0].AuthorName)

	emitted := emitter.Events()
	require.Len(t, emitted, 1)
	assert.Equal(t, events.EventCommentAdded, emitted[0].Kind)

	recipients := recipientSet(emitted[0])
	assert.True(t, recipients[creator.ID])
	assert.True(t, recipients[bob.ID])
	assert.False(t, recipients[alice.ID], "the author should not be notified of their own comment")
}

func TestAddCommentMentionFlagsParticipant(t *testing.T) {
	t.Parallel()

	task, _, alice, bob, taskStore, emitter := newCollabFixture(t)

	svc, err := service.NewCollabService(taskStore, emitter, service.CollabOptions{}, nil)
	require.NoError(t, err)

	outsider := uuid.New()
	body := fmt.Sprintf("ping @[%s:Bob] and @[%s:Eve]", bob.ID, outsider)

	_, err = svc.AddComment(context.Background(), task.ID, alice, service.CommentInput{Body: body})
	require.NoError(t, err)

	emitted := emitter.Events()
	require.Len(t, emitted, 1)
	assert.True(t, emitted[0].Mentioned[bob.ID])

	recipients := recipientSet(emitted[0])
	assert.True(t, recipients[bob.ID])
	assert.False(t, recipients[outsider], "mentioning a non-participant should not add them")
}

func TestAddCommentSelfMentionIgnored(t *testing.T) {
	t.Parallel()

	task, _, alice, _, taskStore, emitter := newCollabFixture(t)

	svc, err := service.NewCollabService(taskStore, emitter, service.CollabOptions{}, nil)
	require.NoError(t, err)

	body := fmt.Sprintf("note to self @[%s:Alice]", alice.ID)
	_, err = svc.AddComment(context.Background(), task.ID, alice, service.CommentInput{Body: body})
	require.NoError(t, err)

	emitted := emitter.Events()
	require.Len(t, emitted, 1)
	assert.False(t, emitted[0].Mentioned[alice.ID])
	assert.False(t, recipientSet(emitted[0])[alice.ID])
}

func TestAddCommentReplayIsIdempotent(t *testing.T) {
	t.Parallel()

	task, _, alice, _, taskStore, emitter := newCollabFixture(t)

	svc, err := service.NewCollabService(taskStore, emitter, service.CollabOptions{}, nil)
	require.NoError(t, err)

	input := service.CommentInput{ID: uuid.New(), Body: "submitted twice"}

	first, err := svc.AddComment(context.Background(), task.ID, alice, input)
	require.NoError(t, err)
	require.Len(t, first.Comments, 1)

	second, err := svc.AddComment(context.Background(), task.ID, alice, input)
	require.NoError(t, err)
	assert.Len(t, second.Comments, 1, "replaying the same comment ID must not append again")

	assert.Len(t, emitter.Events(), 1, "a replay must not emit a second event")
}

func TestAddCommentRetriesAfterConcurrentAppend(t *testing.T) {
	t.Parallel()

	task, _, alice, bob, taskStore, emitter := newCollabFixture(t)

	// Bob's comment lands between Alice's read and her append. Alice's
	// retry re-reads and appends after it; both entries survive.
	competing := domain.Comment{
		ID:         uuid.New(),
		AuthorID:   bob.ID,
		AuthorName: "Bob",
		Body:       "got here first",
		CreatedAt:  time.Now().UTC(),
	}
	taskStore.beforeAppendComment = func(stored *domain.Task) {
		stored.Comments = append(stored.Comments, competing)
	}

	svc, err := service.NewCollabService(taskStore, emitter, service.CollabOptions{}, nil)
	require.NoError(t, err)

	updated, err := svc.AddComment(context.Background(), task.ID, alice,
		service.CommentInput{Body: "me too"})
	require.NoError(t, err)
	require.Len(t, updated.Comments, 2)
	assert.Equal(t, competing.ID, updated.Comments[0].ID)
	assert.Equal(t, "me too", updated.Comments[1].Body)
}

func TestAddCommentRejectsBlankBody(t *testing.T) {
	t.Parallel()

	task, _, alice, _, taskStore, emitter := newCollabFixture(t)

	svc, err := service.NewCollabService(taskStore, emitter, service.CollabOptions{}, nil)
	require.NoError(t, err)

	_, err = svc.AddComment(context.Background(), task.ID, alice,
		service.CommentInput{Body: "   \n\t"})
	assert.ErrorIs(t, err, domain.ErrEmptyCommentBody)
	assert.Empty(t, emitter.Events())
}

func TestAddWorkLogSilentByDefault(t *testing.T) {
	t.Parallel()

	task, _, alice, _, taskStore, emitter := newCollabFixture(t)

	svc, err := service.NewCollabService(taskStore, emitter, service.CollabOptions{}, nil)
	require.NoError(t, err)

	updated, err := svc.AddWorkLog(context.Background(), task.ID, alice,
		service.WorkLogInput{HoursSpent: 2.5, Description: "reviewed the schema draft"})
	require.NoError(t, err)
	require.Len(t, updated.WorkLogs, 1)
	assert.Equal(t, 2.5, updated.WorkLogs[0].HoursSpent)

	assert.Empty(t, emitter.Events(), "work logs should not notify unless enabled")
}

func TestAddWorkLogNotifiesWhenEnabled(t *testing.T) {
	t.Parallel()

	task, creator, alice, bob, taskStore, emitter := newCollabFixture(t)

	svc, err := service.NewCollabService(taskStore, emitter,
		service.CollabOptions{NotifyOnWorkLog: true}, nil)
	require.NoError(t, err)

	_, err = svc.AddWorkLog(context.Background(), task.ID, alice,
		service.WorkLogInput{HoursSpent: 1, Description: "paired on the fix today"})
	require.NoError(t, err)

	emitted := emitter.Events()
	require.Len(t, emitted, 1)
	assert.Equal(t, events.EventWorkLogAdded, emitted[0].Kind)

	recipients := recipientSet(emitted[0])
	assert.True(t, recipients[creator.ID])
	assert.True(t, recipients[bob.ID])
	assert.False(t, recipients[alice.ID])
}

func TestAddWorkLogRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	task, _, alice, _, taskStore, emitter := newCollabFixture(t)

	svc, err := service.NewCollabService(taskStore, emitter, service.CollabOptions{}, nil)
	require.NoError(t, err)

	_, err = svc.AddWorkLog(context.Background(), task.ID, alice,
		service.WorkLogInput{HoursSpent: 0, Description: "a valid description"})
	assert.ErrorIs(t, err, domain.ErrInvalidWorkLogHours)

	_, err = svc.AddWorkLog(context.Background(), task.ID, alice,
		service.WorkLogInput{HoursSpent: 1, Description: "short"})
	assert.ErrorIs(t, err, domain.ErrShortWorkLogDescription)
}
