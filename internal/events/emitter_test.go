package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/domain"
	"github.com/pvasek/taskhub/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	received []*events.TaskEvent
	err      error
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *events.TaskEvent) error {
	h.received = append(h.received, event)
	return h.err
}

func testEmitter() *events.InMemoryEventEmitter {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return events.NewInMemoryEventEmitter(logger)
}

func testEvent() *events.TaskEvent {
	task := &domain.Task{ID: uuid.New(), Title: "Restore the nightly backup"}
	actor := domain.Actor{ID: uuid.New(), DisplayName: "Ops"}
	return events.NewTaskEvent(events.EventTaskCompleted, task, []uuid.UUID{uuid.New()}, actor)
}

func TestEmitEventReachesAllHandlers(t *testing.T) {
	t.Parallel()

	emitter := testEmitter()
	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event := testEvent()
	require.NoError(t, emitter.EmitEvent(context.Background(), event))

	require.Len(t, first.received, 1)
	require.Len(t, second.received, 1)
	assert.Same(t, event, first.received[0])
	assert.Same(t, event, second.received[0])
}

func TestEmitEventNoHandlers(t *testing.T) {
	t.Parallel()

	emitter := testEmitter()
	assert.NoError(t, emitter.EmitEvent(context.Background(), testEvent()))
}

func TestEmitEventFirstErrorWins(t *testing.T) {
	t.Parallel()

	errFirst := errors.New("handler one failed")
	errSecond := errors.New("handler two failed")

	emitter := testEmitter()
	failing := &recordingHandler{err: errFirst}
	alsoFailing := &recordingHandler{err: errSecond}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(alsoFailing)
	emitter.RegisterHandler(healthy)

	err := emitter.EmitEvent(context.Background(), testEvent())
	assert.ErrorIs(t, err, errFirst)

	// A failing handler never blocks delivery to the rest
	assert.Len(t, healthy.received, 1)
}
