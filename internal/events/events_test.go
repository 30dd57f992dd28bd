package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhutchins/tasknest/internal/domain"
)

func TestNewTaskEvent(t *testing.T) {
	ownerID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	task := &domain.Task{
		ID:       42,
		OwnerID:  ownerID,
		Title:    "Renew passport",
		Priority: domain.PriorityHigh,
	}

	event := NewTaskEvent(task, now).WithPriority(task.Priority)

	assert.Equal(t, ownerID, event.UserID)
	assert.Equal(t, int64(42), event.TaskID)
	assert.Equal(t, "Renew passport", event.Title)
	assert.Equal(t, now, event.Timestamp)
	assert.Equal(t, "high", event.Payload["priority"])
}

func TestEventPayloadBuildersDoNotShareMaps(t *testing.T) {
	base := Event{}
	withChanges := base.WithChanges([]string{"title"})
	withMinutes := base.WithMinutesBefore(30)

	assert.Nil(t, base.Payload)
	assert.NotContains(t, withChanges.Payload, "minutes_before")
	assert.NotContains(t, withMinutes.Payload, "changes")
}

func TestMemorySinkRecordsInOrder(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	require.NoError(t, sink.Publish(ctx, TopicTaskCreated, Event{TaskID: 1}))
	require.NoError(t, sink.Publish(ctx, TopicTaskDeleted, Event{TaskID: 2}))
	require.NoError(t, sink.Publish(ctx, TopicTaskCreated, Event{TaskID: 3}))

	all := sink.Events()
	require.Len(t, all, 3)
	assert.Equal(t, TopicTaskCreated, all[0].Topic)

	created := sink.ByTopic(TopicTaskCreated)
	require.Len(t, created, 2)
	assert.Equal(t, int64(1), created[0].Event.TaskID)
	assert.Equal(t, int64(3), created[1].Event.TaskID)
}

func TestMemorySinkFailWith(t *testing.T) {
	sink := NewMemorySink()
	sinkErr := errors.New("broker down")
	sink.FailWith(sinkErr)

	err := sink.Publish(context.Background(), TopicReminderDue, Event{})
	assert.ErrorIs(t, err, sinkErr)
	assert.Empty(t, sink.Events())
}

func TestLogSinkNeverFails(t *testing.T) {
	sink := NewLogSink(nil)
	err := sink.Publish(context.Background(), TopicTaskCompleted, Event{TaskID: 7})
	assert.NoError(t, err)
}
