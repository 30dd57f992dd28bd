// Package events defines the outbound event contract for task lifecycle
// changes and due reminders, plus the sink implementations that carry them.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mhutchins/tasknest/internal/domain"
)

// Topics for task lifecycle and reminder delivery events.
const (
	TopicTaskCreated   = "task.created"
	TopicTaskUpdated   = "task.updated"
	TopicTaskCompleted = "task.completed"
	TopicTaskDeleted   = "task.deleted"
	TopicReminderDue   = "reminder.due"
)

// Sink receives domain events. Implementations must be safe for concurrent
// use. Publish failures are reported to the caller but must never be allowed
// to fail the state change that produced the event; callers log and move on.
type Sink interface {
	Publish(ctx context.Context, topic string, event Event) error
}

// Event is the envelope common to every published payload.
type Event struct {
	UserID    uuid.UUID      `json:"user_id"`
	TaskID    int64          `json:"task_id"`
	Title     string         `json:"title"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// NewTaskEvent builds the envelope for a task lifecycle event.
func NewTaskEvent(task *domain.Task, now time.Time) Event {
	return Event{
		UserID:    task.OwnerID,
		TaskID:    task.ID,
		Title:     task.Title,
		Timestamp: now.UTC(),
	}
}

// WithPriority attaches the task priority, published on task.created.
func (e Event) WithPriority(p domain.Priority) Event {
	e = e.clonePayload()
	e.Payload["priority"] = string(p)
	return e
}

// WithChanges attaches the set of changed field names, published on
// task.updated.
func (e Event) WithChanges(changes []string) Event {
	e = e.clonePayload()
	e.Payload["changes"] = changes
	return e
}

// WithMinutesBefore attaches the reminder lead time, published on
// reminder.due when the owning task carries one.
func (e Event) WithMinutesBefore(minutes int) Event {
	e = e.clonePayload()
	e.Payload["minutes_before"] = minutes
	return e
}

func (e Event) clonePayload() Event {
	payload := make(map[string]any, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	e.Payload = payload
	return e
}
