package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reminder-specific validation errors. All wrap ErrValidation.
var (
	// ErrReminderOwnerEmpty is returned when a reminder's owner ID is nil.
	ErrReminderOwnerEmpty = fmt.Errorf("%w: reminder owner ID cannot be empty", ErrValidation)

	// ErrReminderTaskEmpty is returned when a reminder has no task reference.
	ErrReminderTaskEmpty = fmt.Errorf("%w: reminder task ID cannot be empty", ErrValidation)

	// ErrReminderTimeEmpty is returned when a reminder has no fire timestamp.
	ErrReminderTimeEmpty = fmt.Errorf("%w: reminder time cannot be zero", ErrValidation)
)

// Reminder is a pending notification for a task, fired when RemindAt passes.
// A task has at most one unsent reminder at any time; the reminder service
// replaces it whenever the task's due date or lead time changes.
type Reminder struct {
	ID        int64      `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	TaskID    int64      `json:"task_id"`
	RemindAt  time.Time  `json:"remind_at"`
	Sent      bool       `json:"sent"`
	Read      bool       `json:"read"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewReminder creates an unsent, unread Reminder for the given task firing
// at remindAt. The ID is assigned by the store.
// Returns an error if validation fails.
func NewReminder(ownerID uuid.UUID, taskID int64, remindAt time.Time) (*Reminder, error) {
	reminder := &Reminder{
		OwnerID:   ownerID,
		TaskID:    taskID,
		RemindAt:  remindAt,
		CreatedAt: time.Now().UTC(),
	}

	if err := reminder.Validate(); err != nil {
		return nil, err
	}

	return reminder, nil
}

// Validate checks if the Reminder has valid data.
// Returns an error wrapping ErrValidation if any field fails validation.
func (r *Reminder) Validate() error {
	if r.OwnerID == uuid.Nil {
		return ErrReminderOwnerEmpty
	}

	if r.TaskID == 0 {
		return ErrReminderTaskEmpty
	}

	if r.RemindAt.IsZero() {
		return ErrReminderTimeEmpty
	}

	return nil
}

// ComputeRemindAt derives a reminder fire time from a due date and a lead
// time in minutes. Returns nil unless both are present.
func ComputeRemindAt(dueDate *time.Time, reminderMinutes *int) *time.Time {
	if dueDate == nil || reminderMinutes == nil {
		return nil
	}

	remindAt := dueDate.Add(-time.Duration(*reminderMinutes) * time.Minute)
	return &remindAt
}
