package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Task-specific validation errors. All wrap ErrValidation.
var (
	// ErrTaskTitleEmpty is returned when a task's title is empty or whitespace.
	ErrTaskTitleEmpty = fmt.Errorf("%w: task title cannot be empty", ErrValidation)

	// ErrTaskTitleTooLong is returned when a task's title exceeds MaxTitleLength.
	ErrTaskTitleTooLong = fmt.Errorf("%w: task title cannot exceed 200 characters", ErrValidation)

	// ErrTaskDescriptionTooLong is returned when a task's description exceeds MaxDescriptionLength.
	ErrTaskDescriptionTooLong = fmt.Errorf(
		"%w: task description cannot exceed 1000 characters",
		ErrValidation,
	)

	// ErrTaskOwnerEmpty is returned when a task's owner ID is nil.
	ErrTaskOwnerEmpty = fmt.Errorf("%w: task owner ID cannot be empty", ErrValidation)

	// ErrInvalidPriority is returned when a priority value is not one of the known levels.
	ErrInvalidPriority = fmt.Errorf("%w: invalid priority", ErrValidation)

	// ErrInvalidRecurrencePattern is returned when a recurrence pattern is unknown.
	ErrInvalidRecurrencePattern = fmt.Errorf("%w: invalid recurrence pattern", ErrValidation)

	// ErrRecurrencePatternRequired is returned when a task is flagged recurring
	// but carries no recurrence pattern.
	ErrRecurrencePatternRequired = fmt.Errorf(
		"%w: recurring task requires a recurrence pattern",
		ErrValidation,
	)

	// ErrInvalidRecurrenceInterval is returned when a custom recurrence pattern
	// has a non-positive interval.
	ErrInvalidRecurrenceInterval = fmt.Errorf(
		"%w: custom recurrence requires a positive interval",
		ErrValidation,
	)

	// ErrInvalidReminderMinutes is returned when a reminder lead time is negative.
	ErrInvalidReminderMinutes = fmt.Errorf(
		"%w: reminder minutes cannot be negative",
		ErrValidation,
	)
)

// Field length limits for tasks.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// Priority is the urgency level attached to a task.
type Priority string

// Known priority levels, lowest to highest.
const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid reports whether p is one of the known priority levels.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// RecurrencePattern describes how a recurring task repeats.
type RecurrencePattern string

// Known recurrence patterns. RecurrenceCustom repeats every
// Task.RecurrenceInterval days.
const (
	RecurrenceNone    RecurrencePattern = "none"
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
	RecurrenceYearly  RecurrencePattern = "yearly"
	RecurrenceCustom  RecurrencePattern = "custom"
)

// IsValid reports whether r is one of the known recurrence patterns.
func (r RecurrencePattern) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly,
		RecurrenceMonthly, RecurrenceYearly, RecurrenceCustom:
		return true
	}
	return false
}

// Task represents a single to-do item owned by a user, with optional
// scheduling metadata (due date, reminder lead time, recurrence).
type Task struct {
	ID                 int64             `json:"id"`
	OwnerID            uuid.UUID         `json:"owner_id"`
	Title              string            `json:"title"`
	Description        string            `json:"description,omitempty"`
	Completed          bool              `json:"completed"`
	DueDate            *time.Time        `json:"due_date,omitempty"`
	ReminderMinutes    *int              `json:"reminder_minutes,omitempty"`
	Priority           Priority          `json:"priority"`
	IsRecurring        bool              `json:"is_recurring"`
	RecurrencePattern  RecurrencePattern `json:"recurrence_pattern,omitempty"`
	RecurrenceInterval int               `json:"recurrence_interval,omitempty"`
	RecurrenceEndDate  *time.Time        `json:"recurrence_end_date,omitempty"`
	ParentTaskID       *int64            `json:"parent_task_id,omitempty"`
	TagIDs             []int64           `json:"tag_ids"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// NewTask creates a new Task owned by ownerID with the given title.
// The title is trimmed, the priority defaults to PriorityNone, and both
// timestamps are set to the same instant. The ID is assigned by the store.
// Returns an error if validation fails.
func NewTask(ownerID uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		OwnerID:   ownerID,
		Title:     strings.TrimSpace(title),
		Priority:  PriorityNone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error wrapping ErrValidation if any field fails validation.
func (t *Task) Validate() error {
	if t.OwnerID == uuid.Nil {
		return ErrTaskOwnerEmpty
	}

	if strings.TrimSpace(t.Title) == "" {
		return ErrTaskTitleEmpty
	}

	// Limits count characters, not bytes, so multibyte titles are not
	// penalized.
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return ErrTaskTitleTooLong
	}

	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return ErrTaskDescriptionTooLong
	}

	if t.Priority != "" && !t.Priority.IsValid() {
		return ErrInvalidPriority
	}

	if t.RecurrencePattern != "" && !t.RecurrencePattern.IsValid() {
		return ErrInvalidRecurrencePattern
	}

	if t.IsRecurring && (t.RecurrencePattern == "" || t.RecurrencePattern == RecurrenceNone) {
		return ErrRecurrencePatternRequired
	}

	if t.IsRecurring && t.RecurrencePattern == RecurrenceCustom && t.RecurrenceInterval < 1 {
		return ErrInvalidRecurrenceInterval
	}

	if t.ReminderMinutes != nil && *t.ReminderMinutes < 0 {
		return ErrInvalidReminderMinutes
	}

	return nil
}

// IsOverdue reports whether the task has a due date in the past and is
// still incomplete. Tasks without a due date are never overdue.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}
