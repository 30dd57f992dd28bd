package api

import (
	"time"

	"github.com/mhutchins/tasknest/internal/domain"
)

// RegisterRequest holds the registration endpoint payload.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest holds the login endpoint payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse returns the authenticated user and their bearer token.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// CreateTaskRequest holds the task creation payload.
type CreateTaskRequest struct {
	Title              string     `json:"title" validate:"required,max=200"`
	Description        string     `json:"description" validate:"max=1000"`
	Priority           string     `json:"priority" validate:"omitempty,oneof=none low medium high urgent"`
	DueDate            *time.Time `json:"due_date"`
	ReminderMinutes    *int       `json:"reminder_minutes" validate:"omitempty,gte=0"`
	IsRecurring        bool       `json:"is_recurring"`
	RecurrencePattern  string     `json:"recurrence_pattern" validate:"omitempty,oneof=none daily weekly monthly yearly custom"`
	RecurrenceInterval int        `json:"recurrence_interval" validate:"gte=0"`
	RecurrenceEndDate  *time.Time `json:"recurrence_end_date"`
	TagIDs             []int64    `json:"tag_ids"`
}

// UpdateTaskRequest holds a partial task patch. Omitted fields stay as they
// are; the clear flags reset the matching nullable field.
type UpdateTaskRequest struct {
	Title              *string    `json:"title" validate:"omitempty,max=200"`
	Description        *string    `json:"description" validate:"omitempty,max=1000"`
	Priority           *string    `json:"priority" validate:"omitempty,oneof=none low medium high urgent"`
	DueDate            *time.Time `json:"due_date"`
	ClearDueDate       bool       `json:"clear_due_date"`
	ReminderMinutes    *int       `json:"reminder_minutes" validate:"omitempty,gte=0"`
	ClearReminder      bool       `json:"clear_reminder"`
	IsRecurring        *bool      `json:"is_recurring"`
	RecurrencePattern  *string    `json:"recurrence_pattern" validate:"omitempty,oneof=none daily weekly monthly yearly custom"`
	RecurrenceInterval *int       `json:"recurrence_interval" validate:"omitempty,gte=0"`
	RecurrenceEndDate  *time.Time `json:"recurrence_end_date"`
	ClearRecurrenceEnd bool       `json:"clear_recurrence_end"`
	TagIDs             *[]int64   `json:"tag_ids"`
}

// CreateTagRequest holds the tag creation payload.
type CreateTagRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateTagRequest holds a partial tag patch; empty fields stay as they are.
type UpdateTagRequest struct {
	Name  string `json:"name" validate:"omitempty,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// TaskListResponse wraps a task listing.
type TaskListResponse struct {
	Tasks []*domain.Task `json:"tasks"`
	Count int            `json:"count"`
}

// TagListResponse wraps a tag listing.
type TagListResponse struct {
	Tags []*domain.Tag `json:"tags"`
}

// ReminderListResponse wraps a reminder listing.
type ReminderListResponse struct {
	Reminders []*domain.Reminder `json:"reminders"`
	Count     int                `json:"count"`
}

// MarkAllReadResponse reports how many reminders a read-all touched.
type MarkAllReadResponse struct {
	MarkedRead int64 `json:"marked_read"`
}

// UnreadCountResponse carries the unread reminder badge count.
type UnreadCountResponse struct {
	Unread int `json:"unread"`
}
