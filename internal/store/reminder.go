package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mhutchins/tasknest/internal/domain"
)

// ReminderStatus filters a reminder listing.
type ReminderStatus string

// Reminder status filter values. StatusUnread matches reminders that have
// been sent but not yet read.
const (
	ReminderAll     ReminderStatus = "all"
	ReminderPending ReminderStatus = "pending"
	ReminderSent    ReminderStatus = "sent"
	ReminderUnread  ReminderStatus = "unread"
)

// IsValid reports whether s is a known reminder status filter.
func (s ReminderStatus) IsValid() bool {
	switch s {
	case ReminderAll, ReminderPending, ReminderSent, ReminderUnread:
		return true
	}
	return false
}

// ReminderStore defines the interface for reminder persistence.
//
// The invariant "at most one unsent reminder per task" is maintained by
// Upsert, which replaces any existing unsent reminder in the same
// transaction. MarkSent is idempotent: the unsent→sent transition happens
// exactly once no matter how many callers race on it.
type ReminderStore interface {
	// Upsert deletes the task's unsent reminder, if any, and inserts a fresh
	// unsent one firing at remindAt. Must run within a transaction (use
	// WithTx) when the caller performs other writes.
	Upsert(ctx context.Context, ownerID uuid.UUID, taskID int64, remindAt time.Time) (*domain.Reminder, error)

	// DeleteUnsentByTask removes the task's unsent reminder if one exists.
	// Deleting when none exists is not an error.
	DeleteUnsentByTask(ctx context.Context, taskID int64) error

	// GetByID retrieves a reminder.
	// Returns ErrReminderNotFound if absent or owned by another user.
	GetByID(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.Reminder, error)

	// List retrieves the owner's reminders matching the status filter,
	// newest fire time first, at most limit rows (0 means no limit).
	List(ctx context.Context, ownerID uuid.UUID, status ReminderStatus, limit int) ([]*domain.Reminder, error)

	// ListDueUnsent retrieves all unsent reminders across owners with
	// remind_at at or before the given instant. Used by the sweeper.
	ListDueUnsent(ctx context.Context, before time.Time) ([]*domain.Reminder, error)

	// ListDueUnread retrieves the owner's due, unread reminders, newest fire
	// time first. Used by the polling read path.
	ListDueUnread(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]*domain.Reminder, error)

	// MarkSent records the unsent→sent transition. Returns true if this call
	// performed the transition, false if the reminder was already sent.
	// Returns ErrReminderNotFound if the reminder does not exist.
	MarkSent(ctx context.Context, id int64, sentAt time.Time) (bool, error)

	// MarkRead flags a sent reminder as read.
	// Returns ErrReminderNotFound if absent or owned by another user.
	MarkRead(ctx context.Context, ownerID uuid.UUID, id int64) error

	// MarkAllRead flags all of the owner's unread reminders as read and
	// returns how many rows changed.
	MarkAllRead(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// CountUnread returns the number of sent-but-unread reminders.
	CountUnread(ctx context.Context, ownerID uuid.UUID) (int, error)

	// Delete removes a reminder.
	// Returns ErrReminderNotFound if absent or owned by another user.
	Delete(ctx context.Context, ownerID uuid.UUID, id int64) error

	// DeleteByID removes a reminder regardless of owner. Used by the sweeper
	// to clean up reminders whose task has been deleted.
	DeleteByID(ctx context.Context, id int64) error

	// WithTx returns a ReminderStore bound to the given transaction.
	WithTx(tx *sql.Tx) ReminderStore
}
