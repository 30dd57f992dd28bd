package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mhutchins/tasknest/internal/domain"
	"github.com/mhutchins/tasknest/internal/store"
)

// ReminderService exposes the user-facing reminder operations: listing,
// polling for due reminders, and read-state bookkeeping. Reminder creation
// and replacement happen through TaskService, which keeps reminders derived
// from task due dates.
type ReminderService struct {
	reminders store.ReminderStore
	logger    *slog.Logger
	now       func() time.Time
}

// NewReminderService creates a ReminderService. If logger is nil, the
// default logger is used.
func NewReminderService(reminders store.ReminderStore, log *slog.Logger) *ReminderService {
	if reminders == nil {
		panic("reminder store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ReminderService{
		reminders: reminders,
		logger:    log.With(slog.String("component", "reminder_service")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List retrieves the owner's reminders matching the status filter.
func (s *ReminderService) List(
	ctx context.Context,
	ownerID uuid.UUID,
	status store.ReminderStatus,
	limit int,
) ([]*domain.Reminder, error) {
	if status == "" {
		status = store.ReminderAll
	}
	if !status.IsValid() {
		return nil, opErr("list reminders",
			fmt.Errorf("%w: unknown reminder status %q", domain.ErrValidation, status))
	}

	reminders, err := s.reminders.List(ctx, ownerID, status, limit)
	if err != nil {
		return nil, opErr("list reminders", err)
	}
	return reminders, nil
}

// Due returns the owner's due, unread reminders and marks any that were
// still unsent as sent. Polling clients therefore see each reminder until
// they acknowledge it, while the sweeper never delivers it a second time.
func (s *ReminderService) Due(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.Reminder, error) {
	now := s.now()

	due, err := s.reminders.ListDueUnread(ctx, ownerID, now)
	if err != nil {
		return nil, opErr("due reminders", err)
	}

	out := make([]*domain.Reminder, 0, len(due))
	for _, reminder := range due {
		if !reminder.Sent {
			transitioned, err := s.reminders.MarkSent(ctx, reminder.ID, now)
			if errors.Is(err, store.ErrNotFound) {
				// Deleted between listing and marking; drop the row rather
				// than failing the whole poll.
				continue
			}
			if err != nil {
				return nil, opErr("due reminders", err)
			}
			if transitioned {
				reminder.Sent = true
				sentAt := now
				reminder.SentAt = &sentAt
			}
		}
		out = append(out, reminder)
	}

	return out, nil
}

// MarkRead flags one reminder as read.
func (s *ReminderService) MarkRead(ctx context.Context, ownerID uuid.UUID, id int64) error {
	return opErr("mark reminder read", s.reminders.MarkRead(ctx, ownerID, id))
}

// MarkAllRead flags all of the owner's unread reminders as read and returns
// how many changed.
func (s *ReminderService) MarkAllRead(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	count, err := s.reminders.MarkAllRead(ctx, ownerID)
	if err != nil {
		return 0, opErr("mark all reminders read", err)
	}
	return count, nil
}

// CountUnread returns the owner's unread reminder count for badge display.
func (s *ReminderService) CountUnread(ctx context.Context, ownerID uuid.UUID) (int, error) {
	count, err := s.reminders.CountUnread(ctx, ownerID)
	if err != nil {
		return 0, opErr("count unread reminders", err)
	}
	return count, nil
}

// Delete removes a reminder.
func (s *ReminderService) Delete(ctx context.Context, ownerID uuid.UUID, id int64) error {
	return opErr("delete reminder", s.reminders.Delete(ctx, ownerID, id))
}
