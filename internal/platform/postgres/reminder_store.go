package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mhutchins/tasknest/internal/domain"
	"github.com/mhutchins/tasknest/internal/platform/logger"
	"github.com/mhutchins/tasknest/internal/store"
)

// reminderColumns is the canonical column order used by every reminder SELECT.
var reminderColumns = []string{
	"id", "user_id", "task_id", "remind_at", "sent", "read", "sent_at", "created_at",
}

// ReminderStore implements the store.ReminderStore interface using a
// PostgreSQL database as the storage backend.
type ReminderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReminderStore creates a new PostgreSQL implementation of the
// ReminderStore interface. If logger is nil, the default logger is used.
func NewReminderStore(db store.DBTX, logger *slog.Logger) *ReminderStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ReminderStore{
		db:     db,
		logger: logger.With(slog.String("component", "reminder_store")),
	}
}

// Ensure ReminderStore implements store.ReminderStore interface
var _ store.ReminderStore = (*ReminderStore)(nil)

// WithTx implements store.ReminderStore.WithTx
func (s *ReminderStore) WithTx(tx *sql.Tx) store.ReminderStore {
	return &ReminderStore{db: tx, logger: s.logger}
}

// Upsert implements store.ReminderStore.Upsert
// The delete-then-insert pair keeps the "at most one unsent reminder per
// task" invariant; run it via WithTx inside the caller's transaction.
func (s *ReminderStore) Upsert(
	ctx context.Context,
	ownerID uuid.UUID,
	taskID int64,
	remindAt time.Time,
) (*domain.Reminder, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.DeleteUnsentByTask(ctx, taskID); err != nil {
		return nil, err
	}

	reminder, err := domain.NewReminder(ownerID, taskID, remindAt)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO reminders (user_id, task_id, remind_at, sent, read, created_at)
		VALUES ($1, $2, $3, FALSE, FALSE, $4)
		RETURNING id
	`

	err = s.db.QueryRowContext(
		ctx,
		query,
		reminder.OwnerID,
		reminder.TaskID,
		reminder.RemindAt.UTC(),
		reminder.CreatedAt,
	).Scan(&reminder.ID)

	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to create reminder",
			slog.String("error", err.Error()),
			slog.Int64("task_id", taskID))
		return nil, err
	}

	log.Debug("reminder upserted",
		slog.Int64("reminder_id", reminder.ID),
		slog.Int64("task_id", taskID),
		slog.Time("remind_at", reminder.RemindAt))
	return reminder, nil
}

// DeleteUnsentByTask implements store.ReminderStore.DeleteUnsentByTask
func (s *ReminderStore) DeleteUnsentByTask(ctx context.Context, taskID int64) error {
	_, err := s.db.ExecContext(
		ctx,
		"DELETE FROM reminders WHERE task_id = $1 AND sent = FALSE",
		taskID,
	)
	return err
}

// GetByID implements store.ReminderStore.GetByID
func (s *ReminderStore) GetByID(
	ctx context.Context,
	ownerID uuid.UUID,
	id int64,
) (*domain.Reminder, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM reminders WHERE id = $1 AND user_id = $2",
		columnList(reminderColumns),
	)

	reminder, err := scanReminder(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReminderNotFound
		}
		return nil, err
	}

	return reminder, nil
}

// List implements store.ReminderStore.List
func (s *ReminderStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	status store.ReminderStatus,
	limit int,
) ([]*domain.Reminder, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM reminders WHERE user_id = $1",
		columnList(reminderColumns),
	)

	switch status {
	case store.ReminderPending:
		query += " AND sent = FALSE"
	case store.ReminderSent:
		query += " AND sent = TRUE"
	case store.ReminderUnread:
		query += " AND sent = TRUE AND read = FALSE"
	}

	query += " ORDER BY remind_at DESC"

	args := []any{ownerID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	return s.queryReminders(ctx, query, args...)
}

// ListDueUnsent implements store.ReminderStore.ListDueUnsent
// It scans across all owners; the sweeper dispatches per reminder.
func (s *ReminderStore) ListDueUnsent(
	ctx context.Context,
	before time.Time,
) ([]*domain.Reminder, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM reminders WHERE remind_at <= $1 AND sent = FALSE ORDER BY remind_at ASC",
		columnList(reminderColumns),
	)

	return s.queryReminders(ctx, query, before.UTC())
}

// ListDueUnread implements store.ReminderStore.ListDueUnread
func (s *ReminderStore) ListDueUnread(
	ctx context.Context,
	ownerID uuid.UUID,
	now time.Time,
) ([]*domain.Reminder, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM reminders
		WHERE user_id = $1 AND remind_at <= $2 AND read = FALSE
		ORDER BY remind_at DESC`,
		columnList(reminderColumns),
	)

	return s.queryReminders(ctx, query, ownerID, now.UTC())
}

// MarkSent implements store.ReminderStore.MarkSent
// The sent=FALSE predicate makes the transition idempotent under races
// between the sweeper and the polling read path.
func (s *ReminderStore) MarkSent(
	ctx context.Context,
	id int64,
	sentAt time.Time,
) (bool, error) {
	result, err := s.db.ExecContext(
		ctx,
		"UPDATE reminders SET sent = TRUE, sent_at = $1 WHERE id = $2 AND sent = FALSE",
		sentAt.UTC(),
		id,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rowsAffected > 0 {
		return true, nil
	}

	// No transition: either already sent, or the reminder is gone.
	var exists bool
	err = s.db.QueryRowContext(
		ctx,
		"SELECT EXISTS(SELECT 1 FROM reminders WHERE id = $1)",
		id,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, store.ErrReminderNotFound
	}

	return false, nil
}

// MarkRead implements store.ReminderStore.MarkRead
func (s *ReminderStore) MarkRead(ctx context.Context, ownerID uuid.UUID, id int64) error {
	result, err := s.db.ExecContext(
		ctx,
		"UPDATE reminders SET read = TRUE WHERE id = $1 AND user_id = $2",
		id,
		ownerID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrReminderNotFound
	}

	return nil
}

// MarkAllRead implements store.ReminderStore.MarkAllRead
func (s *ReminderStore) MarkAllRead(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	result, err := s.db.ExecContext(
		ctx,
		"UPDATE reminders SET read = TRUE WHERE user_id = $1 AND read = FALSE",
		ownerID,
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// CountUnread implements store.ReminderStore.CountUnread
func (s *ReminderStore) CountUnread(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		"SELECT COUNT(*) FROM reminders WHERE user_id = $1 AND sent = TRUE AND read = FALSE",
		ownerID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Delete implements store.ReminderStore.Delete
func (s *ReminderStore) Delete(ctx context.Context, ownerID uuid.UUID, id int64) error {
	result, err := s.db.ExecContext(
		ctx,
		"DELETE FROM reminders WHERE id = $1 AND user_id = $2",
		id,
		ownerID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrReminderNotFound
	}

	return nil
}

// DeleteByID implements store.ReminderStore.DeleteByID
func (s *ReminderStore) DeleteByID(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM reminders WHERE id = $1", id)
	return err
}

// queryReminders runs a reminder SELECT and scans all rows.
func (s *ReminderStore) queryReminders(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Reminder, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query reminders", slog.String("error", err.Error()))
		return nil, err
	}
	defer closeRows(rows, log)

	reminders := []*domain.Reminder{}
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}

	return reminders, rows.Err()
}

// scanReminder reads one reminder row in reminderColumns order.
func scanReminder(row rowScanner) (*domain.Reminder, error) {
	var (
		reminder domain.Reminder
		sentAt   sql.NullTime
	)

	err := row.Scan(
		&reminder.ID,
		&reminder.OwnerID,
		&reminder.TaskID,
		&reminder.RemindAt,
		&reminder.Sent,
		&reminder.Read,
		&sentAt,
		&reminder.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sentAt.Valid {
		t := sentAt.Time.UTC()
		reminder.SentAt = &t
	}
	reminder.RemindAt = reminder.RemindAt.UTC()

	return &reminder, nil
}
