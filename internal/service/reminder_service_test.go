package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhutchins/tasknest/internal/domain"
	"github.com/mhutchins/tasknest/internal/store"
)

func newReminderServiceFixture(t *testing.T) (*ReminderService, *fakeReminderStore) {
	t.Helper()

	reminders := newFakeReminderStore()
	svc := NewReminderService(reminders, nil)
	svc.now = func() time.Time { return testNow }

	return svc, reminders
}

func seedReminder(
	t *testing.T,
	reminders *fakeReminderStore,
	ownerID uuid.UUID,
	taskID int64,
	remindAt time.Time,
) *domain.Reminder {
	t.Helper()

	reminder, err := reminders.Upsert(context.Background(), ownerID, taskID, remindAt)
	require.NoError(t, err)
	return reminder
}

func TestReminderServiceDueMarksSent(t *testing.T) {
	svc, reminders := newReminderServiceFixture(t)
	ownerID := uuid.New()

	dueReminder := seedReminder(t, reminders, ownerID, 1, testNow.Add(-time.Minute))
	seedReminder(t, reminders, ownerID, 2, testNow.Add(time.Hour))

	due, err := svc.Due(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, due, 1)

	assert.Equal(t, dueReminder.ID, due[0].ID)
	assert.True(t, due[0].Sent)
	require.NotNil(t, due[0].SentAt)
	assert.Equal(t, testNow, *due[0].SentAt)

	stored, err := reminders.GetByID(context.Background(), ownerID, dueReminder.ID)
	require.NoError(t, err)
	assert.True(t, stored.Sent, "the sent flag persists")
}

func TestReminderServiceDueRepeatsUntilRead(t *testing.T) {
	svc, reminders := newReminderServiceFixture(t)
	ownerID := uuid.New()

	reminder := seedReminder(t, reminders, ownerID, 1, testNow.Add(-time.Minute))
	firstSentAt := testNow

	due, err := svc.Due(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, due, 1)

	// Polling again still returns the reminder, without re-sending it.
	svc.now = func() time.Time { return testNow.Add(5 * time.Minute) }
	due, err = svc.Due(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.NotNil(t, due[0].SentAt)
	assert.Equal(t, firstSentAt, *due[0].SentAt, "sent_at keeps the first delivery time")

	// Once read, it disappears from the due feed.
	require.NoError(t, svc.MarkRead(context.Background(), ownerID, reminder.ID))
	due, err = svc.Due(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Empty(t, due)
}

// vanishingReminderStore deletes one reminder just before its sent
// transition, mimicking a concurrent delete between listing and marking.
type vanishingReminderStore struct {
	*fakeReminderStore
	vanishID int64
}

func (v *vanishingReminderStore) MarkSent(
	ctx context.Context,
	id int64,
	sentAt time.Time,
) (bool, error) {
	if id == v.vanishID {
		_ = v.fakeReminderStore.DeleteByID(ctx, id)
	}
	return v.fakeReminderStore.MarkSent(ctx, id, sentAt)
}

func TestReminderServiceDueSkipsConcurrentlyDeleted(t *testing.T) {
	reminders := newFakeReminderStore()
	ownerID := uuid.New()

	doomed := seedReminder(t, reminders, ownerID, 1, testNow.Add(-time.Minute))
	survivor := seedReminder(t, reminders, ownerID, 2, testNow.Add(-time.Minute))

	svc := NewReminderService(&vanishingReminderStore{
		fakeReminderStore: reminders,
		vanishID:          doomed.ID,
	}, nil)
	svc.now = func() time.Time { return testNow }

	due, err := svc.Due(context.Background(), ownerID)
	require.NoError(t, err, "a reminder deleted mid-poll must not fail the poll")

	require.Len(t, due, 1)
	assert.Equal(t, survivor.ID, due[0].ID)
	assert.True(t, due[0].Sent)
}

func TestReminderServiceListRejectsUnknownStatus(t *testing.T) {
	svc, _ := newReminderServiceFixture(t)

	_, err := svc.List(context.Background(), uuid.New(), "archived", 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReminderServiceMarkAllRead(t *testing.T) {
	svc, reminders := newReminderServiceFixture(t)
	ownerID := uuid.New()
	other := uuid.New()

	seedReminder(t, reminders, ownerID, 1, testNow.Add(-time.Minute))
	seedReminder(t, reminders, ownerID, 2, testNow.Add(-time.Minute))
	seedReminder(t, reminders, other, 3, testNow.Add(-time.Minute))

	count, err := svc.MarkAllRead(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// The other user's reminder is untouched.
	dueOther, err := svc.Due(context.Background(), other)
	require.NoError(t, err)
	assert.Len(t, dueOther, 1)
}

func TestReminderServiceCountUnread(t *testing.T) {
	svc, reminders := newReminderServiceFixture(t)
	ownerID := uuid.New()

	seedReminder(t, reminders, ownerID, 1, testNow.Add(-time.Minute))

	count, err := svc.CountUnread(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Zero(t, count, "pending reminders do not count as unread")

	_, err = svc.Due(context.Background(), ownerID)
	require.NoError(t, err)

	count, err = svc.CountUnread(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReminderServiceDeleteCrossOwner(t *testing.T) {
	svc, reminders := newReminderServiceFixture(t)
	ownerID := uuid.New()

	reminder := seedReminder(t, reminders, ownerID, 1, testNow.Add(time.Hour))

	err := svc.Delete(context.Background(), uuid.New(), reminder.ID)
	assert.ErrorIs(t, err, store.ErrReminderNotFound)

	require.NoError(t, svc.Delete(context.Background(), ownerID, reminder.ID))
}
