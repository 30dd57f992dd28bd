package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhutchins/tasknest/internal/domain"
)

func TestComputeRemindAt(t *testing.T) {
	due := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	t.Run("both present", func(t *testing.T) {
		got := domain.ComputeRemindAt(&due, intPtr(60))
		require.NotNil(t, got)
		assert.Equal(t, due.Add(-time.Hour), *got)
	})

	t.Run("zero lead time fires at due date", func(t *testing.T) {
		got := domain.ComputeRemindAt(&due, intPtr(0))
		require.NotNil(t, got)
		assert.Equal(t, due, *got)
	})

	t.Run("missing due date", func(t *testing.T) {
		assert.Nil(t, domain.ComputeRemindAt(nil, intPtr(60)))
	})

	t.Run("missing lead time", func(t *testing.T) {
		assert.Nil(t, domain.ComputeRemindAt(&due, nil))
	})
}

func TestNewReminder(t *testing.T) {
	ownerID := uuid.New()
	remindAt := time.Now().UTC().Add(time.Hour)

	reminder, err := domain.NewReminder(ownerID, 7, remindAt)
	require.NoError(t, err)

	assert.Equal(t, ownerID, reminder.OwnerID)
	assert.Equal(t, int64(7), reminder.TaskID)
	assert.False(t, reminder.Sent)
	assert.False(t, reminder.Read)
	assert.Nil(t, reminder.SentAt)
}

func TestReminderValidate(t *testing.T) {
	remindAt := time.Now().UTC()

	tests := []struct {
		name     string
		reminder domain.Reminder
		wantErr  error
	}{
		{
			name:     "valid",
			reminder: domain.Reminder{OwnerID: uuid.New(), TaskID: 1, RemindAt: remindAt},
		},
		{
			name:     "missing owner",
			reminder: domain.Reminder{TaskID: 1, RemindAt: remindAt},
			wantErr:  domain.ErrReminderOwnerEmpty,
		},
		{
			name:     "missing task",
			reminder: domain.Reminder{OwnerID: uuid.New(), RemindAt: remindAt},
			wantErr:  domain.ErrReminderTaskEmpty,
		},
		{
			name:     "missing time",
			reminder: domain.Reminder{OwnerID: uuid.New(), TaskID: 1},
			wantErr:  domain.ErrReminderTimeEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reminder.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
