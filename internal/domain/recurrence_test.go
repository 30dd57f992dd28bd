package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhutchins/tasknest/internal/domain"
)

func recurringTask(pattern domain.RecurrencePattern, interval int, due time.Time) *domain.Task {
	return &domain.Task{
		ID:                 42,
		OwnerID:            uuid.New(),
		Title:              "Water plants",
		DueDate:            &due,
		ReminderMinutes:    intPtr(30),
		Priority:           domain.PriorityMedium,
		IsRecurring:        true,
		RecurrencePattern:  pattern,
		RecurrenceInterval: interval,
	}
}

func TestNextOccurrenceOffsets(t *testing.T) {
	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		pattern  domain.RecurrencePattern
		interval int
		wantDays int
	}{
		{name: "daily", pattern: domain.RecurrenceDaily, wantDays: 1},
		{name: "weekly", pattern: domain.RecurrenceWeekly, wantDays: 7},
		{name: "monthly fixed 30 days", pattern: domain.RecurrenceMonthly, wantDays: 30},
		{name: "yearly fixed 365 days", pattern: domain.RecurrenceYearly, wantDays: 365},
		{name: "custom interval", pattern: domain.RecurrenceCustom, interval: 3, wantDays: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := recurringTask(tt.pattern, tt.interval, due)

			next := domain.NextOccurrence(source)
			require.NotNil(t, next)

			require.NotNil(t, next.DueDate)
			assert.Equal(t, due.AddDate(0, 0, tt.wantDays), *next.DueDate)

			// The follow-up carries the source's settings but is a fresh,
			// incomplete, unpersisted task linked to its parent.
			assert.Zero(t, next.ID)
			assert.False(t, next.Completed)
			assert.Equal(t, source.Title, next.Title)
			assert.Equal(t, source.Priority, next.Priority)
			assert.Equal(t, source.ReminderMinutes, next.ReminderMinutes)
			assert.True(t, next.IsRecurring)
			assert.Equal(t, source.RecurrencePattern, next.RecurrencePattern)
			require.NotNil(t, next.ParentTaskID)
			assert.Equal(t, source.ID, *next.ParentTaskID)
		})
	}
}

func TestNextOccurrenceReturnsNil(t *testing.T) {
	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("nil task", func(t *testing.T) {
		assert.Nil(t, domain.NextOccurrence(nil))
	})

	t.Run("not recurring", func(t *testing.T) {
		task := recurringTask(domain.RecurrenceDaily, 0, due)
		task.IsRecurring = false
		assert.Nil(t, domain.NextOccurrence(task))
	})

	t.Run("no due date", func(t *testing.T) {
		task := recurringTask(domain.RecurrenceDaily, 0, due)
		task.DueDate = nil
		assert.Nil(t, domain.NextOccurrence(task))
	})

	t.Run("custom pattern with zero interval", func(t *testing.T) {
		task := recurringTask(domain.RecurrenceCustom, 0, due)
		assert.Nil(t, domain.NextOccurrence(task))
	})

	t.Run("next due past end date", func(t *testing.T) {
		task := recurringTask(domain.RecurrenceWeekly, 0, due)
		end := due.AddDate(0, 0, 3)
		task.RecurrenceEndDate = &end
		assert.Nil(t, domain.NextOccurrence(task))
	})
}

// A daily series due at T with an end date of T+2 days yields exactly two
// follow-ups: T+1 and T+2, and then terminates.
func TestNextOccurrenceSeriesTermination(t *testing.T) {
	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := due.AddDate(0, 0, 2)

	task := recurringTask(domain.RecurrenceDaily, 0, due)
	task.RecurrenceEndDate = &end

	first := domain.NextOccurrence(task)
	require.NotNil(t, first)
	assert.Equal(t, due.AddDate(0, 0, 1), *first.DueDate)

	first.ID = 43
	second := domain.NextOccurrence(first)
	require.NotNil(t, second)
	assert.Equal(t, due.AddDate(0, 0, 2), *second.DueDate)

	second.ID = 44
	assert.Nil(t, domain.NextOccurrence(second), "series must terminate at the end date")
}
