package domain

// daysForPattern returns the fixed day offset for a recurrence pattern.
// Monthly and yearly use fixed 30/365-day offsets rather than calendar
// arithmetic; this matches the product's documented approximation.
func daysForPattern(pattern RecurrencePattern, interval int) (int, bool) {
	switch pattern {
	case RecurrenceDaily:
		return 1, true
	case RecurrenceWeekly:
		return 7, true
	case RecurrenceMonthly:
		return 30, true
	case RecurrenceYearly:
		return 365, true
	case RecurrenceCustom:
		if interval < 1 {
			return 0, false
		}
		return interval, true
	}
	return 0, false
}

// NextOccurrence computes the follow-up task spawned when a recurring task
// is completed. It is a pure function: the returned task is unpersisted,
// carries no ID or tags, and references the source task via ParentTaskID.
//
// Returns nil when the task is not recurring, has no due date, or the next
// due date would fall past the recurrence end date (series terminated).
func NextOccurrence(t *Task) *Task {
	if t == nil || !t.IsRecurring || t.DueDate == nil {
		return nil
	}

	days, ok := daysForPattern(t.RecurrencePattern, t.RecurrenceInterval)
	if !ok {
		return nil
	}

	nextDue := t.DueDate.AddDate(0, 0, days)
	if t.RecurrenceEndDate != nil && nextDue.After(*t.RecurrenceEndDate) {
		return nil
	}

	parentID := t.ID
	return &Task{
		OwnerID:            t.OwnerID,
		Title:              t.Title,
		Description:        t.Description,
		Priority:           t.Priority,
		DueDate:            &nextDue,
		ReminderMinutes:    t.ReminderMinutes,
		IsRecurring:        true,
		RecurrencePattern:  t.RecurrencePattern,
		RecurrenceInterval: t.RecurrenceInterval,
		RecurrenceEndDate:  t.RecurrenceEndDate,
		ParentTaskID:       &parentID,
	}
}
