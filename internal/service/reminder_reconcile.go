package service

import (
	"context"

	"github.com/mhutchins/tasknest/internal/domain"
	"github.com/mhutchins/tasknest/internal/store"
)

// reconcileReminder brings the task's unsent reminder in line with its due
// date and lead time. When both are set, the unsent reminder (if any) is
// replaced with one firing at due - lead; otherwise any unsent reminder is
// removed. Sent reminders are never touched, so delivery history survives
// task edits. Callers run this inside the transaction that wrote the task.
func reconcileReminder(
	ctx context.Context,
	reminders store.ReminderStore,
	task *domain.Task,
) error {
	remindAt := domain.ComputeRemindAt(task.DueDate, task.ReminderMinutes)
	if remindAt == nil {
		return reminders.DeleteUnsentByTask(ctx, task.ID)
	}

	_, err := reminders.Upsert(ctx, task.OwnerID, task.ID, *remindAt)
	return err
}
