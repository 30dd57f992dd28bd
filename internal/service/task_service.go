package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mhutchins/tasknest/internal/domain"
	"github.com/mhutchins/tasknest/internal/events"
	"github.com/mhutchins/tasknest/internal/platform/logger"
	"github.com/mhutchins/tasknest/internal/store"
)

// CreateTaskInput carries the caller-supplied fields for a new task.
type CreateTaskInput struct {
	Title              string
	Description        string
	Priority           domain.Priority
	DueDate            *time.Time
	ReminderMinutes    *int
	IsRecurring        bool
	RecurrencePattern  domain.RecurrencePattern
	RecurrenceInterval int
	RecurrenceEndDate  *time.Time
	TagIDs             []int64
}

// UpdateTaskInput is a partial patch: nil pointers leave the field alone.
// Nullable fields use a paired Clear flag to distinguish "unset it" from
// "leave it".
type UpdateTaskInput struct {
	Title              *string
	Description        *string
	Priority           *domain.Priority
	DueDate            *time.Time
	ClearDueDate       bool
	ReminderMinutes    *int
	ClearReminder      bool
	IsRecurring        *bool
	RecurrencePattern  *domain.RecurrencePattern
	RecurrenceInterval *int
	RecurrenceEndDate  *time.Time
	ClearRecurrenceEnd bool
	TagIDs             *[]int64
}

// TaskService orchestrates the task lifecycle: persistence, tag links,
// reminder reconciliation, recurrence spawning, and event emission. All
// multi-write operations run in a single database transaction; events are
// published best-effort after commit.
type TaskService struct {
	db        *sql.DB
	tasks     store.TaskStore
	reminders store.ReminderStore
	sink      events.Sink
	logger    *slog.Logger
	now       func() time.Time
}

// NewTaskService creates a TaskService. If sink is nil, events are dropped
// into the logs via a LogSink; if logger is nil, the default logger is used.
func NewTaskService(
	db *sql.DB,
	tasks store.TaskStore,
	reminders store.ReminderStore,
	sink events.Sink,
	log *slog.Logger,
) *TaskService {
	if db == nil {
		panic("db cannot be nil")
	}
	if tasks == nil {
		panic("task store cannot be nil")
	}
	if reminders == nil {
		panic("reminder store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	if sink == nil {
		sink = events.NewLogSink(log)
	}

	return &TaskService{
		db:        db,
		tasks:     tasks,
		reminders: reminders,
		sink:      sink,
		logger:    log.With(slog.String("component", "task_service")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create persists a new task with its tag links and reminder, then emits
// task.created.
func (s *TaskService) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	input CreateTaskInput,
) (*domain.Task, error) {
	task, err := domain.NewTask(ownerID, input.Title)
	if err != nil {
		return nil, opErr("create task", err)
	}

	task.Description = input.Description
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	task.DueDate = input.DueDate
	task.ReminderMinutes = input.ReminderMinutes
	task.IsRecurring = input.IsRecurring
	task.RecurrencePattern = input.RecurrencePattern
	task.RecurrenceInterval = input.RecurrenceInterval
	task.RecurrenceEndDate = input.RecurrenceEndDate

	if err := task.Validate(); err != nil {
		return nil, opErr("create task", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.persistNewTask(ctx, tx, task, input.TagIDs)
	})
	if err != nil {
		return nil, opErr("create task", err)
	}

	s.publish(ctx, events.TopicTaskCreated,
		events.NewTaskEvent(task, s.now()).WithPriority(task.Priority))

	return task, nil
}

// persistNewTask writes the task row, its tag links, and its reminder inside
// tx, then reloads the task so TagIDs reflect what actually linked.
func (s *TaskService) persistNewTask(
	ctx context.Context,
	tx *sql.Tx,
	task *domain.Task,
	tagIDs []int64,
) error {
	txTasks := s.tasks.WithTx(tx)

	if err := txTasks.Create(ctx, task); err != nil {
		return err
	}

	if len(tagIDs) > 0 {
		if err := txTasks.ReplaceTags(ctx, task.OwnerID, task.ID, tagIDs); err != nil {
			return err
		}
	}

	if err := reconcileReminder(ctx, s.reminders.WithTx(tx), task); err != nil {
		return err
	}

	stored, err := txTasks.GetByID(ctx, task.OwnerID, task.ID)
	if err != nil {
		return err
	}
	*task = *stored

	return nil
}

// Get retrieves one task.
func (s *TaskService) Get(
	ctx context.Context,
	ownerID uuid.UUID,
	id int64,
) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, opErr("get task", err)
	}
	return task, nil
}

// List retrieves the owner's tasks matching filter, in sort order. Zero
// values default to "all tasks, newest first".
func (s *TaskService) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
	sort store.TaskSort,
) ([]*domain.Task, error) {
	if filter.Status == "" {
		filter.Status = store.StatusAll
	}
	if !filter.Status.IsValid() {
		return nil, opErr("list tasks",
			fmt.Errorf("%w: unknown status filter %q", domain.ErrValidation, filter.Status))
	}
	if filter.Priority != nil && !filter.Priority.IsValid() {
		return nil, opErr("list tasks", domain.ErrInvalidPriority)
	}
	if sort.Field != "" && !sort.Field.IsValid() {
		return nil, opErr("list tasks",
			fmt.Errorf("%w: unknown sort field %q", domain.ErrValidation, sort.Field))
	}

	tasks, err := s.tasks.List(ctx, ownerID, filter, sort)
	if err != nil {
		return nil, opErr("list tasks", err)
	}
	return tasks, nil
}

// Stats returns the owner's dashboard counters.
func (s *TaskService) Stats(ctx context.Context, ownerID uuid.UUID) (*store.TaskStats, error) {
	stats, err := s.tasks.Stats(ctx, ownerID, s.now())
	if err != nil {
		return nil, opErr("task stats", err)
	}
	return stats, nil
}

// Update applies a partial patch to a task. Changing the due date or the
// reminder lead time re-reconciles the task's reminder in the same
// transaction; a non-nil TagIDs replaces the full tag set. Emits task.updated
// carrying the changed field names.
func (s *TaskService) Update(
	ctx context.Context,
	ownerID uuid.UUID,
	id int64,
	input UpdateTaskInput,
) (*domain.Task, error) {
	var (
		task    *domain.Task
		changed []string
	)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		current, err := txTasks.GetByID(ctx, ownerID, id)
		if err != nil {
			return err
		}

		changed = applyPatch(current, input)
		if err := current.Validate(); err != nil {
			return err
		}

		if err := txTasks.Update(ctx, current); err != nil {
			return err
		}

		if input.TagIDs != nil {
			if err := txTasks.ReplaceTags(ctx, ownerID, id, *input.TagIDs); err != nil {
				return err
			}
		}

		if patchTouchesReminder(input) {
			if err := reconcileReminder(ctx, s.reminders.WithTx(tx), current); err != nil {
				return err
			}
		}

		task, err = txTasks.GetByID(ctx, ownerID, id)
		return err
	})
	if err != nil {
		return nil, opErr("update task", err)
	}

	if len(changed) > 0 {
		s.publish(ctx, events.TopicTaskUpdated,
			events.NewTaskEvent(task, s.now()).WithChanges(changed))
	}

	return task, nil
}

// ToggleComplete flips the task's completion flag: an incomplete task
// becomes complete and vice versa, so calling it twice restores the original
// state. Completing a recurring task spawns the next occurrence (tags carried
// over, reminder reconciled) unless the series has ended; flipping back never
// spawns. The task.completed event fires only on the incomplete to complete
// edge.
func (s *TaskService) ToggleComplete(
	ctx context.Context,
	ownerID uuid.UUID,
	id int64,
) (*domain.Task, error) {
	var (
		task      *domain.Task
		spawned   *domain.Task
		completed bool
	)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txReminders := s.reminders.WithTx(tx)

		current, err := txTasks.GetByID(ctx, ownerID, id)
		if err != nil {
			return err
		}

		completed = !current.Completed
		task, err = txTasks.SetCompleted(ctx, ownerID, id, completed)
		if err != nil {
			return err
		}

		if completed {
			// A finished task no longer needs its pending reminder.
			if err := txReminders.DeleteUnsentByTask(ctx, id); err != nil {
				return err
			}
			spawned, err = s.spawnNextOccurrence(ctx, txTasks, txReminders, task)
			return err
		}

		// Reopened tasks get their reminder back when still applicable.
		return reconcileReminder(ctx, txReminders, task)
	})
	if err != nil {
		return nil, opErr("toggle complete", err)
	}

	if completed {
		s.publish(ctx, events.TopicTaskCompleted, events.NewTaskEvent(task, s.now()))
		if spawned != nil {
			s.publish(ctx, events.TopicTaskCreated,
				events.NewTaskEvent(spawned, s.now()).WithPriority(spawned.Priority))
		}
	}

	return task, nil
}

// spawnNextOccurrence persists the next task in a recurring series, copying
// the completed task's tags and reconciling the new reminder. Returns nil
// when the series does not continue.
func (s *TaskService) spawnNextOccurrence(
	ctx context.Context,
	txTasks store.TaskStore,
	txReminders store.ReminderStore,
	completed *domain.Task,
) (*domain.Task, error) {
	next := domain.NextOccurrence(completed)
	if next == nil {
		return nil, nil
	}

	if err := txTasks.Create(ctx, next); err != nil {
		return nil, err
	}

	if len(completed.TagIDs) > 0 {
		if err := txTasks.ReplaceTags(ctx, next.OwnerID, next.ID, completed.TagIDs); err != nil {
			return nil, err
		}
	}

	if err := reconcileReminder(ctx, txReminders, next); err != nil {
		return nil, err
	}

	return txTasks.GetByID(ctx, next.OwnerID, next.ID)
}

// Delete removes a task. Tag links and reminders go with it via schema
// cascade. Emits task.deleted from a snapshot captured before the row was
// removed.
func (s *TaskService) Delete(ctx context.Context, ownerID uuid.UUID, id int64) error {
	var snapshot *domain.Task

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		var err error
		snapshot, err = txTasks.GetByID(ctx, ownerID, id)
		if err != nil {
			return err
		}

		return txTasks.Delete(ctx, ownerID, id)
	})
	if err != nil {
		return opErr("delete task", err)
	}

	s.publish(ctx, events.TopicTaskDeleted, events.NewTaskEvent(snapshot, s.now()))
	return nil
}

// publish sends an event, logging failures instead of surfacing them; a dead
// sink must not fail a committed state change.
func (s *TaskService) publish(ctx context.Context, topic string, event events.Event) {
	if err := s.sink.Publish(ctx, topic, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("event publish failed",
			slog.String("topic", topic),
			slog.Int64("task_id", event.TaskID),
			slog.String("error", err.Error()))
	}
}

// applyPatch copies the set fields of input onto task and returns the names
// of the fields that changed.
func applyPatch(task *domain.Task, input UpdateTaskInput) []string {
	var changed []string

	if input.Title != nil && *input.Title != task.Title {
		task.Title = *input.Title
		changed = append(changed, "title")
	}
	if input.Description != nil && *input.Description != task.Description {
		task.Description = *input.Description
		changed = append(changed, "description")
	}
	if input.Priority != nil && *input.Priority != task.Priority {
		task.Priority = *input.Priority
		changed = append(changed, "priority")
	}

	switch {
	case input.ClearDueDate:
		if task.DueDate != nil {
			task.DueDate = nil
			changed = append(changed, "due_date")
		}
	case input.DueDate != nil:
		if task.DueDate == nil || !task.DueDate.Equal(*input.DueDate) {
			due := input.DueDate.UTC()
			task.DueDate = &due
			changed = append(changed, "due_date")
		}
	}

	switch {
	case input.ClearReminder:
		if task.ReminderMinutes != nil {
			task.ReminderMinutes = nil
			changed = append(changed, "reminder_minutes")
		}
	case input.ReminderMinutes != nil:
		if task.ReminderMinutes == nil || *task.ReminderMinutes != *input.ReminderMinutes {
			minutes := *input.ReminderMinutes
			task.ReminderMinutes = &minutes
			changed = append(changed, "reminder_minutes")
		}
	}

	if input.IsRecurring != nil && *input.IsRecurring != task.IsRecurring {
		task.IsRecurring = *input.IsRecurring
		if !task.IsRecurring {
			task.RecurrencePattern = domain.RecurrenceNone
			task.RecurrenceInterval = 0
			task.RecurrenceEndDate = nil
		}
		changed = append(changed, "is_recurring")
	}
	if input.RecurrencePattern != nil && *input.RecurrencePattern != task.RecurrencePattern {
		task.RecurrencePattern = *input.RecurrencePattern
		changed = append(changed, "recurrence_pattern")
	}
	if input.RecurrenceInterval != nil && *input.RecurrenceInterval != task.RecurrenceInterval {
		task.RecurrenceInterval = *input.RecurrenceInterval
		changed = append(changed, "recurrence_interval")
	}

	switch {
	case input.ClearRecurrenceEnd:
		if task.RecurrenceEndDate != nil {
			task.RecurrenceEndDate = nil
			changed = append(changed, "recurrence_end_date")
		}
	case input.RecurrenceEndDate != nil:
		if task.RecurrenceEndDate == nil || !task.RecurrenceEndDate.Equal(*input.RecurrenceEndDate) {
			end := input.RecurrenceEndDate.UTC()
			task.RecurrenceEndDate = &end
			changed = append(changed, "recurrence_end_date")
		}
	}

	if input.TagIDs != nil {
		changed = append(changed, "tags")
	}

	return changed
}

// patchTouchesReminder reports whether the patch can move or remove the
// task's reminder fire time.
func patchTouchesReminder(input UpdateTaskInput) bool {
	return input.DueDate != nil || input.ClearDueDate ||
		input.ReminderMinutes != nil || input.ClearReminder
}
