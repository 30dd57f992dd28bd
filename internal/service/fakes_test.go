package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mhutchins/tasknest/internal/domain"
	"github.com/mhutchins/tasknest/internal/store"
)

// newTxDB returns a sqlmock-backed *sql.DB for RunInTransaction. The fake
// stores never touch it, so tests only register Begin/Commit expectations.
func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, mock
}

func expectTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

// fakeTaskStore is an in-memory store.TaskStore. WithTx returns the same
// store, so transactional service flows run against shared state.
type fakeTaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*domain.Task
	links  map[int64][]int64
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{
		tasks: map[int64]*domain.Task{},
		links: map[int64][]int64{},
	}
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	if t.TagIDs != nil {
		c.TagIDs = append([]int64(nil), t.TagIDs...)
	}
	return &c
}

func (f *fakeTaskStore) Create(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := task.Validate(); err != nil {
		return err
	}

	f.nextID++
	task.ID = f.nextID
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
		task.UpdatedAt = now
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityNone
	}

	f.tasks[task.ID] = cloneTask(task)
	return nil
}

func (f *fakeTaskStore) GetByID(_ context.Context, ownerID uuid.UUID, id int64) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}

	c := cloneTask(task)
	c.TagIDs = append([]int64(nil), f.links[id]...)
	return c, nil
}

func (f *fakeTaskStore) List(
	_ context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
	_ store.TaskSort,
) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.Task
	for id, task := range f.tasks {
		if task.OwnerID != ownerID {
			continue
		}
		switch filter.Status {
		case store.StatusPending:
			if task.Completed {
				continue
			}
		case store.StatusCompleted:
			if !task.Completed {
				continue
			}
		}
		c := cloneTask(task)
		c.TagIDs = append([]int64(nil), f.links[id]...)
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeTaskStore) Update(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.tasks[task.ID]
	if !ok || current.OwnerID != task.OwnerID {
		return store.ErrTaskNotFound
	}

	task.UpdatedAt = time.Now().UTC()
	f.tasks[task.ID] = cloneTask(task)
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, ownerID uuid.UUID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return store.ErrTaskNotFound
	}

	delete(f.tasks, id)
	delete(f.links, id)
	return nil
}

func (f *fakeTaskStore) SetCompleted(
	ctx context.Context,
	ownerID uuid.UUID,
	id int64,
	completed bool,
) (*domain.Task, error) {
	f.mu.Lock()
	task, ok := f.tasks[id]
	if !ok || task.OwnerID != ownerID {
		f.mu.Unlock()
		return nil, store.ErrTaskNotFound
	}

	task.Completed = completed
	task.UpdatedAt = time.Now().UTC()
	f.mu.Unlock()

	return f.GetByID(ctx, ownerID, id)
}

func (f *fakeTaskStore) ReplaceTags(
	_ context.Context,
	_ uuid.UUID,
	taskID int64,
	tagIDs []int64,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.links[taskID] = append([]int64(nil), tagIDs...)
	return nil
}

func (f *fakeTaskStore) Exists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.tasks[id]
	return ok, nil
}

func (f *fakeTaskStore) Stats(
	_ context.Context,
	ownerID uuid.UUID,
	now time.Time,
) (*store.TaskStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stats := &store.TaskStats{}
	for _, task := range f.tasks {
		if task.OwnerID != ownerID {
			continue
		}
		stats.Total++
		if task.Completed {
			stats.Completed++
			continue
		}
		stats.Pending++
		if task.IsOverdue(now) {
			stats.Overdue++
		}
	}
	return stats, nil
}

func (f *fakeTaskStore) WithTx(_ *sql.Tx) store.TaskStore { return f }

// fakeReminderStore is an in-memory store.ReminderStore.
type fakeReminderStore struct {
	mu        sync.Mutex
	nextID    int64
	reminders map[int64]*domain.Reminder
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{reminders: map[int64]*domain.Reminder{}}
}

var _ store.ReminderStore = (*fakeReminderStore)(nil)

func cloneReminder(r *domain.Reminder) *domain.Reminder {
	c := *r
	if r.SentAt != nil {
		t := *r.SentAt
		c.SentAt = &t
	}
	return &c
}

func (f *fakeReminderStore) Upsert(
	_ context.Context,
	ownerID uuid.UUID,
	taskID int64,
	remindAt time.Time,
) (*domain.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, r := range f.reminders {
		if r.TaskID == taskID && !r.Sent {
			delete(f.reminders, id)
		}
	}

	reminder, err := domain.NewReminder(ownerID, taskID, remindAt)
	if err != nil {
		return nil, err
	}

	f.nextID++
	reminder.ID = f.nextID
	f.reminders[reminder.ID] = cloneReminder(reminder)
	return reminder, nil
}

func (f *fakeReminderStore) DeleteUnsentByTask(_ context.Context, taskID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, r := range f.reminders {
		if r.TaskID == taskID && !r.Sent {
			delete(f.reminders, id)
		}
	}
	return nil
}

func (f *fakeReminderStore) GetByID(
	_ context.Context,
	ownerID uuid.UUID,
	id int64,
) (*domain.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.reminders[id]
	if !ok || r.OwnerID != ownerID {
		return nil, store.ErrReminderNotFound
	}
	return cloneReminder(r), nil
}

func (f *fakeReminderStore) List(
	_ context.Context,
	ownerID uuid.UUID,
	status store.ReminderStatus,
	_ int,
) ([]*domain.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.Reminder
	for _, r := range f.reminders {
		if r.OwnerID != ownerID {
			continue
		}
		switch status {
		case store.ReminderPending:
			if r.Sent {
				continue
			}
		case store.ReminderSent:
			if !r.Sent {
				continue
			}
		case store.ReminderUnread:
			if !r.Sent || r.Read {
				continue
			}
		}
		out = append(out, cloneReminder(r))
	}
	return out, nil
}

func (f *fakeReminderStore) ListDueUnsent(
	_ context.Context,
	before time.Time,
) ([]*domain.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.Reminder
	for _, r := range f.reminders {
		if !r.Sent && !r.RemindAt.After(before) {
			out = append(out, cloneReminder(r))
		}
	}
	return out, nil
}

func (f *fakeReminderStore) ListDueUnread(
	_ context.Context,
	ownerID uuid.UUID,
	now time.Time,
) ([]*domain.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.Reminder
	for _, r := range f.reminders {
		if r.OwnerID == ownerID && !r.Read && !r.RemindAt.After(now) {
			out = append(out, cloneReminder(r))
		}
	}
	return out, nil
}

func (f *fakeReminderStore) MarkSent(
	_ context.Context,
	id int64,
	sentAt time.Time,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.reminders[id]
	if !ok {
		return false, store.ErrReminderNotFound
	}
	if r.Sent {
		return false, nil
	}

	r.Sent = true
	t := sentAt.UTC()
	r.SentAt = &t
	return true, nil
}

func (f *fakeReminderStore) MarkRead(_ context.Context, ownerID uuid.UUID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.reminders[id]
	if !ok || r.OwnerID != ownerID {
		return store.ErrReminderNotFound
	}
	r.Read = true
	return nil
}

func (f *fakeReminderStore) MarkAllRead(_ context.Context, ownerID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, r := range f.reminders {
		if r.OwnerID == ownerID && !r.Read {
			r.Read = true
			count++
		}
	}
	return count, nil
}

func (f *fakeReminderStore) CountUnread(_ context.Context, ownerID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, r := range f.reminders {
		if r.OwnerID == ownerID && r.Sent && !r.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeReminderStore) Delete(_ context.Context, ownerID uuid.UUID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.reminders[id]
	if !ok || r.OwnerID != ownerID {
		return store.ErrReminderNotFound
	}
	delete(f.reminders, id)
	return nil
}

func (f *fakeReminderStore) DeleteByID(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.reminders, id)
	return nil
}

func (f *fakeReminderStore) WithTx(_ *sql.Tx) store.ReminderStore { return f }

// unsentForTask returns the task's unsent reminder, if any.
func (f *fakeReminderStore) unsentForTask(taskID int64) *domain.Reminder {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.reminders {
		if r.TaskID == taskID && !r.Sent {
			return cloneReminder(r)
		}
	}
	return nil
}

// fakeTagStore is an in-memory store.TagStore.
type fakeTagStore struct {
	mu     sync.Mutex
	nextID int64
	tags   map[int64]*domain.Tag
}

func newFakeTagStore() *fakeTagStore {
	return &fakeTagStore{tags: map[int64]*domain.Tag{}}
}

var _ store.TagStore = (*fakeTagStore)(nil)

func (f *fakeTagStore) Create(_ context.Context, tag *domain.Tag) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.tags {
		if existing.OwnerID == tag.OwnerID && existing.Name == tag.Name {
			return store.ErrTagNameExists
		}
	}

	f.nextID++
	tag.ID = f.nextID
	c := *tag
	f.tags[tag.ID] = &c
	return nil
}

func (f *fakeTagStore) GetByID(_ context.Context, ownerID uuid.UUID, id int64) (*domain.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tag, ok := f.tags[id]
	if !ok || tag.OwnerID != ownerID {
		return nil, store.ErrTagNotFound
	}
	c := *tag
	return &c, nil
}

func (f *fakeTagStore) List(_ context.Context, ownerID uuid.UUID) ([]*domain.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.Tag
	for _, tag := range f.tags {
		if tag.OwnerID == ownerID {
			c := *tag
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeTagStore) Update(_ context.Context, tag *domain.Tag) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.tags[tag.ID]
	if !ok || current.OwnerID != tag.OwnerID {
		return store.ErrTagNotFound
	}

	for id, existing := range f.tags {
		if id != tag.ID && existing.OwnerID == tag.OwnerID && existing.Name == tag.Name {
			return store.ErrTagNameExists
		}
	}

	c := *tag
	f.tags[tag.ID] = &c
	return nil
}

func (f *fakeTagStore) Delete(_ context.Context, ownerID uuid.UUID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tag, ok := f.tags[id]
	if !ok || tag.OwnerID != ownerID {
		return store.ErrTagNotFound
	}
	delete(f.tags, id)
	return nil
}

func (f *fakeTagStore) WithTx(_ *sql.Tx) store.TagStore { return f }
