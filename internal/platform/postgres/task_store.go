package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mhutchins/tasknest/internal/domain"
	"github.com/mhutchins/tasknest/internal/platform/logger"
	"github.com/mhutchins/tasknest/internal/store"
)

// taskColumns is the canonical column order used by every task SELECT.
var taskColumns = []string{
	"id", "user_id", "title", "description", "completed",
	"due_date", "reminder_minutes", "priority",
	"is_recurring", "recurrence_pattern", "recurrence_interval", "recurrence_end_date",
	"parent_task_id", "created_at", "updated_at",
}

// priorityRank orders priorities for sorting: urgent first on descending
// sorts, none last.
const priorityRank = `CASE priority
	WHEN 'urgent' THEN 4
	WHEN 'high' THEN 3
	WHEN 'medium' THEN 2
	WHEN 'low' THEN 1
	ELSE 0
END`

// TaskStore implements the store.TaskStore interface using a PostgreSQL
// database as the storage backend.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a new PostgreSQL implementation of the TaskStore
// interface. It accepts a database connection or transaction managed by the
// caller. If logger is nil, the default logger is used.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: tx, logger: s.logger}
}

// Create implements store.TaskStore.Create
// It persists a validated task and assigns its ID from the sequence.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
		task.UpdatedAt = now
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityNone
	}

	query := `
		INSERT INTO tasks (
			user_id, title, description, completed,
			due_date, reminder_minutes, priority,
			is_recurring, recurrence_pattern, recurrence_interval, recurrence_end_date,
			parent_task_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	err := s.db.QueryRowContext(
		ctx,
		query,
		task.OwnerID,
		task.Title,
		nullString(task.Description),
		task.Completed,
		nullTime(task.DueDate),
		nullInt(task.ReminderMinutes),
		string(task.Priority),
		task.IsRecurring,
		nullString(string(task.RecurrencePattern)),
		task.RecurrenceInterval,
		nullTime(task.RecurrenceEndDate),
		nullInt64(task.ParentTaskID),
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)

	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("owner_id", task.OwnerID.String()))
		return err
	}

	log.Debug("task created",
		slog.Int64("task_id", task.ID),
		slog.String("owner_id", task.OwnerID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Cross-owner access is reported as ErrTaskNotFound.
func (s *TaskStore) GetByID(
	ctx context.Context,
	ownerID uuid.UUID,
	id int64,
) (*domain.Task, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM tasks WHERE id = $1 AND user_id = $2",
		columnList(taskColumns),
	)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, err
	}

	if err := s.loadTagIDs(ctx, []*domain.Task{task}); err != nil {
		return nil, err
	}

	return task, nil
}

// List implements store.TaskStore.List
// The filter predicates are conjunctive; the query is built dynamically.
func (s *TaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
	sort store.TaskSort,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	qb := squirrel.Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"user_id": ownerID}).
		PlaceholderFormat(squirrel.Dollar)

	switch filter.Status {
	case store.StatusPending:
		qb = qb.Where(squirrel.Eq{"completed": false})
	case store.StatusCompleted:
		qb = qb.Where(squirrel.Eq{"completed": true})
	case store.StatusOverdue:
		qb = qb.Where(squirrel.Eq{"completed": false}).
			Where(squirrel.NotEq{"due_date": nil}).
			Where(squirrel.Lt{"due_date": time.Now().UTC()})
	}

	if filter.Priority != nil {
		qb = qb.Where(squirrel.Eq{"priority": string(*filter.Priority)})
	}

	if len(filter.TagIDs) > 0 {
		qb = qb.Where(squirrel.Expr(
			"id IN (SELECT task_id FROM task_tags WHERE tag_id IN ("+
				squirrel.Placeholders(len(filter.TagIDs))+"))",
			int64Args(filter.TagIDs)...,
		))
	}

	if filter.DueFrom != nil {
		qb = qb.Where(squirrel.GtOrEq{"due_date": *filter.DueFrom})
	}
	if filter.DueTo != nil {
		qb = qb.Where(squirrel.LtOrEq{"due_date": *filter.DueTo})
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		qb = qb.Where(squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"description": pattern},
		})
	}

	qb = qb.OrderBy(orderClause(sort), "id ASC")

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, err
	}
	defer closeRows(rows, log)

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadTagIDs(ctx, tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update implements store.TaskStore.Update
// It persists all mutable fields and bumps updated_at.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return err
	}

	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET title = $1, description = $2, completed = $3,
			due_date = $4, reminder_minutes = $5, priority = $6,
			is_recurring = $7, recurrence_pattern = $8,
			recurrence_interval = $9, recurrence_end_date = $10,
			updated_at = $11
		WHERE id = $12 AND user_id = $13
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		nullString(task.Description),
		task.Completed,
		nullTime(task.DueDate),
		nullInt(task.ReminderMinutes),
		string(task.Priority),
		task.IsRecurring,
		nullString(string(task.RecurrencePattern)),
		task.RecurrenceInterval,
		nullTime(task.RecurrenceEndDate),
		task.UpdatedAt,
		task.ID,
		task.OwnerID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// Delete implements store.TaskStore.Delete
// Tag links and reminders are removed by ON DELETE CASCADE in the schema.
func (s *TaskStore) Delete(ctx context.Context, ownerID uuid.UUID, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		"DELETE FROM tasks WHERE id = $1 AND user_id = $2",
		id,
		ownerID,
	)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	log.Debug("task deleted", slog.Int64("task_id", id))
	return nil
}

// SetCompleted implements store.TaskStore.SetCompleted
func (s *TaskStore) SetCompleted(
	ctx context.Context,
	ownerID uuid.UUID,
	id int64,
	completed bool,
) (*domain.Task, error) {
	result, err := s.db.ExecContext(
		ctx,
		"UPDATE tasks SET completed = $1, updated_at = $2 WHERE id = $3 AND user_id = $4",
		completed,
		time.Now().UTC(),
		id,
		ownerID,
	)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, store.ErrTaskNotFound
	}

	return s.GetByID(ctx, ownerID, id)
}

// ReplaceTags implements store.TaskStore.ReplaceTags
// The full tag set is replaced, not diffed; tag IDs the owner does not own
// are silently dropped by the ownership predicate on the insert.
func (s *TaskStore) ReplaceTags(
	ctx context.Context,
	ownerID uuid.UUID,
	taskID int64,
	tagIDs []int64,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(
		ctx,
		"DELETE FROM task_tags WHERE task_id = $1",
		taskID,
	); err != nil {
		log.Error("failed to clear task tags",
			slog.String("error", err.Error()),
			slog.Int64("task_id", taskID))
		return err
	}

	if len(tagIDs) == 0 {
		return nil
	}

	query, args, err := squirrel.Expr(
		`INSERT INTO task_tags (task_id, tag_id)
		SELECT ?, id FROM tags WHERE user_id = ? AND id IN (`+
			squirrel.Placeholders(len(tagIDs))+`)
		ON CONFLICT (task_id, tag_id) DO NOTHING`,
		append([]interface{}{taskID, ownerID}, int64Args(tagIDs)...)...,
	).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build tag insert: %w", err)
	}

	query, err = squirrel.Dollar.ReplacePlaceholders(query)
	if err != nil {
		return fmt.Errorf("failed to build tag insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrTaskNotFound
		}
		log.Error("failed to link task tags",
			slog.String("error", err.Error()),
			slog.Int64("task_id", taskID))
		return err
	}

	return nil
}

// Exists implements store.TaskStore.Exists
func (s *TaskStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(
		ctx,
		"SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)",
		id,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Stats implements store.TaskStore.Stats
func (s *TaskStore) Stats(
	ctx context.Context,
	ownerID uuid.UUID,
	now time.Time,
) (*store.TaskStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE completed),
			COUNT(*) FILTER (WHERE NOT completed AND due_date IS NOT NULL AND due_date < $2)
		FROM tasks
		WHERE user_id = $1
	`

	stats := &store.TaskStats{}
	err := s.db.QueryRowContext(ctx, query, ownerID, now).
		Scan(&stats.Total, &stats.Completed, &stats.Overdue)
	if err != nil {
		return nil, err
	}

	stats.Pending = stats.Total - stats.Completed
	return stats, nil
}

// loadTagIDs populates TagIDs for each task with a single query.
func (s *TaskStore) loadTagIDs(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Task, len(tasks))
	ids := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		task.TagIDs = []int64{}
		byID[task.ID] = task
		ids = append(ids, task.ID)
	}

	query, args, err := squirrel.Select("task_id", "tag_id").
		From("task_tags").
		Where(squirrel.Eq{"task_id": ids}).
		OrderBy("tag_id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build tag link query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer closeRows(rows, s.logger)

	for rows.Next() {
		var taskID, tagID int64
		if err := rows.Scan(&taskID, &tagID); err != nil {
			return err
		}
		if task, ok := byID[taskID]; ok {
			task.TagIDs = append(task.TagIDs, tagID)
		}
	}

	return rows.Err()
}

// orderClause maps a TaskSort to an ORDER BY expression. Unknown fields
// fall back to created_at descending, matching the product's default view.
func orderClause(sort store.TaskSort) string {
	direction := "ASC"
	if sort.Order == store.OrderDesc || sort.Field == "" {
		direction = "DESC"
	}

	switch sort.Field {
	case store.SortByDueDate:
		return "due_date " + direction + " NULLS LAST"
	case store.SortByPriority:
		return priorityRank + " " + direction
	case store.SortByTitle:
		return "title " + direction
	case store.SortByCreatedAt:
		return "created_at " + direction
	default:
		return "created_at DESC"
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row in taskColumns order.
func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task               domain.Task
		description        sql.NullString
		dueDate            sql.NullTime
		reminderMinutes    sql.NullInt64
		priority           string
		recurrencePattern  sql.NullString
		recurrenceInterval sql.NullInt64
		recurrenceEndDate  sql.NullTime
		parentTaskID       sql.NullInt64
	)

	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&description,
		&task.Completed,
		&dueDate,
		&reminderMinutes,
		&priority,
		&task.IsRecurring,
		&recurrencePattern,
		&recurrenceInterval,
		&recurrenceEndDate,
		&parentTaskID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	task.Priority = domain.Priority(priority)
	if dueDate.Valid {
		t := dueDate.Time.UTC()
		task.DueDate = &t
	}
	if reminderMinutes.Valid {
		m := int(reminderMinutes.Int64)
		task.ReminderMinutes = &m
	}
	if recurrencePattern.Valid {
		task.RecurrencePattern = domain.RecurrencePattern(recurrencePattern.String)
	}
	if recurrenceInterval.Valid {
		task.RecurrenceInterval = int(recurrenceInterval.Int64)
	}
	if recurrenceEndDate.Valid {
		t := recurrenceEndDate.Time.UTC()
		task.RecurrenceEndDate = &t
	}
	if parentTaskID.Valid {
		id := parentTaskID.Int64
		task.ParentTaskID = &id
	}

	return &task, nil
}
