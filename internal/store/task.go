package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mhutchins/tasknest/internal/domain"
)

// TaskStatus filters a task listing by completion state.
type TaskStatus string

// Task status filter values. StatusOverdue matches incomplete tasks whose
// due date is set and in the past.
const (
	StatusAll       TaskStatus = "all"
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
	StatusOverdue   TaskStatus = "overdue"
)

// IsValid reports whether s is a known status filter.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusAll, StatusPending, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

// SortField selects the column a task listing is ordered by.
type SortField string

// Supported sort fields. Ties are always broken by id ascending so listings
// are deterministic.
const (
	SortByCreatedAt SortField = "created_at"
	SortByDueDate   SortField = "due_date"
	SortByPriority  SortField = "priority"
	SortByTitle     SortField = "title"
)

// IsValid reports whether f is a supported sort field.
func (f SortField) IsValid() bool {
	switch f {
	case SortByCreatedAt, SortByDueDate, SortByPriority, SortByTitle:
		return true
	}
	return false
}

// SortOrder is the direction of a task listing sort.
type SortOrder string

// Sort directions.
const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// TaskFilter narrows a task listing. All predicates are conjunctive; the tag
// filter matches tasks carrying any of the given tags; Search matches title
// or description case-insensitively as a substring.
type TaskFilter struct {
	Status   TaskStatus
	Priority *domain.Priority
	TagIDs   []int64
	DueFrom  *time.Time
	DueTo    *time.Time
	Search   string
}

// TaskSort orders a task listing.
type TaskSort struct {
	Field SortField
	Order SortOrder
}

// TaskStats summarizes a user's tasks for the dashboard.
type TaskStats struct {
	Total     int `json:"total_tasks"`
	Pending   int `json:"pending_tasks"`
	Completed int `json:"completed_tasks"`
	Overdue   int `json:"overdue_tasks"`
}

// TaskStore defines the interface for task persistence. All reads and writes
// are scoped to an owner ID; an ID owned by another user behaves exactly like
// a missing one (ErrTaskNotFound).
type TaskStore interface {
	// Create persists a new task, assigning its ID and timestamps. The task
	// must already pass domain validation.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task with its tag IDs populated.
	// Returns ErrTaskNotFound if absent or owned by another user.
	GetByID(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.Task, error)

	// List retrieves tasks matching the filter in the given sort order, tag
	// IDs populated. An unset sort defaults to created_at descending.
	List(
		ctx context.Context,
		ownerID uuid.UUID,
		filter TaskFilter,
		sort TaskSort,
	) ([]*domain.Task, error)

	// Update persists the task's mutable fields and bumps updated_at.
	// Returns ErrTaskNotFound if the row is absent or owned by another user.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task. Tag links and reminders are removed in the same
	// statement's transaction via foreign-key cascade.
	// Returns ErrTaskNotFound if absent or owned by another user.
	Delete(ctx context.Context, ownerID uuid.UUID, id int64) error

	// SetCompleted sets the completion flag, bumps updated_at, and returns
	// the updated task. Returns ErrTaskNotFound if absent or cross-owner.
	SetCompleted(
		ctx context.Context,
		ownerID uuid.UUID,
		id int64,
		completed bool,
	) (*domain.Task, error)

	// ReplaceTags removes all tag links of the task and links the given tags
	// instead. Tag IDs not owned by ownerID are silently dropped.
	// Run within a transaction when combined with other writes.
	ReplaceTags(ctx context.Context, ownerID uuid.UUID, taskID int64, tagIDs []int64) error

	// Exists reports whether the task row is present, regardless of owner.
	// Used by the sweeper to detect orphaned reminders.
	Exists(ctx context.Context, id int64) (bool, error)

	// Stats returns completion counts for the owner's tasks. Overdue counts
	// incomplete tasks with a due date before now.
	Stats(ctx context.Context, ownerID uuid.UUID, now time.Time) (*TaskStats, error)

	// WithTx returns a TaskStore bound to the given transaction.
	WithTx(tx *sql.Tx) TaskStore
}
