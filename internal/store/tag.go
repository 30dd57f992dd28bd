package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mhutchins/tasknest/internal/domain"
)

// TagStore defines the interface for tag persistence. All operations are
// scoped to an owner ID.
type TagStore interface {
	// Create persists a new tag, assigning its ID.
	// Returns ErrTagNameExists if the owner already has a tag with the name.
	Create(ctx context.Context, tag *domain.Tag) error

	// GetByID retrieves a tag.
	// Returns ErrTagNotFound if absent or owned by another user.
	GetByID(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.Tag, error)

	// List retrieves all of the owner's tags ordered by name.
	List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Tag, error)

	// Update persists name and color changes.
	// Returns ErrTagNotFound if absent or cross-owner, ErrTagNameExists on a
	// duplicate name.
	Update(ctx context.Context, tag *domain.Tag) error

	// Delete removes a tag; its task links are removed by foreign-key cascade.
	// Returns ErrTagNotFound if absent or owned by another user.
	Delete(ctx context.Context, ownerID uuid.UUID, id int64) error

	// WithTx returns a TagStore bound to the given transaction.
	WithTx(tx *sql.Tx) TagStore
}
