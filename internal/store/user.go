package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mhutchins/tasknest/internal/domain"
)

// UserStore defines the interface for user account persistence. It exists
// for the authentication collaborator; the task core only ever sees the
// resulting owner IDs.
type UserStore interface {
	// Create persists a new user. The HashedPassword field must be set.
	// Returns ErrEmailExists if the email is already registered.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	// Returns ErrUserNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// WithTx returns a UserStore bound to the given transaction.
	WithTx(tx *sql.Tx) UserStore
}
