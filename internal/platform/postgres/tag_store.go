package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mhutchins/tasknest/internal/domain"
	"github.com/mhutchins/tasknest/internal/platform/logger"
	"github.com/mhutchins/tasknest/internal/store"
)

// TagStore implements the store.TagStore interface using a PostgreSQL
// database as the storage backend.
type TagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTagStore creates a new PostgreSQL implementation of the TagStore
// interface. If logger is nil, the default logger is used.
func NewTagStore(db store.DBTX, logger *slog.Logger) *TagStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TagStore{
		db:     db,
		logger: logger.With(slog.String("component", "tag_store")),
	}
}

// Ensure TagStore implements store.TagStore interface
var _ store.TagStore = (*TagStore)(nil)

// WithTx implements store.TagStore.WithTx
func (s *TagStore) WithTx(tx *sql.Tx) store.TagStore {
	return &TagStore{db: tx, logger: s.logger}
}

// Create implements store.TagStore.Create
// The (user_id, name) unique constraint surfaces as ErrTagNameExists.
func (s *TagStore) Create(ctx context.Context, tag *domain.Tag) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := tag.Validate(); err != nil {
		log.Warn("tag validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO tags (user_id, name, color)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query, tag.OwnerID, tag.Name, tag.Color).Scan(&tag.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrTagNameExists
		}
		log.Error("failed to create tag",
			slog.String("error", err.Error()),
			slog.String("owner_id", tag.OwnerID.String()))
		return err
	}

	log.Debug("tag created",
		slog.Int64("tag_id", tag.ID),
		slog.String("name", tag.Name))
	return nil
}

// GetByID implements store.TagStore.GetByID
func (s *TagStore) GetByID(
	ctx context.Context,
	ownerID uuid.UUID,
	id int64,
) (*domain.Tag, error) {
	var tag domain.Tag
	err := s.db.QueryRowContext(
		ctx,
		"SELECT id, user_id, name, color FROM tags WHERE id = $1 AND user_id = $2",
		id,
		ownerID,
	).Scan(&tag.ID, &tag.OwnerID, &tag.Name, &tag.Color)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTagNotFound
		}
		return nil, err
	}

	return &tag, nil
}

// List implements store.TagStore.List
func (s *TagStore) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Tag, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(
		ctx,
		"SELECT id, user_id, name, color FROM tags WHERE user_id = $1 ORDER BY name ASC",
		ownerID,
	)
	if err != nil {
		log.Error("failed to list tags",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, err
	}
	defer closeRows(rows, log)

	tags := []*domain.Tag{}
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.OwnerID, &tag.Name, &tag.Color); err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}

	return tags, rows.Err()
}

// Update implements store.TagStore.Update
func (s *TagStore) Update(ctx context.Context, tag *domain.Tag) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := tag.Validate(); err != nil {
		log.Warn("tag validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("tag_id", tag.ID))
		return err
	}

	result, err := s.db.ExecContext(
		ctx,
		"UPDATE tags SET name = $1, color = $2 WHERE id = $3 AND user_id = $4",
		tag.Name,
		tag.Color,
		tag.ID,
		tag.OwnerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrTagNameExists
		}
		log.Error("failed to update tag",
			slog.String("error", err.Error()),
			slog.Int64("tag_id", tag.ID))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrTagNotFound
	}

	return nil
}

// Delete implements store.TagStore.Delete
// Task links are removed by ON DELETE CASCADE in the schema.
func (s *TagStore) Delete(ctx context.Context, ownerID uuid.UUID, id int64) error {
	result, err := s.db.ExecContext(
		ctx,
		"DELETE FROM tags WHERE id = $1 AND user_id = $2",
		id,
		ownerID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrTagNotFound
	}

	return nil
}
