package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mhutchins/tasknest/internal/domain"
	"github.com/mhutchins/tasknest/internal/store"
)

// TagService manages a user's tag vocabulary. Names are unique per user;
// the store surfaces collisions as store.ErrTagNameExists.
type TagService struct {
	tags   store.TagStore
	logger *slog.Logger
}

// NewTagService creates a TagService. If logger is nil, the default logger
// is used.
func NewTagService(tags store.TagStore, log *slog.Logger) *TagService {
	if tags == nil {
		panic("tag store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &TagService{
		tags:   tags,
		logger: log.With(slog.String("component", "tag_service")),
	}
}

// Create adds a tag. An empty color falls back to the default.
func (s *TagService) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	name, color string,
) (*domain.Tag, error) {
	tag, err := domain.NewTag(ownerID, name, color)
	if err != nil {
		return nil, opErr("create tag", err)
	}

	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, opErr("create tag", err)
	}
	return tag, nil
}

// Get retrieves one tag.
func (s *TagService) Get(ctx context.Context, ownerID uuid.UUID, id int64) (*domain.Tag, error) {
	tag, err := s.tags.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, opErr("get tag", err)
	}
	return tag, nil
}

// List retrieves the owner's tags, sorted by name.
func (s *TagService) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Tag, error) {
	tags, err := s.tags.List(ctx, ownerID)
	if err != nil {
		return nil, opErr("list tags", err)
	}
	return tags, nil
}

// Update renames or recolors a tag. Empty arguments leave the field alone.
func (s *TagService) Update(
	ctx context.Context,
	ownerID uuid.UUID,
	id int64,
	name, color string,
) (*domain.Tag, error) {
	tag, err := s.tags.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, opErr("update tag", err)
	}

	if name != "" {
		tag.Name = strings.TrimSpace(name)
	}
	if color != "" {
		tag.Color = color
	}

	if err := tag.Validate(); err != nil {
		return nil, opErr("update tag", err)
	}
	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, opErr("update tag", err)
	}
	return tag, nil
}

// Delete removes a tag; its task links go with it via schema cascade.
func (s *TagService) Delete(ctx context.Context, ownerID uuid.UUID, id int64) error {
	return opErr("delete tag", s.tags.Delete(ctx, ownerID, id))
}
