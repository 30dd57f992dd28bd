package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Tag-specific validation errors. All wrap ErrValidation.
var (
	// ErrTagNameEmpty is returned when a tag's name is empty or whitespace.
	ErrTagNameEmpty = fmt.Errorf("%w: tag name cannot be empty", ErrValidation)

	// ErrTagNameTooLong is returned when a tag's name exceeds MaxTagNameLength.
	ErrTagNameTooLong = fmt.Errorf("%w: tag name cannot exceed 50 characters", ErrValidation)

	// ErrTagOwnerEmpty is returned when a tag's owner ID is nil.
	ErrTagOwnerEmpty = fmt.Errorf("%w: tag owner ID cannot be empty", ErrValidation)

	// ErrInvalidTagColor is returned when a tag color is not a #RRGGBB hex code.
	ErrInvalidTagColor = fmt.Errorf("%w: tag color must be a 6-digit hex code", ErrValidation)
)

// MaxTagNameLength is the maximum length of a tag name.
const MaxTagNameLength = 50

// DefaultTagColor is assigned when a tag is created without a color.
const DefaultTagColor = "#3B82F6"

var tagColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Tag is a user-defined label attachable to any number of the owner's tasks.
// Names are unique per owner (case-preserving) and enforced by the store.
type Tag struct {
	ID      int64     `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`
	Name    string    `json:"name"`
	Color   string    `json:"color"`
}

// NewTag creates a new Tag owned by ownerID. An empty color falls back to
// DefaultTagColor. The ID is assigned by the store.
// Returns an error if validation fails.
func NewTag(ownerID uuid.UUID, name, color string) (*Tag, error) {
	if color == "" {
		color = DefaultTagColor
	}

	tag := &Tag{
		OwnerID: ownerID,
		Name:    strings.TrimSpace(name),
		Color:   color,
	}

	if err := tag.Validate(); err != nil {
		return nil, err
	}

	return tag, nil
}

// Validate checks if the Tag has valid data.
// Returns an error wrapping ErrValidation if any field fails validation.
func (t *Tag) Validate() error {
	if t.OwnerID == uuid.Nil {
		return ErrTagOwnerEmpty
	}

	if strings.TrimSpace(t.Name) == "" {
		return ErrTagNameEmpty
	}

	if utf8.RuneCountInString(t.Name) > MaxTagNameLength {
		return ErrTagNameTooLong
	}

	if !tagColorPattern.MatchString(t.Color) {
		return ErrInvalidTagColor
	}

	return nil
}
