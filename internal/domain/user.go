package domain

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// User-specific validation errors. All wrap ErrValidation.
var (
	// ErrUserEmailEmpty is returned when a user's email is empty.
	ErrUserEmailEmpty = fmt.Errorf("%w: email cannot be empty", ErrValidation)

	// ErrUserEmailInvalid is returned when a user's email is malformed.
	ErrUserEmailInvalid = fmt.Errorf("%w: invalid email format", ErrValidation)

	// ErrUserPasswordTooShort is returned when a plaintext password is shorter
	// than MinPasswordLength.
	ErrUserPasswordTooShort = fmt.Errorf(
		"%w: password must be at least 8 characters long",
		ErrValidation,
	)

	// ErrUserPasswordTooLong is returned when a plaintext password exceeds
	// MaxPasswordLength (the bcrypt input limit).
	ErrUserPasswordTooLong = fmt.Errorf(
		"%w: password must be at most 72 characters long",
		ErrValidation,
	)
)

// Password length bounds. The upper bound is bcrypt's input limit.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// User represents a registered account. It exists only so the API layer can
// authenticate callers and hand the core an owner ID; no core component
// depends on it.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Password       string    `json:"-"` // Plaintext, held only during registration.
	HashedPassword string    `json:"-"` // Never exposed in JSON.
	CreatedAt      time.Time `json:"created_at"`
}

// NewUser creates a new User with the given email, name and plaintext
// password. The caller is responsible for hashing the password before the
// user is stored.
func NewUser(email, name, password string) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error wrapping ErrValidation if any field fails validation.
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrUserEmailEmpty
	}

	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrUserEmailInvalid
	}

	if u.Password != "" {
		if len(u.Password) < MinPasswordLength {
			return ErrUserPasswordTooShort
		}
		if len(u.Password) > MaxPasswordLength {
			return ErrUserPasswordTooLong
		}
	}

	return nil
}
