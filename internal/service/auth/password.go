package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier hashes and checks passwords.
type PasswordVerifier interface {
	HashPassword(password string) (string, error)
	Compare(hashedPassword, password string) error
}

// BcryptVerifier implements PasswordVerifier with bcrypt.
type BcryptVerifier struct {
	cost int
}

// NewBcryptVerifier creates a BcryptVerifier. A cost outside bcrypt's valid
// range falls back to the library default.
func NewBcryptVerifier(cost int) *BcryptVerifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptVerifier{cost: cost}
}

var _ PasswordVerifier = (*BcryptVerifier)(nil)

// HashPassword returns the bcrypt hash of password.
func (v *BcryptVerifier) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Compare checks password against its stored hash. Any mismatch is reported
// as ErrInvalidCredentials.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("comparing password: %w", err)
	}
	return nil
}
