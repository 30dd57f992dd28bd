// Package auth provides password hashing and JWT issuance/validation for
// the HTTP layer.
package auth

import "errors"

// Authentication sentinel errors. The API layer maps all of them to 401
// without leaking which check failed.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("expired token")
)
