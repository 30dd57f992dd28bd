package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()

	svc, err := NewJWTService("test-secret-key-for-jwt-signing", time.Hour)
	require.NoError(t, err)
	return svc
}

func TestJWTServiceRoundTrip(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestJWTServiceRejectsTamperedToken(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.GenerateToken(uuid.New())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTServiceRejectsWrongSecret(t *testing.T) {
	svc := newTestJWTService(t)
	other, err := NewJWTService("a-completely-different-secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateToken(uuid.New())
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTServiceRejectsExpiredToken(t *testing.T) {
	svc := newTestJWTService(t)

	issued := time.Now().UTC().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateToken(uuid.New())
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().UTC() }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestNewJWTServiceRejectsBadConfig(t *testing.T) {
	_, err := NewJWTService("", time.Hour)
	assert.Error(t, err)

	_, err = NewJWTService("secret", 0)
	assert.Error(t, err)
}
