package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mhutchins/tasknest/internal/domain"
	"github.com/mhutchins/tasknest/internal/service/auth"
	"github.com/mhutchins/tasknest/internal/store"
)

// fakeUserStore is an in-memory store.UserStore.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uuid.UUID]*domain.User{}}
}

var _ store.UserStore = (*fakeUserStore)(nil)

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}

	c := *user
	f.users[user.ID] = &c
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	c := *user
	return &c, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			c := *user
			return &c, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) WithTx(_ *sql.Tx) store.UserStore { return f }

func newAuthServiceFixture(t *testing.T) (*AuthService, *fakeUserStore) {
	t.Helper()

	jwtSvc, err := auth.NewJWTService("auth-service-test-secret", time.Hour)
	require.NoError(t, err)

	users := newFakeUserStore()
	svc := NewAuthService(users, auth.NewBcryptVerifier(bcrypt.MinCost), jwtSvc, nil)
	return svc, users
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthServiceFixture(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "ada@example.com", "Ada", "hunter2hunter2")
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.Empty(t, user.Password, "plaintext is dropped after hashing")
	assert.NotEmpty(t, user.HashedPassword)

	loggedIn, loginToken, err := svc.Login(ctx, "ada@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, loginToken)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthServiceFixture(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "ada@example.com", "Ada", "hunter2hunter2")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "ada@example.com", "Other Ada", "hunter2hunter2")
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc, _ := newAuthServiceFixture(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "not-an-email", "Ada", "hunter2hunter2")
	assert.ErrorIs(t, err, domain.ErrUserEmailInvalid)

	_, _, err = svc.Register(ctx, "ada@example.com", "Ada", "short")
	assert.ErrorIs(t, err, domain.ErrUserPasswordTooShort)

	_, _, err = svc.Register(ctx, "ada@example.com", "Ada", "")
	assert.ErrorIs(t, err, domain.ErrUserPasswordTooShort)
}

func TestAuthServiceLoginBadCredentials(t *testing.T) {
	svc, _ := newAuthServiceFixture(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "ada@example.com", "Ada", "hunter2hunter2")
	require.NoError(t, err)

	// Wrong password and unknown email are indistinguishable.
	_, _, err = svc.Login(ctx, "ada@example.com", "wrong password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
