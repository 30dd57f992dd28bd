package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mhutchins/tasknest/internal/domain"
	"github.com/mhutchins/tasknest/internal/service/auth"
	"github.com/mhutchins/tasknest/internal/store"
)

// AuthService handles registration and login. Successful calls return the
// user together with a signed bearer token for the API layer to hand back.
type AuthService struct {
	users     store.UserStore
	passwords auth.PasswordVerifier
	jwt       *auth.JWTService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService. If logger is nil, the default
// logger is used.
func NewAuthService(
	users store.UserStore,
	passwords auth.PasswordVerifier,
	jwt *auth.JWTService,
	log *slog.Logger,
) *AuthService {
	if users == nil {
		panic("user store cannot be nil")
	}
	if passwords == nil {
		panic("password verifier cannot be nil")
	}
	if jwt == nil {
		panic("jwt service cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &AuthService{
		users:     users,
		passwords: passwords,
		jwt:       jwt,
		logger:    log.With(slog.String("component", "auth_service")),
	}
}

// Register creates an account and returns it with a fresh token.
// A duplicate email surfaces as store.ErrEmailExists.
func (s *AuthService) Register(
	ctx context.Context,
	email, name, password string,
) (*domain.User, string, error) {
	user, err := domain.NewUser(email, name, password)
	if err != nil {
		return nil, "", opErr("register", err)
	}
	if user.Password == "" {
		return nil, "", opErr("register", domain.ErrUserPasswordTooShort)
	}

	hash, err := s.passwords.HashPassword(user.Password)
	if err != nil {
		return nil, "", opErr("register", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", opErr("register", err)
	}

	token, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		return nil, "", opErr("register", err)
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh token. An
// unknown email and a wrong password both surface as
// auth.ErrInvalidCredentials so callers cannot probe for accounts.
func (s *AuthService) Login(
	ctx context.Context,
	email, password string,
) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, "", opErr("login", auth.ErrInvalidCredentials)
		}
		return nil, "", opErr("login", err)
	}

	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		return nil, "", opErr("login", err)
	}

	token, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		return nil, "", opErr("login", err)
	}

	return user, token, nil
}
