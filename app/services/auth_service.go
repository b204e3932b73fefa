package services

import (
	"log/slog"
	"time"

	"inkwell/app/models"
	"inkwell/app/repositories"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and verifies session tokens for registered users
type AuthService struct {
	users      repositories.UserRepository
	sessions   repositories.SessionRepository
	sessionTTL time.Duration
	hashCost   int
	logger     *slog.Logger
}

// NewAuthService creates a new AuthService. A zero sessionTTL keeps sessions
// until logout.
func NewAuthService(users repositories.UserRepository, sessions repositories.SessionRepository, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		hashCost:   bcrypt.DefaultCost,
		logger:     logger,
	}
}

// SetHashCost overrides the bcrypt cost, for tests
func (s *AuthService) SetHashCost(cost int) {
	s.hashCost = cost
}

// Signup registers a new user. A taken username yields ErrUserExists and
// leaves the store untouched.
func (s *AuthService) Signup(creds models.Credentials) (*models.User, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByUsername(creds.Username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, errors.Wrap(err, "look up user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.hashCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := &models.User{
		Username:     creds.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, errors.Wrap(err, "store user")
	}

	s.logger.Info("user signed up", "username", user.Username)
	return user, nil
}

// Login checks the credentials and issues a new session.
func (s *AuthService) Login(creds models.Credentials) (*models.Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(creds.Username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "look up user")
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session := &models.Session{
		Token:     uuid.NewString(),
		Username:  user.Username,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.Create(session, s.sessionTTL); err != nil {
		return nil, errors.Wrap(err, "store session")
	}

	s.logger.Info("user logged in", "username", user.Username)
	return session, nil
}

// Logout ends the session for token. Unknown tokens are ignored.
func (s *AuthService) Logout(token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(token); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}

// Authenticate resolves a token to its session.
func (s *AuthService) Authenticate(token string) (*models.Session, error) {
	session, err := s.sessions.GetByToken(token)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, errors.Wrap(err, "look up session")
	}
	return session, nil
}

// ListUsers returns every registered user.
func (s *AuthService) ListUsers() ([]*models.User, error) {
	users, err := s.users.List()
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}
