package repositories

import (
	"time"

	"inkwell/app/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	List() ([]*models.User, error)
}

// SessionRepository defines the interface for session data access.
// A zero ttl stores the session until it is deleted.
type SessionRepository interface {
	Create(session *models.Session, ttl time.Duration) error
	GetByToken(token string) (*models.Session, error)
	Delete(token string) error
}
