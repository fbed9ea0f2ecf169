package repositories

import (
	"errors"

	"cartelera/internal/models"
)

// ErrUserNotFound is returned when no account exists for the given lookup.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
}
