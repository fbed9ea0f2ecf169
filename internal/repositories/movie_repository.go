package repositories

import (
	"errors"

	"cartelera/internal/models"
)

// ErrMovieNotFound is returned by every MovieRepository implementation when
// the requested id has no row, so callers can map it to a 404.
var ErrMovieNotFound = errors.New("movie not found")

// MovieRepository defines the interface for movie data access.
type MovieRepository interface {
	GetAll() ([]models.Movie, error)
	GetByID(id uint) (*models.Movie, error)
	GetByCategory(category string) ([]models.Movie, error)
	Create(movie *models.Movie) error
	Update(movie *models.Movie) error
	Delete(id uint) error
}
