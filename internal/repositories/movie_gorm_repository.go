package repositories

import (
	"errors"
	"fmt"

	"cartelera/internal/models"

	"gorm.io/gorm"
)

// GORMMovieRepository is a GORM implementation of MovieRepository.
type GORMMovieRepository struct {
	db *gorm.DB
}

// NewGORMMovieRepository creates a new instance of GORMMovieRepository.
func NewGORMMovieRepository(db *gorm.DB) *GORMMovieRepository {
	return &GORMMovieRepository{
		db: db,
	}
}

// GetAll retrieves every movie from the database. No ordering is guaranteed.
func (r *GORMMovieRepository) GetAll() ([]models.Movie, error) {
	var movies []models.Movie
	if err := r.db.Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("failed to get all movies: %w", err)
	}
	return movies, nil
}

// GetByID retrieves a single movie by its ID from the database.
func (r *GORMMovieRepository) GetByID(id uint) (*models.Movie, error) {
	var movie models.Movie
	if err := r.db.First(&movie, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to get movie by ID %d: %w", id, err)
	}
	return &movie, nil
}

// GetByCategory retrieves the movies whose category equals the given value.
// The match is exact and case-sensitive.
func (r *GORMMovieRepository) GetByCategory(category string) ([]models.Movie, error) {
	var movies []models.Movie
	if err := r.db.Where("category = ?", category).Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("failed to get movies by category %q: %w", category, err)
	}
	return movies, nil
}

// Create persists a new movie. The store assigns the ID.
func (r *GORMMovieRepository) Create(movie *models.Movie) error {
	if err := r.db.Create(movie).Error; err != nil {
		return fmt.Errorf("failed to create movie: %w", err)
	}
	return nil
}

// Update replaces all fields of an existing movie. The row must already
// exist: GORM's Save would otherwise insert it under the caller's id.
func (r *GORMMovieRepository) Update(movie *models.Movie) error {
	var existing models.Movie
	if err := r.db.First(&existing, "id = ?", movie.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMovieNotFound
		}
		return fmt.Errorf("failed to look up movie %d for update: %w", movie.ID, err)
	}
	if err := r.db.Save(movie).Error; err != nil { // Save updates all fields, including zero values
		return fmt.Errorf("failed to update movie: %w", err)
	}
	return nil
}

// Delete removes a movie by its ID.
func (r *GORMMovieRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Movie{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete movie: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMovieNotFound
	}
	return nil
}
