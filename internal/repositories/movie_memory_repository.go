package repositories

import (
	"sync"

	"cartelera/internal/models"
)

// MemoryMovieRepository is an in-memory implementation of MovieRepository,
// used by tests and as a stand-in when no database is available.
type MemoryMovieRepository struct {
	movies map[uint]models.Movie
	nextID uint
	mu     sync.RWMutex
}

// NewMemoryMovieRepository creates a new instance of MemoryMovieRepository.
func NewMemoryMovieRepository() *MemoryMovieRepository {
	return &MemoryMovieRepository{
		movies: make(map[uint]models.Movie),
		nextID: 1,
	}
}

// GetAll returns all movies.
func (r *MemoryMovieRepository) GetAll() ([]models.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	movieList := make([]models.Movie, 0, len(r.movies))
	for _, m := range r.movies {
		movieList = append(movieList, m)
	}
	return movieList, nil
}

// GetByID returns a movie by its ID.
func (r *MemoryMovieRepository) GetByID(id uint) (*models.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	movie, ok := r.movies[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	return &movie, nil
}

// GetByCategory returns the movies whose category matches exactly.
func (r *MemoryMovieRepository) GetByCategory(category string) ([]models.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Movie, 0)
	for _, m := range r.movies {
		if m.Category == category {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

// Create adds a new movie, assigning the next free ID when unset.
func (r *MemoryMovieRepository) Create(movie *models.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if movie.ID == 0 {
		movie.ID = r.nextID
	}
	if movie.ID >= r.nextID {
		r.nextID = movie.ID + 1
	}
	r.movies[movie.ID] = *movie
	return nil
}

// Update modifies an existing movie.
func (r *MemoryMovieRepository) Update(movie *models.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.movies[movie.ID]
	if !ok {
		return ErrMovieNotFound
	}
	r.movies[movie.ID] = *movie
	return nil
}

// Delete removes a movie by its ID.
func (r *MemoryMovieRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.movies[id]
	if !ok {
		return ErrMovieNotFound
	}
	delete(r.movies, id)
	return nil
}
