package services

import (
	"encoding/json"
	"log"
	"time"

	"cartelera/internal/models"
	"cartelera/internal/repositories"
	"cartelera/pkg/rabbitmq"

	"github.com/google/uuid"
)

// MovieService handles business logic related to the movie catalog.
type MovieService struct {
	repo     repositories.MovieRepository
	mqClient *rabbitmq.Client // optional, nil when no broker is configured
}

// NewMovieService creates a new MovieService.
func NewMovieService(repo repositories.MovieRepository, mqClient *rabbitmq.Client) *MovieService {
	return &MovieService{
		repo:     repo,
		mqClient: mqClient,
	}
}

// catalogEvent is the payload published to the catalog event queue.
type catalogEvent struct {
	EventID  string    `json:"event_id"`
	Kind     string    `json:"kind"`
	MovieID  uint      `json:"movie_id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	At       time.Time `json:"at"`
}

// GetAllMovies retrieves all movies.
func (s *MovieService) GetAllMovies() ([]models.Movie, error) {
	return s.repo.GetAll()
}

// GetMovieByID retrieves a single movie by its ID.
func (s *MovieService) GetMovieByID(id uint) (*models.Movie, error) {
	return s.repo.GetByID(id)
}

// GetMoviesByCategory retrieves all movies with the given category.
func (s *MovieService) GetMoviesByCategory(category string) ([]models.Movie, error) {
	return s.repo.GetByCategory(category)
}

// CreateMovie persists a new movie and publishes a movie.created event.
// The store assigns the ID; any value the caller set is ignored.
func (s *MovieService) CreateMovie(movie *models.Movie) error {
	movie.ID = 0
	if err := s.repo.Create(movie); err != nil {
		return err
	}
	s.publishEvent("movie.created", movie)
	return nil
}

// UpdateMovie replaces the fields of an existing movie.
func (s *MovieService) UpdateMovie(movie *models.Movie) error {
	return s.repo.Update(movie)
}

// DeleteMovie deletes a movie by its ID and publishes a movie.removed event.
func (s *MovieService) DeleteMovie(id uint) error {
	movie, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.publishEvent("movie.removed", movie)
	return nil
}

// publishEvent sends a catalog change event when a broker is configured.
// Publishing is best-effort: a broker failure never fails the request.
func (s *MovieService) publishEvent(kind string, movie *models.Movie) {
	if s.mqClient == nil {
		return
	}

	event := catalogEvent{
		EventID:  uuid.New().String(),
		Kind:     kind,
		MovieID:  movie.ID,
		Title:    movie.Title,
		Category: movie.Category,
		At:       time.Now(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", kind, err)
		return
	}
	if err := s.mqClient.Publish(kind, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for movie %d: %v", kind, movie.ID, err)
	}
}
