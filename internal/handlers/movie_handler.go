package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"cartelera/internal/models"
	"cartelera/internal/repositories"
	"cartelera/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// MovieHandler handles HTTP requests for the movie catalog.
type MovieHandler struct {
	service  *services.MovieService
	validate *validator.Validate
}

// NewMovieHandler creates a new MovieHandler.
func NewMovieHandler(service *services.MovieService) *MovieHandler {
	return &MovieHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the movie routes with the Fiber app. The guards
// are applied to the full listing only; the remaining routes are public.
// The app must run with strict routing so that "/movies" and "/movies/"
// stay distinct paths.
func (h *MovieHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	listChain := append(append([]fiber.Handler{}, guards...), h.HandleGetMovies)
	router.Get("/movies", listChain...)
	router.Get("/movies/", h.HandleGetMoviesByCategory)
	router.Get("/movies/:id", h.HandleGetMovieByID)
	router.Post("/movies", h.HandleCreateMovie)
	router.Put("/movies/:id", h.HandleUpdateMovie)
	router.Delete("/movies/:id", h.HandleDeleteMovie)
}

// MovieRequest represents the request body for creating or updating a movie.
type MovieRequest struct {
	Title    string  `json:"title" validate:"required,min=5,max=45"`
	Overview string  `json:"overview" validate:"required,min=15,max=250"`
	Year     int     `json:"year" validate:"required,lte=2025"`
	Rating   float64 `json:"rating" validate:"gte=1,lte=10"`
	Category string  `json:"category" validate:"min=5,max=15"`
}

// parseMovieRequest decodes and validates a movie body, applying the
// default rating and category when the client omits them.
func (h *MovieHandler) parseMovieRequest(c *fiber.Ctx) (*MovieRequest, error) {
	req := MovieRequest{
		Rating:   models.DefaultRating,
		Category: models.DefaultCategory,
	}
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing movie request body: %v", err)
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return nil, c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	return &req, nil
}

// HandleGetMovies retrieves the full catalog.
func (h *MovieHandler) HandleGetMovies(c *fiber.Ctx) error {
	movies, err := h.service.GetAllMovies()
	if err != nil {
		log.Printf("Error getting all movies: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve movies",
			"error":   err.Error(),
		})
	}
	return c.JSON(movies)
}

// HandleGetMovieByID retrieves a single movie by its ID. The ID must lie
// in [1, 2000].
func (h *MovieHandler) HandleGetMovieByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 || id > 2000 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{"id": "Path parameter 'id' must be an integer between 1 and 2000"},
		})
	}

	movie, err := h.service.GetMovieByID(uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrMovieNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "No encontrado",
			})
		}
		log.Printf("Error getting movie by ID %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve movie",
			"error":   err.Error(),
		})
	}
	return c.JSON(movie)
}

// HandleGetMoviesByCategory retrieves the movies whose category equals the
// "category" query parameter, an exact case-sensitive match.
func (h *MovieHandler) HandleGetMoviesByCategory(c *fiber.Ctx) error {
	category := c.Query("category")
	if err := h.validate.Var(category, "required,min=5,max=15"); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{"category": "Query parameter 'category' must be between 5 and 15 characters"},
		})
	}

	movies, err := h.service.GetMoviesByCategory(category)
	if err != nil {
		log.Printf("Error getting movies by category %q: %v", category, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve movies",
			"error":   err.Error(),
		})
	}
	return c.JSON(movies)
}

// HandleCreateMovie persists a new movie. The store assigns the ID.
func (h *MovieHandler) HandleCreateMovie(c *fiber.Ctx) error {
	req, err := h.parseMovieRequest(c)
	if req == nil {
		return err
	}

	movie := models.Movie{
		Title:    req.Title,
		Overview: req.Overview,
		Year:     req.Year,
		Rating:   req.Rating,
		Category: req.Category,
	}
	if err := h.service.CreateMovie(&movie); err != nil {
		log.Printf("Error creating movie: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create movie",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Se ha registrado la película",
	})
}

// HandleUpdateMovie replaces the fields of an existing movie.
func (h *MovieHandler) HandleUpdateMovie(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{"id": "Path parameter 'id' must be a positive integer"},
		})
	}

	req, err := h.parseMovieRequest(c)
	if req == nil {
		return err
	}

	movie := models.Movie{
		ID:       uint(id),
		Title:    req.Title,
		Overview: req.Overview,
		Year:     req.Year,
		Rating:   req.Rating,
		Category: req.Category,
	}
	if err := h.service.UpdateMovie(&movie); err != nil {
		if errors.Is(err, repositories.ErrMovieNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "No encontrado",
			})
		}
		log.Printf("Error updating movie %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update movie",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "The movie has been modified.",
	})
}

// HandleDeleteMovie removes a movie by its ID.
func (h *MovieHandler) HandleDeleteMovie(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{"id": "Path parameter 'id' must be a positive integer"},
		})
	}

	if err := h.service.DeleteMovie(uint(id)); err != nil {
		if errors.Is(err, repositories.ErrMovieNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "No encontrado",
			})
		}
		log.Printf("Error deleting movie %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete movie",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "The movie has been removed.",
	})
}
