package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"cartelera/internal/handlers"
	"cartelera/internal/middleware"
	"cartelera/internal/models"
	"cartelera/internal/repositories"
	"cartelera/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testAdminEmail    = "admin@admin.com"
	testAdminPassword = "admin12345"
)

// setupApp builds the full Fiber app over an in-memory SQLite database.
// Each test passes its own database name so state never leaks between tests.
func setupApp(dbName string) (*fiber.App, *services.AuthService, error) {
	// Configure Viper for testing
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	// Auto-migrate models
	if err := db.AutoMigrate(&models.Movie{}, &models.User{}); err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	// Initialize Repositories
	movieRepo := repositories.NewGORMMovieRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	// Initialize Services (nil RabbitMQ client: events are skipped)
	movieService := services.NewMovieService(movieRepo, nil)
	authService := services.NewAuthService(userRepo, jwtSecret, time.Hour)

	// Seed the admin account
	admin := models.User{Email: testAdminEmail, Password: testAdminPassword}
	if err := authService.RegisterUser(&admin); err != nil {
		return nil, nil, fmt.Errorf("failed to seed admin: %w", err)
	}

	// Initialize Handlers
	movieHandler := handlers.NewMovieHandler(movieService)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New(fiber.Config{StrictRouting: true})

	app.Get("/", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString("<h1>Hola desde la cartelera!</h1>")
	})

	authHandler.RegisterRoutes(app)
	movieHandler.RegisterRoutes(app,
		middleware.AuthRequired(authService),
		middleware.RequireIdentity(func(email string) bool { return email == testAdminEmail }),
	)

	seedMoviesForTest(movieRepo)

	return app, authService, nil
}

// seedMoviesForTest populates the movie repository for tests.
func seedMoviesForTest(repo repositories.MovieRepository) {
	movies := []models.Movie{
		{Title: "Avatar", Overview: "En un exuberante planeta llamado Pandora viven los Na'vi...", Year: 2009, Rating: 7.8, Category: "Accion"},
		{Title: "Lalaland", Overview: "Mia y Sebastian persiguen sus sueños en Los Angeles...", Year: 2016, Rating: 10, Category: "Romantico"},
	}
	for i := range movies {
		if err := repo.Create(&movies[i]); err != nil {
			log.Printf("Failed to seed movie %s: %v", movies[i].Title, err)
		}
	}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func doJSON(t *testing.T, app *fiber.App, method, target, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	resp.Body.Close()
}

func loginAs(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp map[string]string
	decodeBody(t, resp, &loginResp)
	assert.NotEmpty(t, loginResp["token"])
	return loginResp["token"]
}

func TestHomeGreeting(t *testing.T) {
	app, _, err := setupApp("home")
	assert.NoError(t, err)

	resp := doJSON(t, app, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "<h1>")
	resp.Body.Close()
}

func TestLogin(t *testing.T) {
	app, _, err := setupApp("login")
	assert.NoError(t, err)

	// Correct admin credentials yield a non-empty token
	token := loginAs(t, app, testAdminEmail, testAdminPassword)
	assert.NotEmpty(t, token)

	// Wrong password is rejected
	resp := doJSON(t, app, http.MethodPost, "/login", "", map[string]string{
		"email":    testAdminEmail,
		"password": "wrongpass1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Credentials outside the 5-15 character bounds fail validation
	resp = doJSON(t, app, http.MethodPost, "/login", "", map[string]string{
		"email":    "a@b",
		"password": "x",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var valResp map[string]interface{}
	decodeBody(t, resp, &valResp)
	assert.Equal(t, "Validation failed", valResp["message"])
}

func TestGetMoviesRequiresAdminToken(t *testing.T) {
	app, authService, err := setupApp("guard")
	assert.NoError(t, err)

	// Missing token
	resp := doJSON(t, app, http.MethodGet, "/movies", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Malformed Authorization header
	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	req.Header.Set("Authorization", "Token abcdef")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Tampered token
	resp = doJSON(t, app, http.MethodGet, "/movies", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Valid token for a non-admin identity is forbidden
	other := models.User{Email: "otro@user.com", Password: "otro12345"}
	assert.NoError(t, authService.RegisterUser(&other))
	otherToken := loginAs(t, app, "otro@user.com", "otro12345")
	resp = doJSON(t, app, http.MethodGet, "/movies", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	var forbiddenResp map[string]string
	decodeBody(t, resp, &forbiddenResp)
	assert.Equal(t, "The credentials are invalid", forbiddenResp["message"])

	// Admin token is admitted and sees the seeded catalog
	adminToken := loginAs(t, app, testAdminEmail, testAdminPassword)
	resp = doJSON(t, app, http.MethodGet, "/movies", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var movies []models.Movie
	decodeBody(t, resp, &movies)
	assert.Len(t, movies, 2)
}

func TestMovieCreateThenGetByID(t *testing.T) {
	app, _, err := setupApp("crud")
	assert.NoError(t, err)

	// Create Interstellar
	newMovie := map[string]interface{}{
		"title":    "Interstellar",
		"overview": "A team explores space beyond our galaxy",
		"year":     2014,
		"rating":   8.6,
		"category": "SciFi",
	}
	resp := doJSON(t, app, http.MethodPost, "/movies", "", newMovie)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var createResp map[string]string
	decodeBody(t, resp, &createResp)
	assert.Equal(t, "Se ha registrado la película", createResp["message"])

	// The store assigned the next free id (two movies are seeded)
	resp = doJSON(t, app, http.MethodGet, "/movies/?category=SciFi", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var matched []models.Movie
	decodeBody(t, resp, &matched)
	assert.Len(t, matched, 1)
	created := matched[0]
	assert.Equal(t, uint(3), created.ID)

	// Get by id returns the same fields with the assigned id
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/movies/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Movie
	decodeBody(t, resp, &fetched)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Interstellar", fetched.Title)
	assert.Equal(t, "A team explores space beyond our galaxy", fetched.Overview)
	assert.Equal(t, 2014, fetched.Year)
	assert.Equal(t, 8.6, fetched.Rating)
	assert.Equal(t, "SciFi", fetched.Category)

	// Update it in the store
	updated := map[string]interface{}{
		"title":    "Interstellar IMAX",
		"overview": "A team explores space beyond our galaxy, remastered",
		"year":     2014,
		"rating":   9.0,
		"category": "SciFi",
	}
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/movies/%d", created.ID), "", updated)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updateResp map[string]string
	decodeBody(t, resp, &updateResp)
	assert.Equal(t, "The movie has been modified.", updateResp["message"])

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/movies/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &fetched)
	assert.Equal(t, "Interstellar IMAX", fetched.Title)
	assert.Equal(t, 9.0, fetched.Rating)

	// Delete it and verify it is gone
	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/movies/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var deleteResp map[string]string
	decodeBody(t, resp, &deleteResp)
	assert.Equal(t, "The movie has been removed.", deleteResp["message"])

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/movies/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var notFoundResp map[string]string
	decodeBody(t, resp, &notFoundResp)
	assert.Equal(t, "No encontrado", notFoundResp["message"])
}

func TestGetMovieByIDValidation(t *testing.T) {
	app, _, err := setupApp("getbyid")
	assert.NoError(t, err)

	// The id must lie in [1, 2000]
	for _, target := range []string{"/movies/0", "/movies/2001", "/movies/abc"} {
		resp := doJSON(t, app, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "target %s", target)
		resp.Body.Close()
	}

	// An id inside the range but absent from the store is a 404
	resp := doJSON(t, app, http.MethodGet, "/movies/999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var notFoundResp map[string]string
	decodeBody(t, resp, &notFoundResp)
	assert.Equal(t, "No encontrado", notFoundResp["message"])
}

func TestGetMoviesByCategory(t *testing.T) {
	app, _, err := setupApp("category")
	assert.NoError(t, err)

	// Exact match returns only the matching subset
	resp := doJSON(t, app, http.MethodGet, "/movies/?category=Romantico", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var movies []models.Movie
	decodeBody(t, resp, &movies)
	assert.Len(t, movies, 1)
	assert.Equal(t, "Lalaland", movies[0].Title)

	// The match is case-sensitive
	resp = doJSON(t, app, http.MethodGet, "/movies/?category=romantico", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &movies)
	assert.Empty(t, movies)

	// The category must be 5-15 characters
	resp = doJSON(t, app, http.MethodGet, "/movies/?category=ab", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/movies/", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateMovieValidation(t *testing.T) {
	app, _, err := setupApp("validation")
	assert.NoError(t, err)

	base := map[string]interface{}{
		"title":    "Interstellar",
		"overview": "A team explores space beyond our galaxy",
		"year":     2014,
		"rating":   8.6,
		"category": "SciFi",
	}

	cases := []struct {
		name  string
		field string
		value interface{}
	}{
		{"year above 2025", "year", 2030},
		{"rating above 10", "rating", 11.0},
		{"rating below 1", "rating", 0.5},
		{"title too short", "title", "Up"},
		{"overview too short", "overview", "corto"},
		{"category too long", "category", "UnaCategoriaDemasiadoLarga"},
	}
	for _, tc := range cases {
		body := map[string]interface{}{}
		for k, v := range base {
			body[k] = v
		}
		body[tc.field] = tc.value

		resp := doJSON(t, app, http.MethodPost, "/movies", "", body)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, tc.name)
		var valResp map[string]interface{}
		decodeBody(t, resp, &valResp)
		assert.Equal(t, "Validation failed", valResp["message"], tc.name)
	}
}

func TestCreateMovieAppliesDefaults(t *testing.T) {
	app, _, err := setupApp("defaults")
	assert.NoError(t, err)

	// Rating and category are omitted, so the defaults apply
	resp := doJSON(t, app, http.MethodPost, "/movies", "", map[string]interface{}{
		"title":    "Una pelicula sin datos",
		"overview": "Nadie recuerda de que trataba esta pelicula",
		"year":     2001,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/movies/?category=Categoria", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var movies []models.Movie
	decodeBody(t, resp, &movies)
	assert.Len(t, movies, 1)
	assert.Equal(t, models.DefaultRating, movies[0].Rating)
	assert.Equal(t, models.DefaultCategory, movies[0].Category)
}

func TestUpdateAndDeleteMissingMovie(t *testing.T) {
	app, _, err := setupApp("missing")
	assert.NoError(t, err)

	body := map[string]interface{}{
		"title":    "Interstellar",
		"overview": "A team explores space beyond our galaxy",
		"year":     2014,
		"rating":   8.6,
		"category": "SciFi",
	}
	resp := doJSON(t, app, http.MethodPut, "/movies/999", "", body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var notFoundResp map[string]string
	decodeBody(t, resp, &notFoundResp)
	assert.Equal(t, "No encontrado", notFoundResp["message"])

	resp = doJSON(t, app, http.MethodDelete, "/movies/999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	decodeBody(t, resp, &notFoundResp)
	assert.Equal(t, "No encontrado", notFoundResp["message"])
}
