package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cartelera/internal/handlers"
	"cartelera/internal/middleware"
	"cartelera/internal/models"
	"cartelera/internal/repositories"
	"cartelera/internal/services"
	"cartelera/pkg/rabbitmq"

	"github.com/spf13/viper"
)

func main() {
	// --- Configuration ---
	// Set up Viper to read configuration from environment variables
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_PATH", "database.sqlite")
	viper.SetDefault("DB_DSN", "")
	viper.SetDefault("JWT_SECRET", "my_secret_key")
	viper.SetDefault("JWT_EXPIRY_HOURS", 1)
	viper.SetDefault("ADMIN_EMAIL", "admin@admin.com")
	viper.SetDefault("ADMIN_PASSWORD", "admin12345")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")
	jwtSecret := viper.GetString("JWT_SECRET")
	jwtExpiry := time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour
	adminEmail := viper.GetString("ADMIN_EMAIL")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Initialize Database ---
	db, err := openDatabase()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.Movie{}, &models.User{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Initialize RabbitMQ Client (optional) ---
	// The catalog keeps working without a broker; events are simply skipped.
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, catalog events disabled: %v", err)
			mqClient = nil
		} else {
			defer mqClient.Close()
		}
	}

	// --- Initialize Repositories ---
	movieRepo := repositories.NewGORMMovieRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	// --- Initialize Services ---
	movieService := services.NewMovieService(movieRepo, mqClient)
	authService := services.NewAuthService(userRepo, jwtSecret, jwtExpiry)

	// Seed the admin account from configuration
	seedAdmin(authService, userRepo, adminEmail, viper.GetString("ADMIN_PASSWORD"))

	// --- Initialize Handlers ---
	movieHandler := handlers.NewMovieHandler(movieService)
	authHandler := handlers.NewAuthHandler(authService)

	// --- Initialize Fiber App ---
	// Strict routing keeps "/movies" (full listing) and "/movies/"
	// (category filter) as separate routes.
	app := fiber.New(fiber.Config{StrictRouting: true})

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	// --- API Routes ---
	app.Get("/", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString("<h1>Hola desde la cartelera!</h1>")
	})

	authHandler.RegisterRoutes(app)
	movieHandler.RegisterRoutes(app,
		middleware.AuthRequired(authService),
		middleware.RequireIdentity(func(email string) bool { return email == adminEmail }),
	)

	// --- Start RabbitMQ Consumer in a Goroutine ---
	// Drains the catalog event queue so downstream work (indexing,
	// notifications) can hook in here.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for catalog events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received catalog event %s (tag %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
				return nil // Return nil to acknowledge
			}
			if consumerErr := mqClient.ConsumeCatalogEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// openDatabase opens the configured store: a file-backed SQLite database by
// default, or PostgreSQL when DB_DRIVER=postgres and DB_DSN is set.
func openDatabase() (*gorm.DB, error) {
	switch viper.GetString("DB_DRIVER") {
	case "postgres":
		return gorm.Open(postgres.Open(viper.GetString("DB_DSN")), &gorm.Config{})
	default:
		return gorm.Open(sqlite.Open(viper.GetString("DB_PATH")), &gorm.Config{})
	}
}

// seedAdmin creates the admin account when it does not exist yet.
func seedAdmin(authService *services.AuthService, userRepo repositories.UserRepository, email, password string) {
	if _, err := userRepo.GetByEmail(email); err == nil {
		return
	}
	admin := models.User{Email: email, Password: password}
	if err := authService.RegisterUser(&admin); err != nil {
		log.Printf("Error seeding admin account %s: %v", email, err)
	} else {
		log.Printf("Seeded admin account: %s", email)
	}
}
