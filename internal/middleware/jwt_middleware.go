package middleware

import (
	"log"
	"strings"

	"cartelera/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		tokenString := parts[1]

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		// Store the identity in the Fiber context for subsequent handlers
		email, _ := claims["email"].(string)
		c.Locals("email", email)

		// Continue to the next handler
		return c.Next()
	}
}

// RequireIdentity admits the request only when the token's email claim
// passes the given predicate. Must run after AuthRequired.
func RequireIdentity(allowed func(email string) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, _ := c.Locals("email").(string)
		if !allowed(email) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "The credentials are invalid",
			})
		}
		return c.Next()
	}
}
