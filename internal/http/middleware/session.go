package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// SessionChecker reports whether a request carries a valid login session.
type SessionChecker interface {
	IsAuthenticated(c *fiber.Ctx) bool
}

// RequireSession rejects requests without a login session with 401 JSON.
// API clients get a status code instead of the login redirect pages use.
func RequireSession(sessions SessionChecker, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !sessions.IsAuthenticated(c) {
			logger.Debug("Rejected unauthenticated API request",
				slog.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Not authenticated",
			})
		}
		return c.Next()
	}
}
