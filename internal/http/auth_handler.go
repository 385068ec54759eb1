package http

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"statboard/internal/users"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginAction handles POST /api/auth/login
func LoginAction(ctx *cartridge.Context) error {
	var req loginRequest
	if err := ctx.BodyParser(&req); err != nil {
		ctx.Logger.Debug("Invalid login body", slog.Any("error", err))
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Email and password are required",
		})
	}

	user, err := users.Authenticate(ctx.DB(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, users.ErrInvalidCredentials) {
			ctx.Logger.Error("Failed to look up user", slog.Any("error", err))
			return serverError(ctx, "Login failed")
		}
		ctx.Logger.Debug("Failed login attempt", slog.String("email", users.NormalizeEmail(req.Email)))
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid email or password",
		})
	}

	if err := ctx.Session.SetSession(ctx.Ctx, user.ID); err != nil {
		ctx.Logger.Error("Failed to set session", slog.Any("error", err))
		return serverError(ctx, "Login failed")
	}

	ctx.Logger.Info("Login successful", slog.Uint64("userId", uint64(user.ID)))
	return ctx.JSON(fiber.Map{
		"success": true,
		"user":    user.Profile(),
	})
}

// LogoutAction handles POST /api/auth/logout
func LogoutAction(ctx *cartridge.Context) error {
	userID, isAuthenticated := ctx.Session.GetUserID(ctx.Ctx)
	ctx.Logger.Debug("Logging out",
		slog.Uint64("userID", uint64(userID)),
		slog.Bool("isAuthenticated", isAuthenticated))

	ctx.Session.ClearSession(ctx.Ctx)

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

// MeAction handles GET /api/auth/me. Anonymous callers get success=false
// rather than an error status.
func MeAction(ctx *cartridge.Context) error {
	userID, ok := ctx.Session.GetUserID(ctx.Ctx)
	if !ok {
		return ctx.JSON(fiber.Map{
			"success": false,
			"message": "Not authenticated",
		})
	}

	user, err := users.FindByID(ctx.DB(), userID)
	if err != nil {
		if !errors.Is(err, users.ErrUserNotFound) {
			ctx.Logger.Error("Failed to load session user", slog.Any("error", err))
			return serverError(ctx, "Failed to load user")
		}
		return ctx.JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"user":    user.Profile(),
	})
}
