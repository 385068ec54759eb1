package middleware

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions struct {
	authenticated bool
}

func (s stubSessions) IsAuthenticated(*fiber.Ctx) bool {
	return s.authenticated
}

func newGuardedApp(sessions SessionChecker) *fiber.App {
	app := fiber.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app.Get("/api/data", RequireSession(sessions, logger), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestRequireSession(t *testing.T) {
	t.Run("rejects anonymous requests with 401 JSON", func(t *testing.T) {
		app := newGuardedApp(stubSessions{authenticated: false})

		resp, err := app.Test(httptest.NewRequest("GET", "/api/data", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"success":false,"error":"Not authenticated"}`, string(body))
	})

	t.Run("passes authenticated requests through", func(t *testing.T) {
		app := newGuardedApp(stubSessions{authenticated: true})

		resp, err := app.Test(httptest.NewRequest("GET", "/api/data", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "ok", string(body))
	})
}
