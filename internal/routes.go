package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	"statboard/internal/analytics"
	"statboard/internal/config"
	"statboard/internal/http"
	"statboard/internal/http/middleware"
)

// SetupSession configures session management on the server.
func SetupSession(srv *cartridge.Server) {
	cfg := config.GetConfig()
	sessionMgr := cartridge.NewSessionManager(cartridge.SessionConfig{
		CookieName: cfg.AppName + "_session",
		Secret:     cfg.GetSessionSecret(),
		TTL:        time.Duration(cfg.GetLoginSessionTimeout()) * time.Second,
		Secure:     cfg.IsProduction(),
		LoginPath:  "/login",
	})
	srv.SetSession(sessionMgr)
}

// RouteMounter returns a cartridge route mount function serving the
// dashboard API from svc.
func RouteMounter(svc *analytics.Service) func(*cartridge.Server) {
	return func(srv *cartridge.Server) {
		MountAppRoutes(srv, svc)
	}
}

// MountAppRoutes mounts all application routes using cartridge's route API
func MountAppRoutes(srv *cartridge.Server, svc *analytics.Service) {
	SetupSession(srv)

	cfg := config.GetConfig()
	logger := srv.GetLogger()

	// Rate limiting would interfere with testing; production only.
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// Prevents brute force login attempts (10 requests per minute)
	authRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(10),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	loginConfig := &cartridge.RouteConfig{
		CustomMiddleware: []fiber.Handler{authRateLimiter},
	}

	dataAPIConfig := &cartridge.RouteConfig{
		CustomMiddleware: []fiber.Handler{
			middleware.RequireSession(srv.Session(), logger),
		},
	}

	// Health check endpoint
	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)

	// === AUTHENTICATION ROUTES ===
	srv.Post("/api/auth/login", http.LoginAction, loginConfig)
	srv.Post("/api/auth/logout", http.LogoutAction)
	srv.Get("/api/auth/me", http.MeAction)

	// === DASHBOARD API ROUTES ===
	mountDashboardRoutes(srv, http.NewDashboardHandlers(svc), dataAPIConfig)
}

func mountDashboardRoutes(srv *cartridge.Server, h *http.DashboardHandlers, routeConfig *cartridge.RouteConfig) {
	srv.Get("/api/analytics", h.AnalyticsTableAction, routeConfig)
	srv.Get("/api/metrics", h.MetricsAction, routeConfig)
	srv.Get("/api/export/analytics", h.ExportAnalyticsAction, routeConfig)
}
