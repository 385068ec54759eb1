package internal

import (
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge/testsupport"
	"github.com/stretchr/testify/require"

	"statboard/internal/analytics"
	"statboard/internal/store"
	"statboard/internal/timeframe"
)

func newRouteTestService(t *testing.T) *analytics.Service {
	t.Helper()

	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	data, err := store.LoadFixture("", now)
	require.NoError(t, err)
	return analytics.NewService(store.NewMemoryStore(data), &timeframe.FixedTimeProvider{At: now}, time.UTC, nil)
}

func findRoute(routes []fiber.Route, method, path string) *fiber.Route {
	for idx := range routes {
		if routes[idx].Method == method && routes[idx].Path == path {
			return &routes[idx]
		}
	}
	return nil
}

func handlerNames(route *fiber.Route) []string {
	names := make([]string, 0, len(route.Handlers))
	for _, handler := range route.Handlers {
		names = append(names, runtime.FuncForPC(reflect.ValueOf(handler).Pointer()).Name())
	}
	return names
}

func TestLoginRouteRateLimited(t *testing.T) {
	srv := testsupport.NewTestServer(t, testsupport.TestServerOptions{
		RouteMountFunc: RouteMounter(newRouteTestService(t)),
	})

	loginRoute := findRoute(srv.App.GetRoutes(true), fiber.MethodPost, "/api/auth/login")
	require.NotNil(t, loginRoute, "expected login route to be registered")

	// The limiter only applies in production; outside it the conditional
	// wrapper defined in MountAppRoutes is still installed.
	names := handlerNames(loginRoute)
	hasRateLimiter := false
	for _, name := range names {
		if strings.Contains(name, "middleware/limiter") || strings.Contains(name, "MountAppRoutes.func") {
			hasRateLimiter = true
			break
		}
	}

	require.Truef(t, hasRateLimiter, "expected rate limiter middleware for login route, handlers: %v", names)
}

func TestDashboardRoutesRegistered(t *testing.T) {
	srv := testsupport.NewTestServer(t, testsupport.TestServerOptions{
		RouteMountFunc: RouteMounter(newRouteTestService(t)),
	})
	routes := srv.App.GetRoutes(true)

	expected := []struct {
		method string
		path   string
	}{
		{fiber.MethodGet, "/_health"},
		{fiber.MethodHead, "/_health"},
		{fiber.MethodPost, "/api/auth/login"},
		{fiber.MethodPost, "/api/auth/logout"},
		{fiber.MethodGet, "/api/auth/me"},
		{fiber.MethodGet, "/api/analytics"},
		{fiber.MethodGet, "/api/metrics"},
		{fiber.MethodGet, "/api/export/analytics"},
	}

	for _, e := range expected {
		require.NotNilf(t, findRoute(routes, e.method, e.path), "expected %s %s to be registered", e.method, e.path)
	}
}

func TestDataRoutesRequireSession(t *testing.T) {
	srv := testsupport.NewTestServer(t, testsupport.TestServerOptions{
		RouteMountFunc: RouteMounter(newRouteTestService(t)),
	})
	routes := srv.App.GetRoutes(true)

	for _, path := range []string{"/api/analytics", "/api/metrics", "/api/export/analytics"} {
		route := findRoute(routes, fiber.MethodGet, path)
		require.NotNil(t, route)

		names := handlerNames(route)
		hasSessionCheck := false
		for _, name := range names {
			if strings.Contains(name, "middleware.RequireSession") {
				hasSessionCheck = true
				break
			}
		}
		require.Truef(t, hasSessionCheck, "expected session middleware on %s, handlers: %v", path, names)
	}
}
