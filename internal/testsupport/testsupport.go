package testsupport

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	ctestsupport "github.com/karloscodes/cartridge/testsupport"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"statboard/internal"
	"statboard/internal/analytics"
	"statboard/internal/config"
	"statboard/internal/database"
	"statboard/internal/store"
	"statboard/internal/timeframe"
	"statboard/internal/users"
)

// SessionCookieName is the expected cookie name for session cookies in tests.
const SessionCookieName = "statboard_session"

// FixedNow is the clock used by tests: Sunday 2024-03-10, midday UTC.
var FixedNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// TestDBManager wraps cartridge's TestDBManager with statboard's interface
type TestDBManager struct {
	*ctestsupport.TestDBManager
}

// NewTestDBManager creates a TestDBManager that implements cartridge.DBManager
func NewTestDBManager(db *gorm.DB) *TestDBManager {
	return &TestDBManager{
		TestDBManager: ctestsupport.NewTestDBManager(db),
	}
}

var _ cartridge.DBManager = (*TestDBManager)(nil)

// SetupTestDB creates a test database with all models migrated.
// Uses a named in-memory database with cache=shared to allow multiple connections
// to share the same database within a test. Caches the database by root test
// name so subtests share it.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	rootName := t.Name()
	if idx := strings.Index(rootName, "/"); idx > 0 {
		rootName = rootName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupTestDBManager creates a test DB manager using cartridge's testsupport
func SetupTestDBManager(t *testing.T) (*TestDBManager, *slog.Logger) {
	t.Helper()

	cfg := EnsureTestEnvironment(t)
	if cfg.Environment != config.Test {
		t.Fatalf("CRITICAL: Tests must run in test environment! Current: %s. Set STATBOARD_ENV=test", cfg.Environment)
	}

	return NewTestDBManager(SetupTestDB(t)), GetLogger()
}

// EnsureTestEnvironment reloads the configuration with STATBOARD_ENV=test
// unless the process already runs with it.
func EnsureTestEnvironment(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("STATBOARD_ENV") != config.Test {
		t.Setenv("STATBOARD_ENV", config.Test)
		config.Reset()
	}
	return config.GetConfig()
}

// GetLogger returns a test logger
func GetLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// FixedClock returns a TimeProvider frozen at FixedNow.
func FixedClock() *timeframe.FixedTimeProvider {
	return &timeframe.FixedTimeProvider{At: FixedNow}
}

// LoadDemoFixture loads the embedded demo fixture relative to FixedNow.
func LoadDemoFixture(t *testing.T) *store.Dataset {
	t.Helper()
	data, err := store.LoadFixture("", FixedNow)
	require.NoError(t, err)
	return data
}

// NewFixtureService returns a Service over the demo fixture at FixedNow in UTC.
func NewFixtureService(t *testing.T) *analytics.Service {
	t.Helper()
	return analytics.NewService(store.NewMemoryStore(LoadDemoFixture(t)), FixedClock(), time.UTC, GetLogger())
}

// CreateTestUserForAuth creates a user with properly hashed password for auth testing
func CreateTestUserForAuth(t *testing.T, db *gorm.DB, email, password string) *users.User {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &users.User{
		Email:             users.NormalizeEmail(email),
		Name:              "Test User",
		Role:              users.RoleAdmin,
		EncryptedPassword: string(hashedPassword),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestApp creates a test Fiber app with all routes, serving analytics
// from svc.
func CreateTestApp(t *testing.T, db *gorm.DB, svc *analytics.Service) *fiber.App {
	t.Helper()

	appConfig := EnsureTestEnvironment(t)

	cfg := cartridge.DefaultServerConfig()
	cfg.Config = appConfig
	cfg.Logger = GetLogger()
	cfg.DBManager = NewTestDBManager(db)
	cfg.EnableSecFetchSite = true
	cfg.SecFetchSiteAllowedValues = []string{"same-site", "same-origin"}

	srv, err := cartridge.NewServer(cfg)
	require.NoError(t, err)

	internal.MountAppRoutes(srv, svc)

	// Test-only login: issues a session cookie for the user in :id.
	srv.Get(testSessionPath+":id", func(ctx *cartridge.Context) error {
		id, err := ctx.ParamsInt("id")
		if err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}
		if err := ctx.Session.SetSession(ctx.Ctx, uint(id)); err != nil {
			return err
		}
		return ctx.SendStatus(fiber.StatusNoContent)
	})

	return srv.App()
}

const testSessionPath = "/_test/session/"

// LoginCookie returns a session cookie for userID, issued by an app built
// with CreateTestApp.
func LoginCookie(t *testing.T, app *fiber.App, userID uint) *http.Cookie {
	t.Helper()

	req := NewAPIRequest(fiber.MethodGet, fmt.Sprintf("%s%d", testSessionPath, userID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("testsupport: no %s cookie issued", SessionCookieName)
	return nil
}

// NewAPIRequest builds a same-origin request the way the dashboard's browser
// client sends it.
func NewAPIRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}
