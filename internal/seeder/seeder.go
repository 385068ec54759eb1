package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/karloscodes/cartridge"
	"github.com/shopspring/decimal"

	"statboard/internal/analytics"
	"statboard/internal/store"
	"statboard/internal/timeframe"
	"statboard/internal/users"
)

// Demo dataset dimensions
const (
	PageRowCount   = 50
	MetricDays     = 31
	RevenueDays    = 30
	pageSpreadDays = 30
)

var demoPages = []string{
	"/dashboard", "/pricing", "/features/analytics", "/features/reports",
	"/blog/getting-started", "/blog/best-practices", "/docs/api-reference",
	"/docs/authentication", "/about", "/contact", "/careers",
	"/integrations/slack", "/integrations/zapier", "/changelog",
	"/security", "/terms", "/privacy", "/signup", "/login", "/demo",
}

// channelWeights splits each day's revenue across channels.
var channelWeights = []struct {
	channel string
	weight  decimal.Decimal
}{
	{analytics.ChannelDirect, decimal.RequireFromString("0.45")},
	{analytics.ChannelSocial, decimal.RequireFromString("0.25")},
	{analytics.ChannelOrganic, decimal.RequireFromString("0.20")},
	{analytics.ChannelReferral, decimal.RequireFromString("0.10")},
}

// DemoUser is an account created by the seeder.
type DemoUser struct {
	Email    string
	Name     string
	Password string
	Role     users.Role
}

var DemoUsers = []DemoUser{
	{Email: "demo@example.com", Name: "Alex Johnson", Password: "password123", Role: users.RoleAdmin},
	{Email: "viewer@example.com", Name: "Sam Wilson", Password: "viewer123", Role: users.RoleViewer},
}

// Seeder replaces the analytics tables with a generated demo dataset.
type Seeder struct {
	DBManager cartridge.DBManager
	Logger    *slog.Logger
	Clock     timeframe.TimeProvider
	Location  *time.Location
	Seed      uint64
}

// NewSeeder creates a new seeder instance
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger, seed uint64) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		DBManager: dbManager,
		Logger:    logger,
		Clock:     &timeframe.DefaultTimeProvider{},
		Location:  time.Local,
		Seed:      seed,
	}
}

// Run clears the analytics tables, inserts a fresh dataset and makes sure the
// demo users exist. Existing users are left untouched.
func (s *Seeder) Run(ctx context.Context) error {
	start := time.Now()
	db := s.DBManager.GetConnection()
	gs := store.NewGormStore(db, s.Logger)

	if err := gs.Truncate(); err != nil {
		return fmt.Errorf("failed to clear analytics tables: %w", err)
	}
	s.Logger.Info("Cleared analytics tables")

	for _, u := range DemoUsers {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := users.CreateUser(db, u.Email, u.Name, u.Password, u.Role)
		switch {
		case errors.Is(err, users.ErrUserExists):
			s.Logger.Info("Demo user already exists", slog.String("email", u.Email))
		case err != nil:
			return fmt.Errorf("failed to create user %s: %w", u.Email, err)
		default:
			s.Logger.Info("Created demo user", slog.String("email", u.Email), slog.String("role", string(u.Role)))
		}
	}

	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))
	data := Generate(s.Clock.Now(s.Location), rng)
	if err := gs.Import(data); err != nil {
		return fmt.Errorf("failed to import demo dataset: %w", err)
	}

	s.Logger.Info("Seeding completed",
		slog.Int("pages", len(data.Pages)),
		slog.Int("metrics", len(data.Metrics)),
		slog.Int("revenue_entries", len(data.Revenue)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// Generate builds the demo dataset relative to now.
func Generate(now time.Time, rng *rand.Rand) *store.Dataset {
	return &store.Dataset{
		Pages:   generatePages(now, rng),
		Metrics: generateMetrics(now, rng),
		Revenue: generateRevenue(now, rng),
	}
}

func generatePages(now time.Time, rng *rand.Rand) []analytics.PageStat {
	pages := make([]analytics.PageStat, PageRowCount)
	for i := range pages {
		pages[i] = analytics.PageStat{
			Page:           demoPages[i%len(demoPages)],
			Views:          between(rng, 200, 8000),
			UniqueVisitors: between(rng, 100, 5000),
			BounceRate:     between(rng, 15, 75),
			AvgDurationSec: between(rng, 0, 5)*60 + between(rng, 0, 59),
			Conversions:    between(rng, 0, 120),
			RecordedAt:     timeframe.DaysAgo(now, between(rng, 0, pageSpreadDays-1)),
		}
	}
	return pages
}

// generateMetrics follows a growth curve ending today.
func generateMetrics(now time.Time, rng *rand.Rand) []analytics.DailyMetric {
	baseUsers := 10800
	baseRevenue := decimal.NewFromInt(38000)

	metrics := make([]analytics.DailyMetric, MetricDays)
	for i := range metrics {
		baseUsers += between(rng, 30, 120)
		baseRevenue = baseRevenue.Add(amountBetween(rng, 200, 900))
		metrics[i] = analytics.DailyMetric{
			Date:           timeframe.DaysAgo(now, MetricDays-1-i),
			TotalUsers:     baseUsers,
			ActiveSessions: between(rng, 280, 650),
			Revenue:        baseRevenue,
			ConversionRate: amountBetween(rng, 1.8, 3.2),
		}
	}
	return metrics
}

func generateRevenue(now time.Time, rng *rand.Rand) []analytics.RevenueEntry {
	entries := make([]analytics.RevenueEntry, 0, RevenueDays*len(channelWeights))
	for d := RevenueDays - 1; d >= 0; d-- {
		total := amountBetween(rng, 800, 2200)
		date := timeframe.DaysAgo(now, d)
		for _, cw := range channelWeights {
			entries = append(entries, analytics.RevenueEntry{
				Date:    date,
				Channel: cw.channel,
				Amount:  total.Mul(cw.weight).Round(2),
			})
		}
	}
	return entries
}

// between returns an int in [lo, hi].
func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

// amountBetween returns a two-decimal amount in [lo, hi).
func amountBetween(rng *rand.Rand, lo, hi float64) decimal.Decimal {
	return decimal.NewFromFloat(lo + rng.Float64()*(hi-lo)).Round(2)
}
