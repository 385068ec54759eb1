package store

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"statboard/internal/analytics"
	"statboard/internal/timeframe"
)

//go:embed fixtures/demo.yaml
var demoFixture []byte

// Fixture dates are day offsets from "today" so a fixture never goes stale.
type fixtureFile struct {
	Pages   []fixturePage    `yaml:"pages"`
	Metrics []fixtureMetric  `yaml:"metrics"`
	Revenue []fixtureRevenue `yaml:"revenue"`
}

type fixturePage struct {
	Page           string `yaml:"page"`
	Views          int    `yaml:"views"`
	UniqueVisitors int    `yaml:"unique_visitors"`
	BounceRate     int    `yaml:"bounce_rate"`
	AvgDurationSec int    `yaml:"avg_duration_sec"`
	Conversions    int    `yaml:"conversions"`
	DaysAgo        int    `yaml:"days_ago"`
}

type fixtureMetric struct {
	DaysAgo        int    `yaml:"days_ago"`
	TotalUsers     int    `yaml:"total_users"`
	ActiveSessions int    `yaml:"active_sessions"`
	Revenue        string `yaml:"revenue"`
	ConversionRate string `yaml:"conversion_rate"`
}

type fixtureRevenue struct {
	DaysAgo int               `yaml:"days_ago"`
	Amounts map[string]string `yaml:"amounts"`
}

// LoadFixture reads a YAML fixture from path, or the embedded demo fixture
// when path is empty, and resolves its dates against now.
func LoadFixture(path string, now time.Time) (*Dataset, error) {
	raw := demoFixture
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read fixture: %w", err)
		}
	}
	return ParseFixture(raw, now)
}

// NewFixtureStore serves the fixture at path (or the embedded demo fixture)
// from memory. Relative dates are resolved again whenever the clock reaches a
// new day, and on Refresh, which also re-reads the file.
func NewFixtureStore(path string, clock timeframe.TimeProvider, loc *time.Location) (*MemoryStore, error) {
	s := NewMemoryStore(nil)
	s.reload = func(now time.Time) (*Dataset, error) {
		return LoadFixture(path, now)
	}
	s.clock, s.loc = clock, loc
	if err := s.resolve(clock.Now(loc)); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseFixture decodes a YAML fixture. Records get sequential IDs in file order.
func ParseFixture(raw []byte, now time.Time) (*Dataset, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}

	var errs []error
	data := &Dataset{}

	for i, p := range file.Pages {
		switch {
		case strings.TrimSpace(p.Page) == "":
			errs = append(errs, fmt.Errorf("pages[%d]: page is required", i))
			continue
		case p.BounceRate < 0 || p.BounceRate > 100:
			errs = append(errs, fmt.Errorf("pages[%d]: bounce_rate %d out of range", i, p.BounceRate))
			continue
		case p.Views < 0 || p.UniqueVisitors < 0 || p.AvgDurationSec < 0 || p.Conversions < 0:
			errs = append(errs, fmt.Errorf("pages[%d]: counts must not be negative", i))
			continue
		case p.DaysAgo < 0:
			errs = append(errs, fmt.Errorf("pages[%d]: days_ago must not be negative", i))
			continue
		}
		data.Pages = append(data.Pages, analytics.PageStat{
			ID:             uint(len(data.Pages) + 1),
			Page:           p.Page,
			Views:          p.Views,
			UniqueVisitors: p.UniqueVisitors,
			BounceRate:     p.BounceRate,
			AvgDurationSec: p.AvgDurationSec,
			Conversions:    p.Conversions,
			RecordedAt:     timeframe.DaysAgo(now, p.DaysAgo),
		})
	}

	seen := make(map[string]bool)
	for i, m := range file.Metrics {
		date := timeframe.DaysAgo(now, m.DaysAgo)
		if seen[date] {
			errs = append(errs, fmt.Errorf("metrics[%d]: duplicate day %s", i, date))
			continue
		}
		seen[date] = true

		revenue, err := parseAmount(m.Revenue)
		if err != nil {
			errs = append(errs, fmt.Errorf("metrics[%d]: revenue: %w", i, err))
			continue
		}
		rate, err := parseAmount(m.ConversionRate)
		if err != nil {
			errs = append(errs, fmt.Errorf("metrics[%d]: conversion_rate: %w", i, err))
			continue
		}
		data.Metrics = append(data.Metrics, analytics.DailyMetric{
			ID:             uint(len(data.Metrics) + 1),
			Date:           date,
			TotalUsers:     m.TotalUsers,
			ActiveSessions: m.ActiveSessions,
			Revenue:        revenue,
			ConversionRate: rate,
		})
	}

	for i, r := range file.Revenue {
		date := timeframe.DaysAgo(now, r.DaysAgo)
		for _, channel := range slices.Sorted(maps.Keys(r.Amounts)) {
			amount, err := parseAmount(r.Amounts[channel])
			if err != nil {
				errs = append(errs, fmt.Errorf("revenue[%d].%s: %w", i, channel, err))
				continue
			}
			data.Revenue = append(data.Revenue, analytics.RevenueEntry{
				ID:      uint(len(data.Revenue) + 1),
				Date:    date,
				Channel: channel,
				Amount:  amount,
			})
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return data, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %s", s)
	}
	return d.Round(2), nil
}
