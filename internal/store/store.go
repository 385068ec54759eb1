// Package store provides the record stores behind the analytics engines: a
// SQLite store for deployments and an in-memory fixture store for demos and
// tests. Both implement analytics.Store with identical results.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"statboard/internal/analytics"
	"statboard/internal/config"
	"statboard/internal/timeframe"
)

// ErrUnknownDataSource is returned for a data source New cannot build.
var ErrUnknownDataSource = errors.New("unknown data source")

// Refresher is implemented by stores that hold derived state which must be
// rebuilt periodically.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Dataset is a complete set of records, as loaded from a fixture or
// generated by the seeder.
type Dataset struct {
	Pages   []analytics.PageStat
	Metrics []analytics.DailyMetric
	Revenue []analytics.RevenueEntry
}

// New builds the store selected by cfg.DataSource. The database store needs
// db; the fixture store resolves its relative dates against clock.
func New(cfg *config.Config, db *gorm.DB, clock timeframe.TimeProvider, logger *slog.Logger) (analytics.Store, error) {
	switch cfg.DataSource {
	case config.DataSourceDatabase:
		if db == nil {
			return nil, fmt.Errorf("database store: %w", gorm.ErrInvalidDB)
		}
		logger.Info("Serving analytics from database")
		return NewCachedStore(NewGormStore(db, logger), logger, time.Minute), nil

	case config.DataSourceFixture:
		loc, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		s, err := NewFixtureStore(cfg.FixturePath, clock, loc)
		if err != nil {
			return nil, err
		}
		logger.Info("Serving analytics from fixture", slog.String("path", cfg.FixturePath))
		return s, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataSource, cfg.DataSource)
	}
}
