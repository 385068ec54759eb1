// Package internal contains core application functionality
package internal

import (
	"fmt"

	"github.com/karloscodes/cartridge"

	"statboard/internal/analytics"
	"statboard/internal/config"
	"statboard/internal/database"
	"statboard/internal/jobs"
	"statboard/internal/store"
	"statboard/internal/timeframe"
)

// Application wraps cartridge.Application with statboard-specific components
type Application struct {
	*cartridge.Application
	DBManager *database.DBManager
	Service   *analytics.Service
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	return NewAppWithConfig(config.GetConfig())
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger := cartridge.NewLogger(cfg, nil)

	// The database also backs users and sessions in fixture mode.
	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clock := &timeframe.DefaultTimeProvider{}

	st, err := store.New(cfg, dbManager.GetConnection(), clock, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analytics store: %w", err)
	}
	svc := analytics.NewService(st, clock, loc, logger)

	scheduler := jobs.NewScheduler(st, logger, cfg.RefreshInterval())

	app, err := cartridge.NewApplication(cartridge.ApplicationOptions{
		Config:            cfg,
		Logger:            logger,
		DBManager:         dbManager,
		RouteMountFunc:    RouteMounter(svc),
		BackgroundWorkers: []cartridge.BackgroundWorker{scheduler},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return &Application{
		Application: app,
		DBManager:   dbManager,
		Service:     svc,
	}, nil
}
