package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"statboard/internal/analytics"
	"statboard/internal/store"
)

// DefaultRefreshInterval is how often fixture files are re-read and cached
// aggregates dropped.
const DefaultRefreshInterval = 15 * time.Minute

// Scheduler is responsible for running background jobs
type Scheduler struct {
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	interval  time.Duration
	isRunning bool

	// Mutex to prevent concurrent job executions
	processingMutex sync.Mutex
	isProcessing    bool

	refreshJob    *RefreshJob
	refreshTicker *time.Ticker
}

// NewScheduler schedules a refresh of st every interval. Stores without
// derived state get a scheduler that does nothing.
func NewScheduler(st analytics.Store, logger *slog.Logger, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	s := &Scheduler{
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		interval: interval,
	}
	if r, ok := st.(store.Refresher); ok {
		s.refreshJob = NewRefreshJob(r, logger)
	}
	return s
}

// executeJobSafely runs a job only if no other job is currently executing
func (s *Scheduler) executeJobSafely(jobName string, jobFunc func(context.Context) error) {
	s.processingMutex.Lock()
	if s.isProcessing {
		s.logger.Debug("Skipping job execution - previous job still running", slog.String("job", jobName))
		s.processingMutex.Unlock()
		return
	}
	s.isProcessing = true
	s.processingMutex.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic recovered in background job",
				slog.String("job", jobName),
				slog.Any("panic", r))
		}

		s.processingMutex.Lock()
		s.isProcessing = false
		s.processingMutex.Unlock()
	}()

	if err := jobFunc(s.ctx); err != nil {
		s.logger.Error("Error executing job", slog.String("job", jobName), slog.Any("error", err))
	}
}

// Start begins all background jobs.
// Implements cartridge.BackgroundWorker interface.
func (s *Scheduler) Start() error {
	if s.refreshJob == nil {
		s.logger.Info("No background jobs to run")
		return nil
	}

	if s.isRunning {
		s.logger.Info("Background jobs already running.")
		return nil
	}

	s.isRunning = true
	s.logger.Info("Starting store refresh job", slog.Duration("interval", s.interval))
	s.refreshTicker = time.NewTicker(s.interval)

	go func() {
		for {
			select {
			case <-s.refreshTicker.C:
				s.executeJobSafely("store_refresh", s.refreshJob.Run)
			case <-s.ctx.Done():
				s.logger.Info("Store refresh job stopped")
				return
			}
		}
	}()

	return nil
}

// Stop halts all background jobs.
// Implements cartridge.BackgroundWorker interface.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background jobs...")

	if s.refreshTicker != nil {
		s.refreshTicker.Stop()
	}

	s.cancel()
	s.isRunning = false
	s.logger.Info("Background jobs stopped")
}

// IsRunning returns whether jobs are currently running
func (s *Scheduler) IsRunning() bool {
	return s.isRunning
}

// RefreshNow runs the refresh job synchronously.
func (s *Scheduler) RefreshNow() error {
	if s.refreshJob == nil {
		return nil
	}
	return s.refreshJob.Run(s.ctx)
}
