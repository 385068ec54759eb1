package jobs

import (
	"context"
	"log/slog"
	"time"

	"statboard/internal/store"
)

// RefreshJob rebuilds derived store state: cached aggregates in database
// mode and the relative fixture dates in fixture mode.
type RefreshJob struct {
	target  store.Refresher
	logger  *slog.Logger
	timeout time.Duration
}

func NewRefreshJob(target store.Refresher, logger *slog.Logger) *RefreshJob {
	return &RefreshJob{
		target:  target,
		logger:  logger,
		timeout: 30 * time.Second,
	}
}

// Run refreshes the target once.
func (j *RefreshJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	if err := j.target.Refresh(ctx); err != nil {
		return err
	}

	j.logger.Debug("Refreshed analytics store", slog.Duration("took", time.Since(start)))
	return nil
}
