package usecase

import (
	"context"
	"log/slog"
	"time"

	"StoryScanner/internal/ports"
)

// jobPurger is the slice of the queue the sweeper needs.
type jobPurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// Sweeper wires the cron-like driver with terminal job retention:
// completed and failed jobs are kept for a grace period so their
// results stay queryable, then discarded.
type Sweeper struct {
	driver ports.Scheduler
	queue  jobPurger
	logger *slog.Logger
}

// NewSweeper returns a helper to start/stop the recurring purge.
func NewSweeper(driver ports.Scheduler, queue jobPurger, logger *slog.Logger) *Sweeper {
	return &Sweeper{driver: driver, queue: queue, logger: logger}
}

// Start registers the purge with the provided scheduler.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.driver == nil || s.queue == nil {
		return nil
	}

	job := func(time.Time) {
		purged, err := s.queue.PurgeExpired(ctx)
		if err != nil {
			s.logger.Error("job retention sweep failed", "error", err)
			return
		}
		if purged > 0 {
			s.logger.Info("purged expired jobs", "count", purged)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Sweeper) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
