package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"StoryScanner/internal/ports"
)

// CronScheduler drives recurring maintenance from a cron spec such as
// "@every 5m" or a standard five-field expression.
type CronScheduler struct {
	spec string
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler configured via cron expression string.
func NewCronScheduler(spec string) *CronScheduler {
	return &CronScheduler{spec: spec}
}

// Start registers the job and begins scheduling. Calling Start on a
// running scheduler is a no-op.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil || c.cron != nil {
		return nil
	}

	runner := cron.New()
	if _, err := runner.AddFunc(c.spec, func() {
		if ctx.Err() != nil {
			return
		}
		job(time.Now())
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", c.spec, err)
	}

	runner.Start()
	c.cron = runner
	return nil
}

// Stop halts scheduling and waits for any in-flight run, bounded by ctx.
func (c *CronScheduler) Stop(ctx context.Context) error {
	if c.cron == nil {
		return nil
	}

	done := c.cron.Stop()
	c.cron = nil

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
