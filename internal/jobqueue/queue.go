// Package jobqueue implements the background enhancement queue: an
// at-least-once job lifecycle (waiting, active, completed, failed)
// with bounded worker concurrency, exponential retry backoff, and
// per-story coalescing.
package jobqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"StoryScanner/internal/domain"
	"StoryScanner/internal/ports"
)

const (
	defaultConcurrency  = 5
	defaultMaxAttempts  = 3
	defaultBackoffBase  = 2 * time.Second
	defaultPollInterval = 250 * time.Millisecond
	defaultRetention    = time.Hour
)

// Options tunes queue behavior; zero values select the defaults above.
type Options struct {
	Concurrency  int
	MaxAttempts  int
	BackoffBase  time.Duration
	PollInterval time.Duration
	Retention    time.Duration
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = defaultConcurrency
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = defaultBackoffBase
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.Retention <= 0 {
		o.Retention = defaultRetention
	}
	return o
}

// Deps wires the queue's collaborators.
type Deps struct {
	Store      ports.JobStore
	Repository ports.StoryRepository
	Scorer     ports.StoryScorer
	Logger     *slog.Logger
	Options    Options
}

// Queue accepts enhancement requests keyed by story identity and
// dispatches them to the worker pool.
type Queue struct {
	store  ports.JobStore
	repo   ports.StoryRepository
	scorer ports.StoryScorer
	logger *slog.Logger
	opts   Options
}

// New constructs a queue. Workers do not run until Start is called.
func New(deps Deps) *Queue {
	return &Queue{
		store:  deps.Store,
		repo:   deps.Repository,
		scorer: deps.Scorer,
		logger: deps.Logger,
		opts:   deps.Options.withDefaults(),
	}
}

// Enqueue registers an enhancement job for the story. If a waiting or
// active job already exists for the same story the existing job id is
// returned, bounding cost to the external service. Without a story
// repository the workers could never fetch content, so enqueueing is
// refused up front.
func (q *Queue) Enqueue(ctx context.Context, storyID string) (string, error) {
	if storyID == "" {
		return "", fmt.Errorf("story id is required")
	}
	if q.repo == nil {
		return "", fmt.Errorf("story store is not configured")
	}

	now := time.Now().UTC()
	job, err := q.store.Enqueue(ctx, domain.ScoringJob{
		ID:        uuid.NewString(),
		StoryID:   storyID,
		Status:    domain.JobWaiting,
		CreatedAt: now,
		UpdatedAt: now,
		NextRunAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("enqueue story %s: %w", storyID, err)
	}

	q.debug("enhancement enqueued", "story", storyID, "job", job.ID, "status", job.Status)
	return job.ID, nil
}

// Job returns the tracked job, or nil for unknown or purged ids.
func (q *Queue) Job(ctx context.Context, jobID string) (*domain.ScoringJob, error) {
	job, err := q.store.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("lookup job %s: %w", jobID, err)
	}
	return job, nil
}

// Stats counts jobs per status for the operational health read.
func (q *Queue) Stats(ctx context.Context) (domain.QueueStats, error) {
	return q.store.Stats(ctx)
}

// PurgeExpired discards terminal jobs older than the retention window.
// Waiting and active jobs are never touched.
func (q *Queue) PurgeExpired(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-q.opts.Retention)
	purged, err := q.store.Purge(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge terminal jobs: %w", err)
	}
	if purged > 0 {
		q.debug("purged terminal jobs", "count", purged)
	}
	return purged, nil
}

// backoff returns the delay before the given retry attempt: base on
// the first retry, doubling per subsequent attempt.
func (q *Queue) backoff(attempts int) time.Duration {
	delay := q.opts.BackoffBase
	for i := 1; i < attempts; i++ {
		delay *= 2
	}
	return delay
}

func (q *Queue) debug(msg string, args ...any) {
	if q.logger != nil {
		q.logger.Debug(msg, args...)
	}
}
