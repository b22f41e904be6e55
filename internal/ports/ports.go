package ports

import (
	"context"
	"errors"
	"time"

	"StoryScanner/internal/domain"
)

// ErrUnavailable marks an enhancement attempt that produced no result
// (network failure, timeout, unparsable response, or an unconfigured
// service). It is an explicit absence, not a pipeline error.
var ErrUnavailable = errors.New("enhancement unavailable")

// StoryRepository is the narrow view of the persistent store the
// pipeline consumes: content lookup and score persistence.
type StoryRepository interface {
	// FetchStory reads story content by identifier. Idempotent and
	// side-effect-free.
	FetchStory(ctx context.Context, storyID string) (domain.StoryContent, error)
	// FetchCompany reads company context; a nil result with nil error
	// means the company is unknown, which is a valid outcome.
	FetchCompany(ctx context.Context, companyID string) (*domain.CompanyContext, error)
	// PersistScore writes the combined score to the durable story
	// record. Failures must surface so the job layer can retry.
	PersistScore(ctx context.Context, storyID string, result domain.CombinedScoreResult) error
}

// Enhancer refines local scores through an external analysis service.
type Enhancer interface {
	// Enhance performs a single bounded attempt. All failure modes
	// return ErrUnavailable so callers can fall back deterministically.
	Enhance(ctx context.Context, content domain.StoryContent, hype, ethics domain.LocalScoreResult) (*domain.EnhancementResult, error)
	// Configured reports whether the service can be reached at all.
	Configured() bool
}

// StoryScorer is the synchronous scoring surface consumed by the
// worker and the transport layer.
type StoryScorer interface {
	ScoreLocal(ctx context.Context, content domain.StoryContent, company *domain.CompanyContext) domain.CombinedScoreResult
	ScoreWithEnhancement(ctx context.Context, content domain.StoryContent, company *domain.CompanyContext) domain.CombinedScoreResult
}

// JobStore persists enhancement jobs so state survives restarts.
// Implementations must make Claim atomic: a job is dispatched to
// exactly one worker.
type JobStore interface {
	// Enqueue inserts the job unless a waiting or active job already
	// exists for the same story, in which case the existing job is
	// returned unchanged.
	Enqueue(ctx context.Context, job domain.ScoringJob) (domain.ScoringJob, error)
	// Claim transitions the oldest eligible waiting job to active and
	// returns it; nil with nil error when nothing is runnable.
	Claim(ctx context.Context, now time.Time) (*domain.ScoringJob, error)
	// Release returns an active job to waiting for a later attempt.
	Release(ctx context.Context, jobID string, attempts int, nextRunAt time.Time, lastError string) error
	// Complete records the result and marks the job completed.
	Complete(ctx context.Context, jobID string, attempts int, result domain.CombinedScoreResult) error
	// Fail marks the job failed once attempts are exhausted.
	Fail(ctx context.Context, jobID string, attempts int, lastError string) error
	// RecoverStale returns active jobs not touched since the cutoff to
	// waiting, so work interrupted by a crash is reclaimed at boot.
	RecoverStale(ctx context.Context, cutoff time.Time) (int, error)
	// Get returns the job or nil when the id is unknown or purged.
	Get(ctx context.Context, jobID string) (*domain.ScoringJob, error)
	// Purge discards terminal jobs not updated since the cutoff.
	Purge(ctx context.Context, cutoff time.Time) (int, error)
	// Stats counts jobs per status.
	Stats(ctx context.Context) (domain.QueueStats, error)
}

// Scheduler controls when recurring maintenance runs.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
