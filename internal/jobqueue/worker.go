package jobqueue

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"StoryScanner/internal/domain"
)

// Start launches the worker pool and blocks until the context is
// cancelled and all workers have drained. Each claimed job is owned by
// exactly one worker; the store's Claim guarantees no double dispatch.
func (q *Queue) Start(ctx context.Context) error {
	// Jobs left active by a previous process are reclaimed before any
	// worker runs; no worker can own them yet.
	if recovered, err := q.store.RecoverStale(ctx, time.Now().UTC()); err != nil {
		q.debug("recover stale jobs failed", "error", err)
	} else if recovered > 0 {
		q.debug("recovered stale active jobs", "count", recovered)
	}

	group, ctx := errgroup.WithContext(ctx)
	for i := 0; i < q.opts.Concurrency; i++ {
		worker := i
		group.Go(func() error {
			q.runWorker(ctx, worker)
			return nil
		})
	}
	return group.Wait()
}

func (q *Queue) runWorker(ctx context.Context, worker int) {
	ticker := time.NewTicker(q.opts.PollInterval)
	defer ticker.Stop()

	for {
		// Drain runnable jobs before sleeping so bursts clear quickly.
		for {
			if ctx.Err() != nil {
				return
			}
			job, err := q.store.Claim(ctx, time.Now().UTC())
			if err != nil {
				q.debug("claim failed", "worker", worker, "error", err)
				break
			}
			if job == nil {
				break
			}
			q.process(ctx, job)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// process runs one enhancement attempt to completion, failure, or
// retry. Only this worker may transition the job's state while the
// attempt is in flight.
func (q *Queue) process(ctx context.Context, job *domain.ScoringJob) {
	attempts := job.Attempts + 1

	result, err := q.score(ctx, job.StoryID)
	if err != nil {
		q.retryOrFail(ctx, job, attempts, err)
		return
	}

	if err := q.repo.PersistScore(ctx, job.StoryID, result); err != nil {
		// Losing a computed enhancement silently would be a
		// correctness bug, so the persist failure is retryable.
		q.retryOrFail(ctx, job, attempts, fmt.Errorf("persist score: %w", err))
		return
	}

	if err := q.store.Complete(ctx, job.ID, attempts, result); err != nil {
		q.debug("mark completed failed", "job", job.ID, "error", err)
		return
	}
	q.debug("job completed", "job", job.ID, "story", job.StoryID, "attempts", attempts)
}

func (q *Queue) score(ctx context.Context, storyID string) (domain.CombinedScoreResult, error) {
	// Jobs persisted by a run that had a database configured can
	// resurface in one that does not; they fail through the normal
	// path instead of dereferencing a nil repository.
	if q.repo == nil {
		return domain.CombinedScoreResult{}, fmt.Errorf("story store is not configured")
	}

	content, err := q.repo.FetchStory(ctx, storyID)
	if err != nil {
		return domain.CombinedScoreResult{}, fmt.Errorf("fetch story: %w", err)
	}

	var company *domain.CompanyContext
	if content.CompanyID != "" {
		company, err = q.repo.FetchCompany(ctx, content.CompanyID)
		if err != nil {
			return domain.CombinedScoreResult{}, fmt.Errorf("fetch company: %w", err)
		}
	}

	return q.scorer.ScoreWithEnhancement(ctx, content, company), nil
}

func (q *Queue) retryOrFail(ctx context.Context, job *domain.ScoringJob, attempts int, cause error) {
	if attempts < q.opts.MaxAttempts {
		nextRun := time.Now().UTC().Add(q.backoff(attempts))
		if err := q.store.Release(ctx, job.ID, attempts, nextRun, cause.Error()); err != nil {
			q.debug("release for retry failed", "job", job.ID, "error", err)
		}
		q.debug("job released for retry", "job", job.ID, "attempts", attempts, "next_run", nextRun)
		return
	}

	if err := q.store.Fail(ctx, job.ID, attempts, cause.Error()); err != nil {
		q.debug("mark failed failed", "job", job.ID, "error", err)
		return
	}
	q.debug("job failed terminally", "job", job.ID, "story", job.StoryID, "attempts", attempts, "error", cause)
}
