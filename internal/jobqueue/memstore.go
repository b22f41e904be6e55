package jobqueue

import (
	"context"
	"sync"
	"time"

	"StoryScanner/internal/domain"
	"StoryScanner/internal/ports"
)

// MemoryStore is a mutex-guarded in-process job store. Job state does
// not survive restarts, so it is suitable only for tests and
// single-process development runs; production uses the SQLite-backed
// store.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]*domain.ScoringJob
}

var _ ports.JobStore = (*MemoryStore)(nil)

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: map[string]*domain.ScoringJob{}}
}

// Enqueue inserts the job, coalescing onto any open job for the story.
func (m *MemoryStore) Enqueue(_ context.Context, job domain.ScoringJob) (domain.ScoringJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.jobs {
		if existing.StoryID == job.StoryID && !existing.Status.Terminal() {
			return *cloneJob(existing), nil
		}
	}

	stored := cloneJob(&job)
	m.jobs[job.ID] = stored
	return *cloneJob(stored), nil
}

// Claim atomically moves the oldest runnable waiting job to active.
func (m *MemoryStore) Claim(_ context.Context, now time.Time) (*domain.ScoringJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var candidate *domain.ScoringJob
	for _, job := range m.jobs {
		if job.Status != domain.JobWaiting || job.NextRunAt.After(now) {
			continue
		}
		if candidate == nil || job.NextRunAt.Before(candidate.NextRunAt) {
			candidate = job
		}
	}
	if candidate == nil {
		return nil, nil
	}

	candidate.Status = domain.JobActive
	candidate.UpdatedAt = now
	return cloneJob(candidate), nil
}

// Release returns an active job to waiting for a later attempt.
func (m *MemoryStore) Release(_ context.Context, jobID string, attempts int, nextRunAt time.Time, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok || job.Status != domain.JobActive {
		return nil
	}
	job.Status = domain.JobWaiting
	job.Attempts = attempts
	job.NextRunAt = nextRunAt
	job.LastError = lastError
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete records the result and marks the job completed.
func (m *MemoryStore) Complete(_ context.Context, jobID string, attempts int, result domain.CombinedScoreResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return nil
	}
	job.Status = domain.JobCompleted
	job.Attempts = attempts
	job.Result = &result
	job.LastError = ""
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// Fail marks the job failed with its terminal error.
func (m *MemoryStore) Fail(_ context.Context, jobID string, attempts int, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return nil
	}
	job.Status = domain.JobFailed
	job.Attempts = attempts
	job.LastError = lastError
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// RecoverStale returns active jobs not touched since the cutoff to
// waiting.
func (m *MemoryStore) RecoverStale(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recovered := 0
	for _, job := range m.jobs {
		if job.Status == domain.JobActive && !job.UpdatedAt.After(cutoff) {
			job.Status = domain.JobWaiting
			job.NextRunAt = cutoff
			recovered++
		}
	}
	return recovered, nil
}

// Get returns a copy of the job or nil when unknown.
func (m *MemoryStore) Get(_ context.Context, jobID string) (*domain.ScoringJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return nil, nil
	}
	return cloneJob(job), nil
}

// Purge discards terminal jobs not updated since the cutoff.
func (m *MemoryStore) Purge(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	purged := 0
	for id, job := range m.jobs {
		if job.Status.Terminal() && job.UpdatedAt.Before(cutoff) {
			delete(m.jobs, id)
			purged++
		}
	}
	return purged, nil
}

// Stats counts jobs per status.
func (m *MemoryStore) Stats(_ context.Context) (domain.QueueStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stats domain.QueueStats
	for _, job := range m.jobs {
		switch job.Status {
		case domain.JobWaiting:
			stats.Waiting++
		case domain.JobActive:
			stats.Active++
		case domain.JobCompleted:
			stats.Completed++
		case domain.JobFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

func cloneJob(job *domain.ScoringJob) *domain.ScoringJob {
	copied := *job
	if job.Result != nil {
		result := *job.Result
		copied.Result = &result
	}
	return &copied
}
