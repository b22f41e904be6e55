package jobqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"StoryScanner/internal/domain"
	"StoryScanner/internal/ports"
)

type fakeRepo struct {
	mu         sync.Mutex
	stories    map[string]domain.StoryContent
	persistErr error
	persisted  map[string]domain.CombinedScoreResult
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		stories:   map[string]domain.StoryContent{},
		persisted: map[string]domain.CombinedScoreResult{},
	}
}

func (f *fakeRepo) FetchStory(_ context.Context, storyID string) (domain.StoryContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.stories[storyID]
	if !ok {
		return domain.StoryContent{}, errors.New("story not found")
	}
	return content, nil
}

func (f *fakeRepo) FetchCompany(_ context.Context, _ string) (*domain.CompanyContext, error) {
	return nil, nil
}

func (f *fakeRepo) PersistScore(_ context.Context, storyID string, result domain.CombinedScoreResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.persistErr != nil {
		return f.persistErr
	}
	f.persisted[storyID] = result
	return nil
}

func (f *fakeRepo) persistedFor(storyID string) (domain.CombinedScoreResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result, ok := f.persisted[storyID]
	return result, ok
}

type fakeScorer struct{}

func (fakeScorer) ScoreLocal(_ context.Context, _ domain.StoryContent, _ *domain.CompanyContext) domain.CombinedScoreResult {
	return domain.CombinedScoreResult{HypeScore: 5, EthicsScore: 5, Confidence: 0.5}
}

func (fakeScorer) ScoreWithEnhancement(_ context.Context, _ domain.StoryContent, _ *domain.CompanyContext) domain.CombinedScoreResult {
	return domain.CombinedScoreResult{HypeScore: 7, EthicsScore: 4, Confidence: 0.9, Enhanced: true}
}

var _ ports.StoryScorer = fakeScorer{}

func fastOptions() Options {
	return Options{
		Concurrency:  2,
		MaxAttempts:  3,
		BackoffBase:  time.Millisecond,
		PollInterval: 2 * time.Millisecond,
		Retention:    time.Hour,
	}
}

func newTestQueue(repo *fakeRepo) *Queue {
	return New(Deps{
		Store:      NewMemoryStore(),
		Repository: repo,
		Scorer:     fakeScorer{},
		Options:    fastOptions(),
	})
}

func TestEnqueueCoalescesPerStory(t *testing.T) {
	t.Parallel()

	queue := newTestQueue(newFakeRepo())
	ctx := context.Background()

	first, err := queue.Enqueue(ctx, "story-1")
	if err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	second, err := queue.Enqueue(ctx, "story-1")
	if err != nil {
		t.Fatalf("second enqueue: %v", err)
	}
	if first != second {
		t.Fatalf("expected coalesced job id, got %s and %s", first, second)
	}

	other, err := queue.Enqueue(ctx, "story-2")
	if err != nil {
		t.Fatalf("enqueue other story: %v", err)
	}
	if other == first {
		t.Fatal("different stories must not share a job")
	}

	stats, err := queue.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Waiting != 2 {
		t.Fatalf("expected 2 waiting jobs, got %+v", stats)
	}
}

func TestWorkerCompletesJob(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.stories["story-1"] = domain.StoryContent{ID: "story-1", Title: "A headline"}

	queue := newTestQueue(repo)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = queue.Start(ctx)
		close(done)
	}()

	jobID, err := queue.Enqueue(ctx, "story-1")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	job := waitForTerminal(t, queue, jobID)
	if job.Status != domain.JobCompleted {
		t.Fatalf("expected completed, got %s (lastError=%q)", job.Status, job.LastError)
	}
	if job.Result == nil || !job.Result.Enhanced {
		t.Fatalf("expected enhanced result on job, got %+v", job.Result)
	}
	if job.Attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", job.Attempts)
	}

	if persisted, ok := repo.persistedFor("story-1"); !ok || persisted.HypeScore != 7 {
		t.Fatalf("expected persisted score, got %+v (ok=%v)", persisted, ok)
	}

	cancel()
	<-done
}

func TestWorkerRetriesThenFails(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.stories["story-1"] = domain.StoryContent{ID: "story-1", Title: "A headline"}
	repo.persistErr = errors.New("disk full")

	queue := newTestQueue(repo)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = queue.Start(ctx)
		close(done)
	}()

	jobID, err := queue.Enqueue(ctx, "story-1")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	job := waitForTerminal(t, queue, jobID)
	if job.Status != domain.JobFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	if job.Attempts != fastOptions().MaxAttempts {
		t.Fatalf("expected %d attempts, got %d", fastOptions().MaxAttempts, job.Attempts)
	}
	if job.LastError == "" {
		t.Fatal("expected non-empty lastError")
	}

	cancel()
	<-done
}

func TestEnqueueWithoutRepositoryRefused(t *testing.T) {
	t.Parallel()

	queue := New(Deps{
		Store:   NewMemoryStore(),
		Scorer:  fakeScorer{},
		Options: fastOptions(),
	})

	if _, err := queue.Enqueue(context.Background(), "story-1"); err == nil {
		t.Fatal("expected enqueue to fail without a story repository")
	}
}

func TestWorkerFailsPersistedJobWithoutRepository(t *testing.T) {
	t.Parallel()

	// A job left behind by a run that had a database configured must
	// fail terminally, not crash the pool.
	store := NewMemoryStore()
	now := time.Now().UTC()
	if _, err := store.Enqueue(context.Background(), domain.ScoringJob{
		ID:        "job-1",
		StoryID:   "story-1",
		Status:    domain.JobWaiting,
		CreatedAt: now,
		UpdatedAt: now,
		NextRunAt: now,
	}); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	queue := New(Deps{
		Store:   store,
		Scorer:  fakeScorer{},
		Options: fastOptions(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = queue.Start(ctx)
		close(done)
	}()

	job := waitForTerminal(t, queue, "job-1")
	if job.Status != domain.JobFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	if job.Attempts != fastOptions().MaxAttempts {
		t.Fatalf("expected %d attempts, got %d", fastOptions().MaxAttempts, job.Attempts)
	}
	if job.LastError == "" {
		t.Fatal("expected non-empty lastError")
	}

	cancel()
	<-done
}

func TestPurgeExpiredKeepsOpenJobs(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	queue := New(Deps{
		Store:      store,
		Repository: newFakeRepo(),
		Scorer:     fakeScorer{},
		Options:    Options{Retention: time.Nanosecond},
	})
	ctx := context.Background()

	waitingID, err := queue.Enqueue(ctx, "story-open")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	doneID, err := queue.Enqueue(ctx, "story-done")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	claimed, err := store.Claim(ctx, time.Now().UTC())
	for claimed != nil && claimed.ID != doneID {
		claimed, err = store.Claim(ctx, time.Now().UTC())
	}
	if err != nil || claimed == nil {
		t.Fatalf("claim terminal candidate: %v", err)
	}
	if err := store.Complete(ctx, doneID, 1, domain.CombinedScoreResult{}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	time.Sleep(time.Millisecond)
	if _, err := queue.PurgeExpired(ctx); err != nil {
		t.Fatalf("purge: %v", err)
	}

	if job, _ := queue.Job(ctx, doneID); job != nil {
		t.Fatalf("expected terminal job purged, got %+v", job)
	}
	if job, _ := queue.Job(ctx, waitingID); job == nil {
		t.Fatal("waiting job must never be purged")
	}
}

func TestBackoffDoubles(t *testing.T) {
	t.Parallel()

	queue := New(Deps{Store: NewMemoryStore(), Options: Options{BackoffBase: 2 * time.Second}})

	if got := queue.backoff(1); got != 2*time.Second {
		t.Fatalf("backoff(1) = %v, want 2s", got)
	}
	if got := queue.backoff(2); got != 4*time.Second {
		t.Fatalf("backoff(2) = %v, want 4s", got)
	}
	if got := queue.backoff(3); got != 8*time.Second {
		t.Fatalf("backoff(3) = %v, want 8s", got)
	}
}

func TestJobLookupUnknownID(t *testing.T) {
	t.Parallel()

	queue := newTestQueue(newFakeRepo())
	job, err := queue.Job(context.Background(), "no-such-job")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil for unknown job, got %+v", job)
	}
}

// waitForTerminal polls until the job reaches a terminal state or the
// deadline expires.
func waitForTerminal(t *testing.T, queue *Queue, jobID string) *domain.ScoringJob {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := queue.Job(context.Background(), jobID)
		if err != nil {
			t.Fatalf("job lookup: %v", err)
		}
		if job != nil && job.Status.Terminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal state in time")
	return nil
}
