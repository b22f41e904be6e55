// Package jobstore persists enhancement jobs in SQLite so queue state
// survives process restarts.
package jobstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"StoryScanner/internal/domain"
	"StoryScanner/internal/ports"
)

// SQLiteStore implements ports.JobStore on a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ ports.JobStore = (*SQLiteStore)(nil)

// New opens (creating if needed) the job database at dbPath.
func New(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create job store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}
	// SQLite tolerates exactly one writer; funnel everything through
	// a single connection instead of racing on SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scoring_jobs (
		id TEXT PRIMARY KEY,
		story_id TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		result_json TEXT,
		last_error TEXT NOT NULL DEFAULT '',
		next_run_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_status_next_run ON scoring_jobs(status, next_run_at);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_story_open ON scoring_jobs(story_id)
		WHERE status IN ('waiting', 'active');
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate job store: %w", err)
	}
	return nil
}

// Enqueue inserts the job unless an open job already exists for the
// story, in which case the existing job is returned.
func (s *SQLiteStore) Enqueue(ctx context.Context, job domain.ScoringJob) (domain.ScoringJob, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ScoringJob{}, fmt.Errorf("begin enqueue: %w", err)
	}
	defer tx.Rollback()

	existing, err := scanJob(tx.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM scoring_jobs
		 WHERE story_id = ? AND status IN ('waiting', 'active')`, job.StoryID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.ScoringJob{}, fmt.Errorf("check open job: %w", err)
	}
	if err == nil {
		return *existing, tx.Commit()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scoring_jobs (id, story_id, status, attempts, next_run_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.StoryID, string(job.Status), job.Attempts,
		encodeTime(job.NextRunAt), encodeTime(job.CreatedAt), encodeTime(job.UpdatedAt))
	if err != nil {
		return domain.ScoringJob{}, fmt.Errorf("insert job: %w", err)
	}

	return job, tx.Commit()
}

// Claim atomically transitions the oldest runnable waiting job to
// active so no two workers can own the same attempt.
func (s *SQLiteStore) Claim(ctx context.Context, now time.Time) (*domain.ScoringJob, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim: %w", err)
	}
	defer tx.Rollback()

	job, err := scanJob(tx.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM scoring_jobs
		 WHERE status = 'waiting' AND next_run_at <= ?
		 ORDER BY next_run_at LIMIT 1`, encodeTime(now)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tx.Commit()
	}
	if err != nil {
		return nil, fmt.Errorf("select claimable job: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE scoring_jobs SET status = 'active', updated_at = ?
		 WHERE id = ? AND status = 'waiting'`,
		encodeTime(now), job.ID)
	if err != nil {
		return nil, fmt.Errorf("claim job %s: %w", job.ID, err)
	}
	if affected, _ := res.RowsAffected(); affected != 1 {
		return nil, tx.Commit()
	}

	job.Status = domain.JobActive
	job.UpdatedAt = now
	return job, tx.Commit()
}

// Release returns an active job to waiting for a later attempt.
func (s *SQLiteStore) Release(ctx context.Context, jobID string, attempts int, nextRunAt time.Time, lastError string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scoring_jobs
		 SET status = 'waiting', attempts = ?, next_run_at = ?, last_error = ?, updated_at = ?
		 WHERE id = ? AND status = 'active'`,
		attempts, encodeTime(nextRunAt), lastError, encodeTime(time.Now().UTC()), jobID)
	if err != nil {
		return fmt.Errorf("release job %s: %w", jobID, err)
	}
	return nil
}

// Complete records the result and marks the job completed.
func (s *SQLiteStore) Complete(ctx context.Context, jobID string, attempts int, result domain.CombinedScoreResult) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE scoring_jobs
		 SET status = 'completed', attempts = ?, result_json = ?, last_error = '', updated_at = ?
		 WHERE id = ?`,
		attempts, string(encoded), encodeTime(time.Now().UTC()), jobID)
	if err != nil {
		return fmt.Errorf("complete job %s: %w", jobID, err)
	}
	return nil
}

// Fail marks the job failed with its terminal error.
func (s *SQLiteStore) Fail(ctx context.Context, jobID string, attempts int, lastError string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scoring_jobs
		 SET status = 'failed', attempts = ?, last_error = ?, updated_at = ?
		 WHERE id = ?`,
		attempts, lastError, encodeTime(time.Now().UTC()), jobID)
	if err != nil {
		return fmt.Errorf("fail job %s: %w", jobID, err)
	}
	return nil
}

// RecoverStale returns active jobs not touched since the cutoff to
// waiting, reclaiming work interrupted by a crash.
func (s *SQLiteStore) RecoverStale(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scoring_jobs
		 SET status = 'waiting', next_run_at = ?, updated_at = ?
		 WHERE status = 'active' AND updated_at <= ?`,
		encodeTime(cutoff), encodeTime(time.Now().UTC()), encodeTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("recover stale jobs: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// Get returns the job or nil when the id is unknown or purged.
func (s *SQLiteStore) Get(ctx context.Context, jobID string) (*domain.ScoringJob, error) {
	job, err := scanJob(s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM scoring_jobs WHERE id = ?`, jobID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return job, nil
}

// Purge discards terminal jobs not updated since the cutoff.
func (s *SQLiteStore) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM scoring_jobs
		 WHERE status IN ('completed', 'failed') AND updated_at < ?`,
		encodeTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purge jobs: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// Stats counts jobs per status.
func (s *SQLiteStore) Stats(ctx context.Context) (domain.QueueStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM scoring_jobs GROUP BY status`)
	if err != nil {
		return domain.QueueStats{}, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats domain.QueueStats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return domain.QueueStats{}, fmt.Errorf("scan stats: %w", err)
		}
		switch domain.JobStatus(status) {
		case domain.JobWaiting:
			stats.Waiting = count
		case domain.JobActive:
			stats.Active = count
		case domain.JobCompleted:
			stats.Completed = count
		case domain.JobFailed:
			stats.Failed = count
		}
	}
	if err := rows.Err(); err != nil {
		return domain.QueueStats{}, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}

const jobColumns = "id, story_id, status, attempts, result_json, last_error, next_run_at, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.ScoringJob, error) {
	var job domain.ScoringJob
	var status string
	var resultJSON sql.NullString
	var nextRunAt, createdAt, updatedAt int64

	err := row.Scan(&job.ID, &job.StoryID, &status, &job.Attempts,
		&resultJSON, &job.LastError, &nextRunAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	job.Status = domain.JobStatus(status)
	job.NextRunAt = decodeTime(nextRunAt)
	job.CreatedAt = decodeTime(createdAt)
	job.UpdatedAt = decodeTime(updatedAt)

	if resultJSON.Valid && resultJSON.String != "" {
		var result domain.CombinedScoreResult
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return nil, fmt.Errorf("decode result for job %s: %w", job.ID, err)
		}
		job.Result = &result
	}
	return &job, nil
}

// Times are stored as Unix nanoseconds so SQL range comparisons need
// no driver-specific datetime handling.
func encodeTime(t time.Time) int64 {
	return t.UnixNano()
}

func decodeTime(value int64) time.Time {
	return time.Unix(0, value).UTC()
}
