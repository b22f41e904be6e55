package domain

import "time"

// JobStatus enumerates the enhancement job lifecycle.
type JobStatus string

const (
	JobWaiting   JobStatus = "waiting"
	JobActive    JobStatus = "active"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// ScoringJob tracks one asynchronous enhancement request. Transitions
// are driven exclusively by the worker owning the current attempt.
// Terminal jobs are retained for a bounded window and then purged; the
// persisted CombinedScoreResult on the story is the durable artifact.
type ScoringJob struct {
	ID        string               `json:"id"`
	StoryID   string               `json:"storyId"`
	Status    JobStatus            `json:"status"`
	Attempts  int                  `json:"attempts"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
	NextRunAt time.Time            `json:"-"`
	Result    *CombinedScoreResult `json:"result,omitempty"`
	LastError string               `json:"lastError,omitempty"`
}
