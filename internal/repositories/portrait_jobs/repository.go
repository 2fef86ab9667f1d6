// Package portraitjobs is the Redis-backed queue feeding the portrait worker
package portraitjobs

//go:generate mockgen -destination=mock/mock_repository.go -package=portraitjobsmock github.com/dabidoe/character-foundry/internal/repositories/portrait_jobs Repository

import (
	"context"
	"time"
)

// Status of a job
type Status string

// Job statuses
const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
)

// Job asks for one portrait of a character
type Job struct {
	ID          string    `json:"id"`
	CharacterID string    `json:"characterId"`
	Prompt      string    `json:"prompt"`
	Type        string    `json:"type"`
	RequestedAt time.Time `json:"requestedAt"`
}

// JobState is the last known state of a job
type JobState struct {
	JobID       string    `json:"jobId"`
	CharacterID string    `json:"characterId"`
	Status      Status    `json:"status"`
	URL         string    `json:"url,omitempty"`
	Error       string    `json:"error,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EnqueueInput holds the job to push
type EnqueueInput struct {
	Job *Job
}

// EnqueueOutput returns the queued job and queue depth
type EnqueueOutput struct {
	Job   *Job
	Depth int
}

// DequeueInput bounds how long to block
type DequeueInput struct {
	Timeout time.Duration
}

// DequeueOutput holds the popped job
type DequeueOutput struct {
	Job *Job
}

// SetStateInput records job progress
type SetStateInput struct {
	State *JobState
}

// GetStateInput identifies a job
type GetStateInput struct {
	JobID string
}

// GetStateOutput returns the job state
type GetStateOutput struct {
	State *JobState
}

// Repository is a FIFO queue of portrait jobs with per-job state
type Repository interface {
	// Enqueue pushes a job and marks it queued
	Enqueue(ctx context.Context, input EnqueueInput) (*EnqueueOutput, error)

	// Dequeue blocks up to Timeout for the oldest job
	// Returns errors.NotFound when the wait times out
	Dequeue(ctx context.Context, input DequeueInput) (*DequeueOutput, error)

	// SetState stores the latest job state
	SetState(ctx context.Context, input SetStateInput) error

	// GetState returns errors.NotFound for unknown or expired jobs
	GetState(ctx context.Context, input GetStateInput) (*GetStateOutput, error)
}
