// Package jobs defines the asynchronous processing contract for inbound
// chat messages. The webhook acknowledges immediately and hands the
// message to a queue; workers run the pipeline out of band.
package jobs

import (
	"context"
	"time"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
)

// MessageJob represents one inbound chat message queued for processing.
// Jobs are never retried: the pipeline converts its own failures into
// user-visible replies, and re-running a handled message would send the
// user a second answer.
type MessageJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// UpdateID is the transport's event identifier, kept for tracing.
	UpdateID int64 `json:"update_id"`

	// ChatID is the conversation the message came from.
	ChatID int64 `json:"chat_id"`

	// Text is the raw message text.
	Text string `json:"text"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job finished.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishMessage enqueues a chat message for asynchronous handling.
	PublishMessage(ctx context.Context, job *MessageJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job. A returned error marks
// the job failed; it is never re-enqueued.
type JobHandler func(ctx context.Context, job *MessageJob) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *MessageJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*MessageJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*MessageJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// ChatID filters jobs by conversation.
	ChatID int64

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int
}
