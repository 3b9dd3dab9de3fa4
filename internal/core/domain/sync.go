package domain

import "time"

// SyncResult summarises one ingestion run for a collection.
// A run with per-file failures is still a success as long as it
// completed; Success is false only when the run aborted before
// producing results (e.g. the file listing itself failed).
type SyncResult struct {
	// Success is true if the run reached completion.
	Success bool

	// FilesSynced is the number of documents stored.
	FilesSynced int

	// EmbeddingsCreated is the total number of chunks indexed.
	EmbeddingsCreated int

	// FilesFailed is the number of stored documents whose
	// chunk/embed/index step failed. Files that never stored (e.g.
	// download failures) appear in Errors only.
	FilesFailed int

	// Errors lists all per-file error messages accumulated during the run.
	Errors []string

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// JobState describes the lifecycle of an ingestion run.
type JobState string

// Ingestion job states.
const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// Terminal reports whether the state is final.
func (s JobState) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// SyncJob is the explicit record of one ingestion run. It replaces
// status inference from timestamps: a run is in progress exactly when
// a job row for the collection is in the running state.
type SyncJob struct {
	// ID is the unique identifier for the job.
	ID string

	// CollectionID is the collection being ingested.
	CollectionID string

	// State is the job's current lifecycle state.
	State JobState

	// StartedAt is when the job entered the running state.
	StartedAt time.Time

	// FinishedAt is when the job reached a terminal state.
	FinishedAt *time.Time

	// Error holds the top-level failure message for failed jobs.
	Error string
}
