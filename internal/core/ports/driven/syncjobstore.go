package driven

import (
	"context"

	"github.com/docfoundry/docfoundry/internal/core/domain"
)

// SyncJobStore persists ingestion run records. Run status is read
// from these records, never inferred from collection timestamps.
type SyncJobStore interface {
	// Create stores a new job in the queued state.
	Create(ctx context.Context, job *domain.SyncJob) (*domain.SyncJob, error)

	// UpdateState transitions a job. errMsg is recorded for failed jobs.
	UpdateState(ctx context.Context, id string, state domain.JobState, errMsg string) error

	// GetActive returns the running job for a collection, or
	// domain.ErrNotFound when none is running.
	GetActive(ctx context.Context, collectionID string) (*domain.SyncJob, error)

	// ListByCollection returns a collection's jobs, newest first.
	ListByCollection(ctx context.Context, collectionID string) ([]*domain.SyncJob, error)
}
