package driven

import (
	"context"
	"time"

	"github.com/docfoundry/docfoundry/internal/core/domain"
)

// CollectionStore persists documentation collections.
type CollectionStore interface {
	// Create stores a new collection.
	Create(ctx context.Context, c *domain.DocCollection) (*domain.DocCollection, error)

	// Get retrieves a collection by ID. Returns domain.ErrNotFound if
	// it does not exist.
	Get(ctx context.Context, id string) (*domain.DocCollection, error)

	// ListByProject returns all collections in a project.
	ListByProject(ctx context.Context, projectID string) ([]*domain.DocCollection, error)

	// UpdateSyncState stamps the collection after a completed
	// ingestion run. lastCommit may be nil when the remote commit
	// date could not be determined.
	UpdateSyncState(ctx context.Context, id string, syncedAt time.Time, lastCommit *time.Time) error

	// Delete removes a collection and, transitively, its documents
	// and chunks.
	Delete(ctx context.Context, id string) error
}
