package driving

import (
	"context"

	"github.com/docfoundry/docfoundry/internal/core/domain"
)

// SyncService drives the ingestion pipeline: fetch files from the
// collection's repository, persist documents, chunk, embed, and index.
type SyncService interface {
	// Sync runs one ingestion pass for a collection. Per-file failures
	// are recorded in the result rather than aborting the run.
	Sync(ctx context.Context, collectionID string) (*domain.SyncResult, error)

	// SyncAll runs Sync for every collection in a project concurrently
	// and returns results keyed by collection ID.
	SyncAll(ctx context.Context, projectID string) (map[string]*domain.SyncResult, error)
}
