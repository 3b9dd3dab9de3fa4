package driven

import (
	"context"

	"github.com/docfoundry/docfoundry/internal/core/domain"
)

// DocumentStore persists fetched documents.
type DocumentStore interface {
	// Upsert stores the document, replacing any existing row with the
	// same (CollectionID, FilePath) in a single atomic statement, and
	// returns the stored document with its identifier populated.
	// Replacing a document deletes its previous chunks transitively.
	Upsert(ctx context.Context, doc *domain.Document) (*domain.Document, error)

	// Get retrieves a document by ID. Returns domain.ErrNotFound if
	// it does not exist.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// ListByCollection returns all documents in a collection.
	ListByCollection(ctx context.Context, collectionID string) ([]*domain.Document, error)

	// Delete removes a document and, transitively, its chunks.
	Delete(ctx context.Context, id string) error
}
