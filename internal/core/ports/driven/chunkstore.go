package driven

import (
	"context"

	"github.com/docfoundry/docfoundry/internal/core/domain"
)

// ChunkStore persists embedded chunks and serves similarity search
// over them.
type ChunkStore interface {
	// ReplaceForDocument atomically deletes the document's existing
	// chunks and inserts the new set, keeping indices dense.
	ReplaceForDocument(ctx context.Context, documentID string, chunks []*domain.Chunk) error

	// Search returns the chunks most similar to the query embedding,
	// scoped to the project, ordered by descending score. limit must
	// be within [domain.MinSearchLimit, domain.MaxSearchLimit].
	Search(ctx context.Context, projectID string, embedding []float32, limit int) ([]domain.ScoredChunk, error)

	// CountByProject returns the number of indexed chunks for a project.
	CountByProject(ctx context.Context, projectID string) (int, error)
}
