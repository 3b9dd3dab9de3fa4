package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
)

// ChunkStore implements driven.ChunkStore in memory with exact cosine
// similarity search.
type ChunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*ChunkStore)(nil)

// ReplaceForDocument swaps a document's chunks atomically.
func (s *ChunkStore) ReplaceForDocument(_ context.Context, documentID string, chunks []*domain.Chunk) error {
	for _, c := range chunks {
		if err := domain.ValidateEmbedding(c.Embedding); err != nil {
			return err
		}
		if err := domain.ValidateChunkMetadata(c.Metadata); err != nil {
			return err
		}
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	now := time.Now().UTC()
	stored := make([]*domain.Chunk, len(chunks))
	for i, c := range chunks {
		cp := *c
		if cp.ID == "" {
			cp.ID = uuid.New().String()
		}
		cp.DocumentID = documentID
		cp.CreatedAt = now
		stored[i] = &cp
	}
	s.store.chunks[documentID] = stored
	return nil
}

// Search scans every chunk in the project and ranks by cosine
// similarity. Exact, not approximate: fine at in-memory scale.
func (s *ChunkStore) Search(
	_ context.Context, projectID string, embedding []float32, limit int,
) ([]domain.ScoredChunk, error) {
	if limit < domain.MinSearchLimit || limit > domain.MaxSearchLimit {
		return nil, fmt.Errorf("%w: limit %d outside [%d, %d]",
			domain.ErrInvalidInput, limit, domain.MinSearchLimit, domain.MaxSearchLimit)
	}
	if err := domain.ValidateEmbedding(embedding); err != nil {
		return nil, err
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var results []domain.ScoredChunk
	for docID, chunks := range s.store.chunks {
		doc, ok := s.store.documents[docID]
		if !ok {
			continue
		}
		coll, ok := s.store.collections[doc.CollectionID]
		if !ok || coll.ProjectID != projectID {
			continue
		}
		for _, c := range chunks {
			results = append(results, domain.ScoredChunk{
				Chunk:    *c,
				FilePath: doc.FilePath,
				Score:    cosineSimilarity(embedding, c.Embedding),
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// CountByProject returns the number of indexed chunks for a project.
func (s *ChunkStore) CountByProject(_ context.Context, projectID string) (int, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	count := 0
	for docID, chunks := range s.store.chunks {
		doc, ok := s.store.documents[docID]
		if !ok {
			continue
		}
		coll, ok := s.store.collections[doc.CollectionID]
		if !ok || coll.ProjectID != projectID {
			continue
		}
		count += len(chunks)
	}
	return count, nil
}

// cosineSimilarity computes the cosine of the angle between two
// equal-length vectors. Zero vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
