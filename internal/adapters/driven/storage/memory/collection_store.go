package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
)

// CollectionStore implements driven.CollectionStore in memory.
type CollectionStore struct {
	store *Store
}

var _ driven.CollectionStore = (*CollectionStore)(nil)

// Create stores a new collection.
func (s *CollectionStore) Create(_ context.Context, c *domain.DocCollection) (*domain.DocCollection, error) {
	if c.ProjectID == "" || c.RepoURL == "" {
		return nil, fmt.Errorf("%w: project ID and repo URL are required", domain.ErrInvalidInput)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	stored := *c
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.store.collections[stored.ID] = &stored
	out := stored
	return &out, nil
}

// Get retrieves a collection by ID.
func (s *CollectionStore) Get(_ context.Context, id string) (*domain.DocCollection, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	c, ok := s.store.collections[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *c
	return &out, nil
}

// ListByProject returns all collections in a project.
func (s *CollectionStore) ListByProject(_ context.Context, projectID string) ([]*domain.DocCollection, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var collections []*domain.DocCollection
	for _, c := range s.store.collections {
		if c.ProjectID == projectID {
			out := *c
			collections = append(collections, &out)
		}
	}
	sort.Slice(collections, func(i, j int) bool {
		return collections[i].CreatedAt.Before(collections[j].CreatedAt)
	})
	return collections, nil
}

// UpdateSyncState stamps the collection after a completed ingestion run.
func (s *CollectionStore) UpdateSyncState(
	_ context.Context, id string, syncedAt time.Time, lastCommit *time.Time,
) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	c, ok := s.store.collections[id]
	if !ok {
		return domain.ErrNotFound
	}
	synced := syncedAt.UTC()
	c.LastSyncedAt = &synced
	if lastCommit != nil {
		commit := lastCommit.UTC()
		c.LastCommitDate = &commit
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete removes a collection and, transitively, its documents and chunks.
func (s *CollectionStore) Delete(_ context.Context, id string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.collections[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.store.collections, id)
	for docID, doc := range s.store.documents {
		if doc.CollectionID == id {
			delete(s.store.documents, docID)
			delete(s.store.chunks, docID)
		}
	}
	return nil
}
