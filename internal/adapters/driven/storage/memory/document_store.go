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

// DocumentStore implements driven.DocumentStore in memory.
type DocumentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*DocumentStore)(nil)

// Upsert stores the document, replacing any existing entry with the
// same (CollectionID, FilePath).
func (s *DocumentStore) Upsert(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	if doc.CollectionID == "" || doc.FilePath == "" {
		return nil, fmt.Errorf("%w: collection ID and file path are required", domain.ErrInvalidInput)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	now := time.Now().UTC()
	stored := *doc

	for _, existing := range s.store.documents {
		if existing.CollectionID == doc.CollectionID && existing.FilePath == doc.FilePath {
			stored.ID = existing.ID
			stored.CreatedAt = existing.CreatedAt
			stored.UpdatedAt = now
			s.store.documents[stored.ID] = &stored
			out := stored
			return &out, nil
		}
	}

	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.store.documents[stored.ID] = &stored
	out := stored
	return &out, nil
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	doc, ok := s.store.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *doc
	return &out, nil
}

// ListByCollection returns all documents in a collection, ordered by path.
func (s *DocumentStore) ListByCollection(_ context.Context, collectionID string) ([]*domain.Document, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var docs []*domain.Document
	for _, doc := range s.store.documents {
		if doc.CollectionID == collectionID {
			out := *doc
			docs = append(docs, &out)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].FilePath < docs[j].FilePath })
	return docs, nil
}

// Delete removes a document and its chunks.
func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.store.documents, id)
	delete(s.store.chunks, id)
	return nil
}
