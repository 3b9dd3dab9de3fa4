// Package memory provides in-memory implementations of the storage
// ports. It backs local no-database runs and the service test suites.
package memory

import (
	"sync"

	"github.com/docfoundry/docfoundry/internal/core/domain"
)

// Store holds all in-memory state behind a single mutex. Operations
// are safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	collections map[string]*domain.DocCollection
	documents   map[string]*domain.Document
	chunks      map[string][]*domain.Chunk // keyed by document ID
	providers   map[string]*domain.ProviderConfig
	jobs        map[string]*domain.SyncJob
	jobOrder    []string // job IDs in creation order
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]*domain.DocCollection),
		documents:   make(map[string]*domain.Document),
		chunks:      make(map[string][]*domain.Chunk),
		providers:   make(map[string]*domain.ProviderConfig),
		jobs:        make(map[string]*domain.SyncJob),
	}
}

// CollectionStore returns the collection persistence interface.
func (s *Store) CollectionStore() *CollectionStore { return &CollectionStore{store: s} }

// DocumentStore returns the document persistence interface.
func (s *Store) DocumentStore() *DocumentStore { return &DocumentStore{store: s} }

// ChunkStore returns the chunk persistence and search interface.
func (s *Store) ChunkStore() *ChunkStore { return &ChunkStore{store: s} }

// ProviderStore returns the provider configuration interface.
func (s *Store) ProviderStore() *ProviderStore { return &ProviderStore{store: s} }

// SyncJobStore returns the ingestion job record interface.
func (s *Store) SyncJobStore() *SyncJobStore { return &SyncJobStore{store: s} }
