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

// ProviderStore implements driven.ProviderStore in memory.
type ProviderStore struct {
	store *Store
}

var _ driven.ProviderStore = (*ProviderStore)(nil)

// Save stores a provider configuration. Marking it default clears the
// flag on all others.
func (s *ProviderStore) Save(_ context.Context, cfg *domain.ProviderConfig) (*domain.ProviderConfig, error) {
	if !cfg.Provider.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrProviderUnsupported, cfg.Provider)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	stored := *cfg
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	if stored.IsDefault {
		for _, other := range s.store.providers {
			other.IsDefault = false
		}
	}
	s.store.providers[stored.ID] = &stored
	out := stored
	return &out, nil
}

// Get retrieves a configuration by ID.
func (s *ProviderStore) Get(_ context.Context, id string) (*domain.ProviderConfig, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	cfg, ok := s.store.providers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *cfg
	return &out, nil
}

// GetDefault retrieves the default configuration.
func (s *ProviderStore) GetDefault(_ context.Context) (*domain.ProviderConfig, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	for _, cfg := range s.store.providers {
		if cfg.IsDefault {
			out := *cfg
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

// List returns all stored configurations.
func (s *ProviderStore) List(_ context.Context) ([]*domain.ProviderConfig, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var configs []*domain.ProviderConfig
	for _, cfg := range s.store.providers {
		out := *cfg
		configs = append(configs, &out)
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].CreatedAt.Before(configs[j].CreatedAt)
	})
	return configs, nil
}

// Delete removes a configuration.
func (s *ProviderStore) Delete(_ context.Context, id string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.providers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.store.providers, id)
	return nil
}
