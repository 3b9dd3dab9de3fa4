package driven

import (
	"context"

	"github.com/docfoundry/docfoundry/internal/core/domain"
)

// ProviderStore persists completion provider configurations.
// Stored records never contain secrets; API keys are resolved from
// the environment by the adapters.
type ProviderStore interface {
	// Save stores a provider configuration. Marking a configuration
	// as default clears the flag on all others.
	Save(ctx context.Context, cfg *domain.ProviderConfig) (*domain.ProviderConfig, error)

	// Get retrieves a configuration by ID.
	Get(ctx context.Context, id string) (*domain.ProviderConfig, error)

	// GetDefault retrieves the default configuration. Returns
	// domain.ErrNotFound when none is marked default.
	GetDefault(ctx context.Context) (*domain.ProviderConfig, error)

	// List returns all stored configurations.
	List(ctx context.Context) ([]*domain.ProviderConfig, error)

	// Delete removes a configuration.
	Delete(ctx context.Context, id string) error
}
