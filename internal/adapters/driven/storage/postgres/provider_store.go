package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
)

// providerStore implements driven.ProviderStore. Rows never contain
// API keys; adapters read credentials from the environment.
type providerStore struct {
	store *Store
}

var _ driven.ProviderStore = (*providerStore)(nil)

const providerColumns = "id, provider, model, temperature, max_tokens, is_default, created_at"

// Save stores a provider configuration. Marking it default clears the
// flag on every other row within the same transaction.
func (s *providerStore) Save(ctx context.Context, cfg *domain.ProviderConfig) (*domain.ProviderConfig, error) {
	if !cfg.Provider.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrProviderUnsupported, cfg.Provider)
	}

	stored := *cfg
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	tx, err := s.store.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if stored.IsDefault {
		if _, err := tx.Exec(ctx, "UPDATE llm_providers SET is_default = FALSE"); err != nil {
			return nil, fmt.Errorf("clearing default flags: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO llm_providers (id, provider, model, temperature, max_tokens, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			provider = excluded.provider,
			model = excluded.model,
			temperature = excluded.temperature,
			max_tokens = excluded.max_tokens,
			is_default = excluded.is_default
	`, stored.ID, string(stored.Provider), stored.Model, stored.Temperature,
		stored.MaxTokens, stored.IsDefault, stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("saving provider: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing: %w", err)
	}
	return &stored, nil
}

// Get retrieves a configuration by ID.
func (s *providerStore) Get(ctx context.Context, id string) (*domain.ProviderConfig, error) {
	row := s.store.pool.QueryRow(ctx,
		"SELECT "+providerColumns+" FROM llm_providers WHERE id = $1", id)
	return scanProvider(row)
}

// GetDefault retrieves the default configuration.
func (s *providerStore) GetDefault(ctx context.Context) (*domain.ProviderConfig, error) {
	row := s.store.pool.QueryRow(ctx,
		"SELECT "+providerColumns+" FROM llm_providers WHERE is_default = TRUE LIMIT 1")
	return scanProvider(row)
}

// List returns all stored configurations.
func (s *providerStore) List(ctx context.Context) ([]*domain.ProviderConfig, error) {
	rows, err := s.store.pool.Query(ctx,
		"SELECT "+providerColumns+" FROM llm_providers ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("listing providers: %w", err)
	}
	defer rows.Close()

	var configs []*domain.ProviderConfig
	for rows.Next() {
		cfg, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// Delete removes a configuration.
func (s *providerStore) Delete(ctx context.Context, id string) error {
	tag, err := s.store.pool.Exec(ctx, "DELETE FROM llm_providers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanProvider reads one provider row.
func scanProvider(row pgx.Row) (*domain.ProviderConfig, error) {
	var cfg domain.ProviderConfig
	var provider string
	err := row.Scan(&cfg.ID, &provider, &cfg.Model, &cfg.Temperature,
		&cfg.MaxTokens, &cfg.IsDefault, &cfg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning provider: %w", err)
	}
	cfg.Provider = domain.ProviderName(provider)
	return &cfg, nil
}
