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

// collectionStore implements driven.CollectionStore.
type collectionStore struct {
	store *Store
}

var _ driven.CollectionStore = (*collectionStore)(nil)

const collectionColumns = `id, project_id, name, repo_url, folder_path,
	last_synced_at, last_commit_date, created_at, updated_at`

// Create stores a new collection.
func (s *collectionStore) Create(ctx context.Context, c *domain.DocCollection) (*domain.DocCollection, error) {
	if c.ProjectID == "" || c.RepoURL == "" {
		return nil, fmt.Errorf("%w: project ID and repo URL are required", domain.ErrInvalidInput)
	}

	stored := *c
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	_, err := s.store.pool.Exec(ctx, `
		INSERT INTO collections (id, project_id, name, repo_url, folder_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, stored.ID, stored.ProjectID, stored.Name, stored.RepoURL, stored.FolderPath,
		stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	return &stored, nil
}

// Get retrieves a collection by ID.
func (s *collectionStore) Get(ctx context.Context, id string) (*domain.DocCollection, error) {
	row := s.store.pool.QueryRow(ctx,
		"SELECT "+collectionColumns+" FROM collections WHERE id = $1", id)

	c, err := scanCollection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting collection: %w", err)
	}
	return c, nil
}

// ListByProject returns all collections in a project.
func (s *collectionStore) ListByProject(ctx context.Context, projectID string) ([]*domain.DocCollection, error) {
	rows, err := s.store.pool.Query(ctx,
		"SELECT "+collectionColumns+" FROM collections WHERE project_id = $1 ORDER BY created_at", projectID)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	var collections []*domain.DocCollection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

// UpdateSyncState stamps the collection after a completed ingestion run.
func (s *collectionStore) UpdateSyncState(
	ctx context.Context, id string, syncedAt time.Time, lastCommit *time.Time,
) error {
	tag, err := s.store.pool.Exec(ctx, `
		UPDATE collections
		SET last_synced_at = $2,
		    last_commit_date = COALESCE($3, last_commit_date),
		    updated_at = NOW()
		WHERE id = $1
	`, id, syncedAt.UTC(), lastCommit)
	if err != nil {
		return fmt.Errorf("updating sync state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a collection; documents and chunks cascade.
func (s *collectionStore) Delete(ctx context.Context, id string) error {
	tag, err := s.store.pool.Exec(ctx, "DELETE FROM collections WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanCollection reads one collection row.
func scanCollection(row pgx.Row) (*domain.DocCollection, error) {
	var c domain.DocCollection
	err := row.Scan(&c.ID, &c.ProjectID, &c.Name, &c.RepoURL, &c.FolderPath,
		&c.LastSyncedAt, &c.LastCommitDate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
