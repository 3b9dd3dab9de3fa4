package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, collection_id, file_path, file_type, file_size,
	content, metadata, created_at, updated_at`

// Upsert stores the document in a single atomic statement keyed on
// (collection_id, file_path). Concurrent syncs of the same path cannot
// race into duplicate rows.
func (s *documentStore) Upsert(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	if doc.CollectionID == "" || doc.FilePath == "" {
		return nil, fmt.Errorf("%w: collection ID and file path are required", domain.ErrInvalidInput)
	}

	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshalling metadata: %w", err)
	}

	id := doc.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()

	stored := *doc
	row := s.store.pool.QueryRow(ctx, `
		INSERT INTO documents (id, collection_id, file_path, file_type, file_size, content, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (collection_id, file_path) DO UPDATE SET
			file_type = excluded.file_type,
			file_size = excluded.file_size,
			content = excluded.content,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
		RETURNING id, created_at, updated_at
	`, id, doc.CollectionID, doc.FilePath, doc.FileType, doc.FileSize,
		doc.Content, metadata, now)

	if err := row.Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upserting document: %w", err)
	}

	return &stored, nil
}

// Get retrieves a document by ID.
func (s *documentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.pool.QueryRow(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = $1", id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return doc, nil
}

// ListByCollection returns all documents in a collection.
func (s *documentStore) ListByCollection(ctx context.Context, collectionID string) ([]*domain.Document, error) {
	rows, err := s.store.pool.Query(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE collection_id = $1 ORDER BY file_path", collectionID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete removes a document; chunks cascade.
func (s *documentStore) Delete(ctx context.Context, id string) error {
	tag, err := s.store.pool.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanDocument reads one document row.
func scanDocument(row pgx.Row) (*domain.Document, error) {
	var doc domain.Document
	var metadata []byte
	err := row.Scan(&doc.ID, &doc.CollectionID, &doc.FilePath, &doc.FileType,
		&doc.FileSize, &doc.Content, &metadata, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata: %w", err)
		}
	}
	return &doc, nil
}
