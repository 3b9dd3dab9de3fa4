package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
)

// chunkStore implements driven.ChunkStore on pgvector.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// ReplaceForDocument atomically swaps a document's chunks. Indices
// stay dense because the old set is removed in the same transaction.
func (s *chunkStore) ReplaceForDocument(ctx context.Context, documentID string, chunks []*domain.Chunk) (err error) {
	for _, c := range chunks {
		if err := domain.ValidateEmbedding(c.Embedding); err != nil {
			return err
		}
		if err := domain.ValidateChunkMetadata(c.Metadata); err != nil {
			return err
		}
	}

	tx, err := s.store.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("rollback failed: %w; original error: %v", rbErr, err)
			}
			return
		}
		err = tx.Commit(ctx)
	}()

	if _, err = tx.Exec(ctx, "DELETE FROM chunks WHERE document_id = $1", documentID); err != nil {
		return fmt.Errorf("deleting old chunks: %w", err)
	}

	now := time.Now().UTC()
	for _, c := range chunks {
		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}

		metadata, marshalErr := json.Marshal(c.Metadata)
		if marshalErr != nil {
			err = fmt.Errorf("marshalling chunk metadata: %w", marshalErr)
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO chunks (id, document_id, text, chunk_index, embedding, header_anchor, metadata, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, documentID, c.Text, c.Index, pgvector.NewVector(c.Embedding),
			c.HeaderAnchor, metadata, now)
		if err != nil {
			return fmt.Errorf("inserting chunk %d: %w", c.Index, err)
		}
	}

	return nil
}

// Search returns the chunks most similar to the query embedding,
// scoped to the project. Score is cosine similarity (1 - distance),
// served by the HNSW index.
func (s *chunkStore) Search(
	ctx context.Context, projectID string, embedding []float32, limit int,
) ([]domain.ScoredChunk, error) {
	if limit < domain.MinSearchLimit || limit > domain.MaxSearchLimit {
		return nil, fmt.Errorf("%w: limit %d outside [%d, %d]",
			domain.ErrInvalidInput, limit, domain.MinSearchLimit, domain.MaxSearchLimit)
	}
	if err := domain.ValidateEmbedding(embedding); err != nil {
		return nil, err
	}

	rows, err := s.store.pool.Query(ctx, `
		SELECT c.id, c.document_id, c.text, c.chunk_index, c.header_anchor, c.metadata,
		       d.file_path,
		       1 - (c.embedding <=> $1) AS score
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		JOIN collections col ON col.id = d.collection_id
		WHERE col.project_id = $2
		ORDER BY c.embedding <=> $1 ASC
		LIMIT $3
	`, pgvector.NewVector(embedding), projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	defer rows.Close()

	results := make([]domain.ScoredChunk, 0, limit)
	for rows.Next() {
		var sc domain.ScoredChunk
		var metadata []byte
		if err := rows.Scan(&sc.Chunk.ID, &sc.Chunk.DocumentID, &sc.Chunk.Text,
			&sc.Chunk.Index, &sc.Chunk.HeaderAnchor, &metadata,
			&sc.FilePath, &sc.Score); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &sc.Chunk.Metadata); err != nil {
				return nil, fmt.Errorf("decoding chunk metadata: %w", err)
			}
		}
		results = append(results, sc)
	}
	return results, rows.Err()
}

// CountByProject returns the number of indexed chunks for a project.
func (s *chunkStore) CountByProject(ctx context.Context, projectID string) (int, error) {
	var count int
	err := s.store.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		JOIN collections col ON col.id = d.collection_id
		WHERE col.project_id = $1
	`, projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}
