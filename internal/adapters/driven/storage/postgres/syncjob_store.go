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

// syncJobStore implements driven.SyncJobStore.
type syncJobStore struct {
	store *Store
}

var _ driven.SyncJobStore = (*syncJobStore)(nil)

const syncJobColumns = "id, collection_id, state, started_at, finished_at, error"

// Create stores a new job in the queued state.
func (s *syncJobStore) Create(ctx context.Context, job *domain.SyncJob) (*domain.SyncJob, error) {
	stored := *job
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.State == "" {
		stored.State = domain.JobQueued
	}

	_, err := s.store.pool.Exec(ctx, `
		INSERT INTO sync_jobs (id, collection_id, state, error)
		VALUES ($1, $2, $3, $4)
	`, stored.ID, stored.CollectionID, string(stored.State), stored.Error)
	if err != nil {
		return nil, fmt.Errorf("creating sync job: %w", err)
	}
	return &stored, nil
}

// UpdateState transitions a job. Entering the running state stamps
// started_at; terminal states stamp finished_at.
func (s *syncJobStore) UpdateState(ctx context.Context, id string, state domain.JobState, errMsg string) error {
	now := time.Now().UTC()

	query := `
		UPDATE sync_jobs
		SET state = $2,
		    error = $3,
		    started_at = CASE WHEN $2 = 'running' THEN $4 ELSE started_at END,
		    finished_at = CASE WHEN $2 IN ('succeeded', 'failed') THEN $4 ELSE finished_at END
		WHERE id = $1
	`
	result, err := s.store.pool.Exec(ctx, query, id, string(state), errMsg, now)
	if err != nil {
		return fmt.Errorf("updating sync job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetActive returns the running job for a collection.
func (s *syncJobStore) GetActive(ctx context.Context, collectionID string) (*domain.SyncJob, error) {
	row := s.store.pool.QueryRow(ctx,
		"SELECT "+syncJobColumns+" FROM sync_jobs WHERE collection_id = $1 AND state = 'running' LIMIT 1",
		collectionID)

	job, err := scanSyncJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting active job: %w", err)
	}
	return job, nil
}

// ListByCollection returns a collection's jobs, newest first.
func (s *syncJobStore) ListByCollection(ctx context.Context, collectionID string) ([]*domain.SyncJob, error) {
	rows, err := s.store.pool.Query(ctx,
		"SELECT "+syncJobColumns+" FROM sync_jobs WHERE collection_id = $1 ORDER BY created_at DESC",
		collectionID)
	if err != nil {
		return nil, fmt.Errorf("listing sync jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.SyncJob
	for rows.Next() {
		job, err := scanSyncJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sync job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// scanSyncJob reads one job row.
func scanSyncJob(row pgx.Row) (*domain.SyncJob, error) {
	var job domain.SyncJob
	var state string
	var startedAt *time.Time
	err := row.Scan(&job.ID, &job.CollectionID, &state, &startedAt, &job.FinishedAt, &job.Error)
	if err != nil {
		return nil, err
	}
	job.State = domain.JobState(state)
	if startedAt != nil {
		job.StartedAt = *startedAt
	}
	return &job, nil
}
