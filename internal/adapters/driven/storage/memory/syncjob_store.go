package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
)

// SyncJobStore implements driven.SyncJobStore in memory.
type SyncJobStore struct {
	store *Store
}

var _ driven.SyncJobStore = (*SyncJobStore)(nil)

// Create stores a new job in the queued state.
func (s *SyncJobStore) Create(_ context.Context, job *domain.SyncJob) (*domain.SyncJob, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	stored := *job
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.State == "" {
		stored.State = domain.JobQueued
	}
	s.store.jobs[stored.ID] = &stored
	s.store.jobOrder = append(s.store.jobOrder, stored.ID)
	out := stored
	return &out, nil
}

// UpdateState transitions a job.
func (s *SyncJobStore) UpdateState(_ context.Context, id string, state domain.JobState, errMsg string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	job, ok := s.store.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now().UTC()
	job.State = state
	job.Error = errMsg
	if state == domain.JobRunning {
		job.StartedAt = now
	}
	if state.Terminal() {
		job.FinishedAt = &now
	}
	return nil
}

// GetActive returns the running job for a collection.
func (s *SyncJobStore) GetActive(_ context.Context, collectionID string) (*domain.SyncJob, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	for _, job := range s.store.jobs {
		if job.CollectionID == collectionID && job.State == domain.JobRunning {
			out := *job
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListByCollection returns a collection's jobs, newest first.
func (s *SyncJobStore) ListByCollection(_ context.Context, collectionID string) ([]*domain.SyncJob, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var jobs []*domain.SyncJob
	for i := len(s.store.jobOrder) - 1; i >= 0; i-- {
		job, ok := s.store.jobs[s.store.jobOrder[i]]
		if !ok || job.CollectionID != collectionID {
			continue
		}
		out := *job
		jobs = append(jobs, &out)
	}
	return jobs, nil
}
