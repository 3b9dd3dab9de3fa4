package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/docfoundry/docfoundry/internal/core/domain"
)

// mockSyncService implements driving.SyncService for testing.
type mockSyncService struct {
	result  *domain.SyncResult
	err     error
	synced  []string
	project string
}

func (m *mockSyncService) Sync(_ context.Context, collectionID string) (*domain.SyncResult, error) {
	m.synced = append(m.synced, collectionID)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockSyncService) SyncAll(_ context.Context, projectID string) (map[string]*domain.SyncResult, error) {
	m.project = projectID
	if m.err != nil {
		return nil, m.err
	}
	return map[string]*domain.SyncResult{"col-1": m.result}, nil
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestSyncCmd_Use(t *testing.T) {
	assert.Equal(t, "sync [collection-id]", syncCmd.Use)
}

func TestSyncCmd_SyncsOneCollection(t *testing.T) {
	old := syncService
	mock := &mockSyncService{result: &domain.SyncResult{
		Success:           true,
		FilesSynced:       4,
		EmbeddingsCreated: 12,
		Duration:          1500 * time.Millisecond,
	}}
	syncService = mock
	defer func() { syncService = old }()

	out, err := execute(t, "sync", "col-42")

	assert.NoError(t, err)
	assert.Equal(t, []string{"col-42"}, mock.synced)
	assert.Contains(t, out, "Synced 4 files, 12 embeddings")
}

func TestSyncCmd_PrintsFailures(t *testing.T) {
	old := syncService
	syncService = &mockSyncService{result: &domain.SyncResult{
		Success:     true,
		FilesSynced: 2,
		FilesFailed: 1,
		Errors:      []string{"docs/bad.md: download: boom"},
	}}
	defer func() { syncService = old }()

	out, err := execute(t, "sync", "col-1")

	assert.NoError(t, err)
	assert.Contains(t, out, "1 files failed")
	assert.Contains(t, out, "docs/bad.md")
}

func TestSyncCmd_SyncsAllWithProject(t *testing.T) {
	old := syncService
	mock := &mockSyncService{result: &domain.SyncResult{Success: true, FilesSynced: 1}}
	syncService = mock
	defer func() { syncService = old }()

	out, err := execute(t, "sync", "--project", "proj-1")

	assert.NoError(t, err)
	assert.Equal(t, "proj-1", mock.project)
	assert.Contains(t, out, "col-1")
}

func TestSyncCmd_RequiresCollectionOrProject(t *testing.T) {
	old := syncService
	oldProject := syncProject
	syncService = &mockSyncService{}
	syncProject = ""
	defer func() {
		syncService = old
		syncProject = oldProject
	}()

	_, err := execute(t, "sync")

	assert.Error(t, err)
}

func TestSyncCmd_ServiceNotConfigured(t *testing.T) {
	old := syncService
	syncService = nil
	defer func() { syncService = old }()

	_, err := execute(t, "sync", "col-1")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSyncCmd_PropagatesError(t *testing.T) {
	old := syncService
	syncService = &mockSyncService{err: domain.ErrSyncInProgress}
	defer func() { syncService = old }()

	_, err := execute(t, "sync", "col-1")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSyncInProgress))
}
