package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docfoundry/docfoundry/internal/adapters/driven/storage/memory"
	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockFetcher implements driven.DocFetcher.
type mockFetcher struct {
	files        []driven.RemoteFile
	listErr      error
	contents     map[string]string
	downloadErrs map[string]error
	commitDate   time.Time
	commitErr    error
}

func (m *mockFetcher) ListFiles(_ context.Context, _, _ string) ([]driven.RemoteFile, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.files, nil
}

func (m *mockFetcher) DownloadFile(_ context.Context, _, path string) (string, error) {
	if err, ok := m.downloadErrs[path]; ok {
		return "", err
	}
	content, ok := m.contents[path]
	if !ok {
		return "", domain.ErrNotFound
	}
	return content, nil
}

func (m *mockFetcher) LastCommitDate(_ context.Context, _, _ string) (time.Time, error) {
	if m.commitErr != nil {
		return time.Time{}, m.commitErr
	}
	return m.commitDate, nil
}

// mockChunker implements driven.Chunker, producing one fragment per
// line of content.
type mockChunker struct {
	errPaths map[string]error
}

func (m *mockChunker) Chunk(_ context.Context, content, filePath, fileType string) ([]driven.ChunkResult, error) {
	if err, ok := m.errPaths[filePath]; ok {
		return nil, err
	}
	lines := strings.Split(strings.TrimSpace(content), "\n")
	results := make([]driven.ChunkResult, len(lines))
	for i, line := range lines {
		results[i] = driven.ChunkResult{
			Text:     line,
			Index:    i,
			Metadata: domain.NewChunkMetadata(filePath, filePath, fileType, i, len(lines)),
		}
	}
	return results, nil
}

// mockEmbedder implements driven.EmbeddingService with fixed-value
// vectors. Texts containing failSubstring fail their whole batch.
type mockEmbedder struct {
	calls         int
	embedFn       func(text string) []float32
	err           error
	failSubstring string
}

func (m *mockEmbedder) vector(text string) []float32 {
	if m.embedFn != nil {
		return m.embedFn(text)
	}
	v := make([]float32, domain.EmbeddingDimensions)
	v[0] = 1
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if m.failSubstring != "" && strings.Contains(text, m.failSubstring) {
			return nil, errors.New("embedding backend error")
		}
		m.calls++
		out[i] = m.vector(text)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int   { return domain.EmbeddingDimensions }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }

// --- Test helpers ---

func newTestOrchestrator(t *testing.T, fetcher *mockFetcher) (*SyncOrchestrator, *memory.Store, *domain.DocCollection) {
	t.Helper()
	store := memory.NewStore()

	collection, err := store.CollectionStore().Create(context.Background(), &domain.DocCollection{
		ProjectID:  "proj-1",
		Name:       "docs",
		RepoURL:    "https://github.com/acme/widgets",
		FolderPath: "docs",
	})
	require.NoError(t, err)

	orch := NewSyncOrchestrator(
		store.CollectionStore(),
		store.DocumentStore(),
		store.ChunkStore(),
		store.SyncJobStore(),
		fetcher,
		&mockChunker{},
		&mockEmbedder{},
	)
	return orch, store, collection
}

func remoteFiles(paths ...string) []driven.RemoteFile {
	files := make([]driven.RemoteFile, len(paths))
	for i, p := range paths {
		files[i] = driven.RemoteFile{Path: p, SHA: fmt.Sprintf("sha-%d", i), Size: 100}
	}
	return files
}

// --- Tests ---

func TestSync_Success(t *testing.T) {
	commitDate := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &mockFetcher{
		files: remoteFiles("docs/guide.md", "docs/api.md", "docs/faq.md"),
		contents: map[string]string{
			"docs/guide.md": "line one\nline two",
			"docs/api.md":   "single line",
			"docs/faq.md":   "q\na\nq2",
		},
		commitDate: commitDate,
	}
	orch, store, collection := newTestOrchestrator(t, fetcher)

	result, err := orch.Sync(context.Background(), collection.ID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.FilesSynced)
	assert.Equal(t, 0, result.FilesFailed)
	assert.Equal(t, 6, result.EmbeddingsCreated)
	assert.Empty(t, result.Errors)

	docs, err := store.DocumentStore().ListByCollection(context.Background(), collection.ID)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "docs/api.md", docs[0].FilePath)
	assert.Equal(t, "md", docs[0].FileType)
	assert.Equal(t, "sha-1", docs[0].Metadata["commit_sha"])

	count, err := store.ChunkStore().CountByProject(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	updated, err := store.CollectionStore().Get(context.Background(), collection.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.LastSyncedAt)
	require.NotNil(t, updated.LastCommitDate)
	assert.Equal(t, commitDate, *updated.LastCommitDate)

	jobs, err := store.SyncJobStore().ListByCollection(context.Background(), collection.ID)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobSucceeded, jobs[0].State)
	require.NotNil(t, jobs[0].FinishedAt)
}

func TestSync_PartialFailureIsStillSuccess(t *testing.T) {
	fetcher := &mockFetcher{
		files: remoteFiles("docs/a.md", "docs/b.md", "docs/c.md", "docs/d.md", "docs/e.md", "docs/f.md"),
		contents: map[string]string{
			"docs/a.md": "a", "docs/b.md": "b", "docs/c.md": "c",
			"docs/d.md": "d", "docs/f.md": "f",
		},
		downloadErrs: map[string]error{
			"docs/e.md": errors.New("connection reset"),
		},
	}
	orch, store, collection := newTestOrchestrator(t, fetcher)

	result, err := orch.Sync(context.Background(), collection.ID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 5, result.FilesSynced)
	// The file never downloaded, so it never stored: it is reported
	// in the error list but not counted as a failed document.
	assert.Equal(t, 0, result.FilesFailed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "docs/e.md")

	docs, err := store.DocumentStore().ListByCollection(context.Background(), collection.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 5)
}

func TestSync_ListFailureAbortsRun(t *testing.T) {
	fetcher := &mockFetcher{listErr: errors.New("api unreachable")}
	orch, store, collection := newTestOrchestrator(t, fetcher)

	result, err := orch.Sync(context.Background(), collection.ID)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.FilesSynced)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "api unreachable")

	jobs, err := store.SyncJobStore().ListByCollection(context.Background(), collection.ID)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobFailed, jobs[0].State)
	assert.Contains(t, jobs[0].Error, "api unreachable")
}

func TestSync_RejectsConcurrentRun(t *testing.T) {
	fetcher := &mockFetcher{}
	orch, store, collection := newTestOrchestrator(t, fetcher)

	job, err := store.SyncJobStore().Create(context.Background(), &domain.SyncJob{
		CollectionID: collection.ID,
	})
	require.NoError(t, err)
	require.NoError(t, store.SyncJobStore().UpdateState(context.Background(), job.ID, domain.JobRunning, ""))

	_, err = orch.Sync(context.Background(), collection.ID)
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)
}

func TestSync_UnknownCollection(t *testing.T) {
	orch, _, _ := newTestOrchestrator(t, &mockFetcher{})

	_, err := orch.Sync(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSync_ResyncReplacesDocuments(t *testing.T) {
	fetcher := &mockFetcher{
		files:    remoteFiles("docs/guide.md"),
		contents: map[string]string{"docs/guide.md": "v1 line one\nv1 line two"},
	}
	orch, store, collection := newTestOrchestrator(t, fetcher)

	_, err := orch.Sync(context.Background(), collection.ID)
	require.NoError(t, err)

	fetcher.contents["docs/guide.md"] = "v2 only line"
	result, err := orch.Sync(context.Background(), collection.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesSynced)

	docs, err := store.DocumentStore().ListByCollection(context.Background(), collection.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "v2 only line", docs[0].Content)

	// Old chunks are replaced, not accumulated.
	count, err := store.ChunkStore().CountByProject(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSync_EmbedFailureIsolatedToFile(t *testing.T) {
	fetcher := &mockFetcher{
		files: remoteFiles("docs/a.md", "docs/b.md", "docs/c.md", "docs/d.md", "docs/e.md"),
		contents: map[string]string{
			"docs/a.md": "fine", "docs/b.md": "fine", "docs/c.md": "POISON",
			"docs/d.md": "fine", "docs/e.md": "fine",
		},
	}
	store := memory.NewStore()
	collection, err := store.CollectionStore().Create(context.Background(), &domain.DocCollection{
		ProjectID: "proj-1",
		Name:      "docs",
		RepoURL:   "https://github.com/acme/widgets",
	})
	require.NoError(t, err)

	orch := NewSyncOrchestrator(
		store.CollectionStore(), store.DocumentStore(), store.ChunkStore(),
		store.SyncJobStore(), fetcher, &mockChunker{},
		&mockEmbedder{failSubstring: "POISON"},
	)

	result, err := orch.Sync(context.Background(), collection.ID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	// The document stored before embedding failed, so it still counts
	// as synced; the embed failure shows up as a failed file.
	assert.Equal(t, 5, result.FilesSynced)
	assert.Equal(t, 1, result.FilesFailed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "docs/c.md")

	docs, err := store.DocumentStore().ListByCollection(context.Background(), collection.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 5)

	count, err := store.ChunkStore().CountByProject(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestSyncAll_RunsEveryCollection(t *testing.T) {
	fetcher := &mockFetcher{
		files:    remoteFiles("docs/a.md"),
		contents: map[string]string{"docs/a.md": "hello"},
	}
	orch, store, first := newTestOrchestrator(t, fetcher)

	second, err := store.CollectionStore().Create(context.Background(), &domain.DocCollection{
		ProjectID: "proj-1",
		Name:      "more-docs",
		RepoURL:   "https://github.com/acme/gadgets",
	})
	require.NoError(t, err)

	results, err := orch.SyncAll(context.Background(), "proj-1")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[first.ID].Success)
	assert.True(t, results[second.ID].Success)
	assert.Equal(t, 1, results[first.ID].FilesSynced)
}

func TestSync_RequiresEmbedder(t *testing.T) {
	store := memory.NewStore()
	orch := NewSyncOrchestrator(
		store.CollectionStore(), store.DocumentStore(), store.ChunkStore(),
		store.SyncJobStore(), &mockFetcher{}, &mockChunker{}, nil,
	)

	_, err := orch.Sync(context.Background(), "any")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
