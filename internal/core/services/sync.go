package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
	"github.com/docfoundry/docfoundry/internal/core/ports/driving"
	"github.com/docfoundry/docfoundry/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncService = (*SyncOrchestrator)(nil)

// docBatchSize is how many documents are chunked, embedded and indexed
// concurrently within one ingestion run.
const docBatchSize = 5

// SyncOrchestrator coordinates the ingestion pipeline: fetch files
// from the collection's repository, persist documents, chunk, embed,
// and index.
type SyncOrchestrator struct {
	collections driven.CollectionStore
	documents   driven.DocumentStore
	chunks      driven.ChunkStore
	jobs        driven.SyncJobStore
	fetcher     driven.DocFetcher
	chunker     driven.Chunker
	embedder    driven.EmbeddingService
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(
	collections driven.CollectionStore,
	documents driven.DocumentStore,
	chunks driven.ChunkStore,
	jobs driven.SyncJobStore,
	fetcher driven.DocFetcher,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		collections: collections,
		documents:   documents,
		chunks:      chunks,
		jobs:        jobs,
		fetcher:     fetcher,
		chunker:     chunker,
		embedder:    embedder,
	}
}

// fileOutcome is the result of ingesting one remote file. A file
// counts as synced once its document is stored; failed marks a
// chunk, embed or index error after that point.
type fileOutcome struct {
	stored     bool
	failed     bool
	embeddings int
	errMsg     string
}

// Sync runs one ingestion pass for a collection. Per-file failures
// are recorded in the result rather than aborting the run; only a
// failure to list the remote tree marks the run unsuccessful.
func (o *SyncOrchestrator) Sync(ctx context.Context, collectionID string) (*domain.SyncResult, error) {
	if o.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	collection, err := o.collections.Get(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}

	// One run per collection at a time. Status comes from job records,
	// not from collection timestamps.
	if _, err := o.jobs.GetActive(ctx, collectionID); err == nil {
		return nil, domain.ErrSyncInProgress
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check active job: %w", err)
	}

	job, err := o.jobs.Create(ctx, &domain.SyncJob{CollectionID: collectionID})
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if err := o.jobs.UpdateState(ctx, job.ID, domain.JobRunning, ""); err != nil {
		return nil, fmt.Errorf("start job: %w", err)
	}

	start := time.Now()
	logger.Info("Starting sync for collection %s (%s)", collectionID, collection.RepoURL)

	result := o.run(ctx, collection)
	result.Duration = time.Since(start)

	if result.Success {
		if err := o.jobs.UpdateState(ctx, job.ID, domain.JobSucceeded, ""); err != nil {
			logger.Error("Failed to finalise job %s: %v", job.ID, err)
		}
	} else {
		msg := "sync failed"
		if len(result.Errors) > 0 {
			msg = result.Errors[0]
		}
		if err := o.jobs.UpdateState(ctx, job.ID, domain.JobFailed, msg); err != nil {
			logger.Error("Failed to finalise job %s: %v", job.ID, err)
		}
	}

	logger.Info("Sync complete: %d synced, %d failed, %d embeddings",
		result.FilesSynced, result.FilesFailed, result.EmbeddingsCreated)
	return result, nil
}

// run executes the pipeline body. Failures here become result state,
// not errors: the caller records them on the job.
func (o *SyncOrchestrator) run(ctx context.Context, collection *domain.DocCollection) *domain.SyncResult {
	result := &domain.SyncResult{}

	files, err := o.fetcher.ListFiles(ctx, collection.RepoURL, collection.FolderPath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list files: %v", err))
		return result
	}
	result.Success = true

	logger.Info("Found %d ingestible files", len(files))

	outcomes := make([]fileOutcome, len(files))
	for batchStart := 0; batchStart < len(files); batchStart += docBatchSize {
		end := batchStart + docBatchSize
		if end > len(files) {
			end = len(files)
		}

		var wg sync.WaitGroup
		for i := batchStart; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i] = o.ingestFile(ctx, collection, files[i])
			}(i)
		}
		wg.Wait()
	}

	for _, out := range outcomes {
		if out.stored {
			result.FilesSynced++
			result.EmbeddingsCreated += out.embeddings
		}
		if out.failed {
			result.FilesFailed++
		}
		if out.errMsg != "" {
			result.Errors = append(result.Errors, out.errMsg)
		}
	}

	// Stamp the collection even when some files failed: the run itself
	// completed. A missing commit date degrades to the sync time.
	now := time.Now().UTC()
	lastCommit := &now
	if commit, err := o.fetcher.LastCommitDate(ctx, collection.RepoURL, collection.FolderPath); err != nil {
		logger.Debug("Last commit date unavailable, using sync time: %v", err)
	} else {
		commit = commit.UTC()
		lastCommit = &commit
	}
	if err := o.collections.UpdateSyncState(ctx, collection.ID, now, lastCommit); err != nil {
		logger.Error("Failed to update collection sync state: %v", err)
	}

	return result
}

// ingestFile runs the per-file pipeline: download, persist the
// document, chunk, embed, index.
func (o *SyncOrchestrator) ingestFile(
	ctx context.Context, collection *domain.DocCollection, file driven.RemoteFile,
) fileOutcome {
	logger.Debug("Processing: %s", file.Path)

	content, err := o.fetcher.DownloadFile(ctx, collection.RepoURL, file.Path)
	if err != nil {
		logger.Debug("Failed to download %s: %v", file.Path, err)
		return fileOutcome{errMsg: fmt.Sprintf("%s: download: %v", file.Path, err)}
	}

	fileType := fileTypeOf(file.Path)
	doc, err := o.documents.Upsert(ctx, &domain.Document{
		CollectionID: collection.ID,
		FilePath:     file.Path,
		FileType:     fileType,
		FileSize:     len(content),
		Content:      content,
		Metadata:     map[string]any{"commit_sha": file.SHA},
	})
	if err != nil {
		return fileOutcome{errMsg: fmt.Sprintf("%s: store document: %v", file.Path, err)}
	}

	fragments, err := o.chunker.Chunk(ctx, content, file.Path, fileType)
	if err != nil {
		return fileOutcome{stored: true, failed: true, errMsg: fmt.Sprintf("%s: chunk: %v", file.Path, err)}
	}

	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}
	embeddings, err := o.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fileOutcome{stored: true, failed: true, errMsg: fmt.Sprintf("%s: embed: %v", file.Path, err)}
	}

	chunks := make([]*domain.Chunk, len(fragments))
	for i, f := range fragments {
		chunks[i] = &domain.Chunk{
			DocumentID:   doc.ID,
			Text:         f.Text,
			Index:        f.Index,
			Embedding:    embeddings[i],
			HeaderAnchor: f.HeaderAnchor,
			Metadata:     f.Metadata,
		}
	}
	if err := o.chunks.ReplaceForDocument(ctx, doc.ID, chunks); err != nil {
		return fileOutcome{stored: true, failed: true, errMsg: fmt.Sprintf("%s: index chunks: %v", file.Path, err)}
	}

	return fileOutcome{stored: true, embeddings: len(chunks)}
}

// SyncAll runs Sync for every collection in a project concurrently.
// Results are keyed by collection ID; a collection whose run errored
// gets a failed result carrying the error message.
func (o *SyncOrchestrator) SyncAll(ctx context.Context, projectID string) (map[string]*domain.SyncResult, error) {
	collections, err := o.collections.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	results := make(map[string]*domain.SyncResult, len(collections))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(docBatchSize)
	for _, collection := range collections {
		g.Go(func() error {
			result, err := o.Sync(ctx, collection.ID)
			if err != nil {
				result = &domain.SyncResult{Errors: []string{err.Error()}}
			}
			mu.Lock()
			results[collection.ID] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// fileTypeOf returns the lowercase extension without the dot.
func fileTypeOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
