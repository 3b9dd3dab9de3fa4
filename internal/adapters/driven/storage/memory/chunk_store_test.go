package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docfoundry/docfoundry/internal/core/domain"
)

// axisEmbedding is a unit vector along one axis, giving exact cosine
// scores (1 for the same axis, 0 for orthogonal ones).
func axisEmbedding(axis int) []float32 {
	v := make([]float32, domain.EmbeddingDimensions)
	v[axis] = 1
	return v
}

// seedChunk stores a collection, a document and one embedded chunk for
// the given project, returning the document ID.
func seedChunk(t *testing.T, store *Store, projectID, filePath string, axis int) string {
	t.Helper()
	ctx := context.Background()

	coll, err := store.CollectionStore().Create(ctx, &domain.DocCollection{
		ProjectID: projectID,
		Name:      projectID + "-docs",
		RepoURL:   "https://github.com/acme/" + projectID,
	})
	require.NoError(t, err)

	doc, err := store.DocumentStore().Upsert(ctx, &domain.Document{
		CollectionID: coll.ID,
		FilePath:     filePath,
		FileType:     "md",
		Content:      "text from " + filePath,
	})
	require.NoError(t, err)

	err = store.ChunkStore().ReplaceForDocument(ctx, doc.ID, []*domain.Chunk{{
		Text:      "text from " + filePath,
		Index:     0,
		Embedding: axisEmbedding(axis),
		Metadata:  domain.NewChunkMetadata(filePath, filePath, "md", 0, 1),
	}})
	require.NoError(t, err)

	return doc.ID
}

func TestChunkStoreSearch_ScopedToProject(t *testing.T) {
	store := NewStore()
	// Both chunks share the same embedding: a scoping leak would rank
	// the foreign chunk just as high as the local one.
	seedChunk(t, store, "proj-1", "docs/guide.md", 0)
	seedChunk(t, store, "proj-2", "docs/other.md", 0)

	hits, err := store.ChunkStore().Search(context.Background(), "proj-1", axisEmbedding(0), 20)
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Equal(t, "docs/guide.md", hits[0].FilePath)

	hits, err = store.ChunkStore().Search(context.Background(), "proj-2", axisEmbedding(0), 20)
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Equal(t, "docs/other.md", hits[0].FilePath)
}

func TestChunkStoreSearch_OrdersByScoreDescending(t *testing.T) {
	store := NewStore()
	seedChunk(t, store, "proj-1", "docs/far.md", 1)
	seedChunk(t, store, "proj-1", "docs/near.md", 0)

	hits, err := store.ChunkStore().Search(context.Background(), "proj-1", axisEmbedding(0), 20)
	require.NoError(t, err)

	require.Len(t, hits, 2)
	assert.Equal(t, "docs/near.md", hits[0].FilePath)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.InDelta(t, 0.0, hits[1].Score, 1e-9)
}

func TestChunkStoreSearch_TruncatesToLimit(t *testing.T) {
	store := NewStore()
	seedChunk(t, store, "proj-1", "docs/a.md", 0)
	seedChunk(t, store, "proj-1", "docs/b.md", 1)
	seedChunk(t, store, "proj-1", "docs/c.md", 2)

	hits, err := store.ChunkStore().Search(context.Background(), "proj-1", axisEmbedding(0), 2)
	require.NoError(t, err)

	require.Len(t, hits, 2)
	assert.Equal(t, "docs/a.md", hits[0].FilePath)
}

func TestChunkStoreSearch_InvalidLimit(t *testing.T) {
	store := NewStore()

	for _, limit := range []int{0, -1, 21} {
		_, err := store.ChunkStore().Search(context.Background(), "proj-1", axisEmbedding(0), limit)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "limit %d", limit)
	}
}

func TestChunkStoreReplaceForDocument_SwapsChunks(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	docID := seedChunk(t, store, "proj-1", "docs/guide.md", 0)

	err := store.ChunkStore().ReplaceForDocument(ctx, docID, []*domain.Chunk{{
		Text:      "replacement",
		Index:     0,
		Embedding: axisEmbedding(1),
		Metadata:  domain.NewChunkMetadata("docs/guide.md", "docs/guide.md", "md", 0, 1),
	}})
	require.NoError(t, err)

	hits, err := store.ChunkStore().Search(ctx, "proj-1", axisEmbedding(1), 20)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "replacement", hits[0].Chunk.Text)
}

func TestChunkStoreCountByProject_ScopedToProject(t *testing.T) {
	store := NewStore()
	seedChunk(t, store, "proj-1", "docs/a.md", 0)
	seedChunk(t, store, "proj-1", "docs/b.md", 1)
	seedChunk(t, store, "proj-2", "docs/c.md", 0)

	count, err := store.ChunkStore().CountByProject(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.ChunkStore().CountByProject(context.Background(), "proj-3")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
