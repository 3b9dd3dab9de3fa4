package domain

import (
	"fmt"
	"time"
)

// EmbeddingDimensions is the fixed vector length for the whole corpus.
// Every stored chunk embedding must have exactly this many components.
const EmbeddingDimensions = 768

// Document represents a documentation file fetched from source control.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// CollectionID links to the DocCollection that produced this document.
	CollectionID string

	// FilePath is the path of the file relative to the repository root.
	// (CollectionID, FilePath) is unique: re-ingesting the same path
	// updates the existing row rather than duplicating it.
	FilePath string

	// FileType is the lowercase extension without the dot (md, csv, ...).
	FileType string

	// FileSize is the content length in bytes.
	FileSize int

	// Content is the full raw text of the file.
	Content string

	// Metadata contains free-form key-value pairs, including the
	// source commit identifier under "commit_sha".
	Metadata map[string]any

	// CreatedAt is when the document was first stored.
	CreatedAt time.Time

	// UpdatedAt is when the document was last replaced by a sync.
	UpdatedAt time.Time
}

// FileName returns the base name of the document's path.
func (d *Document) FileName() string {
	for i := len(d.FilePath) - 1; i >= 0; i-- {
		if d.FilePath[i] == '/' {
			return d.FilePath[i+1:]
		}
	}
	return d.FilePath
}

// Chunk represents an embedded fragment of a document.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document. Chunks are deleted
	// transitively when their document is deleted.
	DocumentID string

	// Text is the chunk's text content.
	Text string

	// Index is the 0-based ordinal position within the document.
	// Indices are dense and gapless per document.
	Index int

	// Embedding is the fixed-length vector representation.
	Embedding []float32

	// HeaderAnchor is the navigation anchor of the nearest preceding
	// section header. Empty string means no anchor.
	HeaderAnchor string

	// Metadata carries the chunk metadata object (see metadata key
	// constants below). All five keys are required.
	Metadata map[string]any

	// CreatedAt is when the chunk was stored.
	CreatedAt time.Time
}

// Chunk metadata keys. Persisted chunk metadata is a JSON object with
// exactly these keys; consumers must treat a missing key as a schema
// violation.
const (
	MetaFilePath      = "file_path"
	MetaFileName      = "file_name"
	MetaFileType      = "file_type"
	MetaChunkPosition = "chunk_position"
	MetaTotalChunks   = "total_chunks"
)

// NewChunkMetadata builds the canonical chunk metadata object.
func NewChunkMetadata(filePath, fileName, fileType string, position, totalChunks int) map[string]any {
	return map[string]any{
		MetaFilePath:      filePath,
		MetaFileName:      fileName,
		MetaFileType:      fileType,
		MetaChunkPosition: position,
		MetaTotalChunks:   totalChunks,
	}
}

// ValidateChunkMetadata checks that a metadata object carries all
// required keys.
func ValidateChunkMetadata(meta map[string]any) error {
	for _, key := range []string{
		MetaFilePath, MetaFileName, MetaFileType, MetaChunkPosition, MetaTotalChunks,
	} {
		if _, ok := meta[key]; !ok {
			return fmt.Errorf("%w: chunk metadata missing key %q", ErrInvalidInput, key)
		}
	}
	return nil
}

// ValidateEmbedding checks the corpus-wide embedding length invariant.
func ValidateEmbedding(embedding []float32) error {
	if len(embedding) != EmbeddingDimensions {
		return fmt.Errorf("%w: expected %d dimensions, got %d",
			ErrDimensionMismatch, EmbeddingDimensions, len(embedding))
	}
	return nil
}
