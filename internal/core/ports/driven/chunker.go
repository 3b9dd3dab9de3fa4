package driven

import "context"

// ChunkResult is one fragment produced by document chunking, before
// embedding.
type ChunkResult struct {
	// Text is the fragment content.
	Text string

	// Index is the 0-based position within the document.
	Index int

	// HeaderAnchor is the anchor of the nearest preceding markdown
	// header, empty for non-markdown files or content before the
	// first header.
	HeaderAnchor string

	// Metadata is the canonical chunk metadata object.
	Metadata map[string]any
}

// Chunker splits document content into indexable fragments.
//
// Markdown content additionally gets header anchors; other supported
// types (csv, yaml, yml, json, txt) are split without anchors.
// Empty content is rejected with domain.ErrInvalidInput and unknown
// file types with domain.ErrUnsupportedType.
type Chunker interface {
	// Chunk splits content into ordered fragments with dense indices.
	Chunk(ctx context.Context, content, filePath, fileType string) ([]ChunkResult, error)
}
