package chunking

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
)

// supportedTypes is the ingestion allowlist. Markdown additionally
// gets header anchors.
var supportedTypes = map[string]bool{
	"md":   true,
	"csv":  true,
	"yaml": true,
	"yml":  true,
	"json": true,
	"txt":  true,
}

// IsSupportedType reports whether a file type can be chunked.
func IsSupportedType(fileType string) bool {
	return supportedTypes[normalizeType(fileType)]
}

func normalizeType(fileType string) string {
	return strings.ToLower(strings.TrimPrefix(fileType, "."))
}

// Processor chunks document content per file type.
// It implements the Chunker port.
type Processor struct {
	splitter *Splitter
}

var _ driven.Chunker = (*Processor)(nil)

// NewProcessor creates a chunking processor. Options are forwarded to
// the underlying splitter.
func NewProcessor(opts ...SplitterOption) (*Processor, error) {
	splitter, err := NewSplitter(opts...)
	if err != nil {
		return nil, err
	}
	return &Processor{splitter: splitter}, nil
}

// Chunk splits content into ordered fragments with dense indices and
// canonical metadata. Markdown fragments carry the anchor of the
// nearest preceding header.
func (p *Processor) Chunk(ctx context.Context, content, filePath, fileType string) ([]driven.ChunkResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fileType = normalizeType(fileType)
	if !supportedTypes[fileType] {
		return nil, fmt.Errorf("%w: %q (%s)", domain.ErrUnsupportedType, fileType, filePath)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty content (%s)", domain.ErrInvalidInput, filePath)
	}

	frags := p.splitter.Split(content)

	var headers []Header
	if fileType == "md" {
		headers = ExtractHeaders(content)
	}

	fileName := path.Base(filePath)
	results := make([]driven.ChunkResult, 0, len(frags))
	searchFrom := 0
	for i, f := range frags {
		offset := locateFragment(content, f, searchFrom)
		if offset >= 0 {
			searchFrom = offset + len(f.Text)
		}

		anchor := ""
		if fileType == "md" && offset >= 0 {
			anchor = NearestAnchor(headers, offset)
		}

		results = append(results, driven.ChunkResult{
			Text:         f.Text,
			Index:        i,
			HeaderAnchor: anchor,
			Metadata:     domain.NewChunkMetadata(filePath, fileName, fileType, i, len(frags)),
		})
	}

	return results, nil
}

// locateFragment confirms the fragment's recorded offset against the
// content, falling back to a forward substring search on the full text
// and then on its first 50 bytes.
func locateFragment(content string, f Fragment, searchFrom int) int {
	if f.Offset >= 0 && f.Offset <= len(content) && strings.HasPrefix(content[f.Offset:], f.Text) {
		return f.Offset
	}
	if searchFrom > len(content) {
		searchFrom = len(content)
	}
	if idx := strings.Index(content[searchFrom:], f.Text); idx >= 0 {
		return searchFrom + idx
	}
	probe := f.Text
	if len(probe) > 50 {
		probe = probe[:50]
	}
	if idx := strings.Index(content[searchFrom:], probe); idx >= 0 {
		return searchFrom + idx
	}
	return -1
}
