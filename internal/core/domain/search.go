package domain

import "math"

// ScoredChunk is a similarity search hit: a chunk plus its cosine
// similarity to the query vector.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// FilePath is the parent document's path, hydrated by the search.
	FilePath string

	// Score is the cosine similarity in [0,1] (1 - cosine distance).
	Score float64
}

// Similarity search limits. A search limit outside this range is
// rejected with ErrInvalidInput.
const (
	MinSearchLimit = 1
	MaxSearchLimit = 20
)

// SourceAttribution identifies where an answer's supporting chunk
// came from, in search ranking order.
type SourceAttribution struct {
	// DocumentID is the parent document.
	DocumentID string

	// FilePath is the document's repository-relative path.
	FilePath string

	// HeaderAnchor is the chunk's section anchor, empty if none.
	HeaderAnchor string

	// Score is the similarity score rounded to 4 decimal places.
	Score float64
}

// Answer is the result of a retrieval-generation query.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Sources attributes the chunks that grounded the answer,
	// in the same order the search ranked them.
	Sources []SourceAttribution
}

// RoundScore rounds a similarity score to 4 decimal places for
// attribution display.
func RoundScore(score float64) float64 {
	return math.Round(score*10000) / 10000
}
