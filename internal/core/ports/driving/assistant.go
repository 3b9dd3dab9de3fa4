package driving

import (
	"context"

	"github.com/docfoundry/docfoundry/internal/core/domain"
)

// AskOptions tunes a retrieval-generation query.
type AskOptions struct {
	// TopK is the number of chunks to retrieve. Zero means the
	// service default; values are clamped to the search limit range.
	TopK int

	// ScoreThreshold drops retrieved chunks scoring below it.
	// Zero keeps everything.
	ScoreThreshold float64

	// ProviderID selects a stored provider configuration. Empty means
	// the default provider.
	ProviderID string
}

// Assistant answers questions grounded in a project's indexed
// documentation.
type Assistant interface {
	// Ask embeds the question, retrieves the most similar chunks for
	// the project, and generates an answer with source attribution.
	// When nothing relevant is found the answer says so and no
	// completion call is made.
	Ask(ctx context.Context, projectID, question string, opts AskOptions) (*domain.Answer, error)

	// Search runs retrieval only, returning scored chunks without
	// generation.
	Search(ctx context.Context, projectID, query string, limit int) ([]domain.ScoredChunk, error)
}
