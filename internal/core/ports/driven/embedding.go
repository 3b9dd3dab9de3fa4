package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: this is separate from the chunk store, which persists and
// searches vectors. EmbeddingService generates vectors; the store
// indexes them.
//
// Implementations must validate that every returned vector has
// domain.EmbeddingDimensions components and reject mismatches with
// domain.ErrDimensionMismatch without retrying.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. The result
	// preserves input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error
}
