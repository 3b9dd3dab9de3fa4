package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type outside the ingestion allowlist.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrRateLimited indicates the source API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrDimensionMismatch indicates the embedding endpoint returned a vector
	// of the wrong length. This is a contract violation and is never retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrProviderUnsupported indicates an unknown completion provider name.
	// Detected before any network call is made.
	ErrProviderUnsupported = errors.New("unsupported completion provider")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Ingestion and semantic retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates no completion provider is configured.
	ErrLLMUnavailable = errors.New("completion service unavailable")

	// ErrSyncInProgress indicates an ingestion run is already active
	// for the collection.
	ErrSyncInProgress = errors.New("sync in progress")
)

// ProviderError represents a completion provider API failure. It
// carries the upstream message so callers can see what the provider
// actually rejected.
type ProviderError struct {
	Provider   ProviderName
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: completion failed (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// IsProviderError checks whether the error is a provider API failure.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
