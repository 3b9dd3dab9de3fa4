package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
	"github.com/docfoundry/docfoundry/internal/core/ports/driving"
	"github.com/docfoundry/docfoundry/internal/logger"
)

// Ensure AssistantService implements the interface.
var _ driving.Assistant = (*AssistantService)(nil)

// DefaultTopK is the number of chunks retrieved when the caller does
// not specify one.
const DefaultTopK = 5

// notFoundAnswer is returned when retrieval produces nothing relevant.
// No completion call is made in that case.
const notFoundAnswer = "I couldn't find anything relevant in the indexed documentation for this project."

// systemPrompt frames the completion: answer only from the provided
// context and cite sources.
const systemPrompt = "You are a documentation assistant. Answer the question using only the " +
	"provided context. If the context does not contain the answer, say so. " +
	"Cite the sources you used by their [Source N] labels."

// AssistantService answers questions grounded in a project's indexed
// documentation: embed the question, retrieve similar chunks, and
// generate an answer with source attribution.
type AssistantService struct {
	chunks    driven.ChunkStore
	providers driven.ProviderStore
	embedder  driven.EmbeddingService
	router    driven.CompletionRouter
}

// NewAssistantService creates a new assistant service.
func NewAssistantService(
	chunks driven.ChunkStore,
	providers driven.ProviderStore,
	embedder driven.EmbeddingService,
	router driven.CompletionRouter,
) *AssistantService {
	return &AssistantService{
		chunks:    chunks,
		providers: providers,
		embedder:  embedder,
		router:    router,
	}
}

// Ask runs the retrieval-generation pipeline for one question.
func (s *AssistantService) Ask(
	ctx context.Context, projectID, question string, opts driving.AskOptions,
) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.router == nil {
		return nil, domain.ErrLLMUnavailable
	}

	hits, err := s.retrieve(ctx, projectID, question, clampLimit(opts.TopK))
	if err != nil {
		return nil, err
	}

	if opts.ScoreThreshold > 0 {
		kept := hits[:0]
		for _, hit := range hits {
			if hit.Score >= opts.ScoreThreshold {
				kept = append(kept, hit)
			}
		}
		hits = kept
	}

	if len(hits) == 0 {
		logger.Debug("No relevant chunks for question, skipping completion")
		return &domain.Answer{Text: notFoundAnswer}, nil
	}

	cfg, err := s.resolveProvider(ctx, opts.ProviderID)
	if err != nil {
		return nil, err
	}

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: systemPrompt},
		{Role: driven.RoleSystem, Content: buildContext(hits)},
		{Role: driven.RoleUser, Content: question},
	}

	logger.Debug("Completing with provider %s (%d context chunks)", cfg.Provider, len(hits))
	text, err := s.router.Complete(ctx, messages, cfg)
	if err != nil {
		return nil, err
	}

	sources := make([]domain.SourceAttribution, len(hits))
	for i, hit := range hits {
		sources[i] = domain.SourceAttribution{
			DocumentID:   hit.Chunk.DocumentID,
			FilePath:     hit.FilePath,
			HeaderAnchor: hit.Chunk.HeaderAnchor,
			Score:        domain.RoundScore(hit.Score),
		}
	}

	return &domain.Answer{Text: text, Sources: sources}, nil
}

// Search runs retrieval only, returning scored chunks without
// generation.
func (s *AssistantService) Search(
	ctx context.Context, projectID, query string, limit int,
) ([]domain.ScoredChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	return s.retrieve(ctx, projectID, query, clampLimit(limit))
}

// retrieve embeds the query and searches the project's chunks.
func (s *AssistantService) retrieve(
	ctx context.Context, projectID, query string, limit int,
) ([]domain.ScoredChunk, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := s.chunks.Search(ctx, projectID, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	return hits, nil
}

// resolveProvider loads the requested provider configuration, or the
// default when none is named.
func (s *AssistantService) resolveProvider(ctx context.Context, providerID string) (*domain.ProviderConfig, error) {
	if providerID != "" {
		cfg, err := s.providers.Get(ctx, providerID)
		if err != nil {
			return nil, fmt.Errorf("get provider: %w", err)
		}
		return cfg, nil
	}
	cfg, err := s.providers.GetDefault(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrLLMUnavailable
		}
		return nil, fmt.Errorf("get default provider: %w", err)
	}
	return cfg, nil
}

// buildContext formats retrieved chunks as numbered, attributed
// context blocks.
func buildContext(hits []domain.ScoredChunk) string {
	var b strings.Builder
	b.WriteString("Context:\n\n")
	for i, hit := range hits {
		ref := hit.FilePath
		if hit.Chunk.HeaderAnchor != "" {
			ref += "#" + hit.Chunk.HeaderAnchor
		}
		fmt.Fprintf(&b, "[Source %d: %s]\n%s\n\n", i+1, ref, hit.Chunk.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

// clampLimit applies the default and bounds a retrieval limit to the
// search range.
func clampLimit(limit int) int {
	if limit == 0 {
		return DefaultTopK
	}
	if limit < domain.MinSearchLimit {
		return domain.MinSearchLimit
	}
	if limit > domain.MaxSearchLimit {
		return domain.MaxSearchLimit
	}
	return limit
}
