// Package llm routes completion requests to provider adapters.
package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/docfoundry/docfoundry/internal/adapters/driven/llm/google"
	"github.com/docfoundry/docfoundry/internal/adapters/driven/llm/litellm"
	"github.com/docfoundry/docfoundry/internal/adapters/driven/llm/ollama"
	"github.com/docfoundry/docfoundry/internal/adapters/driven/llm/openai"
	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
)

// Ensure Router implements the interface.
var _ driven.CompletionRouter = (*Router)(nil)

// Environment variables consulted for provider credentials. API keys
// never come from stored provider records.
const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvGoogleKey     = "GOOGLE_API_KEY"
	EnvLiteLLMKey    = "LITELLM_API_KEY"
	EnvLiteLLMURL    = "LITELLM_BASE_URL"
	EnvOllamaLLMHost = "OLLAMA_HOST"
)

// Router dispatches completion requests to the adapter registered for
// the configured provider. The provider set is closed; an unknown name
// fails before any network traffic.
type Router struct {
	adapters map[domain.ProviderName]driven.CompletionService
}

// NewRouter creates a router over the given adapters.
func NewRouter(adapters ...driven.CompletionService) *Router {
	r := &Router{adapters: make(map[domain.ProviderName]driven.CompletionService, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

// NewRouterFromEnv builds a router with every adapter that can be
// configured from the environment. Local providers (ollama, litellm)
// are always registered; hosted providers require their API key.
func NewRouterFromEnv() *Router {
	adapters := []driven.CompletionService{
		ollama.NewCompletionService(ollama.Config{BaseURL: os.Getenv(EnvOllamaLLMHost)}),
		litellm.NewCompletionService(litellm.Config{
			APIKey:  os.Getenv(EnvLiteLLMKey),
			BaseURL: os.Getenv(EnvLiteLLMURL),
		}),
	}

	if key := os.Getenv(EnvOpenAIKey); key != "" {
		if svc, err := openai.NewCompletionService(openai.Config{APIKey: key}); err == nil {
			adapters = append(adapters, svc)
		}
	}
	if key := os.Getenv(EnvGoogleKey); key != "" {
		if svc, err := google.NewCompletionService(google.Config{APIKey: key}); err == nil {
			adapters = append(adapters, svc)
		}
	}

	return NewRouter(adapters...)
}

// Complete routes the conversation to the adapter for cfg.Provider.
func (r *Router) Complete(
	ctx context.Context, messages []driven.ChatMessage, cfg *domain.ProviderConfig,
) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("%w: no provider configuration", domain.ErrInvalidInput)
	}
	if !cfg.Provider.Valid() {
		return "", fmt.Errorf("%w: %q", domain.ErrProviderUnsupported, cfg.Provider)
	}

	adapter, ok := r.adapters[cfg.Provider]
	if !ok {
		return "", fmt.Errorf("%w: %q is not configured (missing API key?)",
			domain.ErrProviderUnsupported, cfg.Provider)
	}

	return adapter.Complete(ctx, messages, cfg)
}

// Providers lists the registered provider names.
func (r *Router) Providers() []domain.ProviderName {
	names := make([]domain.ProviderName, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
