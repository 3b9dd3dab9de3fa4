package driven

import (
	"context"

	"github.com/docfoundry/docfoundry/internal/core/domain"
)

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn in a completion conversation.
type ChatMessage struct {
	// Role is one of the role constants above.
	Role string

	// Content is the message text.
	Content string
}

// CompletionService generates a chat completion against one concrete
// provider. Each supported provider has its own adapter implementing
// this interface.
type CompletionService interface {
	// Complete sends the conversation and returns the generated text.
	Complete(ctx context.Context, messages []ChatMessage, cfg *domain.ProviderConfig) (string, error)

	// Name identifies the provider variant the adapter serves.
	Name() domain.ProviderName
}

// CompletionRouter dispatches a completion request to the adapter for
// the configured provider. An unknown provider name fails with
// domain.ErrProviderUnsupported before any network traffic.
type CompletionRouter interface {
	// Complete routes the conversation to cfg.Provider's adapter.
	Complete(ctx context.Context, messages []ChatMessage, cfg *domain.ProviderConfig) (string, error)
}
