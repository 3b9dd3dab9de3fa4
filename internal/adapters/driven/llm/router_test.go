package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
)

// stubService records calls for one provider.
type stubService struct {
	name   domain.ProviderName
	reply  string
	err    error
	calls  int
	lastIn []driven.ChatMessage
}

func (s *stubService) Complete(
	_ context.Context, messages []driven.ChatMessage, _ *domain.ProviderConfig,
) (string, error) {
	s.calls++
	s.lastIn = messages
	return s.reply, s.err
}

func (s *stubService) Name() domain.ProviderName {
	return s.name
}

func TestRouter_DispatchesToConfiguredProvider(t *testing.T) {
	openaiStub := &stubService{name: domain.ProviderOpenAI, reply: "from openai"}
	ollamaStub := &stubService{name: domain.ProviderOllama, reply: "from ollama"}
	router := NewRouter(openaiStub, ollamaStub)

	messages := []driven.ChatMessage{{Role: driven.RoleUser, Content: "hi"}}

	got, err := router.Complete(context.Background(), messages,
		&domain.ProviderConfig{Provider: domain.ProviderOllama, Model: "llama3.1"})
	require.NoError(t, err)
	assert.Equal(t, "from ollama", got)
	assert.Equal(t, 1, ollamaStub.calls)
	assert.Equal(t, 0, openaiStub.calls, "only the configured provider is called")
	assert.Equal(t, messages, ollamaStub.lastIn)
}

func TestRouter_UnknownProviderFailsFast(t *testing.T) {
	stub := &stubService{name: domain.ProviderOpenAI}
	router := NewRouter(stub)

	_, err := router.Complete(context.Background(), nil,
		&domain.ProviderConfig{Provider: "anthropic"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderUnsupported)
	assert.Equal(t, 0, stub.calls, "no adapter may be reached for an unknown provider")
}

func TestRouter_UnregisteredProvider(t *testing.T) {
	router := NewRouter(&stubService{name: domain.ProviderOllama})

	_, err := router.Complete(context.Background(), nil,
		&domain.ProviderConfig{Provider: domain.ProviderGoogle})

	assert.ErrorIs(t, err, domain.ErrProviderUnsupported)
}

func TestRouter_NilConfig(t *testing.T) {
	router := NewRouter()

	_, err := router.Complete(context.Background(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRouter_PropagatesAdapterError(t *testing.T) {
	provErr := &domain.ProviderError{
		Provider:   domain.ProviderOpenAI,
		StatusCode: 401,
		Message:    "invalid api key",
	}
	router := NewRouter(&stubService{name: domain.ProviderOpenAI, err: provErr})

	_, err := router.Complete(context.Background(), nil,
		&domain.ProviderConfig{Provider: domain.ProviderOpenAI})

	require.Error(t, err)
	assert.True(t, domain.IsProviderError(err))
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestNewRouterFromEnv_LocalProvidersAlwaysRegistered(t *testing.T) {
	t.Setenv(EnvOpenAIKey, "")
	t.Setenv(EnvGoogleKey, "")

	router := NewRouterFromEnv()
	providers := router.Providers()

	assert.Contains(t, providers, domain.ProviderOllama)
	assert.Contains(t, providers, domain.ProviderLiteLLM)
	assert.NotContains(t, providers, domain.ProviderOpenAI)
	assert.NotContains(t, providers, domain.ProviderGoogle)
}

func TestNewRouterFromEnv_HostedProvidersNeedKeys(t *testing.T) {
	t.Setenv(EnvOpenAIKey, "sk-test")
	t.Setenv(EnvGoogleKey, "g-test")

	router := NewRouterFromEnv()
	providers := router.Providers()

	assert.Contains(t, providers, domain.ProviderOpenAI)
	assert.Contains(t, providers, domain.ProviderGoogle)
}
