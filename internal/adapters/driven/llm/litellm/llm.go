// Package litellm provides a completion adapter for a LiteLLM proxy.
// The proxy speaks the OpenAI chat wire format, so this adapter mirrors
// the OpenAI one with a local default endpoint and an optional key.
package litellm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docfoundry/docfoundry/internal/adapters/driven/llm/transport"
	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
)

// Ensure CompletionService implements the interface.
var _ driven.CompletionService = (*CompletionService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:4000"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the LiteLLM completion service.
type Config struct {
	// APIKey is the proxy key. Optional; many deployments run open.
	APIKey string

	// BaseURL is the proxy base URL (default: http://localhost:4000).
	BaseURL string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// CompletionService generates chat completions through a LiteLLM proxy.
type CompletionService struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewCompletionService creates a new LiteLLM completion service.
func NewCompletionService(cfg Config) *CompletionService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &CompletionService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// Name identifies the provider variant.
func (s *CompletionService) Name() domain.ProviderName {
	return domain.ProviderLiteLLM
}

// Complete sends the conversation and returns the generated text.
func (s *CompletionService) Complete(
	ctx context.Context, messages []driven.ChatMessage, cfg *domain.ProviderConfig,
) (string, error) {
	var result string
	err := transport.Do(ctx, func(ctx context.Context) error {
		text, err := s.completeOnce(ctx, messages, cfg)
		if err != nil {
			return err
		}
		result = text
		return nil
	})
	return result, err
}

func (s *CompletionService) completeOnce(
	ctx context.Context, messages []driven.ChatMessage, cfg *domain.ProviderConfig,
) (string, error) {
	apiMessages := make([]chatMessage, len(messages))
	for i, msg := range messages {
		apiMessages[i] = chatMessage{Role: msg.Role, Content: msg.Content}
	}

	reqBody := chatRequest{
		Model:       cfg.Model,
		Messages:    apiMessages,
		Temperature: cfg.EffectiveTemperature(),
		MaxTokens:   cfg.EffectiveMaxTokens(),
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.baseURL+"/v1/chat/completions", bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &transport.Error{Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &transport.Error{Err: fmt.Errorf("read response: %w", err)}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", &domain.ProviderError{
			Provider:   domain.ProviderLiteLLM,
			StatusCode: resp.StatusCode,
			Message:    chatResp.Error.Message,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &domain.ProviderError{
			Provider:   domain.ProviderLiteLLM,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}
	if len(chatResp.Choices) == 0 {
		return "", &domain.ProviderError{
			Provider:   domain.ProviderLiteLLM,
			StatusCode: resp.StatusCode,
			Message:    "no choices returned",
		}
	}

	return chatResp.Choices[0].Message.Content, nil
}
