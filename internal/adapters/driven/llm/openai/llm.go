// Package openai provides a completion adapter for the OpenAI chat API.
package openai

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
	DefaultBaseURL = "https://api.openai.com"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI completion service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com).
	BaseURL string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// CompletionService generates chat completions using the OpenAI API.
type CompletionService struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// chatRequest is the /v1/chat/completions request format.
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

// chatResponse is the /v1/chat/completions response format.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewCompletionService creates a new OpenAI completion service.
func NewCompletionService(cfg Config) (*CompletionService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required (set OPENAI_API_KEY)")
	}
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
	}, nil
}

// Name identifies the provider variant.
func (s *CompletionService) Name() domain.ProviderName {
	return domain.ProviderOpenAI
}

// Complete sends the conversation and returns the generated text.
// Transport failures are retried; API errors surface immediately.
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
	if reqBody.Model == "" {
		reqBody.Model = DefaultModel
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
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

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
			Provider:   domain.ProviderOpenAI,
			StatusCode: resp.StatusCode,
			Message:    chatResp.Error.Message,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &domain.ProviderError{
			Provider:   domain.ProviderOpenAI,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}
	if len(chatResp.Choices) == 0 {
		return "", &domain.ProviderError{
			Provider:   domain.ProviderOpenAI,
			StatusCode: resp.StatusCode,
			Message:    "no choices returned",
		}
	}

	return chatResp.Choices[0].Message.Content, nil
}
