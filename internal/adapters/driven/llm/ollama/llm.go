// Package ollama provides a completion adapter for a local Ollama server.
package ollama

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
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.1"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Ollama completion service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// CompletionService generates chat completions using a local Ollama server.
type CompletionService struct {
	client  *http.Client
	baseURL string
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// chatResponse is the Ollama /api/chat response format.
type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Error string `json:"error,omitempty"`
}

// NewCompletionService creates a new Ollama completion service.
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
	}
}

// Name identifies the provider variant.
func (s *CompletionService) Name() domain.ProviderName {
	return domain.ProviderOllama
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

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	reqBody := chatRequest{
		Model:    model,
		Messages: apiMessages,
		Stream:   false,
		Options: chatOptions{
			Temperature: cfg.EffectiveTemperature(),
			NumPredict:  cfg.EffectiveMaxTokens(),
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.baseURL+"/api/chat", bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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

	if chatResp.Error != "" {
		return "", &domain.ProviderError{
			Provider:   domain.ProviderOllama,
			StatusCode: resp.StatusCode,
			Message:    chatResp.Error,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &domain.ProviderError{
			Provider:   domain.ProviderOllama,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	return chatResp.Message.Content, nil
}
