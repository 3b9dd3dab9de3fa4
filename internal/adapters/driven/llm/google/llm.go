// Package google provides a completion adapter for the Gemini API.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docfoundry/docfoundry/internal/adapters/driven/llm/transport"
	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
)

// Ensure CompletionService implements the interface.
var _ driven.CompletionService = (*CompletionService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Gemini completion service.
type Config struct {
	// APIKey is the Google AI API key (required).
	APIKey string

	// BaseURL is the API base URL.
	BaseURL string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// CompletionService generates chat completions using the Gemini API.
type CompletionService struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// generateRequest is the models/{model}:generateContent request format.
type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// generateResponse is the generateContent response format.
type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewCompletionService creates a new Gemini completion service.
func NewCompletionService(cfg Config) (*CompletionService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google: API key is required (set GOOGLE_API_KEY)")
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
	return domain.ProviderGoogle
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
	reqBody := buildRequest(messages, cfg)

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.baseURL, model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &transport.Error{Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &transport.Error{Err: fmt.Errorf("read response: %w", err)}
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if genResp.Error != nil {
		return "", &domain.ProviderError{
			Provider:   domain.ProviderGoogle,
			StatusCode: resp.StatusCode,
			Message:    genResp.Error.Message,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &domain.ProviderError{
			Provider:   domain.ProviderGoogle,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}
	if len(genResp.Candidates) == 0 {
		return "", &domain.ProviderError{
			Provider:   domain.ProviderGoogle,
			StatusCode: resp.StatusCode,
			Message:    "no candidates returned",
		}
	}

	var out strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		out.WriteString(p.Text)
	}
	return out.String(), nil
}

// buildRequest maps the role-based conversation onto Gemini's format:
// system messages become the system instruction, assistant turns use
// the "model" role.
func buildRequest(messages []driven.ChatMessage, cfg *domain.ProviderConfig) generateRequest {
	req := generateRequest{
		GenerationConfig: &generationConfig{
			Temperature:     cfg.EffectiveTemperature(),
			MaxOutputTokens: cfg.EffectiveMaxTokens(),
		},
	}

	var systemParts []part
	for _, msg := range messages {
		switch msg.Role {
		case driven.RoleSystem:
			systemParts = append(systemParts, part{Text: msg.Content})
		case driven.RoleAssistant:
			req.Contents = append(req.Contents, content{Role: "model", Parts: []part{{Text: msg.Content}}})
		default:
			req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{Text: msg.Content}}})
		}
	}
	if len(systemParts) > 0 {
		req.SystemInstruction = &content{Parts: systemParts}
	}

	return req
}
