package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
)

func newTestService(t *testing.T, url string) *CompletionService {
	t.Helper()
	svc, err := NewCompletionService(Config{APIKey: "sk-test", BaseURL: url})
	require.NoError(t, err)
	return svc
}

func testConfig() *domain.ProviderConfig {
	return &domain.ProviderConfig{
		Provider:    domain.ProviderOpenAI,
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		MaxTokens:   256,
	}
}

func TestCompletionService_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.InDelta(t, 0.2, req.Temperature, 1e-9)
		assert.Equal(t, 256, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		fmt.Fprint(w, `{"choices":[{"message":{"content":"generated answer"}}]}`)
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL)

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "you answer questions"},
		{Role: driven.RoleUser, Content: "what is this?"},
	}

	got, err := svc.Complete(context.Background(), messages, testConfig())
	require.NoError(t, err)
	assert.Equal(t, "generated answer", got)
}

func TestCompletionService_APIErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL)

	_, err := svc.Complete(context.Background(), nil, testConfig())
	require.Error(t, err)

	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, domain.ProviderOpenAI, provErr.Provider)
	assert.Equal(t, http.StatusUnauthorized, provErr.StatusCode)
	assert.Contains(t, provErr.Message, "Incorrect API key")
	assert.Equal(t, int32(1), calls.Load(), "API errors must not be retried")
}

func TestCompletionService_RetriesTransportErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			// Drop the connection to simulate a transport failure.
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"second try"}}]}`)
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL)

	got, err := svc.Complete(context.Background(), nil, testConfig())
	require.NoError(t, err)
	assert.Equal(t, "second try", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCompletionService_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL)

	_, err := svc.Complete(context.Background(), nil, testConfig())
	assert.True(t, domain.IsProviderError(err))
}

func TestNewCompletionService_RequiresKey(t *testing.T) {
	_, err := NewCompletionService(Config{})
	assert.Error(t, err)
}
