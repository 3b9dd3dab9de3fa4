package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
)

func TestCompletionService_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "g-test", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		// System messages become the system instruction.
		require.NotNil(t, req.SystemInstruction)
		assert.Equal(t, "you answer questions", req.SystemInstruction.Parts[0].Text)

		// Assistant turns map to the model role.
		require.Len(t, req.Contents, 3)
		assert.Equal(t, "user", req.Contents[0].Role)
		assert.Equal(t, "model", req.Contents[1].Role)
		assert.Equal(t, "user", req.Contents[2].Role)

		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"part one "},{"text":"part two"}]}}]}`)
	}))
	defer srv.Close()

	svc, err := NewCompletionService(Config{APIKey: "g-test", BaseURL: srv.URL})
	require.NoError(t, err)

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "you answer questions"},
		{Role: driven.RoleUser, Content: "first question"},
		{Role: driven.RoleAssistant, Content: "first answer"},
		{Role: driven.RoleUser, Content: "follow up"},
	}

	got, err := svc.Complete(context.Background(), messages,
		&domain.ProviderConfig{Provider: domain.ProviderGoogle, Model: "gemini-1.5-flash"})
	require.NoError(t, err)
	assert.Equal(t, "part one part two", got)
}

func TestCompletionService_UpstreamErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":400,"message":"API key not valid"}}`)
	}))
	defer srv.Close()

	svc, err := NewCompletionService(Config{APIKey: "bad", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), nil,
		&domain.ProviderConfig{Provider: domain.ProviderGoogle})
	require.Error(t, err)

	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, domain.ProviderGoogle, provErr.Provider)
	assert.Contains(t, provErr.Message, "API key not valid")
}

func TestNewCompletionService_RequiresKey(t *testing.T) {
	_, err := NewCompletionService(Config{})
	assert.Error(t, err)
}
