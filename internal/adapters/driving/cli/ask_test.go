package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docfoundry/docfoundry/internal/adapters/driven/config/file"
	"github.com/docfoundry/docfoundry/internal/core/domain"
	"github.com/docfoundry/docfoundry/internal/core/ports/driving"
)

// stubConfig implements driven.ConfigStore over a plain map.
type stubConfig struct {
	values map[string]any
}

func (c *stubConfig) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *stubConfig) GetString(key string) string {
	v, _ := c.values[key].(string)
	return v
}

func (c *stubConfig) GetInt(key string) int {
	v, _ := c.values[key].(int)
	return v
}

func (c *stubConfig) GetFloat(key string) float64 {
	v, _ := c.values[key].(float64)
	return v
}

func (c *stubConfig) GetBool(key string) bool {
	v, _ := c.values[key].(bool)
	return v
}

func (c *stubConfig) Set(key string, value any) error {
	c.values[key] = value
	return nil
}

func (c *stubConfig) Save() error { return nil }
func (c *stubConfig) Load() error { return nil }

// mockAssistant implements driving.Assistant for testing.
type mockAssistant struct {
	answer   *domain.Answer
	hits     []domain.ScoredChunk
	err      error
	project  string
	question string
	opts     driving.AskOptions
	limit    int
}

func (m *mockAssistant) Ask(
	_ context.Context, projectID, question string, opts driving.AskOptions,
) (*domain.Answer, error) {
	m.project = projectID
	m.question = question
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockAssistant) Search(
	_ context.Context, projectID, query string, limit int,
) ([]domain.ScoredChunk, error) {
	m.project = projectID
	m.question = query
	m.limit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

func TestAskCmd_PrintsAnswerAndSources(t *testing.T) {
	old := assistant
	mock := &mockAssistant{answer: &domain.Answer{
		Text: "Configure widgets in widgets.toml.",
		Sources: []domain.SourceAttribution{
			{DocumentID: "doc-1", FilePath: "docs/guide.md", HeaderAnchor: "configuration", Score: 0.9123},
			{DocumentID: "doc-2", FilePath: "docs/faq.md", Score: 0.7},
		},
	}}
	assistant = mock
	defer func() { assistant = old }()

	out, err := execute(t, "ask", "--project", "proj-1", "How do I configure widgets?")

	assert.NoError(t, err)
	assert.Equal(t, "proj-1", mock.project)
	assert.Equal(t, "How do I configure widgets?", mock.question)
	assert.Contains(t, out, "Configure widgets in widgets.toml.")
	assert.Contains(t, out, "[1] docs/guide.md#configuration (0.9123)")
	assert.Contains(t, out, "[2] docs/faq.md (0.7000)")
}

func TestAskCmd_PassesOptions(t *testing.T) {
	old := assistant
	mock := &mockAssistant{answer: &domain.Answer{Text: "ok"}}
	assistant = mock
	defer func() { assistant = old }()

	_, err := execute(t, "ask", "--project", "proj-1",
		"--top-k", "8", "--threshold", "0.6", "--provider", "prov-9", "question")

	assert.NoError(t, err)
	assert.Equal(t, 8, mock.opts.TopK)
	assert.InDelta(t, 0.6, mock.opts.ScoreThreshold, 1e-9)
	assert.Equal(t, "prov-9", mock.opts.ProviderID)
}

func TestAskCmd_ConfigDefaultsApplyWhenFlagsUnset(t *testing.T) {
	oldAssistant := assistant
	oldConfig := configStore
	mock := &mockAssistant{answer: &domain.Answer{Text: "ok"}}
	assistant = mock
	configStore = &stubConfig{values: map[string]any{
		file.KeyTopK:           9,
		file.KeyScoreThreshold: 0.4,
	}}
	defer func() {
		assistant = oldAssistant
		configStore = oldConfig
	}()

	_, err := execute(t, "ask", "--project", "proj-1",
		"--top-k", "0", "--threshold", "0", "question")

	assert.NoError(t, err)
	assert.Equal(t, 9, mock.opts.TopK)
	assert.InDelta(t, 0.4, mock.opts.ScoreThreshold, 1e-9)
}

func TestAskCmd_RequiresProject(t *testing.T) {
	old := assistant
	assistant = &mockAssistant{answer: &domain.Answer{Text: "ok"}}
	// Earlier executions leave the flag marked as set.
	flag := askCmd.Flags().Lookup("project")
	flag.Changed = false
	askProject = ""
	defer func() { assistant = old }()

	_, err := execute(t, "ask", "question")

	assert.Error(t, err)
}

func TestAskCmd_NotConfigured(t *testing.T) {
	old := assistant
	assistant = nil
	defer func() { assistant = old }()

	_, err := execute(t, "ask", "--project", "proj-1", "question")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
