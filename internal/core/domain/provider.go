package domain

import (
	"fmt"
	"time"
)

// ProviderName identifies a completion provider variant. The set is
// closed: adding a provider means adding a constant and an adapter,
// not editing a dispatch chain.
type ProviderName string

// Supported completion providers.
const (
	ProviderOpenAI  ProviderName = "openai"
	ProviderGoogle  ProviderName = "google"
	ProviderLiteLLM ProviderName = "litellm"
	ProviderOllama  ProviderName = "ollama"
)

// Valid reports whether the provider name is one of the supported variants.
func (p ProviderName) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderGoogle, ProviderLiteLLM, ProviderOllama:
		return true
	}
	return false
}

// ParseProviderName converts a stored string to a ProviderName.
func ParseProviderName(s string) (ProviderName, error) {
	p := ProviderName(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrProviderUnsupported, s)
	}
	return p, nil
}

// Default generation parameters applied when a ProviderConfig leaves
// them unset.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)

// ProviderConfig is a stored completion provider configuration.
// It carries only non-secret parameters; API keys come from
// process-level configuration, never from the stored record.
type ProviderConfig struct {
	// ID is the unique identifier for the configuration.
	ID string

	// Provider selects the completion provider variant.
	Provider ProviderName

	// Model is the provider-specific model name.
	Model string

	// Temperature controls generation randomness. Zero means use the default.
	Temperature float64

	// MaxTokens bounds the completion length. Zero means use the default.
	MaxTokens int

	// IsDefault marks the provider used when a query names none.
	IsDefault bool

	// CreatedAt is when the configuration was stored.
	CreatedAt time.Time
}

// EffectiveTemperature returns the configured temperature or the default.
func (c *ProviderConfig) EffectiveTemperature() float64 {
	if c.Temperature == 0 {
		return DefaultTemperature
	}
	return c.Temperature
}

// EffectiveMaxTokens returns the configured token bound or the default.
func (c *ProviderConfig) EffectiveMaxTokens() int {
	if c.MaxTokens == 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}
