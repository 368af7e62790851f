// Package llm provides centralized LLM configuration and client abstractions.
// Callers pick a model tier; the configured provider decides which concrete model serves it.
package llm

import "time"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: requirement extraction, short narratives
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: resume scoring, comparisons, chat
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI chat completions provider
	ProviderOpenAI Provider = "openai"
)

// DefaultCallTimeout bounds every single upstream call.
const DefaultCallTimeout = 30 * time.Second

// DefaultTemperature keeps structured output consistent between calls.
const DefaultTemperature float32 = 0.1

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways).
	BaseURL string
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: DefaultTemperature,
	}
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Models: map[ModelTier]string{
			TierLite:     "gpt-4o-mini",
			TierStandard: "gpt-4o",
			TierAdvanced: "gpt-4o",
		},
		Temperature: DefaultTemperature,
	}
}

// ConfigForProvider returns the default configuration for a provider name.
// Unknown names fall back to Gemini.
func ConfigForProvider(p Provider) *Config {
	if p == ProviderOpenAI {
		return DefaultOpenAIConfig()
	}
	return DefaultGeminiConfig()
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:    c.Provider,
		Models:      make(map[ModelTier]string, len(c.Models)+1),
		Temperature: c.Temperature,
		BaseURL:     c.BaseURL,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
