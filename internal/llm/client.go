package llm

import (
	"context"
	"fmt"
)

// Role identifies the author of a chat message
type Role string

// Message roles understood by every provider
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation sent to the backend
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// System builds a system message
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User builds a user message
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent returns free text for the conversation
	GenerateContent(ctx context.Context, messages []Message, tier ModelTier, opts ...CallOption) (string, error)
	// GenerateJSON asks the provider for a JSON object and strips any markdown wrapper
	GenerateJSON(ctx context.Context, messages []Message, tier ModelTier, opts ...CallOption) (string, error)
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// CallOptions tune a single request
type CallOptions struct {
	MaxTokens   int
	Temperature *float32
}

// CallOption mutates CallOptions
type CallOption func(*CallOptions)

// WithMaxTokens caps the length of the generated answer
func WithMaxTokens(n int) CallOption {
	return func(o *CallOptions) { o.MaxTokens = n }
}

// WithTemperature overrides the configured sampling temperature
func WithTemperature(t float32) CallOption {
	return func(o *CallOptions) { o.Temperature = &t }
}

func applyOptions(cfg *Config, opts []CallOption) CallOptions {
	o := CallOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Temperature == nil {
		t := cfg.Temperature
		o.Temperature = &t
	}
	return o
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// splitSystem separates system instructions from the conversation turns.
// Multiple system messages are joined in order.
func splitSystem(messages []Message) (string, []Message) {
	var system string
	turns := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		turns = append(turns, m)
	}
	return system, turns
}
