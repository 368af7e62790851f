package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client on top of the OpenAI chat completions API
type OpenAIClient struct {
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *OpenAIClient) GenerateContent(ctx context.Context, messages []Message, tier ModelTier, opts ...CallOption) (string, error) {
	return c.complete(ctx, messages, tier, false, opts)
}

// GenerateJSON requests a json_object response format
func (c *OpenAIClient) GenerateJSON(ctx context.Context, messages []Message, tier ModelTier, opts ...CallOption) (string, error) {
	text, err := c.complete(ctx, messages, tier, true, opts)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *OpenAIClient) complete(ctx context.Context, messages []Message, tier ModelTier, jsonMode bool, opts []CallOption) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("conversation is empty")
	}

	o := applyOptions(c.config, opts)
	req := openai.ChatCompletionRequest{
		Model:       modelName,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: *o.Temperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	if o.MaxTokens > 0 {
		req.MaxTokens = o.MaxTokens
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return resp.Choices[0].Message.Content, nil
}

// GetModel returns the model name for a tier
func (c *OpenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the HTTP client has no resources to release
func (c *OpenAIClient) Close() error {
	return nil
}
