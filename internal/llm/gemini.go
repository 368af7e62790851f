package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *GeminiClient) GenerateContent(ctx context.Context, messages []Message, tier ModelTier, opts ...CallOption) (string, error) {
	return c.send(ctx, messages, tier, false, opts)
}

// GenerateJSON generates JSON content using the specified model tier
func (c *GeminiClient) GenerateJSON(ctx context.Context, messages []Message, tier ModelTier, opts ...CallOption) (string, error) {
	text, err := c.send(ctx, messages, tier, true, opts)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *GeminiClient) send(ctx context.Context, messages []Message, tier ModelTier, jsonMode bool, opts []CallOption) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	system, turns := splitSystem(messages)
	if len(turns) == 0 {
		return "", fmt.Errorf("conversation has no user message")
	}

	o := applyOptions(c.config, opts)
	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(*o.Temperature)
	if o.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(o.MaxTokens))
	}
	if jsonMode {
		model.ResponseMIMEType = "application/json"
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	// Everything before the last turn becomes chat history.
	session := model.StartChat()
	for _, m := range turns[:len(turns)-1] {
		session.History = append(session.History, &genai.Content{
			Role:  geminiRole(m.Role),
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(turns[len(turns)-1].Content))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func geminiRole(r Role) string {
	if r == RoleAssistant {
		return "model"
	}
	return "user"
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
