package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model          string `json:"model"`
	MaxTokens      int    `json:"max_tokens"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newOpenAITestServer(t *testing.T, content string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  captured.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
}

func TestOpenAIClient_GenerateJSON(t *testing.T) {
	var captured capturedRequest
	srv := newOpenAITestServer(t, "```json\n{\"rating\": 77}\n```", &captured)
	defer srv.Close()

	cfg := DefaultOpenAIConfig()
	cfg.BaseURL = srv.URL + "/v1"
	client, err := NewOpenAIClient(cfg, "sk-test")
	require.NoError(t, err)

	out, err := client.GenerateJSON(context.Background(), []Message{
		System("be fair"),
		User("score this"),
	}, TierStandard)
	require.NoError(t, err)

	assert.Equal(t, `{"rating": 77}`, out)
	assert.Equal(t, "gpt-4o", captured.Model)
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "be fair", captured.Messages[0].Content)
}

func TestOpenAIClient_GenerateContentMaxTokens(t *testing.T) {
	var captured capturedRequest
	srv := newOpenAITestServer(t, "Hello there", &captured)
	defer srv.Close()

	cfg := DefaultOpenAIConfig()
	cfg.BaseURL = srv.URL + "/v1"
	client, err := NewOpenAIClient(cfg, "sk-test")
	require.NoError(t, err)

	out, err := client.GenerateContent(context.Background(), []Message{User("hi")}, TierLite, WithMaxTokens(1000))
	require.NoError(t, err)

	assert.Equal(t, "Hello there", out)
	assert.Equal(t, 1000, captured.MaxTokens)
	assert.Nil(t, captured.ResponseFormat)
	assert.Equal(t, "gpt-4o-mini", captured.Model)
}

func TestOpenAIClient_EmptyConversation(t *testing.T) {
	client, err := NewOpenAIClient(DefaultOpenAIConfig(), "sk-test")
	require.NoError(t, err)

	_, err = client.GenerateContent(context.Background(), nil, TierLite)
	assert.Error(t, err)
}
