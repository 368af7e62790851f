// Package llmtest provides a configurable llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/applicant-tracker/internal/llm"
)

// MockClient implements llm.Client with overridable functions and records every call.
type MockClient struct {
	GenerateContentFunc func(ctx context.Context, messages []llm.Message, tier llm.ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, messages []llm.Message, tier llm.ModelTier) (string, error)

	mu    sync.Mutex
	calls [][]llm.Message
}

// GenerateContent calls GenerateContentFunc or returns "".
func (m *MockClient) GenerateContent(ctx context.Context, messages []llm.Message, tier llm.ModelTier, _ ...llm.CallOption) (string, error) {
	m.record(messages)
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, messages, tier)
	}
	return "", nil
}

// GenerateJSON calls GenerateJSONFunc or returns "{}".
func (m *MockClient) GenerateJSON(ctx context.Context, messages []llm.Message, tier llm.ModelTier, _ ...llm.CallOption) (string, error) {
	m.record(messages)
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, messages, tier)
	}
	return "{}", nil
}

// GetModel returns a fixed name.
func (m *MockClient) GetModel(_ llm.ModelTier) string { return "mock-model" }

// Close does nothing.
func (m *MockClient) Close() error { return nil }

// Calls returns the conversations received so far.
func (m *MockClient) Calls() [][]llm.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]llm.Message, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many requests reached the mock.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *MockClient) record(messages []llm.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]llm.Message, len(messages))
	copy(cp, messages)
	m.calls = append(m.calls, cp)
}
