package llm

import (
	"context"
)

// MockChatClient is a configurable mock for testing chat functionality.
// Set the function fields to control behavior in tests.
type MockChatClient struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns an empty string and nil error.
	CompleteFunc func(ctx context.Context, systemPrompt string, userMessage string) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	// Call tracking for verification
	CompleteCalls int
}

// NewMockChatClient creates a new mock with sensible defaults.
func NewMockChatClient() *MockChatClient {
	return &MockChatClient{ModelName: "mock-model"}
}

// Complete implements ChatClient.
func (m *MockChatClient) Complete(ctx context.Context, systemPrompt string, userMessage string) (string, error) {
	m.CompleteCalls++
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, userMessage)
	}
	return "", nil
}

// Model implements ChatClient.
func (m *MockChatClient) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

var _ ChatClient = (*MockChatClient)(nil)
