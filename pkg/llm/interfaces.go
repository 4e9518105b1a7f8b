// Package llm provides chat completion clients for the assistant.
package llm

import (
	"context"
)

// ChatClient is the interface the assistant uses for chat completions.
// Use this interface for dependency injection to enable mocking in tests.
type ChatClient interface {
	// Complete sends a single-turn completion request and returns the
	// assistant's reply text.
	Complete(ctx context.Context, systemPrompt string, userMessage string) (string, error)

	// Model returns the configured model name.
	Model() string
}
