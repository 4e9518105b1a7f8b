package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quartermasters/nudge-engine/pkg/config"
)

func TestNewChatClient_OpenAI(t *testing.T) {
	client, err := NewChatClient(&config.AIConfig{
		Provider:          "openai",
		Model:             "gpt-5",
		MaxResponseTokens: 300,
		OpenAIAPIKey:      "test-key",
	}, zap.NewNop())

	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "gpt-5", client.Model())
	_, ok := client.(*OpenAIClient)
	assert.True(t, ok)
}

func TestNewChatClient_Anthropic(t *testing.T) {
	client, err := NewChatClient(&config.AIConfig{
		Provider:          "anthropic",
		Model:             "claude-sonnet-4-5-20250929",
		MaxResponseTokens: 300,
		AnthropicAPIKey:   "test-key",
	}, zap.NewNop())

	require.NoError(t, err)
	require.NotNil(t, client)
	_, ok := client.(*AnthropicClient)
	assert.True(t, ok)
}

func TestNewChatClient_UnknownProvider(t *testing.T) {
	_, err := NewChatClient(&config.AIConfig{Provider: "llama-farm"}, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported ai provider")
}

func TestNewChatClient_MissingAPIKey(t *testing.T) {
	_, err := NewChatClient(&config.AIConfig{
		Provider: "openai",
		Model:    "gpt-5",
	}, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key is required")
}
