package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/quartermasters/nudge-engine/pkg/config"
)

// NewChatClient creates the chat client for the configured provider.
// Returns ChatClient interface to enable dependency injection of mocks.
func NewChatClient(cfg *config.AIConfig, logger *zap.Logger) (ChatClient, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.BaseURL, cfg.Model, cfg.MaxResponseTokens, logger)
	case "anthropic":
		return NewAnthropicClient(cfg.AnthropicAPIKey, cfg.Model, cfg.MaxResponseTokens, logger)
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}
