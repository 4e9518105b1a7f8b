package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// AnthropicClient provides access to the Anthropic Messages API.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// NewAnthropicClient creates a new Anthropic chat client.
func NewAnthropicClient(apiKey, model string, maxTokens int, logger *zap.Logger) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(apiKey),
		model:     model,
		maxTokens: maxTokens,
		logger:    logger.Named("llm"),
	}, nil
}

// Complete implements ChatClient.
func (c *AnthropicClient) Complete(ctx context.Context, systemPrompt string, userMessage string) (string, error) {
	c.logger.Debug("chat completion request",
		zap.String("model", c.model),
		zap.Int("message_len", len(userMessage)))

	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		System:    systemPrompt,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &userMessage},
			}},
		},
	})
	if err != nil {
		c.logger.Error("chat completion failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("chat completion: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			content = *block.Text
			break
		}
	}

	c.logger.Info("chat completion completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return content, nil
}

// Model implements ChatClient.
func (c *AnthropicClient) Model() string {
	return c.model
}

var _ ChatClient = (*AnthropicClient)(nil)
