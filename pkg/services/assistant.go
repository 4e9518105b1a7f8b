package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/quartermasters/nudge-engine/pkg/llm"
	"github.com/quartermasters/nudge-engine/pkg/observability"
	"github.com/quartermasters/nudge-engine/pkg/prompts"
)

// Canned replies the assistant falls back to. The apology covers provider
// errors; the retry message covers a successful call that produced no text.
const (
	FallbackApology = "I'm experiencing technical difficulties. Please contact our support team for immediate assistance."
	FallbackEmpty   = "I'm sorry, I couldn't process your request. Please try again."
)

// Reply is the outcome of one assistant turn.
type Reply struct {
	Content           string
	ResponseTimeMs    int
	WasDeflected      bool
	RevenueAttributed float64
}

// AssistantService defines the interface for assistant chat turns.
type AssistantService interface {
	// ProcessMessage runs one completion turn. It never returns an error:
	// provider failures are absorbed into an apology reply so the widget
	// always has something to show the customer.
	ProcessMessage(ctx context.Context, message, storeID, sessionID string) *Reply
}

// assistantService implements AssistantService.
type assistantService struct {
	chat    llm.ChatClient
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAssistantService creates a new assistant service with dependencies.
func NewAssistantService(chat llm.ChatClient, metrics *observability.Metrics, logger *zap.Logger) AssistantService {
	return &assistantService{
		chat:    chat,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *assistantService) ProcessMessage(ctx context.Context, message, storeID, sessionID string) *Reply {
	start := time.Now()

	content, err := s.chat.Complete(ctx, prompts.AssistantSystemPrompt, message)
	elapsed := time.Since(start)
	s.metrics.RecordChatResponse(elapsed)

	if err != nil {
		s.logger.Error("assistant completion failed",
			zap.String("store_id", storeID),
			zap.String("session_id", sessionID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		s.metrics.IncrFallback()

		return &Reply{
			Content:        FallbackApology,
			ResponseTimeMs: int(elapsed.Milliseconds()),
			WasDeflected:   false,
		}
	}

	if content == "" {
		content = FallbackEmpty
	}

	s.logger.Info("assistant reply",
		zap.String("store_id", storeID),
		zap.String("session_id", sessionID),
		zap.String("model", s.chat.Model()),
		zap.Duration("elapsed", elapsed))
	s.metrics.IncrDeflection()

	// Every successful reply counts as deflected from human support.
	// Revenue attribution has no scoring model yet and stays zero.
	return &Reply{
		Content:           content,
		ResponseTimeMs:    int(elapsed.Milliseconds()),
		WasDeflected:      true,
		RevenueAttributed: 0,
	}
}

var _ AssistantService = (*assistantService)(nil)
