package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quartermasters/nudge-engine/pkg/apperrors"
	"github.com/quartermasters/nudge-engine/pkg/models"
	"github.com/quartermasters/nudge-engine/pkg/repositories"
	"github.com/quartermasters/nudge-engine/pkg/services"
)

// ChatRequest for POST /api/chat
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	StoreID   string `json:"storeId"`
	Email     string `json:"email,omitempty"`
}

// ChatResponse for POST /api/chat
type ChatResponse struct {
	Message      string `json:"message"`
	ResponseTime int    `json:"responseTime"`
	WasDeflected bool   `json:"wasDeflected"`
}

// WidgetMessageRequest for POST /api/chat/message
type WidgetMessageRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

// WidgetMessageResponse for POST /api/chat/message
type WidgetMessageResponse struct {
	Message      string `json:"message"`
	ResponseTime int    `json:"responseTime"`
}

// ChatHandler handles customer chat HTTP requests.
type ChatHandler struct {
	assistant     services.AssistantService
	stores        repositories.StoreRepository
	conversations repositories.ConversationRepository
	logger        *zap.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(
	assistant services.AssistantService,
	stores repositories.StoreRepository,
	conversations repositories.ConversationRepository,
	logger *zap.Logger,
) *ChatHandler {
	return &ChatHandler{
		assistant:     assistant,
		stores:        stores,
		conversations: conversations,
		logger:        logger,
	}
}

// RegisterRoutes registers the chat handler's routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.Chat)
	mux.HandleFunc("POST /api/chat/message", h.WidgetMessage)
	mux.HandleFunc("GET /api/conversations/{sessionId}", h.GetConversation)
}

// Chat handles POST /api/chat. Resolves the store, runs one assistant turn
// and persists the exchange as a new conversation row.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if strings.TrimSpace(req.Message) == "" ||
		strings.TrimSpace(req.SessionID) == "" ||
		strings.TrimSpace(req.StoreID) == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "Missing required fields"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	store, err := h.resolveStore(r, req.StoreID)
	if err != nil {
		h.logger.Error("Failed to resolve store",
			zap.String("store_id", req.StoreID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if store == nil {
		if err := ErrorResponse(w, http.StatusNotFound, "Store not found"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	reply := h.assistant.ProcessMessage(r.Context(), req.Message, req.StoreID, req.SessionID)

	revenue := fmt.Sprintf("%g", reply.RevenueAttributed)
	now := time.Now()
	conv := &models.Conversation{
		StoreID:       req.StoreID,
		SessionID:     req.SessionID,
		CustomerEmail: req.Email,
		Messages: []models.ConversationMessage{
			{Role: models.RoleUser, Content: req.Message, Timestamp: now},
			{Role: models.RoleAssistant, Content: reply.Content, Timestamp: now},
		},
		ResponseTimeMs:    reply.ResponseTimeMs,
		WasDeflected:      reply.WasDeflected,
		RevenueAttributed: &revenue,
	}
	if err := h.conversations.Create(r.Context(), conv); err != nil {
		h.logger.Error("Failed to save conversation",
			zap.String("store_id", req.StoreID),
			zap.String("session_id", req.SessionID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ChatResponse{
		Message:      reply.Content,
		ResponseTime: reply.ResponseTimeMs,
		WasDeflected: reply.WasDeflected,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// resolveStore loads the store, auto-creating the demo store on first use.
// Returns (nil, nil) when a non-demo store id is unknown.
func (h *ChatHandler) resolveStore(r *http.Request, storeID string) (*models.Store, error) {
	store, err := h.stores.GetByID(r.Context(), storeID)
	if err != nil {
		return nil, err
	}
	if store != nil || storeID != models.DemoStoreID {
		return store, nil
	}

	store = &models.Store{
		ID:            models.DemoStoreID,
		ShopifyDomain: "demo.myshopify.com",
		AccessToken:   "demo-token",
		Name:          "Demo Store",
		Email:         "demo@example.com",
		IsActive:      true,
	}
	err = h.stores.Create(r.Context(), store)
	if err == nil {
		return store, nil
	}
	if errors.Is(err, apperrors.ErrConflict) {
		// Another request created it between our read and write.
		return h.stores.GetByID(r.Context(), storeID)
	}
	return nil, err
}

// WidgetMessage handles POST /api/chat/message, the embedded widget's
// simplified endpoint. Replies are not persisted.
func (h *ChatHandler) WidgetMessage(w http.ResponseWriter, r *http.Request) {
	var req WidgetMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "Message is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	sessionID := req.ConversationID
	if sessionID == "" {
		sessionID = "widget-session"
	}

	reply := h.assistant.ProcessMessage(r.Context(), req.Message, models.DemoStoreID, sessionID)

	if err := WriteJSON(w, http.StatusOK, WidgetMessageResponse{
		Message:      reply.Content,
		ResponseTime: reply.ResponseTimeMs,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetConversation handles GET /api/conversations/{sessionId}. Returns the
// session's most recent conversation row.
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")

	conv, err := h.conversations.GetBySession(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to fetch conversation",
			zap.String("session_id", sessionID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch conversation"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if conv == nil {
		if err := ErrorResponse(w, http.StatusNotFound, "Conversation not found"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, conv); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
