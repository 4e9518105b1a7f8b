package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/quartermasters/nudge-engine/pkg/apperrors"
	"github.com/quartermasters/nudge-engine/pkg/models"
	"github.com/quartermasters/nudge-engine/pkg/services"
)

// CreateKnowledgeItemRequest for POST /api/knowledge-base
type CreateKnowledgeItemRequest struct {
	StoreID string `json:"storeId"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Tags    string `json:"tags,omitempty"`
}

// UpdateKnowledgeItemRequest for PUT /api/knowledge-base/{id}
type UpdateKnowledgeItemRequest struct {
	Type    *string `json:"type,omitempty"`
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Tags    *string `json:"tags,omitempty"`
}

// KnowledgeHandler handles knowledge-base HTTP requests.
type KnowledgeHandler struct {
	knowledge services.KnowledgeService
	logger    *zap.Logger
}

// NewKnowledgeHandler creates a new knowledge handler.
func NewKnowledgeHandler(knowledge services.KnowledgeService, logger *zap.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{
		knowledge: knowledge,
		logger:    logger,
	}
}

// RegisterRoutes registers the knowledge handler's routes on the given mux.
func (h *KnowledgeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/knowledge-base/{storeId}", h.List)
	mux.HandleFunc("POST /api/knowledge-base", h.Create)
	mux.HandleFunc("PUT /api/knowledge-base/{id}", h.Update)
	mux.HandleFunc("DELETE /api/knowledge-base/{id}", h.Delete)
}

// List handles GET /api/knowledge-base/{storeId}
func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID := r.PathValue("storeId")

	items, err := h.knowledge.ListActive(r.Context(), storeID)
	if err != nil {
		h.logger.Error("Failed to list knowledge base items",
			zap.String("store_id", storeID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch knowledge base"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, items); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/knowledge-base
func (h *KnowledgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateKnowledgeItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	item, err := h.knowledge.Create(r.Context(), req.StoreID, req.Type, req.Title, req.Content, req.Tags)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, item); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/knowledge-base/{id}
func (h *KnowledgeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req UpdateKnowledgeItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	update := &models.KnowledgeBaseItemUpdate{
		Type:    req.Type,
		Title:   req.Title,
		Content: req.Content,
	}
	if req.Tags != nil {
		update.Tags = services.NormalizeTags(*req.Tags)
	}

	item, err := h.knowledge.Update(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "Knowledge base item not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to update knowledge base item",
			zap.String("item_id", id),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusBadRequest, err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, item); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/knowledge-base/{id}
func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.knowledge.Delete(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete knowledge base item",
			zap.String("item_id", id),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Failed to delete knowledge base item"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]bool{"success": true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
