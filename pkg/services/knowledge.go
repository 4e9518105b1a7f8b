package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quartermasters/nudge-engine/pkg/models"
	"github.com/quartermasters/nudge-engine/pkg/repositories"
)

// KnowledgeService defines the interface for knowledge-base management.
type KnowledgeService interface {
	// ListActive returns the store's active items, newest first.
	ListActive(ctx context.Context, storeID string) ([]*models.KnowledgeBaseItem, error)

	// Create validates and stores a new item. Tags arrive as a single
	// comma-separated string and are normalized into a slice.
	Create(ctx context.Context, storeID, itemType, title, content, tags string) (*models.KnowledgeBaseItem, error)

	// Update applies a partial merge. Returns apperrors.ErrNotFound when the
	// id does not exist.
	Update(ctx context.Context, id string, update *models.KnowledgeBaseItemUpdate) (*models.KnowledgeBaseItem, error)

	// Delete soft-deletes the item. Repeat deletes and unknown ids are no-ops.
	Delete(ctx context.Context, id string) error
}

// knowledgeService implements KnowledgeService.
type knowledgeService struct {
	repo   repositories.KnowledgeRepository
	logger *zap.Logger
}

// NewKnowledgeService creates a new knowledge service with dependencies.
func NewKnowledgeService(repo repositories.KnowledgeRepository, logger *zap.Logger) KnowledgeService {
	return &knowledgeService{
		repo:   repo,
		logger: logger,
	}
}

func (s *knowledgeService) ListActive(ctx context.Context, storeID string) ([]*models.KnowledgeBaseItem, error) {
	return s.repo.GetActiveByStore(ctx, storeID)
}

func (s *knowledgeService) Create(ctx context.Context, storeID, itemType, title, content, tags string) (*models.KnowledgeBaseItem, error) {
	if !models.ValidKnowledgeType(itemType) {
		return nil, fmt.Errorf("invalid knowledge type %q (want faq, policy or size_guide)", itemType)
	}
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}

	item := &models.KnowledgeBaseItem{
		StoreID:  storeID,
		Type:     itemType,
		Title:    title,
		Content:  content,
		Tags:     NormalizeTags(tags),
		IsActive: true,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("knowledge base item created",
		zap.String("item_id", item.ID),
		zap.String("store_id", storeID),
		zap.String("type", itemType))

	return item, nil
}

func (s *knowledgeService) Update(ctx context.Context, id string, update *models.KnowledgeBaseItemUpdate) (*models.KnowledgeBaseItem, error) {
	if update.Type != nil && !models.ValidKnowledgeType(*update.Type) {
		return nil, fmt.Errorf("invalid knowledge type %q (want faq, policy or size_guide)", *update.Type)
	}
	return s.repo.Update(ctx, id, update)
}

func (s *knowledgeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("knowledge base item deactivated", zap.String("item_id", id))
	return nil
}

// NormalizeTags splits a comma-separated tag string, trims whitespace and
// drops empty entries. An all-whitespace input yields an empty slice.
func NormalizeTags(tags string) []string {
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

var _ KnowledgeService = (*knowledgeService)(nil)
