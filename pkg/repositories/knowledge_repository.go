package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quartermasters/nudge-engine/pkg/apperrors"
	"github.com/quartermasters/nudge-engine/pkg/database"
	"github.com/quartermasters/nudge-engine/pkg/models"
)

// KnowledgeRepository provides data access for knowledge-base items.
type KnowledgeRepository interface {
	// GetActiveByStore returns the store's active items, newest first.
	GetActiveByStore(ctx context.Context, storeID string) ([]*models.KnowledgeBaseItem, error)
	// GetByID returns the item regardless of its active flag, or (nil, nil).
	GetByID(ctx context.Context, id string) (*models.KnowledgeBaseItem, error)
	// Create inserts the item and fills in its generated id and timestamps.
	Create(ctx context.Context, item *models.KnowledgeBaseItem) error
	// Update applies a partial-field merge and returns the new row.
	// Returns apperrors.ErrNotFound when the id does not exist.
	Update(ctx context.Context, id string, update *models.KnowledgeBaseItemUpdate) (*models.KnowledgeBaseItem, error)
	// SoftDelete flips is_active to false. Rows are never physically removed.
	// Deleting an already-deleted or unknown id is a no-op, not an error.
	SoftDelete(ctx context.Context, id string) error
}

type knowledgeRepository struct {
	db *database.DB
}

// NewKnowledgeRepository creates a new KnowledgeRepository.
func NewKnowledgeRepository(db *database.DB) KnowledgeRepository {
	return &knowledgeRepository{db: db}
}

var _ KnowledgeRepository = (*knowledgeRepository)(nil)

const knowledgeColumns = `id, store_id, type, title, content, tags, is_active, created_at, updated_at`

func (r *knowledgeRepository) GetActiveByStore(ctx context.Context, storeID string) ([]*models.KnowledgeBaseItem, error) {
	query := `
		SELECT ` + knowledgeColumns + `
		FROM knowledge_base_items
		WHERE store_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get knowledge base items: %w", err)
	}
	defer rows.Close()

	items := make([]*models.KnowledgeBaseItem, 0)
	for rows.Next() {
		item, err := scanKnowledgeItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating knowledge base items: %w", err)
	}

	return items, nil
}

func (r *knowledgeRepository) GetByID(ctx context.Context, id string) (*models.KnowledgeBaseItem, error) {
	query := `SELECT ` + knowledgeColumns + ` FROM knowledge_base_items WHERE id = $1`

	item, err := scanKnowledgeItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

func (r *knowledgeRepository) Create(ctx context.Context, item *models.KnowledgeBaseItem) error {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	query := `
		INSERT INTO knowledge_base_items (id, store_id, type, title, content, tags, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		item.ID, item.StoreID, item.Type, item.Title, item.Content, item.Tags,
		item.IsActive, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create knowledge base item: %w", err)
	}

	return nil
}

func (r *knowledgeRepository) Update(ctx context.Context, id string, update *models.KnowledgeBaseItemUpdate) (*models.KnowledgeBaseItem, error) {
	query := `
		UPDATE knowledge_base_items SET
			type = COALESCE($2, type),
			title = COALESCE($3, title),
			content = COALESCE($4, content),
			tags = COALESCE($5, tags),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + knowledgeColumns

	item, err := scanKnowledgeItem(r.db.QueryRow(ctx, query,
		id, update.Type, update.Title, update.Content, update.Tags,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("knowledge base item %q: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return item, nil
}

func (r *knowledgeRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE knowledge_base_items SET is_active = FALSE, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete knowledge base item: %w", err)
	}
	return nil
}

func scanKnowledgeItem(row pgx.Row) (*models.KnowledgeBaseItem, error) {
	var item models.KnowledgeBaseItem
	err := row.Scan(
		&item.ID, &item.StoreID, &item.Type, &item.Title, &item.Content,
		&item.Tags, &item.IsActive, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan knowledge base item: %w", err)
	}
	return &item, nil
}
