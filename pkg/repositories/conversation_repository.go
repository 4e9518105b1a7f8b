package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quartermasters/nudge-engine/pkg/apperrors"
	"github.com/quartermasters/nudge-engine/pkg/database"
	"github.com/quartermasters/nudge-engine/pkg/models"
)

// ConversationRepository provides data access for chat conversation records.
// One row per inbound chat call: the repository never appends messages to an
// existing row, so a session typically owns many rows.
type ConversationRepository interface {
	// Create inserts the conversation and fills in its generated id and timestamps.
	Create(ctx context.Context, conv *models.Conversation) error
	// GetBySession returns the most recent conversation row for the session,
	// or (nil, nil) when the session has none.
	GetBySession(ctx context.Context, sessionID string) (*models.Conversation, error)
	// GetRecentByStore returns up to limit conversations, newest first.
	GetRecentByStore(ctx context.Context, storeID string, limit int) ([]*models.Conversation, error)
	// Update applies a partial-field merge and returns the new row.
	Update(ctx context.Context, id string, update *models.ConversationUpdate) (*models.Conversation, error)
}

type conversationRepository struct {
	db *database.DB
}

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(db *database.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

var _ ConversationRepository = (*conversationRepository)(nil)

const conversationColumns = `id, store_id, session_id, customer_email, messages, status,
	response_time_ms, was_deflected, revenue_attributed::text, created_at, updated_at`

func (r *conversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	now := time.Now()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	if conv.Status == "" {
		conv.Status = models.ConversationActive
	}

	messagesJSON, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	// NULL rather than empty string for optional columns
	var customerEmail *string
	if conv.CustomerEmail != "" {
		customerEmail = &conv.CustomerEmail
	}

	query := `
		INSERT INTO conversations (
			id, store_id, session_id, customer_email, messages, status,
			response_time_ms, was_deflected, revenue_attributed, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.Exec(ctx, query,
		conv.ID, conv.StoreID, conv.SessionID, customerEmail, messagesJSON, conv.Status,
		conv.ResponseTimeMs, conv.WasDeflected, conv.RevenueAttributed,
		conv.CreatedAt, conv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	return nil
}

func (r *conversationRepository) GetBySession(ctx context.Context, sessionID string) (*models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	conv, err := scanConversationRow(r.db.QueryRow(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return conv, nil
}

func (r *conversationRepository) GetRecentByStore(ctx context.Context, storeID string, limit int) ([]*models.Conversation, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE store_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, storeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversations: %w", err)
	}
	defer rows.Close()

	conversations := make([]*models.Conversation, 0)
	for rows.Next() {
		conv, err := scanConversationRow(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}

	return conversations, nil
}

func (r *conversationRepository) Update(ctx context.Context, id string, update *models.ConversationUpdate) (*models.Conversation, error) {
	query := `
		UPDATE conversations SET
			status = COALESCE($2, status),
			was_deflected = COALESCE($3, was_deflected),
			revenue_attributed = COALESCE($4::numeric, revenue_attributed),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + conversationColumns

	conv, err := scanConversationRow(r.db.QueryRow(ctx, query,
		id, update.Status, update.WasDeflected, update.RevenueAttributed,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("conversation %q: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return conv, nil
}

func scanConversationRow(row pgx.Row) (*models.Conversation, error) {
	var (
		conv          models.Conversation
		customerEmail *string
		messagesJSON  []byte
		responseTime  *int
	)

	err := row.Scan(
		&conv.ID, &conv.StoreID, &conv.SessionID, &customerEmail, &messagesJSON, &conv.Status,
		&responseTime, &conv.WasDeflected, &conv.RevenueAttributed,
		&conv.CreatedAt, &conv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan conversation: %w", err)
	}

	if customerEmail != nil {
		conv.CustomerEmail = *customerEmail
	}
	if responseTime != nil {
		conv.ResponseTimeMs = *responseTime
	}
	if len(messagesJSON) > 0 {
		if err := json.Unmarshal(messagesJSON, &conv.Messages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
		}
	}

	return &conv, nil
}
