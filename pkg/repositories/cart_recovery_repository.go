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

// CartRecoveryRepository provides data access for cart recovery events.
// No live code path produces these rows yet; the repository exists so the
// dashboard can read whatever an external producer inserts.
type CartRecoveryRepository interface {
	// GetByStore returns the store's events, newest first. A limit of 0
	// returns all rows.
	GetByStore(ctx context.Context, storeID string, limit int) ([]*models.CartRecoveryEvent, error)
	// Create inserts the event and fills in its generated id and timestamps.
	Create(ctx context.Context, event *models.CartRecoveryEvent) error
	// Update applies a partial-field merge and returns the new row.
	Update(ctx context.Context, id string, update *models.CartRecoveryEventUpdate) (*models.CartRecoveryEvent, error)
}

type cartRecoveryRepository struct {
	db *database.DB
}

// NewCartRecoveryRepository creates a new CartRecoveryRepository.
func NewCartRecoveryRepository(db *database.DB) CartRecoveryRepository {
	return &cartRecoveryRepository{db: db}
}

var _ CartRecoveryRepository = (*cartRecoveryRepository)(nil)

const cartRecoveryColumns = `id, store_id, checkout_id, customer_email, cart_items, total_value::text,
	channel, "trigger", delivered, clicked, converted, order_id, created_at, updated_at`

func (r *cartRecoveryRepository) GetByStore(ctx context.Context, storeID string, limit int) ([]*models.CartRecoveryEvent, error) {
	query := `
		SELECT ` + cartRecoveryColumns + `
		FROM cart_recovery_events
		WHERE store_id = $1
		ORDER BY created_at DESC`
	args := []any{storeID}

	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart recovery events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.CartRecoveryEvent, 0)
	for rows.Next() {
		event, err := scanCartRecoveryEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart recovery events: %w", err)
	}

	return events, nil
}

func (r *cartRecoveryRepository) Create(ctx context.Context, event *models.CartRecoveryEvent) error {
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	var cartItemsJSON []byte
	if event.CartItems != nil {
		var err error
		cartItemsJSON, err = json.Marshal(event.CartItems)
		if err != nil {
			return fmt.Errorf("failed to marshal cart items: %w", err)
		}
	}

	var orderID *string
	if event.OrderID != "" {
		orderID = &event.OrderID
	}

	query := `
		INSERT INTO cart_recovery_events (
			id, store_id, checkout_id, customer_email, cart_items, total_value,
			channel, "trigger", delivered, clicked, converted, order_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(ctx, query,
		event.ID, event.StoreID, event.CheckoutID, event.CustomerEmail, cartItemsJSON, event.TotalValue,
		event.Channel, event.Trigger, event.Delivered, event.Clicked, event.Converted, orderID,
		event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create cart recovery event: %w", err)
	}

	return nil
}

func (r *cartRecoveryRepository) Update(ctx context.Context, id string, update *models.CartRecoveryEventUpdate) (*models.CartRecoveryEvent, error) {
	query := `
		UPDATE cart_recovery_events SET
			delivered = COALESCE($2, delivered),
			clicked = COALESCE($3, clicked),
			converted = COALESCE($4, converted),
			order_id = COALESCE($5, order_id),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + cartRecoveryColumns

	event, err := scanCartRecoveryEvent(r.db.QueryRow(ctx, query,
		id, update.Delivered, update.Clicked, update.Converted, update.OrderID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("cart recovery event %q: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return event, nil
}

func scanCartRecoveryEvent(row pgx.Row) (*models.CartRecoveryEvent, error) {
	var (
		event         models.CartRecoveryEvent
		cartItemsJSON []byte
		orderID       *string
	)

	err := row.Scan(
		&event.ID, &event.StoreID, &event.CheckoutID, &event.CustomerEmail, &cartItemsJSON, &event.TotalValue,
		&event.Channel, &event.Trigger, &event.Delivered, &event.Clicked, &event.Converted, &orderID,
		&event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan cart recovery event: %w", err)
	}

	if orderID != nil {
		event.OrderID = *orderID
	}
	if len(cartItemsJSON) > 0 {
		if err := json.Unmarshal(cartItemsJSON, &event.CartItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cart items: %w", err)
		}
	}

	return &event, nil
}
