package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quartermasters/nudge-engine/pkg/database"
	"github.com/quartermasters/nudge-engine/pkg/models"
)

// AnalyticsRepository provides data access for daily analytics aggregates.
// Rows are read-only from this service's perspective; no aggregation job
// exists in-process.
type AnalyticsRepository interface {
	// GetByStore returns the store's analytics rows, newest first,
	// optionally bounded to [from, to] when both are non-nil.
	GetByStore(ctx context.Context, storeID string, from, to *time.Time) ([]*models.Analytics, error)
	// GetLatest returns the most recent analytics row or (nil, nil).
	GetLatest(ctx context.Context, storeID string) (*models.Analytics, error)
	// Create inserts the row and fills in its generated id and timestamp.
	Create(ctx context.Context, analytics *models.Analytics) error
}

type analyticsRepository struct {
	db *database.DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository.
func NewAnalyticsRepository(db *database.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

var _ AnalyticsRepository = (*analyticsRepository)(nil)

const analyticsColumns = `id, store_id, date, deflection_rate::text, cart_recovery_rate::text,
	avg_response_time_ms, revenue_impact::text, conversations_count, escalations_count, created_at`

func (r *analyticsRepository) GetByStore(ctx context.Context, storeID string, from, to *time.Time) ([]*models.Analytics, error) {
	query := `
		SELECT ` + analyticsColumns + `
		FROM analytics
		WHERE store_id = $1`
	args := []any{storeID}

	if from != nil && to != nil {
		query += ` AND date >= $2 AND date <= $3`
		args = append(args, *from, *to)
	}
	query += ` ORDER BY date DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get analytics: %w", err)
	}
	defer rows.Close()

	records := make([]*models.Analytics, 0)
	for rows.Next() {
		a, err := scanAnalytics(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analytics: %w", err)
	}

	return records, nil
}

func (r *analyticsRepository) GetLatest(ctx context.Context, storeID string) (*models.Analytics, error) {
	query := `
		SELECT ` + analyticsColumns + `
		FROM analytics
		WHERE store_id = $1
		ORDER BY date DESC
		LIMIT 1`

	a, err := scanAnalytics(r.db.QueryRow(ctx, query, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *analyticsRepository) Create(ctx context.Context, analytics *models.Analytics) error {
	analytics.CreatedAt = time.Now()
	if analytics.ID == "" {
		analytics.ID = uuid.NewString()
	}

	query := `
		INSERT INTO analytics (
			id, store_id, date, deflection_rate, cart_recovery_rate,
			avg_response_time_ms, revenue_impact, conversations_count, escalations_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		analytics.ID, analytics.StoreID, analytics.Date, analytics.DeflectionRate, analytics.CartRecoveryRate,
		analytics.AvgResponseTimeMs, analytics.RevenueImpact, analytics.ConversationsCnt, analytics.EscalationsCnt,
		analytics.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create analytics: %w", err)
	}

	return nil
}

func scanAnalytics(row pgx.Row) (*models.Analytics, error) {
	var a models.Analytics
	err := row.Scan(
		&a.ID, &a.StoreID, &a.Date, &a.DeflectionRate, &a.CartRecoveryRate,
		&a.AvgResponseTimeMs, &a.RevenueImpact, &a.ConversationsCnt, &a.EscalationsCnt, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan analytics: %w", err)
	}
	return &a, nil
}
