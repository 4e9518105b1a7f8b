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

// ProductRepository provides data access for synced store products.
type ProductRepository interface {
	// GetByStore returns the store's products, newest first.
	GetByStore(ctx context.Context, storeID string) ([]*models.Product, error)
	// Create inserts the product and fills in its generated id and timestamps.
	Create(ctx context.Context, product *models.Product) error
	// Update applies a partial-field merge and returns the new row.
	Update(ctx context.Context, id string, update *models.ProductUpdate) (*models.Product, error)
}

type productRepository struct {
	db *database.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *database.DB) ProductRepository {
	return &productRepository{db: db}
}

var _ ProductRepository = (*productRepository)(nil)

const productColumns = `id, store_id, shopify_product_id, title, description, variants, tags, created_at, updated_at`

func (r *productRepository) GetByStore(ctx context.Context, storeID string) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE store_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	var variantsJSON []byte
	if product.Variants != nil {
		var err error
		variantsJSON, err = json.Marshal(product.Variants)
		if err != nil {
			return fmt.Errorf("failed to marshal variants: %w", err)
		}
	}

	var description *string
	if product.Description != "" {
		description = &product.Description
	}

	query := `
		INSERT INTO products (id, store_id, shopify_product_id, title, description, variants, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		product.ID, product.StoreID, product.ShopifyProductID, product.Title, description,
		variantsJSON, product.Tags, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *productRepository) Update(ctx context.Context, id string, update *models.ProductUpdate) (*models.Product, error) {
	var variantsJSON []byte
	if update.Variants != nil {
		var err error
		variantsJSON, err = json.Marshal(update.Variants)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal variants: %w", err)
		}
	}

	query := `
		UPDATE products SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			variants = COALESCE($4, variants),
			tags = COALESCE($5, tags),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	product, err := scanProduct(r.db.QueryRow(ctx, query,
		id, update.Title, update.Description, variantsJSON, update.Tags,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %q: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return product, nil
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var (
		p            models.Product
		description  *string
		variantsJSON []byte
	)

	err := row.Scan(
		&p.ID, &p.StoreID, &p.ShopifyProductID, &p.Title, &description,
		&variantsJSON, &p.Tags, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if description != nil {
		p.Description = *description
	}
	if len(variantsJSON) > 0 {
		if err := json.Unmarshal(variantsJSON, &p.Variants); err != nil {
			return nil, fmt.Errorf("failed to unmarshal variants: %w", err)
		}
	}

	return &p, nil
}
