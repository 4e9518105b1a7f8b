package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quartermasters/nudge-engine/pkg/apperrors"
	"github.com/quartermasters/nudge-engine/pkg/crypto"
	"github.com/quartermasters/nudge-engine/pkg/database"
	"github.com/quartermasters/nudge-engine/pkg/models"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// StoreRepository provides data access for merchant stores.
type StoreRepository interface {
	// GetByID returns the store or (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*models.Store, error)
	// GetByDomain returns the store owning the Shopify domain or (nil, nil).
	GetByDomain(ctx context.Context, domain string) (*models.Store, error)
	// Create inserts the store. A duplicate id or domain yields
	// apperrors.ErrConflict so callers can re-fetch and retry.
	Create(ctx context.Context, store *models.Store) error
	// Update applies a partial-field merge and returns the new row.
	// Returns apperrors.ErrNotFound when the id does not exist.
	Update(ctx context.Context, id string, update *models.StoreUpdate) (*models.Store, error)
}

type storeRepository struct {
	db  *database.DB
	enc *crypto.TokenEncryptor
}

// NewStoreRepository creates a new StoreRepository. When enc is non-nil,
// access tokens are encrypted before they hit the database and decrypted on
// read; a nil encryptor stores them as-is.
func NewStoreRepository(db *database.DB, enc *crypto.TokenEncryptor) StoreRepository {
	return &storeRepository{db: db, enc: enc}
}

var _ StoreRepository = (*storeRepository)(nil)

const storeColumns = `id, shopify_domain, access_token, name, email, is_active, created_at, updated_at`

func (r *storeRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE id = $1`

	store, err := scanStore(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.decryptToken(store); err != nil {
		return nil, err
	}
	return store, nil
}

func (r *storeRepository) GetByDomain(ctx context.Context, domain string) (*models.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE shopify_domain = $1`

	store, err := scanStore(r.db.QueryRow(ctx, query, domain))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.decryptToken(store); err != nil {
		return nil, err
	}
	return store, nil
}

func (r *storeRepository) Create(ctx context.Context, store *models.Store) error {
	now := time.Now()
	store.CreatedAt = now
	store.UpdatedAt = now
	if store.ID == "" {
		store.ID = uuid.NewString()
	}

	storedToken, err := r.encryptToken(store.AccessToken)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO stores (id, shopify_domain, access_token, name, email, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.Exec(ctx, query,
		store.ID, store.ShopifyDomain, storedToken, store.Name, store.Email,
		store.IsActive, store.CreatedAt, store.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("store %q already exists: %w", store.ShopifyDomain, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create store: %w", err)
	}

	return nil
}

func (r *storeRepository) Update(ctx context.Context, id string, update *models.StoreUpdate) (*models.Store, error) {
	accessToken := update.AccessToken
	if accessToken != nil {
		encrypted, err := r.encryptToken(*accessToken)
		if err != nil {
			return nil, err
		}
		accessToken = &encrypted
	}

	query := `
		UPDATE stores SET
			shopify_domain = COALESCE($2, shopify_domain),
			access_token = COALESCE($3, access_token),
			name = COALESCE($4, name),
			email = COALESCE($5, email),
			is_active = COALESCE($6, is_active),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + storeColumns

	store, err := scanStore(r.db.QueryRow(ctx, query,
		id, update.ShopifyDomain, accessToken, update.Name, update.Email, update.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("store %q: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	if err := r.decryptToken(store); err != nil {
		return nil, err
	}
	return store, nil
}

func (r *storeRepository) encryptToken(token string) (string, error) {
	if r.enc == nil {
		return token, nil
	}
	encrypted, err := r.enc.Encrypt(token)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt access token: %w", err)
	}
	return encrypted, nil
}

func (r *storeRepository) decryptToken(store *models.Store) error {
	if r.enc == nil || store == nil {
		return nil
	}
	token, err := r.enc.Decrypt(store.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to decrypt access token for store %q: %w", store.ID, err)
	}
	store.AccessToken = token
	return nil
}

func scanStore(row pgx.Row) (*models.Store, error) {
	var s models.Store
	err := row.Scan(
		&s.ID, &s.ShopifyDomain, &s.AccessToken, &s.Name, &s.Email,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan store: %w", err)
	}
	return &s, nil
}
