package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quartermasters/nudge-engine/pkg/apperrors"
	"github.com/quartermasters/nudge-engine/pkg/crypto"
	"github.com/quartermasters/nudge-engine/pkg/models"
	"github.com/quartermasters/nudge-engine/pkg/repositories"
	"github.com/quartermasters/nudge-engine/pkg/testhelpers"
)

func newTestStore(t *testing.T, repo repositories.StoreRepository) *models.Store {
	t.Helper()
	store := &models.Store{
		ShopifyDomain: uuid.NewString() + ".myshopify.com",
		AccessToken:   "shpat_test",
		Name:          "Test Store",
		Email:         "owner@example.com",
		IsActive:      true,
	}
	require.NoError(t, repo.Create(context.Background(), store))
	return store
}

func TestStoreRepository_CreateAndGet(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	repo := repositories.NewStoreRepository(db.DB, nil)
	ctx := context.Background()

	store := newTestStore(t, repo)

	got, err := repo.GetByID(ctx, store.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, store.ShopifyDomain, got.ShopifyDomain)
	assert.True(t, got.IsActive)

	byDomain, err := repo.GetByDomain(ctx, store.ShopifyDomain)
	require.NoError(t, err)
	require.NotNil(t, byDomain)
	assert.Equal(t, store.ID, byDomain.ID)

	missing, err := repo.GetByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStoreRepository_DuplicateDomainConflict(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	repo := repositories.NewStoreRepository(db.DB, nil)
	ctx := context.Background()

	store := newTestStore(t, repo)

	dup := &models.Store{
		ShopifyDomain: store.ShopifyDomain,
		AccessToken:   "shpat_other",
		Name:          "Dup",
		Email:         "dup@example.com",
		IsActive:      true,
	}
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestStoreRepository_Update(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	repo := repositories.NewStoreRepository(db.DB, nil)
	ctx := context.Background()

	store := newTestStore(t, repo)

	name := "Renamed"
	updated, err := repo.Update(ctx, store.ID, &models.StoreUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, store.Email, updated.Email, "untouched fields survive a partial update")

	_, err = repo.Update(ctx, uuid.NewString(), &models.StoreUpdate{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStoreRepository_TokenEncryptionAtRest(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	enc, err := crypto.NewTokenEncryptor("integration-test-key")
	require.NoError(t, err)
	repo := repositories.NewStoreRepository(db.DB, enc)
	ctx := context.Background()

	store := newTestStore(t, repo)

	got, err := repo.GetByID(ctx, store.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "shpat_test", got.AccessToken, "reads return the plaintext token")

	// The stored column must not contain the plaintext
	var stored string
	err = db.DB.QueryRow(ctx, `SELECT access_token FROM stores WHERE id = $1`, store.ID).Scan(&stored)
	require.NoError(t, err)
	assert.NotEqual(t, "shpat_test", stored)
	assert.NotContains(t, stored, "shpat")

	rotated := "shpat_rotated"
	updated, err := repo.Update(ctx, store.ID, &models.StoreUpdate{AccessToken: &rotated})
	require.NoError(t, err)
	assert.Equal(t, "shpat_rotated", updated.AccessToken)
}

func TestKnowledgeRepository_SoftDeleteLifecycle(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	stores := repositories.NewStoreRepository(db.DB, nil)
	repo := repositories.NewKnowledgeRepository(db.DB)
	ctx := context.Background()

	store := newTestStore(t, stores)

	item := &models.KnowledgeBaseItem{
		StoreID:  store.ID,
		Type:     models.KnowledgeTypeFAQ,
		Title:    "Shipping",
		Content:  "Ships in 2 days",
		Tags:     []string{"shipping"},
		IsActive: true,
	}
	require.NoError(t, repo.Create(ctx, item))

	active, err := repo.GetActiveByStore(ctx, store.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)

	require.NoError(t, repo.SoftDelete(ctx, item.ID))
	// Repeat delete is a no-op, not an error
	require.NoError(t, repo.SoftDelete(ctx, item.ID))

	active, err = repo.GetActiveByStore(ctx, store.ID)
	require.NoError(t, err)
	assert.Empty(t, active, "deleted item must leave active listings")

	// The row itself survives
	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsActive)
}

func TestConversationRepository_SessionLatest(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	stores := repositories.NewStoreRepository(db.DB, nil)
	repo := repositories.NewConversationRepository(db.DB)
	ctx := context.Background()

	store := newTestStore(t, stores)
	sessionID := uuid.NewString()

	for _, content := range []string{"first", "second"} {
		conv := &models.Conversation{
			StoreID:   store.ID,
			SessionID: sessionID,
			Messages: []models.ConversationMessage{
				{Role: models.RoleUser, Content: content, Timestamp: time.Now()},
				{Role: models.RoleAssistant, Content: "reply to " + content, Timestamp: time.Now()},
			},
			ResponseTimeMs: 10,
			WasDeflected:   true,
		}
		require.NoError(t, repo.Create(ctx, conv))
		time.Sleep(10 * time.Millisecond) // distinct created_at ordering
	}

	latest, err := repo.GetBySession(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.Len(t, latest.Messages, 2, "each call stores its own two-message row")
	assert.Equal(t, "second", latest.Messages[0].Content)
	assert.Equal(t, models.ConversationActive, latest.Status)

	none, err := repo.GetBySession(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestConversationRepository_RecentByStore(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	stores := repositories.NewStoreRepository(db.DB, nil)
	repo := repositories.NewConversationRepository(db.DB)
	ctx := context.Background()

	store := newTestStore(t, stores)

	for i := 0; i < 3; i++ {
		conv := &models.Conversation{
			StoreID:   store.ID,
			SessionID: uuid.NewString(),
			Messages:  []models.ConversationMessage{},
		}
		require.NoError(t, repo.Create(ctx, conv))
	}

	recent, err := repo.GetRecentByStore(ctx, store.ID, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestAnalyticsRepository_RangeAndLatest(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	stores := repositories.NewStoreRepository(db.DB, nil)
	repo := repositories.NewAnalyticsRepository(db.DB)
	ctx := context.Background()

	store := newTestStore(t, stores)

	rate := "0.81"
	for _, day := range []int{1, 15} {
		row := &models.Analytics{
			StoreID:          store.ID,
			Date:             time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
			DeflectionRate:   &rate,
			ConversationsCnt: day,
		}
		require.NoError(t, repo.Create(ctx, row))
	}

	latest, err := repo.GetLatest(ctx, store.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 15, latest.ConversationsCnt)
	require.NotNil(t, latest.DeflectionRate)
	assert.Equal(t, "0.81", *latest.DeflectionRate)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	rows, err := repo.GetByStore(ctx, store.ID, &from, &to)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].ConversationsCnt)

	empty, err := repo.GetLatest(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestCartRecoveryRepository_CreateAndUpdate(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	stores := repositories.NewStoreRepository(db.DB, nil)
	repo := repositories.NewCartRecoveryRepository(db.DB)
	ctx := context.Background()

	store := newTestStore(t, stores)

	total := "59.90"
	event := &models.CartRecoveryEvent{
		StoreID:       store.ID,
		CheckoutID:    uuid.NewString(),
		CustomerEmail: "buyer@example.com",
		CartItems:     []models.CartItem{{ID: "p1", Title: "Mug", Price: 29.95, Quantity: 2}},
		TotalValue:    &total,
		Channel:       models.RecoveryChannelEmail,
		Trigger:       models.RecoveryTrigger4h,
	}
	require.NoError(t, repo.Create(ctx, event))

	delivered := true
	orderID := "order-1"
	updated, err := repo.Update(ctx, event.ID, &models.CartRecoveryEventUpdate{
		Delivered: &delivered,
		OrderID:   &orderID,
	})
	require.NoError(t, err)
	assert.True(t, updated.Delivered)
	assert.Equal(t, "order-1", updated.OrderID)
	require.Len(t, updated.CartItems, 1)
	assert.Equal(t, "Mug", updated.CartItems[0].Title)
	require.NotNil(t, updated.TotalValue)
	assert.Equal(t, "59.90", *updated.TotalValue)

	events, err := repo.GetByStore(ctx, store.ID, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestProductRepository_CreateAndList(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	stores := repositories.NewStoreRepository(db.DB, nil)
	repo := repositories.NewProductRepository(db.DB)
	ctx := context.Background()

	store := newTestStore(t, stores)

	product := &models.Product{
		StoreID:          store.ID,
		ShopifyProductID: "987654",
		Title:            "Mug",
		Description:      "Ceramic mug",
		Variants:         []models.ProductVariant{{ID: "v1", SKU: "MUG-BLUE", Price: 29.95, Inventory: 4}},
		Tags:             []string{"kitchen"},
	}
	require.NoError(t, repo.Create(ctx, product))

	products, err := repo.GetByStore(ctx, store.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Mug", products[0].Title)
	assert.Equal(t, "Ceramic mug", products[0].Description)
	require.Len(t, products[0].Variants, 1)
	assert.Equal(t, "MUG-BLUE", products[0].Variants[0].SKU)
}
