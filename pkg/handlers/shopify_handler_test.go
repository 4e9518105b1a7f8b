package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/quartermasters/nudge-engine/pkg/config"
	"github.com/quartermasters/nudge-engine/pkg/integrations"
	"github.com/quartermasters/nudge-engine/pkg/models"
)

func newShopifyMux(client *integrations.ShopifyClient, stores *mockStoreRepo, products *mockProductRepo) *http.ServeMux {
	mux := http.NewServeMux()
	NewShopifyHandler(client, stores, products, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func testShopifyIntegration() *integrations.ShopifyClient {
	return integrations.NewShopifyClient(&config.ShopifyConfig{
		ClientID: "client-id",
		Scopes:   "read_products",
	}, "http://localhost:5000", zap.NewNop())
}

func TestShopifyHandler_Auth_Redirect(t *testing.T) {
	mux := newShopifyMux(testShopifyIntegration(), &mockStoreRepo{}, &mockProductRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/shopify/auth?shop=acme", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status %d, got %d", http.StatusFound, rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "acme.myshopify.com/admin/oauth/authorize") {
		t.Errorf("unexpected redirect target %q", loc)
	}
}

func TestShopifyHandler_Auth_MissingShop(t *testing.T) {
	mux := newShopifyMux(testShopifyIntegration(), &mockStoreRepo{}, &mockProductRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/shopify/auth", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestShopifyHandler_Callback_MissingParams(t *testing.T) {
	mux := newShopifyMux(testShopifyIntegration(), &mockStoreRepo{}, &mockProductRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/shopify/callback?shop=acme", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestShopifyHandler_Webhooks_LogOnly(t *testing.T) {
	stores := &mockStoreRepo{
		createFunc: func(ctx context.Context, store *models.Store) error {
			t.Error("webhooks must not touch the store repository")
			return nil
		},
	}
	mux := newShopifyMux(testShopifyIntegration(), stores, &mockProductRepo{})

	for _, path := range []string{
		"/api/webhooks/shopify/carts/update",
		"/api/webhooks/shopify/checkouts/create",
	} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"id":123}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected status %d, got %d", path, http.StatusOK, rec.Code)
		}
		if rec.Body.String() != "OK" {
			t.Errorf("%s: expected body OK, got %q", path, rec.Body.String())
		}
	}
}

func TestShopifyHandler_Callback_Success(t *testing.T) {
	// Token exchange and catalog fetch are stubbed through a local Shopify
	// API double.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/products.json") {
			json.NewEncoder(w).Encode(map[string]any{
				"products": []map[string]any{{
					"id":        int64(42),
					"title":     "Mug",
					"body_html": "Ceramic mug",
					"tags":      "kitchen, gifts",
					"variants": []map[string]any{{
						"id": int64(7), "title": "Blue", "price": "29.95", "inventory_quantity": 3,
					}},
				}},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "shpat_x"})
	}))
	defer srv.Close()

	client := integrations.NewShopifyClientWithOrigin(&config.ShopifyConfig{
		ClientID:     "client-id",
		ClientSecret: "secret",
	}, "http://localhost:5000", srv.URL, zap.NewNop())

	var created *models.Store
	stores := &mockStoreRepo{
		createFunc: func(ctx context.Context, store *models.Store) error {
			created = store
			return nil
		},
	}
	var syncedProduct *models.Product
	products := &mockProductRepo{
		createFunc: func(ctx context.Context, product *models.Product) error {
			syncedProduct = product
			return nil
		},
	}
	mux := newShopifyMux(client, stores, products)

	req := httptest.NewRequest(http.MethodGet, "/api/shopify/callback?code=abc&shop=acme", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if created == nil {
		t.Fatal("expected store to be created")
	}
	if created.AccessToken != "shpat_x" {
		t.Errorf("expected exchanged token, got %q", created.AccessToken)
	}
	if created.ShopifyDomain != "acme" || !created.IsActive {
		t.Errorf("unexpected store: %+v", created)
	}
	if syncedProduct == nil {
		t.Fatal("expected catalog sync to store the product")
	}
	if syncedProduct.ShopifyProductID != "42" || syncedProduct.Title != "Mug" {
		t.Errorf("unexpected product: %+v", syncedProduct)
	}
	if len(syncedProduct.Tags) != 2 || syncedProduct.Tags[0] != "kitchen" || syncedProduct.Tags[1] != "gifts" {
		t.Errorf("unexpected tags: %v", syncedProduct.Tags)
	}
	if len(syncedProduct.Variants) != 1 || syncedProduct.Variants[0].Price != 29.95 {
		t.Errorf("unexpected variants: %+v", syncedProduct.Variants)
	}
}

func TestShopifyHandler_Callback_CatalogSyncFailureIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/products.json") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "shpat_x"})
	}))
	defer srv.Close()

	client := integrations.NewShopifyClientWithOrigin(&config.ShopifyConfig{
		ClientID:     "client-id",
		ClientSecret: "secret",
	}, "http://localhost:5000", srv.URL, zap.NewNop())

	mux := newShopifyMux(client, &mockStoreRepo{}, &mockProductRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/shopify/callback?code=abc&shop=acme", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("install must succeed despite sync failure, got %d", rec.Code)
	}
}
