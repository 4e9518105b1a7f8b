package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/quartermasters/nudge-engine/pkg/integrations"
	"github.com/quartermasters/nudge-engine/pkg/logging"
	"github.com/quartermasters/nudge-engine/pkg/models"
	"github.com/quartermasters/nudge-engine/pkg/repositories"
)

// ShopifyHandler handles the Shopify OAuth flow and webhook deliveries.
type ShopifyHandler struct {
	shopify  *integrations.ShopifyClient
	stores   repositories.StoreRepository
	products repositories.ProductRepository
	logger   *zap.Logger
}

// NewShopifyHandler creates a new Shopify handler.
func NewShopifyHandler(
	shopify *integrations.ShopifyClient,
	stores repositories.StoreRepository,
	products repositories.ProductRepository,
	logger *zap.Logger,
) *ShopifyHandler {
	return &ShopifyHandler{
		shopify:  shopify,
		stores:   stores,
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers the Shopify handler's routes on the given mux.
func (h *ShopifyHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/shopify/auth", h.Auth)
	mux.HandleFunc("GET /api/shopify/callback", h.Callback)
	mux.HandleFunc("POST /api/webhooks/shopify/carts/update", h.CartUpdateWebhook)
	mux.HandleFunc("POST /api/webhooks/shopify/checkouts/create", h.CheckoutCreateWebhook)
}

// Auth handles GET /api/shopify/auth?shop= by redirecting the merchant to
// Shopify's authorization page.
func (h *ShopifyHandler) Auth(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "Shop parameter required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	http.Redirect(w, r, h.shopify.AuthURL(shop), http.StatusFound)
}

// Callback handles GET /api/shopify/callback?code=&shop=. Exchanges the
// authorization code and registers the store.
func (h *ShopifyHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	shop := r.URL.Query().Get("shop")
	if code == "" || shop == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "Missing authorization code or shop"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	accessToken, err := h.shopify.ExchangeCode(r.Context(), code, shop)
	if err != nil {
		// Exchange errors can echo the request URL; scrub before logging.
		h.logger.Error("Shopify token exchange failed",
			zap.String("shop", shop),
			zap.String("error", logging.SanitizeError(err)))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Failed to complete authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	store := &models.Store{
		ShopifyDomain: shop,
		AccessToken:   accessToken,
		Name:          shop,
		Email:         "", // filled in later from the Shopify API
		IsActive:      true,
	}
	if err := h.stores.Create(r.Context(), store); err != nil {
		h.logger.Error("Failed to save store",
			zap.String("shop", shop),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Failed to complete authentication"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	// Best effort. A failed catalog pull must not undo a completed install.
	h.syncCatalog(r.Context(), store)

	if err := WriteJSON(w, http.StatusOK, map[string]bool{"success": true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// syncCatalog pulls the shop's products and stores a local copy for the
// assistant to reference.
func (h *ShopifyHandler) syncCatalog(ctx context.Context, store *models.Store) {
	shopifyProducts, err := h.shopify.GetProducts(ctx, store.ShopifyDomain, store.AccessToken)
	if err != nil {
		h.logger.Warn("Catalog sync failed",
			zap.String("shop", store.ShopifyDomain),
			zap.Error(err))
		return
	}

	synced := 0
	for _, sp := range shopifyProducts {
		product := &models.Product{
			StoreID:          store.ID,
			ShopifyProductID: strconv.FormatInt(sp.ID, 10),
			Title:            sp.Title,
			Description:      sp.BodyHTML,
			Variants:         convertVariants(sp.Variants),
			Tags:             splitShopifyTags(sp.Tags),
		}
		if err := h.products.Create(ctx, product); err != nil {
			h.logger.Warn("Failed to store product",
				zap.String("shop", store.ShopifyDomain),
				zap.String("shopify_product_id", product.ShopifyProductID),
				zap.Error(err))
			continue
		}
		synced++
	}

	h.logger.Info("Catalog synced",
		zap.String("shop", store.ShopifyDomain),
		zap.Int("products", synced))
}

func convertVariants(variants []integrations.ShopifyVariant) []models.ProductVariant {
	if len(variants) == 0 {
		return nil
	}
	converted := make([]models.ProductVariant, 0, len(variants))
	for _, v := range variants {
		price, _ := strconv.ParseFloat(v.Price, 64)
		converted = append(converted, models.ProductVariant{
			ID:         strconv.FormatInt(v.ID, 10),
			Price:      price,
			Inventory:  v.InventoryQuantity,
			Attributes: map[string]any{"title": v.Title},
		})
	}
	return converted
}

// splitShopifyTags turns Shopify's comma separated tag string into a slice.
func splitShopifyTags(tags string) []string {
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// CartUpdateWebhook handles POST /api/webhooks/shopify/carts/update.
func (h *ShopifyHandler) CartUpdateWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		if err := ErrorResponse(w, http.StatusInternalServerError, "Webhook processing failed"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	h.shopify.ProcessCartUpdate(payload)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// CheckoutCreateWebhook handles POST /api/webhooks/shopify/checkouts/create.
func (h *ShopifyHandler) CheckoutCreateWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		if err := ErrorResponse(w, http.StatusInternalServerError, "Webhook processing failed"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	h.shopify.ScheduleCartRecovery(payload)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
