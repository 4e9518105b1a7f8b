package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/quartermasters/nudge-engine/pkg/config"
	"github.com/quartermasters/nudge-engine/pkg/jsonutil"
	"github.com/quartermasters/nudge-engine/pkg/logging"
)

const shopifyAPIVersion = "2023-10"

// ShopifyProduct is the subset of Shopify's product resource the engine
// cares about.
type ShopifyProduct struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	BodyHTML string           `json:"body_html"`
	Tags     string           `json:"tags"`
	Variants []ShopifyVariant `json:"variants"`
}

// ShopifyVariant is one purchasable variant of a product.
type ShopifyVariant struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	Price             string `json:"price"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

// ShopifyOrder is the subset of Shopify's order resource used for support
// lookups.
type ShopifyOrder struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	FinancialStatus   string `json:"financial_status"`
	FulfillmentStatus string `json:"fulfillment_status"`
	TotalPrice        string `json:"total_price"`
}

// ShopifyClient talks to the Shopify Admin API for one app installation.
type ShopifyClient struct {
	cfg        *config.ShopifyConfig
	appBaseURL string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger

	// originOverride replaces the per-shop myshopify.com origin in tests.
	originOverride string
}

// NewShopifyClient creates a new Shopify client. appBaseURL is this service's
// public URL, used to build the OAuth callback address.
func NewShopifyClient(cfg *config.ShopifyConfig, appBaseURL string, logger *zap.Logger) *ShopifyClient {
	return &ShopifyClient{
		cfg:        cfg,
		appBaseURL: appBaseURL,
		httpClient: newHTTPClient(),
		breaker:    newBreaker("shopify"),
		logger:     logger.Named("shopify"),
	}
}

// NewShopifyClientWithOrigin creates a client whose Admin API origin is fixed
// instead of derived from the shop name. Lets tests point the client at a
// stub server.
func NewShopifyClientWithOrigin(cfg *config.ShopifyConfig, appBaseURL, origin string, logger *zap.Logger) *ShopifyClient {
	client := NewShopifyClient(cfg, appBaseURL, logger)
	client.originOverride = origin
	return client
}

func (c *ShopifyClient) origin(shop string) string {
	if c.originOverride != "" {
		return c.originOverride
	}
	return fmt.Sprintf("https://%s.myshopify.com", shop)
}

// AuthURL builds the OAuth authorization URL for a shop install.
func (c *ShopifyClient) AuthURL(shop string) string {
	redirectURI := c.appBaseURL + "/api/shopify/callback"

	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("scope", c.cfg.Scopes)
	q.Set("redirect_uri", redirectURI)
	q.Set("state", "nonce")

	return c.origin(shop) + "/admin/oauth/authorize?" + q.Encode()
}

// ExchangeCode trades an OAuth authorization code for a permanent access token.
func (c *ShopifyClient) ExchangeCode(ctx context.Context, code, shop string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"client_id":     c.cfg.ClientID,
		"client_secret": c.cfg.ClientSecret,
		"code":          code,
	})
	if err != nil {
		return "", fmt.Errorf("marshal token request: %w", err)
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}

	endpoint := c.origin(shop) + "/admin/oauth/access_token"
	if err := c.doJSON(ctx, http.MethodPost, endpoint, "", body, &result); err != nil {
		return "", fmt.Errorf("exchange code for access token: %w", err)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("no access token in response")
	}

	c.logger.Debug("access token issued",
		zap.String("shop", shop),
		zap.String("token", logging.SanitizeToken(result.AccessToken)))

	return result.AccessToken, nil
}

// GetProducts fetches the shop's product catalog.
func (c *ShopifyClient) GetProducts(ctx context.Context, shop, accessToken string) ([]ShopifyProduct, error) {
	var result struct {
		Products []ShopifyProduct `json:"products"`
	}

	endpoint := fmt.Sprintf("%s/admin/api/%s/products.json", c.origin(shop), shopifyAPIVersion)
	if err := c.doJSON(ctx, http.MethodGet, endpoint, accessToken, nil, &result); err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}

	return result.Products, nil
}

// GetOrder fetches one order by id.
func (c *ShopifyClient) GetOrder(ctx context.Context, shop, accessToken, orderID string) (*ShopifyOrder, error) {
	var result struct {
		Order ShopifyOrder `json:"order"`
	}

	endpoint := fmt.Sprintf("%s/admin/api/%s/orders/%s.json", c.origin(shop), shopifyAPIVersion, orderID)
	if err := c.doJSON(ctx, http.MethodGet, endpoint, accessToken, nil, &result); err != nil {
		return nil, fmt.Errorf("fetch order: %w", err)
	}

	return &result.Order, nil
}

// CreateWebhook registers a webhook subscription on the shop.
func (c *ShopifyClient) CreateWebhook(ctx context.Context, shop, accessToken, topic, address string) error {
	body, err := json.Marshal(map[string]any{
		"webhook": map[string]string{
			"topic":   topic,
			"address": address,
			"format":  "json",
		},
	})
	if err != nil {
		return fmt.Errorf("marshal webhook request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/admin/api/%s/webhooks.json", c.origin(shop), shopifyAPIVersion)
	if err := c.doJSON(ctx, http.MethodPost, endpoint, accessToken, body, nil); err != nil {
		return fmt.Errorf("create webhook: %w", err)
	}

	return nil
}

// ProcessCartUpdate handles a carts/update webhook delivery. Cart tracking for
// recovery is not implemented; the payload is logged and dropped.
func (c *ShopifyClient) ProcessCartUpdate(payload []byte) {
	c.logger.Info("cart update received",
		zap.String("cart_id", jsonutil.Field(payload, "id")),
		zap.String("token", jsonutil.Field(payload, "token")),
		zap.Int("payload_bytes", len(payload)))
}

// ScheduleCartRecovery handles a checkouts/create webhook delivery. Recovery
// campaign scheduling is not implemented; the payload is logged and dropped.
func (c *ShopifyClient) ScheduleCartRecovery(payload []byte) {
	c.logger.Info("checkout received, recovery scheduling skipped",
		zap.String("checkout_id", jsonutil.Field(payload, "id")),
		zap.String("email", jsonutil.Field(payload, "email")),
		zap.String("total_price", jsonutil.Field(payload, "total_price")),
		zap.Int("payload_bytes", len(payload)))
}

// doJSON runs one Admin API request through the circuit breaker and decodes
// the JSON response into out when out is non-nil.
func (c *ShopifyClient) doJSON(ctx context.Context, method, endpoint, accessToken string, body []byte, out any) error {
	_, err := c.breaker.Execute(func() (any, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if accessToken != "" {
			req.Header.Set("X-Shopify-Access-Token", accessToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("shopify returned status %d", resp.StatusCode)
		}

		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return nil, fmt.Errorf("decode response: %w", err)
			}
		}
		return nil, nil
	})
	return err
}
