package models

import "time"

// ProductVariant is a purchasable variation of a product, stored as JSONB.
type ProductVariant struct {
	ID         string         `json:"id"`
	SKU        string         `json:"sku"`
	Price      float64        `json:"price"`
	Inventory  int            `json:"inventory"`
	Attributes map[string]any `json:"attributes"`
}

// Product mirrors a Shopify product synced into the engine.
type Product struct {
	ID               string           `json:"id"`
	StoreID          string           `json:"storeId"`
	ShopifyProductID string           `json:"shopifyProductId"`
	Title            string           `json:"title"`
	Description      string           `json:"description,omitempty"`
	Variants         []ProductVariant `json:"variants,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// ProductUpdate carries a partial-field merge for an existing product.
type ProductUpdate struct {
	Title       *string
	Description *string
	Variants    []ProductVariant
	Tags        []string
}
