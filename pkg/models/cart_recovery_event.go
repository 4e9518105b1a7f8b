package models

import "time"

// Cart recovery outreach channels.
const (
	RecoveryChannelSMS   = "sms"
	RecoveryChannelEmail = "email"
)

// Cart recovery trigger windows after checkout abandonment.
const (
	RecoveryTrigger15m = "15m"
	RecoveryTrigger4h  = "4h"
	RecoveryTrigger24h = "24h"
)

// CartItem is one abandoned-cart line item, stored as JSONB.
type CartItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// CartRecoveryEvent is a scheduled outreach tied to an abandoned checkout.
// The schema is fully defined but no live code path produces these rows yet;
// campaign scheduling and webhook ingestion remain unimplemented.
type CartRecoveryEvent struct {
	ID            string     `json:"id"`
	StoreID       string     `json:"storeId"`
	CheckoutID    string     `json:"checkoutId"`
	CustomerEmail string     `json:"customerEmail"`
	CartItems     []CartItem `json:"cartItems,omitempty"`
	TotalValue    *string    `json:"totalValue,omitempty"`
	Channel       string     `json:"channel"`
	Trigger       string     `json:"trigger"`
	Delivered     bool       `json:"delivered"`
	Clicked       bool       `json:"clicked"`
	Converted     bool       `json:"converted"`
	OrderID       string     `json:"orderId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// CartRecoveryEventUpdate carries a partial-field merge for an existing event.
type CartRecoveryEventUpdate struct {
	Delivered *bool
	Clicked   *bool
	Converted *bool
	OrderID   *string
}
