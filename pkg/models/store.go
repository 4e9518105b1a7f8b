package models

import "time"

// DemoStoreID is the well-known sentinel identifier for the embeddable
// widget demo tenant. A store with this ID is auto-created on first contact.
const DemoStoreID = "demo-store"

// Store is a single merchant tenant. Every other record is owned by exactly
// one store via its StoreID foreign key. Stores are never deleted in-process.
type Store struct {
	ID            string    `json:"id"`
	ShopifyDomain string    `json:"shopifyDomain"`
	AccessToken   string    `json:"accessToken"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// StoreUpdate carries a partial-field merge for an existing store.
// Nil fields are left untouched.
type StoreUpdate struct {
	ShopifyDomain *string
	AccessToken   *string
	Name          *string
	Email         *string
	IsActive      *bool
}
