package models

import "time"

// Analytics is a per-store daily aggregate row. Like cart recovery events,
// the schema is defined and readable over the API but nothing in this
// repository computes or writes these aggregates yet.
type Analytics struct {
	ID                string    `json:"id"`
	StoreID           string    `json:"storeId"`
	Date              time.Time `json:"date"`
	DeflectionRate    *string   `json:"deflectionRate,omitempty"`
	CartRecoveryRate  *string   `json:"cartRecoveryRate,omitempty"`
	AvgResponseTimeMs *int      `json:"avgResponseTime,omitempty"`
	RevenueImpact     *string   `json:"revenueImpact,omitempty"`
	ConversationsCnt  int       `json:"conversationsCount"`
	EscalationsCnt    int       `json:"escalationsCount"`
	CreatedAt         time.Time `json:"createdAt"`
}
