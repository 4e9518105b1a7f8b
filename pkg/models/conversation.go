package models

import "time"

// Message roles within a conversation turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation statuses.
const (
	ConversationActive    = "active"
	ConversationResolved  = "resolved"
	ConversationEscalated = "escalated"
)

// ConversationMessage is one entry of a conversation's ordered message log,
// stored as JSONB.
type ConversationMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is one chat exchange owned by a store. Each inbound chat call
// creates a new row holding exactly that turn's user message and assistant
// reply; prior turns for the same session are never appended here, so a
// session may own many rows.
type Conversation struct {
	ID                string                `json:"id"`
	StoreID           string                `json:"storeId"`
	SessionID         string                `json:"sessionId"`
	CustomerEmail     string                `json:"customerEmail,omitempty"`
	Messages          []ConversationMessage `json:"messages"`
	Status            string                `json:"status"`
	ResponseTimeMs    int                   `json:"responseTime"`
	WasDeflected      bool                  `json:"wasDeflected"`
	RevenueAttributed *string               `json:"revenueAttributed,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
}

// ConversationUpdate carries a partial-field merge for an existing conversation.
type ConversationUpdate struct {
	Status            *string
	WasDeflected      *bool
	RevenueAttributed *string
}
