package models

import "time"

// Knowledge-base item types. Anything else is rejected at the service layer.
const (
	KnowledgeTypeFAQ       = "faq"
	KnowledgeTypePolicy    = "policy"
	KnowledgeTypeSizeGuide = "size_guide"
)

// ValidKnowledgeType reports whether t is one of the allowed item types.
func ValidKnowledgeType(t string) bool {
	switch t {
	case KnowledgeTypeFAQ, KnowledgeTypePolicy, KnowledgeTypeSizeGuide:
		return true
	}
	return false
}

// KnowledgeBaseItem is a FAQ/policy/size-guide content record owned by a
// store. Deletion is logical only: IsActive flips to false and the row is
// retained forever.
type KnowledgeBaseItem struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// KnowledgeBaseItemUpdate carries a partial-field merge for an existing item.
type KnowledgeBaseItemUpdate struct {
	Type    *string
	Title   *string
	Content *string
	Tags    []string
}
