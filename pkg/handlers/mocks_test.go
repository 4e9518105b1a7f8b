package handlers

import (
	"context"
	"time"

	"github.com/quartermasters/nudge-engine/pkg/models"
	"github.com/quartermasters/nudge-engine/pkg/services"
)

// mockAssistantService is a configurable AssistantService for tests.
type mockAssistantService struct {
	processMessageFunc func(ctx context.Context, message, storeID, sessionID string) *services.Reply

	processMessageCalls int
}

func (m *mockAssistantService) ProcessMessage(ctx context.Context, message, storeID, sessionID string) *services.Reply {
	m.processMessageCalls++
	if m.processMessageFunc != nil {
		return m.processMessageFunc(ctx, message, storeID, sessionID)
	}
	return &services.Reply{
		Content:        "mock reply",
		ResponseTimeMs: 5,
		WasDeflected:   true,
	}
}

// mockStoreRepo is a configurable StoreRepository for tests.
type mockStoreRepo struct {
	getByIDFunc     func(ctx context.Context, id string) (*models.Store, error)
	getByDomainFunc func(ctx context.Context, domain string) (*models.Store, error)
	createFunc      func(ctx context.Context, store *models.Store) error
	updateFunc      func(ctx context.Context, id string, update *models.StoreUpdate) (*models.Store, error)

	createCalls int
}

func (m *mockStoreRepo) GetByID(ctx context.Context, id string) (*models.Store, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockStoreRepo) GetByDomain(ctx context.Context, domain string) (*models.Store, error) {
	if m.getByDomainFunc != nil {
		return m.getByDomainFunc(ctx, domain)
	}
	return nil, nil
}

func (m *mockStoreRepo) Create(ctx context.Context, store *models.Store) error {
	m.createCalls++
	if m.createFunc != nil {
		return m.createFunc(ctx, store)
	}
	return nil
}

func (m *mockStoreRepo) Update(ctx context.Context, id string, update *models.StoreUpdate) (*models.Store, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, update)
	}
	return nil, nil
}

// mockProductRepo is a configurable ProductRepository for tests.
type mockProductRepo struct {
	getByStoreFunc func(ctx context.Context, storeID string) ([]*models.Product, error)
	createFunc     func(ctx context.Context, product *models.Product) error
	updateFunc     func(ctx context.Context, id string, update *models.ProductUpdate) (*models.Product, error)

	createCalls int
}

func (m *mockProductRepo) GetByStore(ctx context.Context, storeID string) ([]*models.Product, error) {
	if m.getByStoreFunc != nil {
		return m.getByStoreFunc(ctx, storeID)
	}
	return nil, nil
}

func (m *mockProductRepo) Create(ctx context.Context, product *models.Product) error {
	m.createCalls++
	if m.createFunc != nil {
		return m.createFunc(ctx, product)
	}
	return nil
}

func (m *mockProductRepo) Update(ctx context.Context, id string, update *models.ProductUpdate) (*models.Product, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, update)
	}
	return nil, nil
}

// mockConversationRepo is a configurable ConversationRepository for tests.
type mockConversationRepo struct {
	createFunc           func(ctx context.Context, conv *models.Conversation) error
	getBySessionFunc     func(ctx context.Context, sessionID string) (*models.Conversation, error)
	getRecentByStoreFunc func(ctx context.Context, storeID string, limit int) ([]*models.Conversation, error)
	updateFunc           func(ctx context.Context, id string, update *models.ConversationUpdate) (*models.Conversation, error)

	createCalls int
}

func (m *mockConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	m.createCalls++
	if m.createFunc != nil {
		return m.createFunc(ctx, conv)
	}
	return nil
}

func (m *mockConversationRepo) GetBySession(ctx context.Context, sessionID string) (*models.Conversation, error) {
	if m.getBySessionFunc != nil {
		return m.getBySessionFunc(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockConversationRepo) GetRecentByStore(ctx context.Context, storeID string, limit int) ([]*models.Conversation, error) {
	if m.getRecentByStoreFunc != nil {
		return m.getRecentByStoreFunc(ctx, storeID, limit)
	}
	return nil, nil
}

func (m *mockConversationRepo) Update(ctx context.Context, id string, update *models.ConversationUpdate) (*models.Conversation, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, update)
	}
	return nil, nil
}

// mockKnowledgeService is a configurable KnowledgeService for tests.
type mockKnowledgeService struct {
	listActiveFunc func(ctx context.Context, storeID string) ([]*models.KnowledgeBaseItem, error)
	createFunc     func(ctx context.Context, storeID, itemType, title, content, tags string) (*models.KnowledgeBaseItem, error)
	updateFunc     func(ctx context.Context, id string, update *models.KnowledgeBaseItemUpdate) (*models.KnowledgeBaseItem, error)
	deleteFunc     func(ctx context.Context, id string) error

	deleteCalls int
}

func (m *mockKnowledgeService) ListActive(ctx context.Context, storeID string) ([]*models.KnowledgeBaseItem, error) {
	if m.listActiveFunc != nil {
		return m.listActiveFunc(ctx, storeID)
	}
	return nil, nil
}

func (m *mockKnowledgeService) Create(ctx context.Context, storeID, itemType, title, content, tags string) (*models.KnowledgeBaseItem, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, storeID, itemType, title, content, tags)
	}
	return &models.KnowledgeBaseItem{ID: "kb-1", StoreID: storeID}, nil
}

func (m *mockKnowledgeService) Update(ctx context.Context, id string, update *models.KnowledgeBaseItemUpdate) (*models.KnowledgeBaseItem, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, update)
	}
	return &models.KnowledgeBaseItem{ID: id}, nil
}

func (m *mockKnowledgeService) Delete(ctx context.Context, id string) error {
	m.deleteCalls++
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

// mockDashboardService is a configurable DashboardService for tests.
type mockDashboardService struct {
	snapshotFunc       func(ctx context.Context, storeID string) (*services.DashboardSnapshot, error)
	analyticsRangeFunc func(ctx context.Context, storeID string, from, to *time.Time) ([]*models.Analytics, error)
}

func (m *mockDashboardService) Snapshot(ctx context.Context, storeID string) (*services.DashboardSnapshot, error) {
	if m.snapshotFunc != nil {
		return m.snapshotFunc(ctx, storeID)
	}
	return &services.DashboardSnapshot{Activity: &services.DashboardActivity{}}, nil
}

func (m *mockDashboardService) AnalyticsRange(ctx context.Context, storeID string, from, to *time.Time) ([]*models.Analytics, error) {
	if m.analyticsRangeFunc != nil {
		return m.analyticsRangeFunc(ctx, storeID, from, to)
	}
	return nil, nil
}
