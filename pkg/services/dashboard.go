package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quartermasters/nudge-engine/pkg/models"
	"github.com/quartermasters/nudge-engine/pkg/repositories"
)

// DashboardSnapshot is the merchant dashboard payload: recent conversations,
// the latest analytics aggregate and a short activity feed. Analytics is nil
// when the store has no aggregate rows yet.
type DashboardSnapshot struct {
	Conversations []*models.Conversation `json:"conversations"`
	Analytics     *models.Analytics      `json:"analytics"`
	Activity      *DashboardActivity     `json:"recentActivity"`
}

// DashboardActivity is the raw material for the dashboard's activity feed.
type DashboardActivity struct {
	Conversations  []*models.Conversation      `json:"conversations"`
	RecoveryEvents []*models.CartRecoveryEvent `json:"recoveryEvents"`
}

// DashboardService assembles merchant-facing read views.
type DashboardService interface {
	// Snapshot loads the dashboard view for one store.
	Snapshot(ctx context.Context, storeID string) (*DashboardSnapshot, error)

	// AnalyticsRange returns analytics rows, optionally bounded to [from, to].
	AnalyticsRange(ctx context.Context, storeID string, from, to *time.Time) ([]*models.Analytics, error)
}

// dashboardService implements DashboardService.
type dashboardService struct {
	conversations repositories.ConversationRepository
	analytics     repositories.AnalyticsRepository
	recovery      repositories.CartRecoveryRepository
}

// NewDashboardService creates a new dashboard service with dependencies.
func NewDashboardService(
	conversations repositories.ConversationRepository,
	analytics repositories.AnalyticsRepository,
	recovery repositories.CartRecoveryRepository,
) DashboardService {
	return &dashboardService{
		conversations: conversations,
		analytics:     analytics,
		recovery:      recovery,
	}
}

// Snapshot fans the three reads out concurrently. Any failed read fails the
// whole snapshot; the dashboard has no partial-render mode.
func (s *dashboardService) Snapshot(ctx context.Context, storeID string) (*DashboardSnapshot, error) {
	snapshot := &DashboardSnapshot{
		Activity: &DashboardActivity{},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		convs, err := s.conversations.GetRecentByStore(gctx, storeID, 10)
		if err != nil {
			return err
		}
		snapshot.Conversations = convs
		return nil
	})

	g.Go(func() error {
		latest, err := s.analytics.GetLatest(gctx, storeID)
		if err != nil {
			return err
		}
		snapshot.Analytics = latest
		return nil
	})

	g.Go(func() error {
		convs, err := s.conversations.GetRecentByStore(gctx, storeID, 5)
		if err != nil {
			return err
		}
		events, err := s.recovery.GetByStore(gctx, storeID, 5)
		if err != nil {
			return err
		}
		snapshot.Activity.Conversations = convs
		snapshot.Activity.RecoveryEvents = events
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (s *dashboardService) AnalyticsRange(ctx context.Context, storeID string, from, to *time.Time) ([]*models.Analytics, error) {
	return s.analytics.GetByStore(ctx, storeID, from, to)
}

var _ DashboardService = (*dashboardService)(nil)
