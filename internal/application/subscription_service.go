package application

import (
	"context"
	"time"

	"github.com/lendbook/lendbook/internal/domain/entity"
	"github.com/lendbook/lendbook/internal/domain/repository"
	"github.com/lendbook/lendbook/internal/events"
)

const subscriptionsTable = "subscriptions"

// SubscriptionService flips the per-user premium flag. Payment capture
// happens off-platform; this only records the resulting tier.
type SubscriptionService struct {
	Repo   repository.SubscriptionRepository
	Events *events.Publisher
}

func NewSubscriptionService(repo repository.SubscriptionRepository, pub *events.Publisher) *SubscriptionService {
	return &SubscriptionService{Repo: repo, Events: pub}
}

func (s *SubscriptionService) Status(ctx context.Context, userID string) (*entity.Subscription, error) {
	return s.Repo.GetActiveByUser(ctx, userID)
}

// Activate grants premium for one billing period from now.
func (s *SubscriptionService) Activate(ctx context.Context, userID string, autoRenew bool) (*entity.Subscription, error) {
	now := time.Now().UTC()
	sub := &entity.Subscription{
		UserID:             userID,
		Status:             entity.SubscriptionActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 1, 0),
		AutoRenew:          autoRenew,
	}
	if err := s.Repo.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	s.Events.RecordsChanged(ctx, userID, subscriptionsTable, events.ActionUpdate)
	return sub, nil
}

// Cancel marks the subscription inactive; the plan reverts to the free
// tier on the next compute.
func (s *SubscriptionService) Cancel(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	sub := &entity.Subscription{
		UserID:             userID,
		Status:             entity.SubscriptionInactive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now,
		AutoRenew:          false,
	}
	if err := s.Repo.Upsert(ctx, sub); err != nil {
		return err
	}
	s.Events.RecordsChanged(ctx, userID, subscriptionsTable, events.ActionUpdate)
	return nil
}
