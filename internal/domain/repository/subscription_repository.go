package repository

import (
	"context"

	"github.com/lendbook/lendbook/internal/domain/entity"
)

// SubscriptionRepository reads and writes per-user billing rows.
type SubscriptionRepository interface {
	// GetActiveByUser returns nil, nil when the user has no active
	// subscription.
	GetActiveByUser(ctx context.Context, userID string) (*entity.Subscription, error)
	Upsert(ctx context.Context, s *entity.Subscription) error
}
