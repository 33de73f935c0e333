package entity

import "time"

// SubscriptionStatus values persisted in the subscriptions table.
const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
)

// Subscription is the per-user billing record. An active row makes the
// user premium; everything else falls back to the free tier.
type Subscription struct {
	ID                 string
	UserID             string
	Status             string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	AutoRenew          bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsActive reports whether the subscription currently grants premium.
func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == SubscriptionActive
}
