package application

import (
	"context"

	"github.com/lendbook/lendbook/internal/domain/entity"
	"github.com/lendbook/lendbook/internal/domain/repository"
)

// PlanService derives the user's tier snapshot. Nothing here is cached:
// every call reads the subscription row and the live loan count, so the
// result is only as stale as the moment it was computed.
type PlanService struct {
	Loans         repository.LoanRepository
	Subscriptions repository.SubscriptionRepository
	FreeMaxLoans  int
}

func NewPlanService(loans repository.LoanRepository, subs repository.SubscriptionRepository, freeMax int) *PlanService {
	return &PlanService{Loans: loans, Subscriptions: subs, FreeMaxLoans: freeMax}
}

// Compute builds the Plan from a fresh subscription read and loan count.
// Callers that are about to insert must call this again immediately
// before the write; see LoanService.Create.
func (s *PlanService) Compute(ctx context.Context, userID string) (entity.Plan, error) {
	sub, err := s.Subscriptions.GetActiveByUser(ctx, userID)
	if err != nil {
		return entity.Plan{}, err
	}
	count, err := s.Loans.CountByUser(ctx, userID)
	if err != nil {
		return entity.Plan{}, err
	}
	premium := sub.IsActive()
	return entity.Plan{
		IsPremium: premium,
		LoanCount: count,
		MaxLoans:  s.FreeMaxLoans,
		Unlimited: premium,
	}, nil
}
