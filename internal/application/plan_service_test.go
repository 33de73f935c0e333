package application

import (
	"context"
	"testing"

	"github.com/lendbook/lendbook/internal/domain/entity"
)

func TestComputeFreePlan(t *testing.T) {
	repo := &fakeLoanRepo{loans: []entity.Loan{
		{ID: "1", UserID: "u1"},
		{ID: "2", UserID: "u1"},
		{ID: "3", UserID: "other"},
	}}
	svc := NewPlanService(repo, &fakeSubRepo{}, 10)

	p, err := svc.Compute(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if p.IsPremium {
		t.Fatal("no subscription must mean free tier")
	}
	if p.LoanCount != 2 {
		t.Fatalf("LoanCount = %d, want 2 (other users' loans excluded)", p.LoanCount)
	}
	if p.MaxLoans != 10 {
		t.Fatalf("MaxLoans = %d, want 10", p.MaxLoans)
	}
}

func TestComputePremiumPlan(t *testing.T) {
	repo := &fakeLoanRepo{}
	subs := &fakeSubRepo{sub: &entity.Subscription{UserID: "u1", Status: entity.SubscriptionActive}}
	svc := NewPlanService(repo, subs, 10)

	p, err := svc.Compute(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !p.IsPremium || !p.CanCreate() {
		t.Fatalf("active subscription must grant premium, got %+v", p)
	}
}

func TestComputeInactiveSubscriptionIsFree(t *testing.T) {
	repo := &fakeLoanRepo{}
	subs := &fakeSubRepo{sub: &entity.Subscription{UserID: "u1", Status: entity.SubscriptionInactive}}
	svc := NewPlanService(repo, subs, 10)

	p, err := svc.Compute(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if p.IsPremium {
		t.Fatal("inactive subscription must not grant premium")
	}
}
