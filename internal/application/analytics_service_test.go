package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendbook/lendbook/internal/domain/entity"
	"github.com/lendbook/lendbook/pkg/currency"
)

func TestRangeStart(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if got := RangeStart("3m", now); !got.Equal(now.AddDate(0, -3, 0)) {
		t.Fatalf("3m start = %s", got)
	}
	if got := RangeStart("1y", now); !got.Equal(now.AddDate(-1, 0, 0)) {
		t.Fatalf("1y start = %s", got)
	}
	if got := RangeStart("all", now); !got.IsZero() {
		t.Fatalf("all should not filter, got %s", got)
	}
	if got := RangeStart("garbage", now); !got.IsZero() {
		t.Fatalf("unknown range should not filter, got %s", got)
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeLoanRepo{loans: []entity.Loan{
		{
			ID: "1", UserID: "u1", LoanType: entity.TypeSent, Status: entity.StatusPaid,
			Amount: decimal.NewFromInt(130), Currency: currency.USD,
			CreatedAt: now.AddDate(0, -1, 0), DueDate: now.AddDate(0, 0, -5),
		},
		{
			ID: "2", UserID: "u1", LoanType: entity.TypeSent, Status: entity.StatusPending,
			Amount: decimal.NewFromInt(1300), Currency: currency.IQD, // 1 USD at fallback
			CreatedAt: now, DueDate: now.AddDate(0, 0, 2),
		},
		{
			ID: "3", UserID: "u1", LoanType: entity.TypeReceived, Status: entity.StatusPending,
			Amount: decimal.NewFromInt(50), Currency: currency.USD,
			CreatedAt: now, DueDate: now.AddDate(0, 2, 0),
		},
		{
			ID: "4", UserID: "u1", LoanType: entity.TypeSent, Status: entity.StatusPending,
			Amount: decimal.NewFromInt(20), Currency: currency.USD,
			CreatedAt: now, DueDate: now.AddDate(0, 0, -1),
		},
	}}

	rates := currency.NewProvider("", "", nil, nil, time.Hour)
	svc := NewAnalyticsService(repo, rates, quietLogger())

	sum, err := svc.Summarize(context.Background(), "u1", "all", currency.USD, now)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if sum.TotalLoans != 4 {
		t.Fatalf("TotalLoans = %d, want 4", sum.TotalLoans)
	}
	if want := decimal.NewFromInt(201); !sum.TotalAmount.Equal(want) {
		t.Fatalf("TotalAmount = %s, want %s", sum.TotalAmount, want)
	}
	if want := decimal.NewFromInt(151); !sum.TotalSent.Equal(want) {
		t.Fatalf("TotalSent = %s, want %s", sum.TotalSent, want)
	}
	if want := decimal.NewFromInt(50); !sum.TotalReceived.Equal(want) {
		t.Fatalf("TotalReceived = %s, want %s", sum.TotalReceived, want)
	}
	if sum.RepaymentRate != 25 {
		t.Fatalf("RepaymentRate = %d, want 25", sum.RepaymentRate)
	}

	d := sum.StatusDistribution
	if d.Paid != 25 || d.Overdue != 25 || d.DueSoon != 25 || d.Active != 25 {
		t.Fatalf("distribution = %+v, want 25 across the board", d)
	}

	if len(sum.ByCurrency) != 2 {
		t.Fatalf("ByCurrency slices = %d, want 2", len(sum.ByCurrency))
	}
	// Sorted by code: IQD before USD.
	if sum.ByCurrency[0].Currency != currency.IQD || sum.ByCurrency[1].Currency != currency.USD {
		t.Fatalf("ByCurrency order = %v, %v", sum.ByCurrency[0].Currency, sum.ByCurrency[1].Currency)
	}
	if !sum.ByCurrency[0].Value.Equal(decimal.NewFromInt(1300)) {
		t.Fatalf("IQD native total = %s, want 1300", sum.ByCurrency[0].Value)
	}

	if len(sum.Monthly) != 2 {
		t.Fatalf("monthly points = %d, want 2", len(sum.Monthly))
	}
	if sum.Monthly[0].Name != "Feb 2024" || sum.Monthly[1].Name != "Mar 2024" {
		t.Fatalf("monthly order = %s, %s", sum.Monthly[0].Name, sum.Monthly[1].Name)
	}
}

func TestSummarizeRangeFilter(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeLoanRepo{loans: []entity.Loan{
		{ID: "old", UserID: "u1", LoanType: entity.TypeSent, Status: entity.StatusPaid,
			Amount: decimal.NewFromInt(10), Currency: currency.USD,
			CreatedAt: now.AddDate(0, -8, 0), DueDate: now},
		{ID: "new", UserID: "u1", LoanType: entity.TypeSent, Status: entity.StatusPending,
			Amount: decimal.NewFromInt(10), Currency: currency.USD,
			CreatedAt: now.AddDate(0, 0, -3), DueDate: now.AddDate(0, 1, 0)},
	}}

	rates := currency.NewProvider("", "", nil, nil, time.Hour)
	svc := NewAnalyticsService(repo, rates, quietLogger())

	sum, err := svc.Summarize(context.Background(), "u1", "6m", currency.USD, now)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.TotalLoans != 1 {
		t.Fatalf("TotalLoans with 6m range = %d, want 1", sum.TotalLoans)
	}
}
