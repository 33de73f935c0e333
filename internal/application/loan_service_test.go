package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/lendbook/lendbook/internal/domain/entity"
	"github.com/lendbook/lendbook/internal/domain/repository"
	"github.com/lendbook/lendbook/internal/events"
	"github.com/lendbook/lendbook/pkg/currency"
)

type fakeLoanRepo struct {
	loans   []entity.Loan
	created int
}

func (f *fakeLoanRepo) Create(ctx context.Context, l *entity.Loan) error {
	f.created++
	l.ID = fmt.Sprintf("loan-%d", f.created)
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	f.loans = append(f.loans, *l)
	return nil
}

func (f *fakeLoanRepo) GetByID(ctx context.Context, userID, id string) (*entity.Loan, error) {
	for i := range f.loans {
		if f.loans[i].ID == id && f.loans[i].UserID == userID {
			l := f.loans[i]
			return &l, nil
		}
	}
	return nil, errors.New("no rows")
}

func (f *fakeLoanRepo) ListByUser(ctx context.Context, userID string, filter repository.LoanFilter) ([]entity.Loan, error) {
	var out []entity.Loan
	for _, l := range f.loans {
		if l.UserID != userID {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if !filter.CreatedAfter.IsZero() && l.CreatedAt.Before(filter.CreatedAfter) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeLoanRepo) Update(ctx context.Context, l *entity.Loan) error {
	for i := range f.loans {
		if f.loans[i].ID == l.ID {
			f.loans[i] = *l
			return nil
		}
	}
	return errors.New("no rows")
}

func (f *fakeLoanRepo) Delete(ctx context.Context, userID, id string) error {
	for i := range f.loans {
		if f.loans[i].ID == id && f.loans[i].UserID == userID {
			f.loans = append(f.loans[:i], f.loans[i+1:]...)
			return nil
		}
	}
	return errors.New("no rows")
}

func (f *fakeLoanRepo) DeleteByUser(ctx context.Context, userID string) error {
	var kept []entity.Loan
	for _, l := range f.loans {
		if l.UserID != userID {
			kept = append(kept, l)
		}
	}
	f.loans = kept
	return nil
}

func (f *fakeLoanRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	n := 0
	for _, l := range f.loans {
		if l.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeSubRepo struct {
	sub *entity.Subscription
}

func (f *fakeSubRepo) GetActiveByUser(ctx context.Context, userID string) (*entity.Subscription, error) {
	if f.sub != nil && f.sub.UserID == userID && f.sub.Status == entity.SubscriptionActive {
		s := *f.sub
		return &s, nil
	}
	return nil, nil
}

func (f *fakeSubRepo) Upsert(ctx context.Context, s *entity.Subscription) error {
	f.sub = s
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newTestLoanService(loans *fakeLoanRepo, subs *fakeSubRepo, freeMax int) *LoanService {
	plans := NewPlanService(loans, subs, freeMax)
	return NewLoanService(loans, plans, events.NewPublisher(nil, nil), quietLogger(), nil, "")
}

func sampleInput(name string) CreateLoanInput {
	return CreateLoanInput{
		BorrowerName: name,
		Amount:       decimal.NewFromInt(100),
		Currency:     currency.USD,
		LoanType:     entity.TypeSent,
		StartDate:    time.Now(),
		DueDate:      time.Now().Add(72 * time.Hour),
	}
}

func TestCreateEnforcesQuota(t *testing.T) {
	ctx := context.Background()
	repo := &fakeLoanRepo{}
	svc := newTestLoanService(repo, &fakeSubRepo{}, 2)

	for i := 0; i < 2; i++ {
		if _, err := svc.Create(ctx, "u1", sampleInput("ok")); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	_, err := svc.Create(ctx, "u1", sampleInput("blocked"))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if repo.created != 2 {
		t.Fatalf("insert count = %d, the blocked create must not reach the store", repo.created)
	}
}

func TestCreateRecheckSeesConcurrentInserts(t *testing.T) {
	// Rows written behind the service's back still count against the
	// quota because the pre-insert check reads the store, not a cache.
	ctx := context.Background()
	repo := &fakeLoanRepo{}
	svc := newTestLoanService(repo, &fakeSubRepo{}, 3)

	for i := 0; i < 3; i++ {
		repo.loans = append(repo.loans, entity.Loan{ID: "ext", UserID: "u1", Status: entity.StatusPending})
	}

	if _, err := svc.Create(ctx, "u1", sampleInput("late")); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestCreateUnlimitedForPremium(t *testing.T) {
	ctx := context.Background()
	repo := &fakeLoanRepo{}
	subs := &fakeSubRepo{sub: &entity.Subscription{UserID: "u1", Status: entity.SubscriptionActive}}
	svc := newTestLoanService(repo, subs, 1)

	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, "u1", sampleInput("premium")); err != nil {
			t.Fatalf("premium create %d: %v", i, err)
		}
	}
}

func TestUpdateSetsAndClearsPaidDate(t *testing.T) {
	ctx := context.Background()
	repo := &fakeLoanRepo{}
	svc := newTestLoanService(repo, &fakeSubRepo{}, 10)

	l, err := svc.Create(ctx, "u1", sampleInput("b"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	paid := entity.StatusPaid
	got, err := svc.Update(ctx, "u1", l.ID, UpdateLoanInput{Status: &paid})
	if err != nil {
		t.Fatalf("update to paid: %v", err)
	}
	if got.PaidDate == nil {
		t.Fatal("paid_date not set when marking paid")
	}

	pending := entity.StatusPending
	got, err = svc.Update(ctx, "u1", l.ID, UpdateLoanInput{Status: &pending})
	if err != nil {
		t.Fatalf("update back to pending: %v", err)
	}
	if got.PaidDate != nil {
		t.Fatal("paid_date must clear when un-marking paid")
	}
}

func TestGetScopedToOwner(t *testing.T) {
	ctx := context.Background()
	repo := &fakeLoanRepo{}
	svc := newTestLoanService(repo, &fakeSubRepo{}, 10)

	l, err := svc.Create(ctx, "u1", sampleInput("b"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Get(ctx, "u2", l.ID); err == nil {
		t.Fatal("another user must not read the loan")
	}
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	repo := &fakeLoanRepo{}
	svc := newTestLoanService(repo, &fakeSubRepo{}, 10)

	in := sampleInput("Ali Hassan")
	in.Amount = decimal.RequireFromString("1200.5")
	in.Currency = currency.IQD
	in.Notes = "weekly installments"
	if _, err := svc.Create(ctx, "u1", in); err != nil {
		t.Fatalf("create: %v", err)
	}

	var buf bytes.Buffer
	if err := svc.ExportCSV(ctx, "u1", &buf); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv line count = %d, want header + 1 row", len(lines))
	}
	wantHeader := "Loan ID,Borrower Name,Amount,Currency,Status,Created Date,Due Date,Paid Date,Notes"
	if lines[0] != wantHeader {
		t.Fatalf("header = %q, want %q", lines[0], wantHeader)
	}
	row := lines[1]
	for _, col := range []string{"Ali Hassan", "1200.50", "IQD", "pending", "Not paid", "weekly installments"} {
		if !strings.Contains(row, col) {
			t.Fatalf("row %q missing %q", row, col)
		}
	}
}

func TestDueSoonSkipsPaid(t *testing.T) {
	ctx := context.Background()
	repo := &fakeLoanRepo{}
	svc := newTestLoanService(repo, &fakeSubRepo{}, 10)

	now := time.Now()
	repo.loans = []entity.Loan{
		{ID: "a", UserID: "u1", Status: entity.StatusPending, DueDate: now.Add(4 * time.Hour)},
		{ID: "b", UserID: "u1", Status: entity.StatusPaid, DueDate: now.Add(4 * time.Hour)},
	}

	buckets, err := svc.DueSoon(ctx, "u1", now)
	if err != nil {
		t.Fatalf("DueSoon: %v", err)
	}
	if n := entity.CountNotifications(buckets); n != 1 {
		t.Fatalf("notification count = %d, want 1", n)
	}
}
