package application

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/lendbook/lendbook/internal/domain/entity"
	"github.com/lendbook/lendbook/internal/domain/repository"
	"github.com/lendbook/lendbook/pkg/currency"
)

// AnalyticsService aggregates a user's loans for the dashboard charts.
// All monetary totals are converted to a single display currency via
// the rate provider; a missing rate falls back per-loan to the native
// amount being skipped from converted totals (logged), never an error
// for the whole view.
type AnalyticsService struct {
	Repo   repository.LoanRepository
	Rates  *currency.Provider
	Logger *logrus.Logger
}

func NewAnalyticsService(repo repository.LoanRepository, rates *currency.Provider, logger *logrus.Logger) *AnalyticsService {
	return &AnalyticsService{Repo: repo, Rates: rates, Logger: logger}
}

// MonthlyPoint is one month of converted totals.
type MonthlyPoint struct {
	Name     string          `json:"name"` // e.g. "Jan 2024"
	Sent     decimal.Decimal `json:"sent"`
	Received decimal.Decimal `json:"received"`
	Total    decimal.Decimal `json:"total"`

	sortKey time.Time
}

// CurrencySlice is the native (unconverted) total per currency.
type CurrencySlice struct {
	Currency currency.Code   `json:"currency"`
	Value    decimal.Decimal `json:"value"`
	Display  string          `json:"display"`
}

// StatusDistribution holds percentages of loans per display status.
type StatusDistribution struct {
	Paid    float64 `json:"paid"`
	Active  float64 `json:"active"`
	DueSoon float64 `json:"due_soon"`
	Overdue float64 `json:"overdue"`
}

// Summary is the full analytics payload.
type Summary struct {
	Currency           currency.Code       `json:"currency"`
	TotalLoans         int                 `json:"total_loans"`
	TotalAmount        decimal.Decimal     `json:"total_amount"`
	TotalSent          decimal.Decimal     `json:"total_sent"`
	TotalReceived      decimal.Decimal     `json:"total_received"`
	RepaymentRate      int                 `json:"repayment_rate"` // percent, rounded
	StatusDistribution StatusDistribution  `json:"status_distribution"`
	Monthly            []MonthlyPoint      `json:"monthly"`
	ByCurrency         []CurrencySlice     `json:"by_currency"`
	UpcomingDue        []entity.Loan       `json:"upcoming_due"`
	RatesFetchedAt     time.Time           `json:"rates_fetched_at"`
}

// RangeStart translates the UI range selector into a created_at lower
// bound; zero time means no filter.
func RangeStart(rangeKey string, now time.Time) time.Time {
	switch rangeKey {
	case "1m":
		return now.AddDate(0, -1, 0)
	case "3m":
		return now.AddDate(0, -3, 0)
	case "6m":
		return now.AddDate(0, -6, 0)
	case "1y":
		return now.AddDate(-1, 0, 0)
	default: // "all"
		return time.Time{}
	}
}

func (s *AnalyticsService) Summarize(ctx context.Context, userID, rangeKey string, display currency.Code, now time.Time) (*Summary, error) {
	loans, err := s.Repo.ListByUser(ctx, userID, repository.LoanFilter{CreatedAfter: RangeStart(rangeKey, now)})
	if err != nil {
		return nil, err
	}

	rates, fetchedAt := s.Rates.Current()
	sum := &Summary{
		Currency:       display,
		TotalLoans:     len(loans),
		TotalAmount:    decimal.Zero,
		TotalSent:      decimal.Zero,
		TotalReceived:  decimal.Zero,
		RatesFetchedAt: fetchedAt,
	}

	byCurrency := map[currency.Code]decimal.Decimal{}
	monthly := map[string]*MonthlyPoint{}
	var paid, active, dueSoon, overdue int

	for i := range loans {
		l := &loans[i]

		converted, err := currency.Convert(l.Amount, l.Currency, display, rates)
		if err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("loan_id", l.ID).Warn("conversion skipped in analytics")
			}
			converted = decimal.Zero
		}
		sum.TotalAmount = sum.TotalAmount.Add(converted)

		byCurrency[l.Currency] = byCurrency[l.Currency].Add(l.Amount)

		monthKey := l.CreatedAt.Format("Jan 2006")
		mp, ok := monthly[monthKey]
		if !ok {
			mp = &MonthlyPoint{
				Name:     monthKey,
				Sent:     decimal.Zero,
				Received: decimal.Zero,
				Total:    decimal.Zero,
				sortKey:  time.Date(l.CreatedAt.Year(), l.CreatedAt.Month(), 1, 0, 0, 0, 0, time.UTC),
			}
			monthly[monthKey] = mp
		}
		switch l.LoanType {
		case entity.TypeSent:
			sum.TotalSent = sum.TotalSent.Add(converted)
			mp.Sent = mp.Sent.Add(converted)
		case entity.TypeReceived:
			sum.TotalReceived = sum.TotalReceived.Add(converted)
			mp.Received = mp.Received.Add(converted)
		}
		mp.Total = mp.Total.Add(converted)

		daysLeft := l.DaysUntilDue(now)
		switch {
		case l.Status == entity.StatusPaid:
			paid++
		case daysLeft < 0:
			overdue++
		case daysLeft <= 7:
			dueSoon++
		default:
			active++
		}
	}

	if n := len(loans); n > 0 {
		sum.RepaymentRate = int(float64(paid)/float64(n)*100 + 0.5)
		sum.StatusDistribution = StatusDistribution{
			Paid:    float64(paid) / float64(n) * 100,
			Active:  float64(active) / float64(n) * 100,
			DueSoon: float64(dueSoon) / float64(n) * 100,
			Overdue: float64(overdue) / float64(n) * 100,
		}
	}

	for code, v := range byCurrency {
		sum.ByCurrency = append(sum.ByCurrency, CurrencySlice{
			Currency: code,
			Value:    v,
			Display:  currency.Format(v, code),
		})
	}
	sort.Slice(sum.ByCurrency, func(i, j int) bool {
		return sum.ByCurrency[i].Currency < sum.ByCurrency[j].Currency
	})

	for _, mp := range monthly {
		sum.Monthly = append(sum.Monthly, *mp)
	}
	sort.Slice(sum.Monthly, func(i, j int) bool {
		return sum.Monthly[i].sortKey.Before(sum.Monthly[j].sortKey)
	})

	// Next three unpaid loans by due date; ListByUser already orders by
	// due_date ascending.
	for i := range loans {
		if loans[i].Status != entity.StatusPaid {
			sum.UpcomingDue = append(sum.UpcomingDue, loans[i])
			if len(sum.UpcomingDue) == 3 {
				break
			}
		}
	}

	return sum, nil
}
