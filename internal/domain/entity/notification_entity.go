package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendbook/lendbook/pkg/currency"
)

// Bucket names an urgency group in the due-soon feed.
type Bucket string

const (
	BucketToday    Bucket = "today"
	BucketTomorrow Bucket = "tomorrow"
	BucketUpcoming Bucket = "upcoming"
)

// Urgency drives badge styling on the client.
type Urgency string

const (
	UrgencyUrgent  Urgency = "urgent"
	UrgencyWarning Urgency = "warning"
)

// Notification is an ephemeral due-date alert. It exists only for
// rendering and is never persisted.
type Notification struct {
	LoanID       string          `json:"loan_id"`
	BorrowerName string          `json:"borrower_name"`
	DueDate      time.Time       `json:"due_date"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     currency.Code   `json:"currency"`
	DaysLeft     int             `json:"days_left"`
	Urgency      Urgency         `json:"urgency"`
}

// Bucketize classifies unpaid loans due within the next week into
// today/tomorrow/upcoming buckets. Already-overdue loans are excluded
// from this feed; they surface as overdue status elsewhere. Input
// order is preserved within each bucket.
func Bucketize(loans []Loan, now time.Time) map[Bucket][]Notification {
	out := make(map[Bucket][]Notification)
	for i := range loans {
		loan := &loans[i]
		if loan.Status == StatusPaid {
			continue
		}
		daysLeft := loan.DaysUntilDue(now)
		if daysLeft < 0 || daysLeft > 7 {
			continue
		}
		urgency := UrgencyWarning
		if daysLeft <= 1 {
			urgency = UrgencyUrgent
		}
		bucket := BucketUpcoming
		switch daysLeft {
		case 0:
			bucket = BucketToday
		case 1:
			bucket = BucketTomorrow
		}
		out[bucket] = append(out[bucket], Notification{
			LoanID:       loan.ID,
			BorrowerName: loan.BorrowerName,
			DueDate:      loan.DueDate,
			Amount:       loan.Amount,
			Currency:     loan.Currency,
			DaysLeft:     daysLeft,
			Urgency:      urgency,
		})
	}
	return out
}

// CountNotifications sums the notifications across all buckets.
func CountNotifications(buckets map[Bucket][]Notification) int {
	n := 0
	for _, list := range buckets {
		n += len(list)
	}
	return n
}
