package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendbook/lendbook/pkg/currency"
)

func TestBucketize(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	mk := func(id string, due time.Time, status LoanStatus) Loan {
		return Loan{
			ID:           id,
			BorrowerName: "Borrower " + id,
			Amount:       decimal.NewFromInt(100),
			Currency:     currency.USD,
			Status:       status,
			DueDate:      due,
		}
	}

	loans := []Loan{
		mk("today", now.Add(5*time.Hour), StatusPending),
		mk("tomorrow", now.Add(30*time.Hour), StatusPending),
		mk("upcoming", now.Add(4*24*time.Hour), StatusPending),
		mk("week-edge", now.Add(7*24*time.Hour), StatusPending),
		mk("too-far", now.Add(9*24*time.Hour), StatusPending),
		mk("overdue", now.Add(-24*time.Hour), StatusPending),
		mk("paid", now.Add(2*time.Hour), StatusPaid),
	}

	buckets := Bucketize(loans, now)

	if n := CountNotifications(buckets); n != 4 {
		t.Fatalf("CountNotifications = %d, want 4", n)
	}
	if len(buckets[BucketToday]) != 1 || buckets[BucketToday][0].LoanID != "today" {
		t.Fatalf("today bucket = %+v", buckets[BucketToday])
	}
	if len(buckets[BucketTomorrow]) != 1 || buckets[BucketTomorrow][0].LoanID != "tomorrow" {
		t.Fatalf("tomorrow bucket = %+v", buckets[BucketTomorrow])
	}
	if len(buckets[BucketUpcoming]) != 2 {
		t.Fatalf("upcoming bucket size = %d, want 2", len(buckets[BucketUpcoming]))
	}

	// Urgency follows days left, not the bucket name.
	if got := buckets[BucketToday][0].Urgency; got != UrgencyUrgent {
		t.Fatalf("today urgency = %s, want urgent", got)
	}
	if got := buckets[BucketTomorrow][0].Urgency; got != UrgencyUrgent {
		t.Fatalf("tomorrow urgency = %s, want urgent", got)
	}
	for _, n := range buckets[BucketUpcoming] {
		if n.Urgency != UrgencyWarning {
			t.Fatalf("upcoming urgency for %s = %s, want warning", n.LoanID, n.Urgency)
		}
	}

	if got := buckets[BucketTomorrow][0].DaysLeft; got != 1 {
		t.Fatalf("tomorrow days_left = %d, want 1", got)
	}
}

func TestBucketizeEmpty(t *testing.T) {
	buckets := Bucketize(nil, time.Now())
	if n := CountNotifications(buckets); n != 0 {
		t.Fatalf("CountNotifications on empty input = %d", n)
	}
}
