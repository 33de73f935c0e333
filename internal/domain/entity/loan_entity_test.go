package entity

import (
	"testing"
	"time"
)

var testNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func loanDue(due time.Time, status LoanStatus) Loan {
	return Loan{Status: status, DueDate: due}
}

func TestDaysUntilDue(t *testing.T) {
	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"due right now", testNow, 0},
		{"due later today", testNow.Add(6 * time.Hour), 0},
		{"due in exactly one day", testNow.Add(24 * time.Hour), 1},
		{"due in a week", testNow.Add(7 * 24 * time.Hour), 7},
		{"one hour overdue", testNow.Add(-time.Hour), -1},
		{"two and a half days overdue", testNow.Add(-60 * time.Hour), -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := loanDue(tt.due, StatusPending)
			if got := l.DaysUntilDue(testNow); got != tt.want {
				t.Fatalf("DaysUntilDue = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDisplayStatus(t *testing.T) {
	overdue := loanDue(testNow.Add(-48*time.Hour), StatusPending)
	if got := overdue.DisplayStatus(testNow); got != StatusOverdue {
		t.Fatalf("past-due pending loan = %s, want overdue", got)
	}

	// Paid is terminal even past the due date.
	paid := loanDue(testNow.Add(-48*time.Hour), StatusPaid)
	if got := paid.DisplayStatus(testNow); got != StatusPaid {
		t.Fatalf("paid loan = %s, want paid", got)
	}

	pending := loanDue(testNow.Add(72*time.Hour), StatusPending)
	if got := pending.DisplayStatus(testNow); got != StatusPending {
		t.Fatalf("future pending loan = %s, want pending", got)
	}
}
