package entity

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendbook/lendbook/pkg/currency"
)

// LoanStatus is the persisted lifecycle state of a loan.
// "overdue" is derived at display time, never written to the store.
type LoanStatus string

const (
	StatusPending LoanStatus = "pending"
	StatusPaid    LoanStatus = "paid"
	StatusOverdue LoanStatus = "overdue" // derived only
)

// LoanType records the direction of the loan from the owner's view:
// "sent" means the owner lent money out, "received" means they borrowed.
type LoanType string

const (
	TypeSent     LoanType = "sent"
	TypeReceived LoanType = "received"
)

// Loan is a tracked peer-to-peer lending record owned by one user.
type Loan struct {
	ID            string
	UserID        string
	BorrowerName  string
	BorrowerEmail string
	BorrowerPhone string
	Amount        decimal.Decimal
	Currency      currency.Code
	LoanType      LoanType
	StartDate     time.Time
	DueDate       time.Time
	Status        LoanStatus
	PaidDate      *time.Time
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DisplayStatus returns the status shown to the user: a pending loan
// past its due date reads as overdue.
func (l *Loan) DisplayStatus(now time.Time) LoanStatus {
	if l.Status != StatusPaid && l.DaysUntilDue(now) < 0 {
		return StatusOverdue
	}
	return l.Status
}

// DaysUntilDue returns floor((due - now) / 24h), negative when the due
// date has passed.
func (l *Loan) DaysUntilDue(now time.Time) int {
	return int(math.Floor(l.DueDate.Sub(now).Hours() / 24))
}
