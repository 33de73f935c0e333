package repository

import (
	"context"
	"time"

	"github.com/lendbook/lendbook/internal/domain/entity"
)

// LoanFilter narrows ListByUser results. Zero values mean no filter.
type LoanFilter struct {
	Status       entity.LoanStatus
	CreatedAfter time.Time
}

// LoanRepository defines loan persistence. Implementations must scope
// every read and write to the owning user.
type LoanRepository interface {
	Create(ctx context.Context, l *entity.Loan) error
	GetByID(ctx context.Context, userID, id string) (*entity.Loan, error)
	ListByUser(ctx context.Context, userID string, f LoanFilter) ([]entity.Loan, error)
	Update(ctx context.Context, l *entity.Loan) error
	Delete(ctx context.Context, userID, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	// CountByUser backs the authoritative quota re-check; it must hit
	// the store, not any cache.
	CountByUser(ctx context.Context, userID string) (int, error)
}
