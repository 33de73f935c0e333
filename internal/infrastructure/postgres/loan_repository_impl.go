package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lendbook/lendbook/internal/domain/entity"
	"github.com/lendbook/lendbook/internal/domain/repository"
)

var ErrNotFound = errors.New("not found")

type LoanRepository struct {
	pool *pgxpool.Pool
}

func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, user_id, borrower_name, borrower_email, borrower_phone,
		amount, currency, loan_type, start_date, due_date, status, paid_date,
		notes, created_at, updated_at`

func scanLoan(row pgx.Row, l *entity.Loan) error {
	return row.Scan(&l.ID, &l.UserID, &l.BorrowerName, &l.BorrowerEmail, &l.BorrowerPhone,
		&l.Amount, &l.Currency, &l.LoanType, &l.StartDate, &l.DueDate, &l.Status, &l.PaidDate,
		&l.Notes, &l.CreatedAt, &l.UpdatedAt)
}

func (r *LoanRepository) Create(ctx context.Context, l *entity.Loan) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO loans (user_id, borrower_name, borrower_email, borrower_phone,
			amount, currency, loan_type, start_date, due_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, l.UserID, l.BorrowerName, l.BorrowerEmail, l.BorrowerPhone,
		l.Amount, l.Currency, l.LoanType, l.StartDate, l.DueDate, l.Status, l.Notes)

	return row.Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *LoanRepository) GetByID(ctx context.Context, userID, id string) (*entity.Loan, error) {
	l := &entity.Loan{}
	row := r.pool.QueryRow(ctx, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	if err := scanLoan(row, l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *LoanRepository) ListByUser(ctx context.Context, userID string, f repository.LoanFilter) ([]entity.Loan, error) {
	q := `SELECT ` + loanColumns + ` FROM loans WHERE user_id = $1`
	args := []any{userID}
	if f.Status != "" {
		args = append(args, f.Status)
		q += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if !f.CreatedAfter.IsZero() {
		args = append(args, f.CreatedAfter)
		q += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	q += ` ORDER BY due_date ASC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Loan
	for rows.Next() {
		var l entity.Loan
		if err := scanLoan(rows, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *LoanRepository) Update(ctx context.Context, l *entity.Loan) error {
	l.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE loans
		SET borrower_name = $1, borrower_email = $2, borrower_phone = $3,
			amount = $4, currency = $5, loan_type = $6, start_date = $7,
			due_date = $8, status = $9, paid_date = $10, notes = $11, updated_at = $12
		WHERE id = $13 AND user_id = $14
	`, l.BorrowerName, l.BorrowerEmail, l.BorrowerPhone,
		l.Amount, l.Currency, l.LoanType, l.StartDate,
		l.DueDate, l.Status, l.PaidDate, l.Notes, l.UpdatedAt,
		l.ID, l.UserID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *LoanRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM loans WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *LoanRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM loans WHERE user_id = $1`, userID)
	return err
}

func (r *LoanRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM loans WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

var _ repository.LoanRepository = (*LoanRepository)(nil)
