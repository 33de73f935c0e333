package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lendbook/lendbook/internal/domain/entity"
	"github.com/lendbook/lendbook/internal/domain/repository"
)

type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

func (r *SubscriptionRepository) GetActiveByUser(ctx context.Context, userID string) (*entity.Subscription, error) {
	s := &entity.Subscription{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, status, current_period_start, current_period_end,
			auto_renew, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1 AND status = $2
	`, userID, entity.SubscriptionActive)

	if err := row.Scan(&s.ID, &s.UserID, &s.Status, &s.CurrentPeriodStart, &s.CurrentPeriodEnd,
		&s.AutoRenew, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *SubscriptionRepository) Upsert(ctx context.Context, s *entity.Subscription) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (user_id, status, current_period_start, current_period_end, auto_renew)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET status = EXCLUDED.status,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			auto_renew = EXCLUDED.auto_renew,
			updated_at = now()
		RETURNING id, created_at, updated_at
	`, s.UserID, s.Status, s.CurrentPeriodStart, s.CurrentPeriodEnd, s.AutoRenew)

	return row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

var _ repository.SubscriptionRepository = (*SubscriptionRepository)(nil)
