package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lendbook/lendbook/internal/domain/entity"
	"github.com/lendbook/lendbook/internal/domain/repository"
)

// PreferenceRepository stores per-user settings as a jsonb blob keyed
// by user_id.
type PreferenceRepository struct {
	pool *pgxpool.Pool
}

func NewPreferenceRepository(pool *pgxpool.Pool) *PreferenceRepository {
	return &PreferenceRepository{pool: pool}
}

func (r *PreferenceRepository) Get(ctx context.Context, userID string) (entity.Preferences, error) {
	var raw []byte
	p := entity.DefaultPreferences(userID)
	row := r.pool.QueryRow(ctx, `
		SELECT preferences, updated_at FROM user_preferences WHERE user_id = $1
	`, userID)
	if err := row.Scan(&raw, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, nil
		}
		return p, err
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return entity.DefaultPreferences(userID), err
	}
	p.UserID = userID
	return p, nil
}

func (r *PreferenceRepository) Save(ctx context.Context, p entity.Preferences) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO user_preferences (user_id, preferences)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET preferences = EXCLUDED.preferences, updated_at = now()
	`, p.UserID, raw)
	return err
}

func (r *PreferenceRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_preferences WHERE user_id = $1`, userID)
	return err
}

var _ repository.PreferenceRepository = (*PreferenceRepository)(nil)
