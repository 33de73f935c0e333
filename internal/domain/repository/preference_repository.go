package repository

import (
	"context"

	"github.com/lendbook/lendbook/internal/domain/entity"
)

// PreferenceRepository is the single load/save boundary for user
// settings.
type PreferenceRepository interface {
	// Get returns defaults when the user has never saved preferences.
	Get(ctx context.Context, userID string) (entity.Preferences, error)
	Save(ctx context.Context, p entity.Preferences) error
	Delete(ctx context.Context, userID string) error
}
