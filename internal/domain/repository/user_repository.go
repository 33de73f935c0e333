package repository

import (
	"context"

	"github.com/lendbook/lendbook/internal/domain/entity"
)

// UserRepository defines the interface for account database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	SetVerified(ctx context.Context, id string) error
	IsVerified(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}
