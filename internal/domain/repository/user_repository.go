package repository

import (
	"context"

	"github.com/adboardhq/adboard/internal/domain/entity"
)

// UserRepository defines user and avatar persistence operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error

	GetAvatar(ctx context.Context, userID string) (*entity.Avatar, error)
	SaveAvatar(ctx context.Context, a *entity.Avatar) error
	DeleteAvatar(ctx context.Context, userID string) error
}
