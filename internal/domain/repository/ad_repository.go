package repository

import (
	"context"

	"github.com/adboardhq/adboard/internal/domain/entity"
)

// AdRepository defines ad and ad-image persistence operations.
type AdRepository interface {
	Create(ctx context.Context, ad *entity.Ad) error
	GetByID(ctx context.Context, id string) (*entity.Ad, error)
	// GetOwned looks up an ad by id and owner in one query. A missing ad and
	// an ad owned by someone else both come back as ErrNotFound.
	GetOwned(ctx context.Context, ownerID, adID string) (*entity.Ad, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Ad, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Ad, error)
	Update(ctx context.Context, ad *entity.Ad) error
	Delete(ctx context.Context, id string) error

	GetImage(ctx context.Context, adID string) (*entity.Image, error)
	SaveImage(ctx context.Context, img *entity.Image) error
	DeleteImage(ctx context.Context, adID string) error
}
