package repository

import (
	"context"

	"github.com/adboardhq/adboard/internal/domain/entity"
)

// CommentRepository defines comment persistence operations.
type CommentRepository interface {
	Create(ctx context.Context, c *entity.Comment) error
	GetByID(ctx context.Context, id string) (*entity.Comment, error)
	// GetAuthored looks up a comment by id and author in one query, merging
	// missing and not-authored into ErrNotFound.
	GetAuthored(ctx context.Context, authorID, commentID string) (*entity.Comment, error)
	ListByAd(ctx context.Context, adID string) ([]*entity.Comment, error)
	Update(ctx context.Context, c *entity.Comment) error
	Delete(ctx context.Context, id string) error
}
