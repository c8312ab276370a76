package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adboardhq/adboard/internal/domain/entity"
	repo "github.com/adboardhq/adboard/internal/domain/repository"
)

// CommentView is the cached read projection of a comment.
type CommentView struct {
	ID             string    `json:"id"`
	AdID           string    `json:"ad_id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CommentReader serves comment reads through the comment cache region. List
// and single-comment lookups use distinct key prefixes inside the one region
// so the coarse clear covers both.
type CommentReader struct {
	Comments repo.CommentRepository
	Ads      repo.AdRepository
	Users    repo.UserRepository
	Cache    Cache
	Logger   *logrus.Logger
}

func NewCommentReader(comments repo.CommentRepository, ads repo.AdRepository, users repo.UserRepository, cache Cache, logger *logrus.Logger) *CommentReader {
	return &CommentReader{Comments: comments, Ads: ads, Users: users, Cache: cache, Logger: logger}
}

func (r *CommentReader) cachePut(ctx context.Context, key string, v any) {
	if err := r.Cache.Put(ctx, RegionAdComments, key, v); err != nil && r.Logger != nil {
		r.Logger.WithError(err).WithField("key", key).Warn("cache put failed")
	}
}

func (r *CommentReader) view(ctx context.Context, c *entity.Comment) *CommentView {
	v := &CommentView{
		ID:        c.ID,
		AdID:      c.AdID,
		AuthorID:  c.AuthorID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if u, err := r.Users.GetByID(ctx, c.AuthorID); err == nil {
		v.AuthorUsername = u.Username
	}
	return v
}

// ListByAd returns an ad's comments oldest-first, cached by ad id. The ad
// must exist.
func (r *CommentReader) ListByAd(ctx context.Context, adID string) ([]*CommentView, error) {
	key := "list:" + adID

	var cached []*CommentView
	if ok, err := r.Cache.Get(ctx, RegionAdComments, key, &cached); err == nil && ok {
		return cached, nil
	}

	if _, err := r.Ads.GetByID(ctx, adID); err != nil {
		return nil, mapRepoErr(err)
	}
	comments, err := r.Comments.ListByAd(ctx, adID)
	if err != nil {
		return nil, err
	}

	out := make([]*CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, r.view(ctx, c))
	}
	r.cachePut(ctx, key, out)
	return out, nil
}

// Get returns one comment under its ad, cached by comment id.
func (r *CommentReader) Get(ctx context.Context, adID, commentID string) (*CommentView, error) {
	key := "id:" + commentID

	var cached CommentView
	if ok, err := r.Cache.Get(ctx, RegionAdComments, key, &cached); err == nil && ok {
		if cached.AdID != adID {
			return nil, ErrNotFound
		}
		return &cached, nil
	}

	c, err := r.Comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if c.AdID != adID {
		return nil, ErrNotFound
	}

	v := r.view(ctx, c)
	r.cachePut(ctx, key, v)
	return v, nil
}
