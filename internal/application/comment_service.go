package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/adboardhq/adboard/internal/domain/entity"
	repo "github.com/adboardhq/adboard/internal/domain/repository"
	"github.com/adboardhq/adboard/internal/domain/txn"
)

const MaxCommentLen = 2000

func validateCommentText(text string) error {
	if text == "" {
		return &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	if len(text) > MaxCommentLen {
		return &ValidationError{Field: "text", Reason: "too long"}
	}
	return nil
}

// CommentService owns comment mutation. Creating only needs the ad to exist;
// updating and deleting require authorship, checked the same merged way ad
// ownership is.
type CommentService struct {
	Comments repo.CommentRepository
	Ads      repo.AdRepository
	Tx       txn.Manager
	Cache    Cache
	Logger   *logrus.Logger
}

func NewCommentService(comments repo.CommentRepository, ads repo.AdRepository, tx txn.Manager, cache Cache, logger *logrus.Logger) *CommentService {
	return &CommentService{Comments: comments, Ads: ads, Tx: tx, Cache: cache, Logger: logger}
}

func (s *CommentService) invalidate(ctx context.Context) {
	if err := s.Cache.Clear(ctx, RegionAdComments); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("region", RegionAdComments).Warn("cache clear failed")
	}
}

// Create adds a comment to an existing ad. Any authenticated user may
// comment; only the ad's existence is checked.
func (s *CommentService) Create(ctx context.Context, authorID, adID, text string) (*entity.Comment, error) {
	if err := validateCommentText(text); err != nil {
		return nil, err
	}

	c := &entity.Comment{AdID: adID, AuthorID: authorID, Text: text}

	err := s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.Ads.GetByID(ctx, adID); err != nil {
			return mapRepoErr(err)
		}
		if err := s.Comments.Create(ctx, c); err != nil {
			return mapRepoErr(err)
		}
		txn.OnCommit(ctx, func() { s.invalidate(ctx) })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update changes the text of the caller's own comment. A comment that exists
// but belongs to someone else, a missing comment, and a comment under a
// different ad all surface as ErrNotFound.
func (s *CommentService) Update(ctx context.Context, authorID, adID, commentID, text string) (*entity.Comment, error) {
	if err := validateCommentText(text); err != nil {
		return nil, err
	}

	var c *entity.Comment

	err := s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		authored, err := s.Comments.GetAuthored(ctx, authorID, commentID)
		if err != nil {
			return mapRepoErr(err)
		}
		if authored.AdID != adID {
			return ErrNotFound
		}

		authored.Text = text
		if err := s.Comments.Update(ctx, authored); err != nil {
			return mapRepoErr(err)
		}
		c = authored

		txn.OnCommit(ctx, func() { s.invalidate(ctx) })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the caller's own comment, under the same merged
// authorship/existence policy as Update.
func (s *CommentService) Delete(ctx context.Context, authorID, adID, commentID string) error {
	return s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		authored, err := s.Comments.GetAuthored(ctx, authorID, commentID)
		if err != nil {
			return mapRepoErr(err)
		}
		if authored.AdID != adID {
			return ErrNotFound
		}

		if err := s.Comments.Delete(ctx, authored.ID); err != nil {
			return mapRepoErr(err)
		}

		txn.OnCommit(ctx, func() { s.invalidate(ctx) })
		return nil
	})
}
