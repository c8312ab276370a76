package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/adboardhq/adboard/internal/domain/entity"
	repo "github.com/adboardhq/adboard/internal/domain/repository"
	"github.com/adboardhq/adboard/internal/domain/txn"
	"github.com/adboardhq/adboard/internal/infrastructure/media"
)

// Field bounds for ads.
const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 5000
	MaxPrice          = 100_000_000
)

// AdInput carries the owner-supplied fields for a new ad.
type AdInput struct {
	Title       string
	Price       int64
	Description string
}

func (in AdInput) validate() error {
	if in.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if len(in.Title) > MaxTitleLen {
		return &ValidationError{Field: "title", Reason: "too long"}
	}
	if in.Price < 0 || in.Price > MaxPrice {
		return &ValidationError{Field: "price", Reason: "out of range"}
	}
	if len(in.Description) > MaxDescriptionLen {
		return &ValidationError{Field: "description", Reason: "too long"}
	}
	return nil
}

// AdUpdate carries a partial update; nil fields are left untouched.
type AdUpdate struct {
	Title       *string
	Price       *int64
	Description *string
}

// AdService owns ad mutation: ownership checks, the image-file lifecycle
// tied to transaction outcome, and cache invalidation after commit.
type AdService struct {
	Ads     repo.AdRepository
	Tx      txn.Manager
	Media   media.Store
	Cache   Cache
	Indexer *AdIndexer
	Logger  *logrus.Logger
}

func NewAdService(ads repo.AdRepository, tx txn.Manager, store media.Store, cache Cache, indexer *AdIndexer, logger *logrus.Logger) *AdService {
	return &AdService{Ads: ads, Tx: tx, Media: store, Cache: cache, Indexer: indexer, Logger: logger}
}

// removeFile deletes a media file after the transaction outcome is known.
// The outcome cannot be undone at this point, so failures are logged and
// swallowed; a missing file means the work is already done.
func (s *AdService) removeFile(filename string) {
	if filename == "" {
		return
	}
	if err := s.Media.Delete(filename); err != nil && !errors.Is(err, media.ErrFileMissing) {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("filename", filename).Error("media cleanup failed")
		}
	}
}

// invalidate clears every ad cache region. Runs on the commit hook path, so
// readers never observe pre-mutation data once the mutation has returned.
func (s *AdService) invalidate(ctx context.Context) {
	for _, region := range []string{RegionAdsByUser, RegionAdDetail} {
		s.clearRegion(ctx, region)
	}
}

func (s *AdService) clearRegion(ctx context.Context, region string) {
	if err := s.Cache.Clear(ctx, region); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("region", region).Warn("cache clear failed")
	}
}

// Create persists a new ad with an optional image. The image file is written
// to the media store before the transaction opens; a rollback hook removes it
// again so a failed transaction leaves no orphan file behind.
func (s *AdService) Create(ctx context.Context, ownerID string, in AdInput, image []byte, mediaType string) (*entity.Ad, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	filename := ""
	if len(image) > 0 {
		name, err := s.Media.Save(image, mediaType)
		if err != nil {
			return nil, err
		}
		filename = name
	}

	ad := &entity.Ad{
		OwnerID:     ownerID,
		Title:       in.Title,
		Price:       in.Price,
		Description: in.Description,
	}

	err := s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		txn.OnRollback(ctx, func() { s.removeFile(filename) })

		if err := s.Ads.Create(ctx, ad); err != nil {
			return err
		}
		if filename != "" {
			img := &entity.Image{
				AdID:      ad.ID,
				Filename:  filename,
				Size:      int64(len(image)),
				MediaType: mediaType,
			}
			if err := s.Ads.SaveImage(ctx, img); err != nil {
				return err
			}
		}

		txn.OnCommit(ctx, func() {
			s.invalidate(ctx)
			s.Indexer.Index(ctx, ad)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ad, nil
}

// Update applies a partial field update. Existence and ownership are checked
// in one lookup: a missing ad and an ad owned by someone else both surface as
// ErrNotFound.
func (s *AdService) Update(ctx context.Context, ownerID, adID string, up AdUpdate) (*entity.Ad, error) {
	var ad *entity.Ad

	err := s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		owned, err := s.Ads.GetOwned(ctx, ownerID, adID)
		if err != nil {
			return mapRepoErr(err)
		}

		in := AdInput{Title: owned.Title, Price: owned.Price, Description: owned.Description}
		if up.Title != nil {
			in.Title = *up.Title
		}
		if up.Price != nil {
			in.Price = *up.Price
		}
		if up.Description != nil {
			in.Description = *up.Description
		}
		if err := in.validate(); err != nil {
			return err
		}

		owned.Title, owned.Price, owned.Description = in.Title, in.Price, in.Description
		if err := s.Ads.Update(ctx, owned); err != nil {
			return mapRepoErr(err)
		}
		ad = owned

		txn.OnCommit(ctx, func() {
			s.invalidate(ctx)
			s.Indexer.Index(ctx, ad)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ad, nil
}

// ReplaceImage swaps the ad's image. The new file is written before the
// transaction; on commit the old file is deleted, on rollback the new one is,
// so the store always matches what the database durably records.
func (s *AdService) ReplaceImage(ctx context.Context, ownerID, adID string, image []byte, mediaType string) error {
	newName, err := s.Media.Save(image, mediaType)
	if err != nil {
		return err
	}

	return s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		txn.OnRollback(ctx, func() { s.removeFile(newName) })

		ad, err := s.Ads.GetOwned(ctx, ownerID, adID)
		if err != nil {
			return mapRepoErr(err)
		}

		oldName := ""
		if old, err := s.Ads.GetImage(ctx, ad.ID); err == nil {
			oldName = old.Filename
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		img := &entity.Image{
			AdID:      ad.ID,
			Filename:  newName,
			Size:      int64(len(image)),
			MediaType: mediaType,
		}
		if err := s.Ads.SaveImage(ctx, img); err != nil {
			return err
		}

		txn.OnCommit(ctx, func() {
			s.removeFile(oldName)
			s.invalidate(ctx)
		})
		return nil
	})
}

// RemoveImage detaches the ad's image without touching the ad itself. The
// file is deleted only after the row is durably gone.
func (s *AdService) RemoveImage(ctx context.Context, ownerID, adID string) error {
	return s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		ad, err := s.Ads.GetOwned(ctx, ownerID, adID)
		if err != nil {
			return mapRepoErr(err)
		}

		img, err := s.Ads.GetImage(ctx, ad.ID)
		if err != nil {
			return mapRepoErr(err)
		}
		if err := s.Ads.DeleteImage(ctx, ad.ID); err != nil {
			return mapRepoErr(err)
		}

		txn.OnCommit(ctx, func() {
			s.removeFile(img.Filename)
			s.invalidate(ctx)
		})
		return nil
	})
}

// Delete removes the ad; image and comment rows cascade with it. The image
// file is deleted only after commit, so a rollback restores a fully
// consistent ad, file included.
func (s *AdService) Delete(ctx context.Context, ownerID, adID string) error {
	return s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		ad, err := s.Ads.GetOwned(ctx, ownerID, adID)
		if err != nil {
			return mapRepoErr(err)
		}

		oldName := ""
		if img, err := s.Ads.GetImage(ctx, ad.ID); err == nil {
			oldName = img.Filename
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		if err := s.Ads.Delete(ctx, ad.ID); err != nil {
			return mapRepoErr(err)
		}

		txn.OnCommit(ctx, func() {
			s.removeFile(oldName)
			s.invalidate(ctx)
			// Comments cascade with the ad row, so their cached lists go too.
			s.clearRegion(ctx, RegionAdComments)
			s.Indexer.Remove(ctx, ad.ID)
		})
		return nil
	})
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repo.ErrConflict):
		return ErrConflict
	default:
		return err
	}
}
