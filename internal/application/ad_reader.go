package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/adboardhq/adboard/internal/domain/repository"
	"github.com/adboardhq/adboard/internal/infrastructure/media"
)

// AdDetail is the cached read projection of a single ad.
type AdDetail struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Price         int64     `json:"price"`
	Description   string    `json:"description"`
	OwnerID       string    `json:"owner_id"`
	OwnerUsername string    `json:"owner_username"`
	ImageFilename string    `json:"image_filename,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AdReader serves ad reads through the cache. Misses compute from the
// repositories and repopulate; put failures degrade to uncached reads.
type AdReader struct {
	Ads    repo.AdRepository
	Users  repo.UserRepository
	Media  media.Store
	Cache  Cache
	Logger *logrus.Logger
}

func NewAdReader(ads repo.AdRepository, users repo.UserRepository, store media.Store, cache Cache, logger *logrus.Logger) *AdReader {
	return &AdReader{Ads: ads, Users: users, Media: store, Cache: cache, Logger: logger}
}

func (r *AdReader) cachePut(ctx context.Context, region, key string, v any) {
	if err := r.Cache.Put(ctx, region, key, v); err != nil && r.Logger != nil {
		r.Logger.WithError(err).WithFields(logrus.Fields{"region": region, "key": key}).Warn("cache put failed")
	}
}

// GetDetail returns one ad with its image reference and owner, cached by ad id.
func (r *AdReader) GetDetail(ctx context.Context, adID string) (*AdDetail, error) {
	var cached AdDetail
	if ok, err := r.Cache.Get(ctx, RegionAdDetail, adID, &cached); err == nil && ok {
		return &cached, nil
	}

	d, err := r.buildDetail(ctx, adID)
	if err != nil {
		return nil, err
	}
	r.cachePut(ctx, RegionAdDetail, adID, d)
	return d, nil
}

func (r *AdReader) buildDetail(ctx context.Context, adID string) (*AdDetail, error) {
	ad, err := r.Ads.GetByID(ctx, adID)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	d := &AdDetail{
		ID:          ad.ID,
		Title:       ad.Title,
		Price:       ad.Price,
		Description: ad.Description,
		OwnerID:     ad.OwnerID,
		CreatedAt:   ad.CreatedAt,
		UpdatedAt:   ad.UpdatedAt,
	}
	if owner, err := r.Users.GetByID(ctx, ad.OwnerID); err == nil {
		d.OwnerUsername = owner.Username
	}
	if img, err := r.Ads.GetImage(ctx, ad.ID); err == nil {
		d.ImageFilename = img.Filename
	}
	return d, nil
}

// ListByOwner returns the ads of one user, cached by username.
func (r *AdReader) ListByOwner(ctx context.Context, username string) ([]*AdDetail, error) {
	var cached []*AdDetail
	if ok, err := r.Cache.Get(ctx, RegionAdsByUser, username, &cached); err == nil && ok {
		return cached, nil
	}

	owner, err := r.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	ads, err := r.Ads.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	out := make([]*AdDetail, 0, len(ads))
	for _, ad := range ads {
		d := &AdDetail{
			ID:            ad.ID,
			Title:         ad.Title,
			Price:         ad.Price,
			Description:   ad.Description,
			OwnerID:       ad.OwnerID,
			OwnerUsername: owner.Username,
			CreatedAt:     ad.CreatedAt,
			UpdatedAt:     ad.UpdatedAt,
		}
		if img, err := r.Ads.GetImage(ctx, ad.ID); err == nil {
			d.ImageFilename = img.Filename
		}
		out = append(out, d)
	}

	r.cachePut(ctx, RegionAdsByUser, username, out)
	return out, nil
}

// Browse lists recent ads uncached; the browse page changes on every write
// and caching it would only widen the invalidation surface.
func (r *AdReader) Browse(ctx context.Context, limit, offset int) ([]*AdDetail, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	ads, err := r.Ads.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*AdDetail, 0, len(ads))
	for _, ad := range ads {
		d := &AdDetail{
			ID:          ad.ID,
			Title:       ad.Title,
			Price:       ad.Price,
			Description: ad.Description,
			OwnerID:     ad.OwnerID,
			CreatedAt:   ad.CreatedAt,
			UpdatedAt:   ad.UpdatedAt,
		}
		if img, err := r.Ads.GetImage(ctx, ad.ID); err == nil {
			d.ImageFilename = img.Filename
		}
		out = append(out, d)
	}
	return out, nil
}

// GetImage returns the raw image bytes for an ad.
func (r *AdReader) GetImage(ctx context.Context, adID string) ([]byte, string, error) {
	img, err := r.Ads.GetImage(ctx, adID)
	if err != nil {
		return nil, "", mapRepoErr(err)
	}
	b, err := r.Media.Read(img.Filename)
	if err != nil {
		return nil, "", ErrNotFound
	}
	return b, img.MediaType, nil
}
