package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adboardhq/adboard/internal/domain/entity"
	"github.com/adboardhq/adboard/internal/domain/repository"
)

type AdRepository struct {
	pool *pgxpool.Pool
}

func NewAdRepository(pool *pgxpool.Pool) *AdRepository {
	return &AdRepository{pool: pool}
}

func (r *AdRepository) db(ctx context.Context) Querier {
	return querierFrom(ctx, r.pool)
}

const adColumns = `id, owner_id, title, price, description, created_at, updated_at`

func scanAd(row pgx.Row) (*entity.Ad, error) {
	ad := &entity.Ad{}
	if err := row.Scan(&ad.ID, &ad.OwnerID, &ad.Title, &ad.Price, &ad.Description,
		&ad.CreatedAt, &ad.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ad, nil
}

func scanAds(rows pgx.Rows) ([]*entity.Ad, error) {
	defer rows.Close()
	out := []*entity.Ad{}
	for rows.Next() {
		ad := &entity.Ad{}
		if err := rows.Scan(&ad.ID, &ad.OwnerID, &ad.Title, &ad.Price, &ad.Description,
			&ad.CreatedAt, &ad.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ad)
	}
	return out, rows.Err()
}

func (r *AdRepository) Create(ctx context.Context, ad *entity.Ad) error {
	row := r.db(ctx).QueryRow(ctx, `
		INSERT INTO ads (owner_id, title, price, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, ad.OwnerID, ad.Title, ad.Price, ad.Description)

	if err := row.Scan(&ad.ID, &ad.CreatedAt, &ad.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (r *AdRepository) GetByID(ctx context.Context, id string) (*entity.Ad, error) {
	return scanAd(r.db(ctx).QueryRow(ctx, `SELECT `+adColumns+` FROM ads WHERE id = $1`, id))
}

// GetOwned checks existence and ownership in one query so callers cannot
// distinguish a missing ad from someone else's ad.
func (r *AdRepository) GetOwned(ctx context.Context, ownerID, adID string) (*entity.Ad, error) {
	return scanAd(r.db(ctx).QueryRow(ctx,
		`SELECT `+adColumns+` FROM ads WHERE id = $1 AND owner_id = $2`, adID, ownerID))
}

func (r *AdRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Ad, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+adColumns+` FROM ads WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	return scanAds(rows)
}

func (r *AdRepository) List(ctx context.Context, limit, offset int) ([]*entity.Ad, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+adColumns+` FROM ads ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanAds(rows)
}

func (r *AdRepository) Update(ctx context.Context, ad *entity.Ad) error {
	ad.UpdatedAt = time.Now()

	res, err := r.db(ctx).Exec(ctx, `
		UPDATE ads
		SET title = $1, price = $2, description = $3, updated_at = $4
		WHERE id = $5
	`, ad.Title, ad.Price, ad.Description, ad.UpdatedAt, ad.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the ad row; image and comment rows go with it via
// ON DELETE CASCADE.
func (r *AdRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db(ctx).Exec(ctx, `DELETE FROM ads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AdRepository) GetImage(ctx context.Context, adID string) (*entity.Image, error) {
	img := &entity.Image{}
	row := r.db(ctx).QueryRow(ctx, `
		SELECT id, ad_id, filename, file_size, media_type, created_at
		FROM images
		WHERE ad_id = $1
	`, adID)
	if err := row.Scan(&img.ID, &img.AdID, &img.Filename, &img.Size, &img.MediaType, &img.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return img, nil
}

// SaveImage upserts on ad_id: an ad has at most one image row.
func (r *AdRepository) SaveImage(ctx context.Context, img *entity.Image) error {
	row := r.db(ctx).QueryRow(ctx, `
		INSERT INTO images (ad_id, filename, file_size, media_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ad_id) DO UPDATE
		SET filename = EXCLUDED.filename,
		    file_size = EXCLUDED.file_size,
		    media_type = EXCLUDED.media_type
		RETURNING id, created_at
	`, img.AdID, img.Filename, img.Size, img.MediaType)

	if err := row.Scan(&img.ID, &img.CreatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (r *AdRepository) DeleteImage(ctx context.Context, adID string) error {
	res, err := r.db(ctx).Exec(ctx, `DELETE FROM images WHERE ad_id = $1`, adID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.AdRepository = (*AdRepository)(nil)
