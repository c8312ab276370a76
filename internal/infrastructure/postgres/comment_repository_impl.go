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

type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

func (r *CommentRepository) db(ctx context.Context) Querier {
	return querierFrom(ctx, r.pool)
}

const commentColumns = `id, ad_id, author_id, comment_text, created_at, updated_at`

func scanComment(row pgx.Row) (*entity.Comment, error) {
	c := &entity.Comment{}
	if err := row.Scan(&c.ID, &c.AdID, &c.AuthorID, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CommentRepository) Create(ctx context.Context, c *entity.Comment) error {
	row := r.db(ctx).QueryRow(ctx, `
		INSERT INTO comments (ad_id, author_id, comment_text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, c.AdID, c.AuthorID, c.Text)

	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	return scanComment(r.db(ctx).QueryRow(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
}

// GetAuthored checks existence and authorship in one query, so a caller
// cannot enumerate other users' comments.
func (r *CommentRepository) GetAuthored(ctx context.Context, authorID, commentID string) (*entity.Comment, error) {
	return scanComment(r.db(ctx).QueryRow(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1 AND author_id = $2`, commentID, authorID))
}

func (r *CommentRepository) ListByAd(ctx context.Context, adID string) ([]*entity.Comment, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE ad_id = $1 ORDER BY created_at ASC`, adID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*entity.Comment{}
	for rows.Next() {
		c := &entity.Comment{}
		if err := rows.Scan(&c.ID, &c.AdID, &c.AuthorID, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update only touches the text; ad and author are immutable once written.
func (r *CommentRepository) Update(ctx context.Context, c *entity.Comment) error {
	c.UpdatedAt = time.Now()

	res, err := r.db(ctx).Exec(ctx, `
		UPDATE comments SET comment_text = $1, updated_at = $2 WHERE id = $3
	`, c.Text, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db(ctx).Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.CommentRepository = (*CommentRepository)(nil)
