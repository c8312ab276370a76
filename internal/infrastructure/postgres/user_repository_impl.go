package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adboardhq/adboard/internal/domain/entity"
	"github.com/adboardhq/adboard/internal/domain/repository"
)

// uniqueViolation is the postgres error code for duplicate unique keys.
const uniqueViolation = "23505"

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrConflict
	}
	return err
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) db(ctx context.Context) Querier {
	return querierFrom(ctx, r.pool)
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db(ctx).QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, u.Username, u.Email, u.Password, u.FirstName, u.LastName, u.Phone, u.Role)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

const userColumns = `id, username, email, password_hash, first_name, last_name, phone, role, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.FirstName,
		&u.LastName, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.db(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.db(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return scanUser(r.db(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.db(ctx).Exec(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, first_name = $3, last_name = $4, phone = $5, role = $6, updated_at = $7
		WHERE id = $8
	`, u.Email, u.Password, u.FirstName, u.LastName, u.Phone, u.Role, u.UpdatedAt, u.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) GetAvatar(ctx context.Context, userID string) (*entity.Avatar, error) {
	a := &entity.Avatar{}
	row := r.db(ctx).QueryRow(ctx, `
		SELECT id, user_id, filename, file_size, media_type, created_at, updated_at
		FROM avatars
		WHERE user_id = $1
	`, userID)
	if err := row.Scan(&a.ID, &a.UserID, &a.Filename, &a.Size, &a.MediaType, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// SaveAvatar upserts on user_id: a user has at most one avatar row.
func (r *UserRepository) SaveAvatar(ctx context.Context, a *entity.Avatar) error {
	row := r.db(ctx).QueryRow(ctx, `
		INSERT INTO avatars (user_id, filename, file_size, media_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET filename = EXCLUDED.filename,
		    file_size = EXCLUDED.file_size,
		    media_type = EXCLUDED.media_type,
		    updated_at = now()
		RETURNING id, created_at, updated_at
	`, a.UserID, a.Filename, a.Size, a.MediaType)

	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (r *UserRepository) DeleteAvatar(ctx context.Context, userID string) error {
	res, err := r.db(ctx).Exec(ctx, `DELETE FROM avatars WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
