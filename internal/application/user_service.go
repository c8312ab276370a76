package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/adboardhq/adboard/internal/domain/entity"
	repo "github.com/adboardhq/adboard/internal/domain/repository"
	"github.com/adboardhq/adboard/internal/domain/txn"
	"github.com/adboardhq/adboard/internal/infrastructure/media"
	"github.com/adboardhq/adboard/pkg/helpers"
	"github.com/adboardhq/adboard/pkg/mailer"
)

// EmailPublisher queues outbound email jobs; the worker picks them up.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// UserService handles accounts: registration, login sessions, profile and
// avatar management. Avatar replacement follows the same commit/rollback
// file policy as ad images.
type UserService struct {
	Users  repo.UserRepository
	Tx     txn.Manager
	Media  media.Store
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Mail   EmailPublisher
	Logger *logrus.Logger
}

func NewUserService(users repo.UserRepository, tx txn.Manager, store media.Store, jwt *helpers.JWTManager, rdb *redis.Client, mail EmailPublisher, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, Tx: tx, Media: store, JWT: jwt, Redis: rdb, Mail: mail, Logger: logger}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Register creates a new account. A taken username or email surfaces as
// ErrConflict. The welcome email is queued only after the row is committed.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Role:      entity.RoleUser,
	}

	err = s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.Users.Create(ctx, u); err != nil {
			return mapRepoErr(err)
		}
		txn.OnCommit(ctx, func() { s.sendWelcome(ctx, u) })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) sendWelcome(ctx context.Context, u *entity.User) {
	if s.Mail == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: "welcome",
		Data:     map[string]any{"Name": u.FirstName, "Username": u.Username},
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("welcome email enqueue failed")
	}
}

// Authenticate validates email/password without issuing tokens.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    u.ID,
			"username":   u.Username,
			"email":      u.Email,
			"role":       string(u.Role),
			"sid":        sid,
			"created_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh rotates the session id and both tokens.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, sessionKey(u.ID)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, ErrInvalidCredentials
		}
	}
	return s.IssueTokens(ctx, u)
}

func (s *UserService) Logout(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, sessionKey(userID)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("session delete failed")
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return u, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return u, nil
}

type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, up ProfileUpdate) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if up.FirstName != nil {
		u.FirstName = *up.FirstName
	}
	if up.LastName != nil {
		u.LastName = *up.LastName
	}
	if up.Phone != nil {
		u.Phone = *up.Phone
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, mapRepoErr(err)
	}
	return u, nil
}

// ChangePassword verifies the current password before setting the new hash.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return mapRepoErr(err)
	}
	if !helpers.CompareHashAndPassword(u.Password, current) {
		return ErrInvalidCredentials
	}
	hash, err := helpers.HashPassword(next)
	if err != nil {
		return err
	}
	u.Password = hash
	return mapRepoErr(s.Users.Update(ctx, u))
}

// ReplaceAvatar swaps the user's avatar under the mirror cleanup policy: the
// new file is written before the transaction, the old file is deleted only
// after commit, and a rollback deletes the new file instead.
func (s *UserService) ReplaceAvatar(ctx context.Context, userID string, image []byte, mediaType string) (*entity.Avatar, error) {
	newName, err := s.Media.Save(image, mediaType)
	if err != nil {
		return nil, err
	}

	avatar := &entity.Avatar{
		UserID:    userID,
		Filename:  newName,
		Size:      int64(len(image)),
		MediaType: mediaType,
	}

	err = s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		txn.OnRollback(ctx, func() { s.removeFile(newName) })

		if _, err := s.Users.GetByID(ctx, userID); err != nil {
			return mapRepoErr(err)
		}

		oldName := ""
		if old, err := s.Users.GetAvatar(ctx, userID); err == nil {
			oldName = old.Filename
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		if err := s.Users.SaveAvatar(ctx, avatar); err != nil {
			return mapRepoErr(err)
		}

		txn.OnCommit(ctx, func() { s.removeFile(oldName) })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return avatar, nil
}

// RemoveAvatar deletes the user's avatar row and, after commit, its file.
func (s *UserService) RemoveAvatar(ctx context.Context, userID string) error {
	return s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		avatar, err := s.Users.GetAvatar(ctx, userID)
		if err != nil {
			return mapRepoErr(err)
		}
		if err := s.Users.DeleteAvatar(ctx, userID); err != nil {
			return mapRepoErr(err)
		}

		txn.OnCommit(ctx, func() { s.removeFile(avatar.Filename) })
		return nil
	})
}

// GetAvatar returns the avatar bytes and media type for a username.
func (s *UserService) GetAvatar(ctx context.Context, username string) ([]byte, string, error) {
	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", mapRepoErr(err)
	}
	a, err := s.Users.GetAvatar(ctx, u.ID)
	if err != nil {
		return nil, "", mapRepoErr(err)
	}
	b, err := s.Media.Read(a.Filename)
	if err != nil {
		if errors.Is(err, media.ErrFileMissing) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return b, a.MediaType, nil
}

func (s *UserService) removeFile(filename string) {
	if filename == "" {
		return
	}
	if err := s.Media.Delete(filename); err != nil && !errors.Is(err, media.ErrFileMissing) {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("filename", filename).Error("media cleanup failed")
		}
	}
}
