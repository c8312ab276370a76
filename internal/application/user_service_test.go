package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adboardhq/adboard/pkg/helpers"
	"github.com/adboardhq/adboard/pkg/mailer"
)

func newUserFixture() (*UserService, *memUserRepo, *fakeMedia, *recordingPublisher) {
	users := newMemUserRepo()
	store := newFakeMedia()
	pub := &recordingPublisher{}
	jwt := helpers.NewJWTManager("test-access", "test-refresh", time.Hour, 24*time.Hour)
	svc := NewUserService(users, fakeTx{}, store, jwt, nil, pub, nil)
	return svc, users, store, pub
}

func register(t *testing.T, svc *UserService, username, email string) string {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    email,
		Password: "secret123",
	})
	require.NoError(t, err)
	return u.ID
}

func TestRegisterHashesPasswordAndQueuesWelcome(t *testing.T) {
	svc, users, _, pub := newUserFixture()

	id := register(t, svc, "alice", "alice@example.com")

	stored, err := users.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.True(t, helpers.CompareHashAndPassword(stored.Password, "secret123"))

	require.Len(t, pub.jobs, 1)
	job, ok := pub.jobs[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", job.To)
	assert.Equal(t, "welcome", job.Template)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _, _, pub := newUserFixture()
	register(t, svc, "alice", "alice@example.com")

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "other@example.com", Password: "pw",
	})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "bob", Email: "alice@example.com", Password: "pw",
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, pub.jobs, 1, "no welcome email for a failed registration")
}

func TestAuthenticate(t *testing.T) {
	svc, _, _, _ := newUserFixture()
	register(t, svc, "alice", "alice@example.com")
	ctx := context.Background()

	u, err := svc.Authenticate(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials,
		"unknown email and wrong password must be indistinguishable")
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, _, _, _ := newUserFixture()
	register(t, svc, "alice", "alice@example.com")

	u, pair, err := svc.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.AccessTokenExpiry.After(time.Now()))

	claims, err := svc.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.NotEmpty(t, claims.SessionID)
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, _, _, _ := newUserFixture()
	register(t, svc, "alice", "alice@example.com")

	_, pair, err := svc.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)

	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	_, err = svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfilePartial(t *testing.T) {
	svc, _, _, _ := newUserFixture()
	id := register(t, svc, "alice", "alice@example.com")
	ctx := context.Background()

	first := "Alice"
	u, err := svc.UpdateProfile(ctx, id, ProfileUpdate{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.FirstName)
	assert.Empty(t, u.LastName)

	_, err = svc.UpdateProfile(ctx, "ghost", ProfileUpdate{FirstName: &first})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChangePassword(t *testing.T) {
	svc, _, _, _ := newUserFixture()
	id := register(t, svc, "alice", "alice@example.com")
	ctx := context.Background()

	assert.ErrorIs(t, svc.ChangePassword(ctx, id, "wrong", "newpass"), ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, id, "secret123", "newpass"))
	_, err := svc.Authenticate(ctx, "alice@example.com", "newpass")
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, "alice@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestReplaceAvatarCommitDeletesOldFile(t *testing.T) {
	svc, users, store, _ := newUserFixture()
	id := register(t, svc, "alice", "alice@example.com")
	ctx := context.Background()

	first, err := svc.ReplaceAvatar(ctx, id, []byte("v1"), "image/png")
	require.NoError(t, err)

	second, err := svc.ReplaceAvatar(ctx, id, []byte("v2"), "image/jpeg")
	require.NoError(t, err)

	assert.False(t, store.Exists(first.Filename))
	assert.True(t, store.Exists(second.Filename))

	row, err := users.GetAvatar(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, second.Filename, row.Filename)
	assert.Equal(t, "image/jpeg", row.MediaType)
}

func TestRemoveAvatarDeletesRowAndFile(t *testing.T) {
	svc, users, store, _ := newUserFixture()
	id := register(t, svc, "alice", "alice@example.com")
	ctx := context.Background()

	a, err := svc.ReplaceAvatar(ctx, id, []byte("v1"), "image/png")
	require.NoError(t, err)
	require.True(t, store.Exists(a.Filename))

	require.NoError(t, svc.RemoveAvatar(ctx, id))

	_, err = users.GetAvatar(ctx, id)
	assert.Error(t, err)
	assert.False(t, store.Exists(a.Filename))

	assert.ErrorIs(t, svc.RemoveAvatar(ctx, id), ErrNotFound, "removing twice reports not found")
}

func TestReplaceAvatarMissingUserCleansUp(t *testing.T) {
	svc, _, store, _ := newUserFixture()

	_, err := svc.ReplaceAvatar(context.Background(), "ghost", []byte("v1"), "image/png")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.files, "the optimistic write must be undone on rollback")
}

func TestGetAvatar(t *testing.T) {
	svc, _, _, _ := newUserFixture()
	id := register(t, svc, "alice", "alice@example.com")
	ctx := context.Background()

	_, _, err := svc.GetAvatar(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ReplaceAvatar(ctx, id, []byte("avatarbytes"), "image/png")
	require.NoError(t, err)

	b, mediaType, err := svc.GetAvatar(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("avatarbytes"), b)
	assert.Equal(t, "image/png", mediaType)

	_, _, err = svc.GetAvatar(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
