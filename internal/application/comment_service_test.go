package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adboardhq/adboard/internal/domain/entity"
)

func newCommentFixture() (*CommentService, *memCommentRepo, *memAdRepo, *fakeCache) {
	comments := newMemCommentRepo()
	ads := newMemAdRepo()
	cache := newFakeCache()
	svc := NewCommentService(comments, ads, fakeTx{}, cache, nil)
	return svc, comments, ads, cache
}

func seedAdRow(t *testing.T, ads *memAdRepo, owner string) *entity.Ad {
	t.Helper()
	ad := &entity.Ad{OwnerID: owner, Title: "bike", Price: 10}
	require.NoError(t, ads.Create(context.Background(), ad))
	return ad
}

func TestCommentCreate(t *testing.T) {
	svc, _, ads, cache := newCommentFixture()
	ad := seedAdRow(t, ads, "owner")

	c, err := svc.Create(context.Background(), "someone-else", ad.ID, "is it available?")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, ad.ID, c.AdID)
	assert.Contains(t, cache.cleared, RegionAdComments)
}

func TestCommentCreateOnMissingAd(t *testing.T) {
	svc, comments, _, cache := newCommentFixture()

	_, err := svc.Create(context.Background(), "author", "no-such-ad", "hello")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, comments.comments)
	assert.Zero(t, cache.clearCount())
}

func TestCommentTextValidation(t *testing.T) {
	svc, _, ads, _ := newCommentFixture()
	ad := seedAdRow(t, ads, "owner")
	ctx := context.Background()

	_, err := svc.Create(ctx, "author", ad.ID, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "text", verr.Field)

	_, err = svc.Create(ctx, "author", ad.ID, strings.Repeat("x", MaxCommentLen+1))
	require.ErrorAs(t, err, &verr)
}

func TestCommentUpdateRequiresAuthorship(t *testing.T) {
	svc, _, ads, _ := newCommentFixture()
	ad := seedAdRow(t, ads, "owner")
	ctx := context.Background()

	c, err := svc.Create(ctx, "author", ad.ID, "original")
	require.NoError(t, err)

	_, err = svc.Update(ctx, "intruder", ad.ID, c.ID, "hijacked")
	assert.ErrorIs(t, err, ErrNotFound, "foreign comments must look missing")

	updated, err := svc.Update(ctx, "author", ad.ID, c.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)
}

func TestCommentUpdateUnderWrongAd(t *testing.T) {
	svc, _, ads, _ := newCommentFixture()
	ctx := context.Background()
	ad1 := seedAdRow(t, ads, "owner")
	ad2 := seedAdRow(t, ads, "owner")

	c, err := svc.Create(ctx, "author", ad1.ID, "hello")
	require.NoError(t, err)

	_, err = svc.Update(ctx, "author", ad2.ID, c.ID, "edited")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentDelete(t *testing.T) {
	svc, comments, ads, cache := newCommentFixture()
	ad := seedAdRow(t, ads, "owner")
	ctx := context.Background()

	c, err := svc.Create(ctx, "author", ad.ID, "bye")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "intruder", ad.ID, c.ID), ErrNotFound)
	require.NoError(t, svc.Delete(ctx, "author", ad.ID, c.ID))
	assert.Empty(t, comments.comments)
	assert.Contains(t, cache.cleared, RegionAdComments)
	assert.NotContains(t, cache.cleared, RegionAdDetail, "comment writes touch only the comment region")
}
