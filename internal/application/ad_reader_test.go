package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adboardhq/adboard/internal/domain/entity"
)

func newReaderFixture() (*AdService, *AdReader, *memAdRepo, *memUserRepo, *fakeCache) {
	ads := newMemAdRepo()
	users := newMemUserRepo()
	store := newFakeMedia()
	cache := newFakeCache()
	svc := NewAdService(ads, fakeTx{}, store, cache, nil, nil)
	reader := NewAdReader(ads, users, store, cache, nil)
	return svc, reader, ads, users, cache
}

func seedUser(t *testing.T, users *memUserRepo, username string) *entity.User {
	t.Helper()
	u := &entity.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestGetDetailCachesOnFirstRead(t *testing.T) {
	svc, reader, ads, users, _ := newReaderFixture()
	ctx := context.Background()

	owner := seedUser(t, users, "alice")
	ad := seedAd(t, svc, owner.ID, "bike")

	d, err := reader.GetDetail(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, "bike", d.Title)
	assert.Equal(t, "alice", d.OwnerUsername)

	calls := ads.getCalls
	again, err := reader.GetDetail(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Title, again.Title)
	assert.Equal(t, calls, ads.getCalls, "second read must be served from cache")
}

func TestGetDetailMissingAd(t *testing.T) {
	_, reader, _, _, _ := newReaderFixture()

	_, err := reader.GetDetail(context.Background(), "no-such-ad")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateInvalidatesDetailCache(t *testing.T) {
	svc, reader, _, users, _ := newReaderFixture()
	ctx := context.Background()

	owner := seedUser(t, users, "alice")
	ad := seedAd(t, svc, owner.ID, "bike")

	d, err := reader.GetDetail(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, "bike", d.Title)

	title := "fast bike"
	_, err = svc.Update(ctx, owner.ID, ad.ID, AdUpdate{Title: &title})
	require.NoError(t, err)

	d, err = reader.GetDetail(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, "fast bike", d.Title, "a committed update must be visible immediately")
}

func TestDeleteInvalidatesOwnerList(t *testing.T) {
	svc, reader, _, users, _ := newReaderFixture()
	ctx := context.Background()

	owner := seedUser(t, users, "alice")
	keep := seedAd(t, svc, owner.ID, "keep")
	drop := seedAd(t, svc, owner.ID, "drop")

	list, err := reader.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, svc.Delete(ctx, owner.ID, drop.ID))

	list, err = reader.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)
}

func TestListByOwnerUnknownUser(t *testing.T) {
	_, reader, _, _, _ := newReaderFixture()

	_, err := reader.ListByOwner(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBrowseClampsPaging(t *testing.T) {
	svc, reader, _, users, _ := newReaderFixture()
	ctx := context.Background()

	owner := seedUser(t, users, "alice")
	for i := 0; i < 3; i++ {
		seedAd(t, svc, owner.ID, "ad")
	}

	list, err := reader.Browse(ctx, -5, -1)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	list, err = reader.Browse(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = reader.Browse(ctx, 10, 2)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetImageBytes(t *testing.T) {
	svc, reader, _, users, _ := newReaderFixture()
	ctx := context.Background()

	owner := seedUser(t, users, "alice")
	ad, err := svc.Create(ctx, owner.ID, AdInput{Title: "bike", Price: 1}, []byte("pixels"), "image/webp")
	require.NoError(t, err)

	b, mediaType, err := reader.GetImage(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("pixels"), b)
	assert.Equal(t, "image/webp", mediaType)

	bare := seedAd(t, svc, owner.ID, "no image")
	_, _, err = reader.GetImage(ctx, bare.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentReaderCacheCoherence(t *testing.T) {
	ads := newMemAdRepo()
	users := newMemUserRepo()
	comments := newMemCommentRepo()
	cache := newFakeCache()

	svc := NewCommentService(comments, ads, fakeTx{}, cache, nil)
	reader := NewCommentReader(comments, ads, users, cache, nil)
	ctx := context.Background()

	author := seedUser(t, users, "bob")
	ad := &entity.Ad{OwnerID: "owner", Title: "bike", Price: 1}
	require.NoError(t, ads.Create(ctx, ad))

	c, err := svc.Create(ctx, author.ID, ad.ID, "first")
	require.NoError(t, err)

	list, err := reader.ListByAd(ctx, ad.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].AuthorUsername)

	_, err = svc.Create(ctx, author.ID, ad.ID, "second")
	require.NoError(t, err)

	list, err = reader.ListByAd(ctx, ad.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2, "a committed comment must appear on the next read")

	got, err := reader.Get(ctx, ad.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Text)

	_, err = reader.Get(ctx, "other-ad", c.ID)
	assert.ErrorIs(t, err, ErrNotFound, "a comment is only addressable under its own ad")
}

func TestCommentDeleteReflectedInList(t *testing.T) {
	ads := newMemAdRepo()
	users := newMemUserRepo()
	comments := newMemCommentRepo()
	cache := newFakeCache()

	svc := NewCommentService(comments, ads, fakeTx{}, cache, nil)
	reader := NewCommentReader(comments, ads, users, cache, nil)
	ctx := context.Background()

	author := seedUser(t, users, "bob")
	ad := &entity.Ad{OwnerID: "owner", Title: "bike", Price: 1}
	require.NoError(t, ads.Create(ctx, ad))

	first, err := svc.Create(ctx, author.ID, ad.ID, "first")
	require.NoError(t, err)
	second, err := svc.Create(ctx, author.ID, ad.ID, "second")
	require.NoError(t, err)

	list, err := reader.ListByAd(ctx, ad.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, svc.Delete(ctx, author.ID, ad.ID, first.ID))

	list, err = reader.ListByAd(ctx, ad.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)

	_, err = reader.Get(ctx, ad.ID, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdDeleteInvalidatesCommentCaches(t *testing.T) {
	ads := newMemAdRepo()
	users := newMemUserRepo()
	comments := newMemCommentRepo()
	cache := newFakeCache()

	adSvc := NewAdService(ads, fakeTx{}, newFakeMedia(), cache, nil, nil)
	commentSvc := NewCommentService(comments, ads, fakeTx{}, cache, nil)
	reader := NewCommentReader(comments, ads, users, cache, nil)
	ctx := context.Background()

	owner := seedUser(t, users, "alice")
	author := seedUser(t, users, "bob")
	ad := seedAd(t, adSvc, owner.ID, "bike")

	c, err := commentSvc.Create(ctx, author.ID, ad.ID, "still for sale?")
	require.NoError(t, err)

	list, err := reader.ListByAd(ctx, ad.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, adSvc.Delete(ctx, owner.ID, ad.ID))
	// Comment rows cascade with the ad in the database.
	delete(comments.comments, c.ID)

	_, err = reader.ListByAd(ctx, ad.ID)
	assert.ErrorIs(t, err, ErrNotFound, "cached comment lists must not outlive the ad")

	_, err = reader.Get(ctx, ad.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentReaderListMissingAd(t *testing.T) {
	ads := newMemAdRepo()
	reader := NewCommentReader(newMemCommentRepo(), ads, newMemUserRepo(), newFakeCache(), nil)

	_, err := reader.ListByAd(context.Background(), "no-such-ad")
	assert.ErrorIs(t, err, ErrNotFound)
}
