package application

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/adboardhq/adboard/internal/domain/entity"
	repo "github.com/adboardhq/adboard/internal/domain/repository"
	"github.com/adboardhq/adboard/internal/domain/txn"
	"github.com/adboardhq/adboard/internal/infrastructure/media"
)

// fakeTx mimics the postgres manager's hook discipline without a database:
// rollback hooks fire when fn fails, commit hooks when it succeeds, always
// before RunInTransaction returns.
type fakeTx struct{}

func (fakeTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, hooks := txn.WithHooks(ctx)
	defer hooks.ResolveRollback()
	if err := fn(ctx); err != nil {
		return err
	}
	hooks.ResolveCommit()
	return nil
}

// fakeMedia is an in-memory media store.
type fakeMedia struct {
	files map[string][]byte
	seq   int
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{files: map[string][]byte{}}
}

func (m *fakeMedia) Save(data []byte, mediaType string) (string, error) {
	if mediaType != "image/jpeg" && mediaType != "image/png" && mediaType != "image/gif" && mediaType != "image/webp" {
		return "", &media.Error{Reason: "unsupported media type " + mediaType}
	}
	if len(data) == 0 {
		return "", &media.Error{Reason: "empty file"}
	}
	m.seq++
	name := fmt.Sprintf("file-%d", m.seq)
	m.files[name] = append([]byte(nil), data...)
	return name, nil
}

func (m *fakeMedia) Delete(filename string) error {
	if _, ok := m.files[filename]; !ok {
		return media.ErrFileMissing
	}
	delete(m.files, filename)
	return nil
}

func (m *fakeMedia) Exists(filename string) bool {
	_, ok := m.files[filename]
	return ok
}

func (m *fakeMedia) Read(filename string) ([]byte, error) {
	b, ok := m.files[filename]
	if !ok {
		return nil, media.ErrFileMissing
	}
	return b, nil
}

// fakeCache stores marshaled JSON per region and records every Clear so
// tests can assert when invalidation happened.
type fakeCache struct {
	regions map[string]map[string][]byte
	cleared []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{regions: map[string]map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, region, key string, dest any) (bool, error) {
	b, ok := c.regions[region][key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *fakeCache) Put(ctx context.Context, region, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.regions[region] == nil {
		c.regions[region] = map[string][]byte{}
	}
	c.regions[region][key] = b
	return nil
}

func (c *fakeCache) Clear(ctx context.Context, region string) error {
	delete(c.regions, region)
	c.cleared = append(c.cleared, region)
	return nil
}

func (c *fakeCache) ClearAll(ctx context.Context) error {
	c.regions = map[string]map[string][]byte{}
	c.cleared = append(c.cleared, "*")
	return nil
}

func (c *fakeCache) clearCount() int { return len(c.cleared) }

// memAdRepo is an in-memory AdRepository with per-method failure injection.
type memAdRepo struct {
	ads    map[string]*entity.Ad
	images map[string]*entity.Image
	seq    int

	failCreate    error
	failUpdate    error
	failDelete    error
	failSaveImage error

	getCalls int
}

func newMemAdRepo() *memAdRepo {
	return &memAdRepo{ads: map[string]*entity.Ad{}, images: map[string]*entity.Image{}}
}

func (r *memAdRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *memAdRepo) Create(ctx context.Context, ad *entity.Ad) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	ad.ID = r.nextID("ad")
	ad.CreatedAt = time.Now()
	ad.UpdatedAt = ad.CreatedAt
	cp := *ad
	r.ads[ad.ID] = &cp
	return nil
}

func (r *memAdRepo) GetByID(ctx context.Context, id string) (*entity.Ad, error) {
	r.getCalls++
	ad, ok := r.ads[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *ad
	return &cp, nil
}

func (r *memAdRepo) GetOwned(ctx context.Context, ownerID, adID string) (*entity.Ad, error) {
	ad, ok := r.ads[adID]
	if !ok || ad.OwnerID != ownerID {
		return nil, repo.ErrNotFound
	}
	cp := *ad
	return &cp, nil
}

func (r *memAdRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Ad, error) {
	var out []*entity.Ad
	for _, ad := range r.ads {
		if ad.OwnerID == ownerID {
			cp := *ad
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memAdRepo) List(ctx context.Context, limit, offset int) ([]*entity.Ad, error) {
	var out []*entity.Ad
	for _, ad := range r.ads {
		cp := *ad
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memAdRepo) Update(ctx context.Context, ad *entity.Ad) error {
	if r.failUpdate != nil {
		return r.failUpdate
	}
	if _, ok := r.ads[ad.ID]; !ok {
		return repo.ErrNotFound
	}
	ad.UpdatedAt = time.Now()
	cp := *ad
	r.ads[ad.ID] = &cp
	return nil
}

func (r *memAdRepo) Delete(ctx context.Context, id string) error {
	if r.failDelete != nil {
		return r.failDelete
	}
	if _, ok := r.ads[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.ads, id)
	delete(r.images, id)
	return nil
}

func (r *memAdRepo) GetImage(ctx context.Context, adID string) (*entity.Image, error) {
	img, ok := r.images[adID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *img
	return &cp, nil
}

func (r *memAdRepo) SaveImage(ctx context.Context, img *entity.Image) error {
	if r.failSaveImage != nil {
		return r.failSaveImage
	}
	if img.ID == "" {
		img.ID = r.nextID("img")
	}
	img.CreatedAt = time.Now()
	cp := *img
	r.images[img.AdID] = &cp
	return nil
}

func (r *memAdRepo) DeleteImage(ctx context.Context, adID string) error {
	if _, ok := r.images[adID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.images, adID)
	return nil
}

// memUserRepo is an in-memory UserRepository.
type memUserRepo struct {
	users   map[string]*entity.User
	avatars map[string]*entity.Avatar
	seq     int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}, avatars: map[string]*entity.Avatar{}}
}

func (r *memUserRepo) Create(ctx context.Context, u *entity.User) error {
	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return repo.ErrConflict
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memUserRepo) Update(ctx context.Context, u *entity.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetAvatar(ctx context.Context, userID string) (*entity.Avatar, error) {
	a, ok := r.avatars[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memUserRepo) SaveAvatar(ctx context.Context, a *entity.Avatar) error {
	if a.ID == "" {
		r.seq++
		a.ID = fmt.Sprintf("avatar-%d", r.seq)
	}
	cp := *a
	r.avatars[a.UserID] = &cp
	return nil
}

func (r *memUserRepo) DeleteAvatar(ctx context.Context, userID string) error {
	if _, ok := r.avatars[userID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.avatars, userID)
	return nil
}

// memCommentRepo is an in-memory CommentRepository.
type memCommentRepo struct {
	comments map[string]*entity.Comment
	seq      int

	failCreate error
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{comments: map[string]*entity.Comment{}}
}

func (r *memCommentRepo) Create(ctx context.Context, c *entity.Comment) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	r.seq++
	c.ID = fmt.Sprintf("comment-%d", r.seq)
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *memCommentRepo) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCommentRepo) GetAuthored(ctx context.Context, authorID, commentID string) (*entity.Comment, error) {
	c, ok := r.comments[commentID]
	if !ok || c.AuthorID != authorID {
		return nil, repo.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCommentRepo) ListByAd(ctx context.Context, adID string) ([]*entity.Comment, error) {
	var out []*entity.Comment
	for _, c := range r.comments {
		if c.AdID == adID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCommentRepo) Update(ctx context.Context, c *entity.Comment) error {
	if _, ok := r.comments[c.ID]; !ok {
		return repo.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *memCommentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.comments[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

// recordingPublisher captures queued email jobs.
type recordingPublisher struct {
	jobs []any
}

func (p *recordingPublisher) PublishJSON(ctx context.Context, body any) error {
	p.jobs = append(p.jobs, body)
	return nil
}
