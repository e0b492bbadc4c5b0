package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/dbx"
	"github.com/instantbranding/brandkit/internal/server/models"
	billingrepo "github.com/instantbranding/brandkit/internal/server/repositories/billing"
	"github.com/instantbranding/brandkit/internal/server/repositories/brands"
	"github.com/instantbranding/brandkit/internal/server/repositories/designs"
	"github.com/instantbranding/brandkit/internal/server/repositories/posts"
	"github.com/instantbranding/brandkit/internal/server/repositories/users"
)

// memStore is an owner-aware in-memory stand-in for the Postgres tables.
type memStore struct {
	mu      sync.Mutex
	clock   time.Time
	users   map[string]*models.User
	brands  map[string]*models.Brand
	designs map[string]*models.Design
	posts   map[string]*models.Post
	events  map[string]*models.BillingEvent
}

func newMemStore() *memStore {
	return &memStore{
		clock:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		users:   map[string]*models.User{},
		brands:  map[string]*models.Brand{},
		designs: map[string]*models.Design{},
		posts:   map[string]*models.Post{},
		events:  map[string]*models.BillingEvent{},
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type memBrands struct{ s *memStore }

func (r memBrands) List(_ context.Context, userID string) ([]*models.Brand, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Brand{}
	for _, b := range r.s.brands {
		if b.UserID == userID {
			c := *b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memBrands) Get(_ context.Context, userID, id string) (*models.Brand, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.brands[id]
	if !ok || b.UserID != userID {
		return nil, common.ErrNotFound
	}
	c := *b
	return &c, nil
}

func (r memBrands) Exists(ctx context.Context, userID, id string) (bool, error) {
	_, err := r.Get(ctx, userID, id)
	return err == nil, nil
}

func (r memBrands) Create(_ context.Context, b *models.Brand) (*models.Brand, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *b
	c.ID = uuid.NewString()
	c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	r.s.brands[c.ID] = &c
	out := c
	return &out, nil
}

func (r memBrands) Update(_ context.Context, b *models.Brand) (*models.Brand, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.brands[b.ID]
	if !ok || cur.UserID != b.UserID {
		return nil, common.ErrNotFound
	}
	if b.Name != "" {
		cur.Name = b.Name
	}
	if len(b.Config) > 0 {
		cur.Config = b.Config
	}
	cur.UpdatedAt = r.s.tick()
	out := *cur
	return &out, nil
}

func (r memBrands) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.brands[id]
	if !ok || b.UserID != userID {
		return common.ErrNotFound
	}
	delete(r.s.brands, id)
	return nil
}

type memDesigns struct{ s *memStore }

func (r memDesigns) List(_ context.Context, userID, brandID string) ([]*models.Design, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Design{}
	for _, d := range r.s.designs {
		if d.UserID == userID && (brandID == "" || d.BrandID == brandID) {
			c := *d
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memDesigns) Get(_ context.Context, userID, id string) (*models.Design, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.designs[id]
	if !ok || d.UserID != userID {
		return nil, common.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (r memDesigns) Create(_ context.Context, d *models.Design) (*models.Design, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *d
	c.ID = uuid.NewString()
	c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	r.s.designs[c.ID] = &c
	out := c
	return &out, nil
}

func (r memDesigns) Update(_ context.Context, d *models.DesignPatch) (*models.Design, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.designs[d.ID]
	if !ok || cur.UserID != d.UserID {
		return nil, common.ErrNotFound
	}
	if d.BrandID != "" {
		cur.BrandID = d.BrandID
	}
	if d.AssetType != "" {
		cur.AssetType = d.AssetType
	}
	if d.StyleID != nil {
		cur.StyleID = *d.StyleID
	}
	if d.TemplateID != nil {
		cur.TemplateID = *d.TemplateID
	}
	if len(d.Data) > 0 {
		cur.Data = d.Data
	}
	out := *cur
	return &out, nil
}

func (r memDesigns) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.designs[id]
	if !ok || d.UserID != userID {
		return common.ErrNotFound
	}
	delete(r.s.designs, id)
	return nil
}

type memPosts struct{ s *memStore }

func (r memPosts) List(_ context.Context, userID, brandID string) ([]*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Post{}
	for _, p := range r.s.posts {
		if p.UserID == userID && (brandID == "" || p.BrandID == brandID) {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memPosts) Get(_ context.Context, userID, id string) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok || p.UserID != userID {
		return nil, common.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r memPosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *p
	c.ID = uuid.NewString()
	c.CreatedAt = r.s.tick()
	r.s.posts[c.ID] = &c
	out := c
	return &out, nil
}

type memUsers struct{ s *memStore }

func (r memUsers) Ensure(_ context.Context, id, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		u = &models.User{ID: id, Plan: models.PlanFree, OnboardingStatus: models.OnboardingPending, CreatedAt: r.s.tick()}
		r.s.users[id] = u
	}
	if email != "" {
		u.Email = email
	}
	c := *u
	return &c, nil
}

func (r memUsers) Get(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r memUsers) CompleteOnboarding(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	u.OnboardingStatus = models.OnboardingComplete
	c := *u
	return &c, nil
}

func (r memUsers) UpdatePlan(_ context.Context, id, plan, subscriptionID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Plan, u.SubscriptionID, u.SubscriptionStatus = plan, subscriptionID, status
	return nil
}

type memEvents struct{ s *memStore }

func (r memEvents) Record(_ context.Context, ev *models.BillingEvent) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[ev.EventID]; ok {
		return false, nil
	}
	c := *ev
	r.s.events[ev.EventID] = &c
	return true, nil
}

type memRepoManager struct{ s *memStore }

func (m memRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (m memRepoManager) Users(dbx.DBTX) users.Repository               { return memUsers{m.s} }
func (m memRepoManager) Brands(dbx.DBTX) brands.Repository             { return memBrands{m.s} }
func (m memRepoManager) Designs(dbx.DBTX) designs.Repository           { return memDesigns{m.s} }
func (m memRepoManager) Posts(dbx.DBTX) posts.Repository               { return memPosts{m.s} }
func (m memRepoManager) BillingEvents(dbx.DBTX) billingrepo.Repository { return memEvents{m.s} }

// newTxMock returns a sqlmock-backed *sql.DB. Tests declare the expected
// Begin/Commit/Rollback sequence on the mock.
func newTxMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

const (
	alice = "11111111-1111-4111-8111-111111111111"
	bob   = "22222222-2222-4222-8222-222222222222"
)
