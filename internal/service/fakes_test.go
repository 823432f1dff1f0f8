package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/zipzag-catalog/internal/goroutine"
	"github.com/ignatzorin/zipzag-catalog/internal/logger"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/repository"
)

func init() {
	logger.Log.SetLevel(logrus.PanicLevel)
}

// fakeActivityRepo собирает записи ленты в памяти.
type fakeActivityRepo struct {
	mu    sync.Mutex
	items []models.Activity
}

func (r *fakeActivityRepo) Create(_ context.Context, a *models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	r.items = append(r.items, *a)
	return nil
}

func (r *fakeActivityRepo) ListRecent(_ context.Context, limit int) ([]models.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Activity, 0, limit)
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.items[i])
	}
	return out, nil
}

func (r *fakeActivityRepo) snapshot() []models.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Activity(nil), r.items...)
}

type activityFixture struct {
	service *ActivityService
	repo    *fakeActivityRepo
	group   *goroutine.Group
	cache   *MemoryCache
}

func newActivityFixture(t *testing.T) *activityFixture {
	t.Helper()
	repo := &fakeActivityRepo{}
	group := goroutine.NewGroup(logger.Log)
	cache := NewMemoryCache(0)
	t.Cleanup(cache.Close)
	return &activityFixture{
		service: NewActivityService(repo, nil, cache, group),
		repo:    repo,
		group:   group,
		cache:   cache,
	}
}

// recorded дожидается фоновых записей и возвращает ленту.
func (f *activityFixture) recorded(t *testing.T) []models.Activity {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, f.group.Wait(ctx))
	return f.repo.snapshot()
}

// fakeCategoryRepo хранит категории в map и считает подкатегории и товары на лету.
type fakeCategoryRepo struct {
	mu         sync.Mutex
	items      map[uuid.UUID]models.Category
	products   map[uuid.UUID]int
	listCalls  int
	createdSeq time.Time
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{
		items:      make(map[uuid.UUID]models.Category),
		products:   make(map[uuid.UUID]int),
		createdSeq: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakeCategoryRepo) withCounts(c models.Category) models.Category {
	c.SubcategoryCount = 0
	for _, other := range r.items {
		if other.ParentID != nil && *other.ParentID == c.ID {
			c.SubcategoryCount++
		}
	}
	c.ProductCount = r.products[c.ID]
	return c
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ParentID != nil {
		if _, ok := r.items[*c.ParentID]; !ok {
			return repository.ErrCategoryParentMissing
		}
	}
	r.createdSeq = r.createdSeq.Add(time.Second)
	c.ID = uuid.New()
	c.CreatedAt = r.createdSeq
	c.UpdatedAt = r.createdSeq
	r.items[c.ID] = *c
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	c = r.withCounts(c)
	return &c, nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	out := make([]models.Category, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, r.withCounts(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCategoryRepo) Parents(ctx context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Category, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, models.Category{ID: c.ID, ParentID: c.ParentID})
	}
	return out, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	c.UpdatedAt = time.Now()
	r.items[c.ID] = *c
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(r.items, id)
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
