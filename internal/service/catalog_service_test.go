package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/repository"
)

type fakeCatalogRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]models.Catalog
	customers map[uuid.UUID]models.Customer
}

func newFakeCatalogRepo(customers ...models.Customer) *fakeCatalogRepo {
	r := &fakeCatalogRepo{
		items:     make(map[uuid.UUID]models.Catalog),
		customers: make(map[uuid.UUID]models.Customer),
	}
	for _, c := range customers {
		r.customers[c.ID] = c
	}
	return r
}

func (r *fakeCatalogRepo) fill(c models.Catalog) models.Catalog {
	cu := r.customers[c.CustomerID]
	c.CustomerName = cu.Name
	c.CustomerEmail = cu.Email
	c.ProductCount = len(c.ProductIDs)
	c.ProductIDs = append([]uuid.UUID(nil), c.ProductIDs...)
	return c
}

func (r *fakeCatalogRepo) Create(_ context.Context, c *models.Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[c.CustomerID]; !ok {
		return repository.ErrCatalogCustomer
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.items[c.ID] = *c
	return nil
}

func (r *fakeCatalogRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, repository.ErrCatalogNotFound
	}
	c = r.fill(c)
	return &c, nil
}

func (r *fakeCatalogRepo) List(_ context.Context, f models.CatalogFilter) ([]models.Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Catalog
	for _, c := range r.items {
		if f.CustomerID != nil && c.CustomerID != *f.CustomerID {
			continue
		}
		out = append(out, r.fill(c))
	}
	return out, nil
}

func (r *fakeCatalogRepo) Count(ctx context.Context, f models.CatalogFilter) (int, error) {
	items, _ := r.List(ctx, f)
	return len(items), nil
}

func (r *fakeCatalogRepo) Update(_ context.Context, c *models.Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.items[c.ID]
	if !ok {
		return repository.ErrCatalogNotFound
	}
	if _, ok := r.customers[c.CustomerID]; !ok {
		return repository.ErrCatalogCustomer
	}
	c.ProductIDs = old.ProductIDs
	c.Views = old.Views
	r.items[c.ID] = *c
	return nil
}

func (r *fakeCatalogRepo) ReplaceProducts(_ context.Context, catalogID uuid.UUID, productIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[catalogID]
	if !ok {
		return repository.ErrCatalogNotFound
	}
	c.ProductIDs = productIDs
	r.items[catalogID] = c
	return nil
}

func (r *fakeCatalogRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrCatalogNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeCatalogRepo) IncrementViews(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return repository.ErrCatalogNotFound
	}
	c.Views++
	r.items[id] = c
	return nil
}

type catalogFixture struct {
	svc      *CatalogService
	repo     *fakeCatalogRepo
	products *ProductService
	customer models.Customer
	active   *models.Product
	hidden   *models.Product
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	pf := newProductFixture(t)
	ctx := context.Background()

	active, err := pf.svc.Create(ctx, pf.input())
	require.NoError(t, err)
	hiddenIn := pf.input()
	hiddenIn.Name = "Hidden Ring"
	hiddenIn.Active = ptr(false)
	hidden, err := pf.svc.Create(ctx, hiddenIn)
	require.NoError(t, err)

	customer := models.Customer{ID: uuid.New(), Name: "Анна", Email: "anna@example.com"}
	repo := newFakeCatalogRepo(customer)
	return &catalogFixture{
		svc:      NewCatalogService(repo, pf.svc, pf.act.service),
		repo:     repo,
		products: pf.svc,
		customer: customer,
		active:   active,
		hidden:   hidden,
	}
}

func TestCatalogService_CreateWithProducts(t *testing.T) {
	f := newCatalogFixture(t)

	c, err := f.svc.Create(context.Background(), CatalogInput{
		Name:       "Свадебная подборка",
		CustomerID: f.customer.ID,
		ProductIDs: []uuid.UUID{f.active.ID, f.hidden.ID, f.active.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{f.active.ID, f.hidden.ID}, c.ProductIDs)
	assert.Equal(t, 2, c.ProductCount)
	assert.False(t, c.HasPassword)
	require.NotNil(t, c.Customer)
	assert.Equal(t, "anna@example.com", c.Customer.Email)
}

func TestCatalogService_CreateRejectsUnknownProduct(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.svc.Create(context.Background(), CatalogInput{
		Name:       "Подборка",
		CustomerID: f.customer.ID,
		ProductIDs: []uuid.UUID{f.active.ID, uuid.New()},
	})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "productIds")
}

func TestCatalogService_CreateRequiresPasswordWhenProtected(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.svc.Create(context.Background(), CatalogInput{
		Name:        "Закрытая подборка",
		CustomerID:  f.customer.ID,
		HasPassword: true,
	})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "password")
}

func TestCatalogService_CreateUnknownCustomer(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.svc.Create(context.Background(), CatalogInput{Name: "Подборка", CustomerID: uuid.New()})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "customerId")
}

func TestCatalogService_AccessWithPassword(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, CatalogInput{
		Name:        "Закрытая подборка",
		CustomerID:  f.customer.ID,
		HasPassword: true,
		Password:    ptr("secret1"),
		ProductIDs:  []uuid.UUID{f.hidden.ID, f.active.ID},
	})
	require.NoError(t, err)
	assert.True(t, c.HasPassword)

	_, err = f.svc.Access(ctx, c.ID, "wrong")
	assert.ErrorIs(t, err, apperror.ErrWrongPassword)

	public, err := f.svc.Access(ctx, c.ID, "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Анна", public.Customer)
	require.Len(t, public.Products, 1, "неактивные товары скрыты")
	assert.Equal(t, f.active.ID, public.Products[0].ID)
	assert.Equal(t, 42500.0, public.Products[0].FinalPrice)

	got, err := f.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)
}

func TestCatalogService_AccessInactiveIsNotFound(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, CatalogInput{Name: "Черновик", CustomerID: f.customer.ID, Active: ptr(false)})
	require.NoError(t, err)

	_, err = f.svc.Access(ctx, c.ID, "")
	assert.True(t, apperror.IsNotFound(err))
}

func TestCatalogService_UpdatePasswordFlag(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, CatalogInput{Name: "Подборка", CustomerID: f.customer.ID})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, c.ID, CatalogPatch{HasPassword: ptr(true)})
	assert.True(t, apperror.IsValidation(err))

	protected, err := f.svc.Update(ctx, c.ID, CatalogPatch{HasPassword: ptr(true), Password: ptr("secret1")})
	require.NoError(t, err)
	assert.True(t, protected.HasPassword)

	renamed, err := f.svc.Update(ctx, c.ID, CatalogPatch{Name: ptr("Новая подборка")})
	require.NoError(t, err)
	assert.True(t, renamed.HasPassword, "пароль сохраняется, если флаг не передан")

	open, err := f.svc.Update(ctx, c.ID, CatalogPatch{HasPassword: ptr(false)})
	require.NoError(t, err)
	assert.False(t, open.HasPassword)

	_, err = f.svc.Access(ctx, c.ID, "")
	require.NoError(t, err)
}

func TestCatalogService_ReplaceProducts(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, CatalogInput{Name: "Подборка", CustomerID: f.customer.ID, ProductIDs: []uuid.UUID{f.active.ID}})
	require.NoError(t, err)

	updated, err := f.svc.ReplaceProducts(ctx, c.ID, []uuid.UUID{f.hidden.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.hidden.ID}, updated.ProductIDs)

	_, err = f.svc.ReplaceProducts(ctx, c.ID, []uuid.UUID{uuid.New()})
	assert.True(t, apperror.IsValidation(err))

	cleared, err := f.svc.ReplaceProducts(ctx, c.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, cleared.ProductIDs)
	assert.NotNil(t, cleared.ProductIDs)
}
