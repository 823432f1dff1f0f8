package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/service"
)

type mockCatalogService struct {
	mock.Mock
}

func (m *mockCatalogService) result(args mock.Arguments) (*models.Catalog, error) {
	if c, ok := args.Get(0).(*models.Catalog); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalogService) Create(ctx context.Context, in service.CatalogInput) (*models.Catalog, error) {
	return m.result(m.Called(ctx, in))
}

func (m *mockCatalogService) Get(ctx context.Context, id uuid.UUID) (*models.Catalog, error) {
	return m.result(m.Called(ctx, id))
}

func (m *mockCatalogService) List(ctx context.Context, f models.CatalogFilter) ([]models.Catalog, int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.Catalog), args.Int(1), args.Error(2)
}

func (m *mockCatalogService) Update(ctx context.Context, id uuid.UUID, patch service.CatalogPatch) (*models.Catalog, error) {
	return m.result(m.Called(ctx, id, patch))
}

func (m *mockCatalogService) ReplaceProducts(ctx context.Context, id uuid.UUID, productIDs []uuid.UUID) (*models.Catalog, error) {
	return m.result(m.Called(ctx, id, productIDs))
}

func (m *mockCatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalogService) Access(ctx context.Context, id uuid.UUID, password string) (*models.PublicCatalog, error) {
	args := m.Called(ctx, id, password)
	if c, ok := args.Get(0).(*models.PublicCatalog); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func catalogRouter(svc CatalogService) http.Handler {
	r := newEngine(uuid.New(), models.RoleSubAdmin)
	h := NewCatalogHandler(svc)
	r.POST("/catalogs", h.Create)
	r.PUT("/catalogs/:id", h.Update)
	r.PUT("/catalogs/:id/products", h.ReplaceProducts)
	r.POST("/public/catalogs/:id/access", h.Access)
	return r
}

func TestCatalogHandler_Create(t *testing.T) {
	svc := new(mockCatalogService)
	customerID, productID := uuid.New(), uuid.New()

	svc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CatalogInput) bool {
		return in.CustomerID == customerID && in.HasPassword && in.Password != nil &&
			len(in.ProductIDs) == 1 && in.ProductIDs[0] == productID
	})).Return(&models.Catalog{ID: uuid.New(), HasPassword: true}, nil)

	w, env := doJSON(t, catalogRouter(svc), http.MethodPost, "/catalogs", map[string]any{
		"name":        "Wedding collection",
		"customerId":  customerID.String(),
		"hasPassword": true,
		"password":    "secret1",
		"productIds":  []string{productID.String()},
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode[models.Catalog](t, env.Data).HasPassword)
	svc.AssertExpectations(t)
}

func TestCatalogHandler_Create_BadProductID(t *testing.T) {
	svc := new(mockCatalogService)

	w, env := doJSON(t, catalogRouter(svc), http.MethodPost, "/catalogs", map[string]any{
		"name":       "Wedding collection",
		"customerId": uuid.NewString(),
		"productIds": []string{"nope"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Fields, "productIds")
}

func TestCatalogHandler_Update_WithProductsReplacesSet(t *testing.T) {
	svc := new(mockCatalogService)
	id, productID := uuid.New(), uuid.New()

	svc.On("Update", mock.Anything, id, mock.MatchedBy(func(p service.CatalogPatch) bool {
		return p.Name != nil && *p.Name == "Renamed" && p.Password == nil
	})).Return(&models.Catalog{ID: id}, nil)
	svc.On("ReplaceProducts", mock.Anything, id, []uuid.UUID{productID}).
		Return(&models.Catalog{ID: id, ProductIDs: []uuid.UUID{productID}}, nil)

	w, env := doJSON(t, catalogRouter(svc), http.MethodPut, "/catalogs/"+id.String(), map[string]any{
		"name":       "Renamed",
		"password":   "",
		"productIds": []string{productID.String()},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{productID}, decode[models.Catalog](t, env.Data).ProductIDs)
	svc.AssertExpectations(t)
}

func TestCatalogHandler_ReplaceProducts_RequiresList(t *testing.T) {
	svc := new(mockCatalogService)

	w, env := doJSON(t, catalogRouter(svc), http.MethodPut, "/catalogs/"+uuid.NewString()+"/products", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Fields, "productIds")
}

func TestCatalogHandler_ReplaceProducts_EmptyListClears(t *testing.T) {
	svc := new(mockCatalogService)
	id := uuid.New()
	svc.On("ReplaceProducts", mock.Anything, id, []uuid.UUID{}).Return(&models.Catalog{ID: id}, nil)

	w, _ := doJSON(t, catalogRouter(svc), http.MethodPut, "/catalogs/"+id.String()+"/products", `{"productIds":[]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestCatalogHandler_Access_WithoutBody(t *testing.T) {
	svc := new(mockCatalogService)
	id := uuid.New()
	svc.On("Access", mock.Anything, id, "").Return(&models.PublicCatalog{ID: id, Name: "Open"}, nil)

	w, env := doJSON(t, catalogRouter(svc), http.MethodPost, "/public/catalogs/"+id.String()+"/access", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Open", decode[models.PublicCatalog](t, env.Data).Name)
}

func TestCatalogHandler_Access_WrongPassword(t *testing.T) {
	svc := new(mockCatalogService)
	id := uuid.New()
	svc.On("Access", mock.Anything, id, "guess").Return(nil, apperror.ErrWrongPassword)

	w, env := doJSON(t, catalogRouter(svc), http.MethodPost, "/public/catalogs/"+id.String()+"/access",
		map[string]string{"password": "guess"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}
