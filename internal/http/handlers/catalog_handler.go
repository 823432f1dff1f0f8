package handlers

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/zipzag-catalog/internal/http/handlers/common"
	"github.com/ignatzorin/zipzag-catalog/internal/http/response"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/service"
)

type CatalogService interface {
	Create(ctx context.Context, in service.CatalogInput) (*models.Catalog, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Catalog, error)
	List(ctx context.Context, f models.CatalogFilter) ([]models.Catalog, int, error)
	Update(ctx context.Context, id uuid.UUID, patch service.CatalogPatch) (*models.Catalog, error)
	ReplaceProducts(ctx context.Context, id uuid.UUID, productIDs []uuid.UUID) (*models.Catalog, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Access(ctx context.Context, id uuid.UUID, password string) (*models.PublicCatalog, error)
}

// CatalogHandler обслуживает каталоги клиентов и публичный доступ к ним.
type CatalogHandler struct {
	catalogs CatalogService
}

func NewCatalogHandler(catalogs CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogs: catalogs}
}

// List обрабатывает GET /catalogs?customerId=&active=&q=&limit=&offset=.
func (h *CatalogHandler) List(c *gin.Context) {
	customerID, err := common.ParseUUIDQuery(c, "customerId")
	if err != nil {
		response.Error(c, err)
		return
	}
	active, err := common.ParseBoolQuery(c, "active")
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, offset := common.GetPagination(c)

	items, total, err := h.catalogs.List(c.Request.Context(), models.CatalogFilter{
		CustomerID: customerID,
		Active:     active,
		Query:      c.Query("q"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, total, limit, offset)
}

func (h *CatalogHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	catalog, err := h.catalogs.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, catalog)
}

// Create обрабатывает POST /catalogs.
func (h *CatalogHandler) Create(c *gin.Context) {
	var req struct {
		Name        string              `json:"name"`
		CustomerID  common.NullableUUID `json:"customerId"`
		HasPassword bool                `json:"hasPassword"`
		Password    *string             `json:"password"`
		Active      *bool               `json:"active"`
		ProductIDs  []string            `json:"productIds"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := req.CustomerID.Validate("customerId"); err != nil {
		response.Error(c, err)
		return
	}
	productIDs, err := common.ParseUUIDList("productIds", req.ProductIDs)
	if err != nil {
		response.Error(c, err)
		return
	}

	in := service.CatalogInput{
		Name:        req.Name,
		HasPassword: req.HasPassword,
		Password:    req.Password,
		Active:      req.Active,
		ProductIDs:  productIDs,
	}
	if req.CustomerID.Value != nil {
		in.CustomerID = *req.CustomerID.Value
	}

	catalog, err := h.catalogs.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, catalog)
}

// Update обрабатывает PUT /catalogs/:id. Состав товаров меняется отдельным запросом,
// но для удобства формы productIds здесь тоже принимаются.
func (h *CatalogHandler) Update(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req struct {
		Name        *string             `json:"name"`
		CustomerID  common.NullableUUID `json:"customerId"`
		HasPassword *bool               `json:"hasPassword"`
		Password    *string             `json:"password"`
		Active      *bool               `json:"active"`
		ProductIDs  []string            `json:"productIds"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := req.CustomerID.Validate("customerId"); err != nil {
		response.Error(c, err)
		return
	}
	if req.CustomerID.Set && req.CustomerID.Value == nil {
		response.Error(c, apperror.Validation("customerId", "клиент обязателен"))
		return
	}
	if req.Password != nil && *req.Password == "" {
		req.Password = nil
	}

	var productIDs []uuid.UUID
	if req.ProductIDs != nil {
		if productIDs, err = common.ParseUUIDList("productIds", req.ProductIDs); err != nil {
			response.Error(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	catalog, err := h.catalogs.Update(ctx, id, service.CatalogPatch{
		Name:        req.Name,
		CustomerID:  req.CustomerID.Value,
		HasPassword: req.HasPassword,
		Password:    req.Password,
		Active:      req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if req.ProductIDs != nil {
		if catalog, err = h.catalogs.ReplaceProducts(ctx, id, productIDs); err != nil {
			response.Error(c, err)
			return
		}
	}
	response.Success(c, catalog)
}

// ReplaceProducts обрабатывает PUT /catalogs/:id/products.
func (h *CatalogHandler) ReplaceProducts(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req struct {
		ProductIDs []string `json:"productIds"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if req.ProductIDs == nil {
		response.Error(c, apperror.Validation("productIds", "список товаров обязателен"))
		return
	}
	productIDs, err := common.ParseUUIDList("productIds", req.ProductIDs)
	if err != nil {
		response.Error(c, err)
		return
	}

	catalog, err := h.catalogs.ReplaceProducts(c.Request.Context(), id, productIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, catalog)
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.catalogs.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Каталог удалён")
}

// Access обрабатывает POST /public/catalogs/:id/access. Авторизация администратора не нужна,
// тело может отсутствовать для каталогов без пароля.
func (h *CatalogHandler) Access(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, apperror.Wrap(err, apperror.ErrCodeBadRequest, "некорректное тело запроса"))
		return
	}

	catalog, err := h.catalogs.Access(c.Request.Context(), id, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, catalog)
}
