package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/zipzag-catalog/internal/http/handlers/common"
	"github.com/ignatzorin/zipzag-catalog/internal/http/response"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/service"
)

type CustomerService interface {
	Create(ctx context.Context, in service.CustomerInput) (*models.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, f models.CustomerFilter) ([]models.Customer, int, error)
	Update(ctx context.Context, id uuid.UUID, patch service.CustomerPatch) (*models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CustomerHandler struct {
	customers CustomerService
}

func NewCustomerHandler(customers CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// List обрабатывает GET /customers?active=&q=&limit=&offset=.
func (h *CustomerHandler) List(c *gin.Context) {
	active, err := common.ParseBoolQuery(c, "active")
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, offset := common.GetPagination(c)

	items, total, err := h.customers.List(c.Request.Context(), models.CustomerFilter{
		Active: active,
		Query:  c.Query("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, total, limit, offset)
}

func (h *CustomerHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	customer, err := h.customers.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, customer)
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req struct {
		Name   string  `json:"name"`
		Email  string  `json:"email"`
		Phone  *string `json:"phone"`
		Region *string `json:"region"`
		Active *bool   `json:"active"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	customer, err := h.customers.Create(c.Request.Context(), service.CustomerInput{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Region: req.Region,
		Active: req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, customer)
}

// Update обрабатывает PUT /customers/:id. Пустые phone и region очищают поля.
func (h *CustomerHandler) Update(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req struct {
		Name   *string `json:"name"`
		Email  *string `json:"email"`
		Phone  *string `json:"phone"`
		Region *string `json:"region"`
		Active *bool   `json:"active"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	customer, err := h.customers.Update(c.Request.Context(), id, service.CustomerPatch{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Region: req.Region,
		Active: req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, customer)
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.customers.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Клиент удалён")
}
