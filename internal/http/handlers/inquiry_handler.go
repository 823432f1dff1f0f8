package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/zipzag-catalog/internal/http/handlers/common"
	"github.com/ignatzorin/zipzag-catalog/internal/http/response"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/service"
)

type InquiryService interface {
	Create(ctx context.Context, in service.InquiryInput) (*models.Inquiry, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Inquiry, error)
	List(ctx context.Context, f models.InquiryFilter) ([]models.Inquiry, int, error)
	Update(ctx context.Context, id uuid.UUID, patch service.InquiryPatch) (*models.Inquiry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type InquiryHandler struct {
	inquiries InquiryService
}

func NewInquiryHandler(inquiries InquiryService) *InquiryHandler {
	return &InquiryHandler{inquiries: inquiries}
}

// List обрабатывает GET /inquiries?status=&priority=&customerId=&limit=&offset=.
func (h *InquiryHandler) List(c *gin.Context) {
	customerID, err := common.ParseUUIDQuery(c, "customerId")
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, offset := common.GetPagination(c)

	items, total, err := h.inquiries.List(c.Request.Context(), models.InquiryFilter{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		CustomerID: customerID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, total, limit, offset)
}

func (h *InquiryHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	inquiry, err := h.inquiries.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, inquiry)
}

func (h *InquiryHandler) Create(c *gin.Context) {
	var req struct {
		CustomerID  common.NullableUUID `json:"customerId"`
		CatalogID   common.NullableUUID `json:"catalogId"`
		ProductName *string             `json:"productName"`
		Message     string              `json:"message"`
		Priority    string              `json:"priority"`
		Status      string              `json:"status"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := req.CustomerID.Validate("customerId"); err != nil {
		response.Error(c, err)
		return
	}
	if err := req.CatalogID.Validate("catalogId"); err != nil {
		response.Error(c, err)
		return
	}

	in := service.InquiryInput{
		CatalogID:   req.CatalogID.OrNil(),
		ProductName: req.ProductName,
		Message:     req.Message,
		Priority:    req.Priority,
		Status:      req.Status,
	}
	if req.CustomerID.Value != nil {
		in.CustomerID = *req.CustomerID.Value
	}

	inquiry, err := h.inquiries.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, inquiry)
}

// Update обрабатывает PUT /inquiries/:id. Статус меняется на любое допустимое значение.
func (h *InquiryHandler) Update(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req struct {
		CatalogID   common.NullableUUID `json:"catalogId"`
		ProductName *string             `json:"productName"`
		Message     *string             `json:"message"`
		Priority    *string             `json:"priority"`
		Status      *string             `json:"status"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := req.CatalogID.Validate("catalogId"); err != nil {
		response.Error(c, err)
		return
	}

	inquiry, err := h.inquiries.Update(c.Request.Context(), id, service.InquiryPatch{
		CatalogSet:  req.CatalogID.Set,
		CatalogID:   req.CatalogID.Value,
		ProductName: req.ProductName,
		Message:     req.Message,
		Priority:    req.Priority,
		Status:      req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, inquiry)
}

// UpdateStatus обрабатывает PATCH /inquiries/:id/status для быстрых кнопок в списке.
func (h *InquiryHandler) UpdateStatus(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if req.Status == "" {
		response.Error(c, apperror.Validation("status", "статус обязателен"))
		return
	}

	inquiry, err := h.inquiries.Update(c.Request.Context(), id, service.InquiryPatch{Status: &req.Status})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, inquiry)
}

func (h *InquiryHandler) Delete(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.inquiries.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Запрос удалён")
}
