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

// CategoryService операции над деревом категорий.
type CategoryService interface {
	Create(ctx context.Context, in service.CategoryInput) (*models.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Tree(ctx context.Context) ([]*models.CategoryNode, error)
	Update(ctx context.Context, id uuid.UUID, patch service.CategoryPatch) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CategoryHandler struct {
	categories CategoryService
}

func NewCategoryHandler(categories CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List обрабатывает GET /categories. Порядок: родитель, затем его поддерево.
func (h *CategoryHandler) List(c *gin.Context) {
	items, err := h.categories.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

// Tree обрабатывает GET /categories/tree.
func (h *CategoryHandler) Tree(c *gin.Context) {
	tree, err := h.categories.Tree(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tree)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	category, err := h.categories.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, category)
}

// Create обрабатывает POST /categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req struct {
		Name        string              `json:"name"`
		Description *string             `json:"description"`
		ParentID    common.NullableUUID `json:"parentId"`
		Active      *bool               `json:"active"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := req.ParentID.Validate("parentId"); err != nil {
		response.Error(c, err)
		return
	}

	category, err := h.categories.Create(c.Request.Context(), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID.OrNil(),
		Active:      req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

// Update обрабатывает PUT /categories/:id. parentId: null делает категорию корневой,
// отсутствие поля оставляет родителя прежним.
func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req struct {
		Name        *string             `json:"name"`
		Description *string             `json:"description"`
		ParentID    common.NullableUUID `json:"parentId"`
		Active      *bool               `json:"active"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := req.ParentID.Validate("parentId"); err != nil {
		response.Error(c, err)
		return
	}

	category, err := h.categories.Update(c.Request.Context(), id, service.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
		ParentSet:   req.ParentID.Set,
		ParentID:    req.ParentID.Value,
		Active:      req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, category)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Категория удалена")
}
