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

// AdminUserService управление учётными записями администраторов.
type AdminUserService interface {
	List(ctx context.Context) ([]models.AdminUser, error)
	Get(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
	Create(ctx context.Context, in service.AdminUserInput) (*models.AdminUser, error)
	Update(ctx context.Context, actorID, id uuid.UUID, patch service.AdminUserPatch) (*models.AdminUser, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
}

// AdminUserHandler обслуживает /admin-users. Доступен только super-admin.
type AdminUserHandler struct {
	users AdminUserService
}

func NewAdminUserHandler(users AdminUserService) *AdminUserHandler {
	return &AdminUserHandler{users: users}
}

// List обрабатывает GET /admin-users.
func (h *AdminUserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}

// Get обрабатывает GET /admin-users/:id.
func (h *AdminUserHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// Create обрабатывает POST /admin-users.
func (h *AdminUserHandler) Create(c *gin.Context) {
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
		Role     string `json:"role"`
		Active   *bool  `json:"active"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), service.AdminUserInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
		Active:   req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Update обрабатывает PUT /admin-users/:id. Пустой пароль не меняет текущий.
func (h *AdminUserHandler) Update(c *gin.Context) {
	actorID, err := common.CurrentAdminID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req struct {
		FullName *string `json:"fullName"`
		Email    *string `json:"email"`
		Phone    *string `json:"phone"`
		Password *string `json:"password"`
		Role     *string `json:"role"`
		Active   *bool   `json:"active"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if req.Password != nil && *req.Password == "" {
		req.Password = nil
	}

	user, err := h.users.Update(c.Request.Context(), actorID, id, service.AdminUserPatch{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
		Active:   req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// Delete обрабатывает DELETE /admin-users/:id.
func (h *AdminUserHandler) Delete(c *gin.Context) {
	actorID, err := common.CurrentAdminID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.users.Delete(c.Request.Context(), actorID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Администратор удалён")
}
