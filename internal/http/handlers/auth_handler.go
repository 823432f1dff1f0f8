package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/zipzag-catalog/internal/http/handlers/common"
	"github.com/ignatzorin/zipzag-catalog/internal/http/response"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/service"
	"github.com/ignatzorin/zipzag-catalog/internal/validation"
)

// AuthService то, что нужно хэндлеру от сервиса авторизации.
type AuthService interface {
	Login(ctx context.Context, in service.LoginInput, meta service.SessionMeta) (*service.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string, meta service.SessionMeta) (*service.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, adminID uuid.UUID) (*models.AdminUser, error)
}

// AuthHandler предоставляет HTTP слой для входа в админку.
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func sessionMeta(c *gin.Context) service.SessionMeta {
	return service.SessionMeta{
		UserAgent: c.GetHeader("User-Agent"),
		IP:        c.ClientIP(),
	}
}

// Login обрабатывает POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	errs := validation.Errors{}
	errs.Check("email", validation.ValidateNonEmpty("email", req.Email))
	errs.Check("password", validation.ValidateNonEmpty("пароль", req.Password))
	if err := errs.Err(); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, sessionMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Refresh обрабатывает POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := validation.ValidateNonEmpty("refreshToken", req.RefreshToken); err != nil {
		response.Error(c, fieldError("refreshToken", err))
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, sessionMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Logout обрабатывает POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := validation.ValidateNonEmpty("refreshToken", req.RefreshToken); err != nil {
		response.Error(c, fieldError("refreshToken", err))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		response.Error(c, err)
		return
	}

	response.Deleted(c, "Выход выполнен")
}

// Me обрабатывает GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	adminID, err := common.CurrentAdminID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.auth.Me(c.Request.Context(), adminID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}
