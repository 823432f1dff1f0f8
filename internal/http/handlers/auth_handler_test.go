package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/service"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Login(ctx context.Context, in service.LoginInput, meta service.SessionMeta) (*service.AuthResult, error) {
	args := m.Called(ctx, in, meta)
	if r, ok := args.Get(0).(*service.AuthResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string, meta service.SessionMeta) (*service.AuthResult, error) {
	args := m.Called(ctx, refreshToken, meta)
	if r, ok := args.Get(0).(*service.AuthResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *mockAuthService) Me(ctx context.Context, adminID uuid.UUID) (*models.AdminUser, error) {
	args := m.Called(ctx, adminID)
	if u, ok := args.Get(0).(*models.AdminUser); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func authRouter(svc AuthService, adminID uuid.UUID) *gin.Engine {
	r := newEngine(adminID, models.RoleSuperAdmin)
	h := NewAuthHandler(svc)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/logout", h.Logout)
	r.GET("/auth/me", h.Me)
	return r
}

func TestAuthHandler_Login(t *testing.T) {
	svc := new(mockAuthService)
	user := &models.AdminUser{ID: uuid.New(), Email: "admin@zipzag.com", Role: models.RoleSuperAdmin}
	svc.On("Login", mock.Anything, service.LoginInput{Email: "admin@zipzag.com", Password: "admin123"}, mock.Anything).
		Return(&service.AuthResult{User: user, Tokens: &service.TokenPair{AccessToken: "a", RefreshToken: "r", ExpiresIn: 900}}, nil)

	w, env := doJSON(t, authRouter(svc, uuid.Nil), http.MethodPost, "/auth/login", map[string]string{
		"email":    "admin@zipzag.com",
		"password": "admin123",
	})

	require.Equal(t, http.StatusOK, w.Code)
	result := decode[service.AuthResult](t, env.Data)
	assert.Equal(t, "a", result.Tokens.AccessToken)
	assert.Equal(t, int64(900), result.Tokens.ExpiresIn)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAuthHandler_Login_EmptyFields(t *testing.T) {
	svc := new(mockAuthService)

	w, env := doJSON(t, authRouter(svc, uuid.Nil), http.MethodPost, "/auth/login", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Fields, "email")
	assert.Contains(t, env.Error.Fields, "password")
	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, apperror.ErrInvalidCredentials)

	w, env := doJSON(t, authRouter(svc, uuid.Nil), http.MethodPost, "/auth/login", map[string]string{
		"email":    "admin@zipzag.com",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestAuthHandler_Refresh_RequiresToken(t *testing.T) {
	svc := new(mockAuthService)

	w, env := doJSON(t, authRouter(svc, uuid.Nil), http.MethodPost, "/auth/refresh", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Fields, "refreshToken")
}

func TestAuthHandler_Logout(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("Logout", mock.Anything, "refresh").Return(nil)

	w, _ := doJSON(t, authRouter(svc, uuid.Nil), http.MethodPost, "/auth/logout", map[string]string{"refreshToken": "refresh"})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestAuthHandler_Me(t *testing.T) {
	svc := new(mockAuthService)
	adminID := uuid.New()
	svc.On("Me", mock.Anything, adminID).Return(&models.AdminUser{ID: adminID, FullName: "Super Admin"}, nil)

	w, env := doJSON(t, authRouter(svc, adminID), http.MethodGet, "/auth/me", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Super Admin", decode[models.AdminUser](t, env.Data).FullName)
}

func TestAuthHandler_Me_WithoutAuth(t *testing.T) {
	svc := new(mockAuthService)

	w, _ := doJSON(t, authRouter(svc, uuid.Nil), http.MethodGet, "/auth/me", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
