package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/zipzag-catalog/internal/logger"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Silence()
}

type staticParser struct {
	id   uuid.UUID
	role string
	err  error
}

func (p staticParser) ParseAccess(string) (uuid.UUID, string, error) {
	return p.id, p.role, p.err
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := gin.New()
	r.GET("/x", AuthMiddleware(staticParser{}), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"UNAUTHORIZED"`)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	r := gin.New()
	r.GET("/x", AuthMiddleware(staticParser{err: errors.New("bad")}), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/x", bearer("junk"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_PutsActorIntoRequestContext(t *testing.T) {
	adminID := uuid.New()
	r := gin.New()

	var actor *uuid.UUID
	r.GET("/x", AuthMiddleware(staticParser{id: adminID, role: models.RoleSubAdmin}), func(c *gin.Context) {
		actor = service.ActorFrom(c.Request.Context())
		assert.Equal(t, models.RoleSubAdmin, c.GetString(ContextRoleKey))
		c.Status(http.StatusOK)
	})

	w := serve(r, http.MethodGet, "/x", bearer("ok"))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, actor)
	assert.Equal(t, adminID, *actor)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		role string
		want int
	}{
		{models.RoleSuperAdmin, http.StatusOK},
		{models.RoleSubAdmin, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			r := gin.New()
			r.GET("/x",
				AuthMiddleware(staticParser{id: uuid.New(), role: tt.role}),
				RequireRole(models.RoleSuperAdmin),
				func(c *gin.Context) { c.Status(http.StatusOK) },
			)
			assert.Equal(t, tt.want, serve(r, http.MethodGet, "/x", bearer("ok")).Code)
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/x", http.Header{"Origin": {"http://localhost:5173"}})
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodGet, "/x", http.Header{"Origin": {"http://evil.example"}})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodOptions, "/x", http.Header{"Origin": {"http://localhost:5173"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimitMiddleware_BlocksAfterLimit(t *testing.T) {
	store, err := NewRateLimitStore(nil)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/x", RateLimitMiddleware(store, "test", 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", nil).Code)
	w := serve(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = serve(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"RATE_LIMITED"`)
}

func TestUUIDValidator(t *testing.T) {
	r := gin.New()
	r.GET("/products/:id", UUIDValidator("id"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/products/"+uuid.NewString(), nil).Code)

	w := serve(r, http.MethodGet, "/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"fields":{"id"`)
}

func TestErrorHandler_RecoversPanic(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.GET("/err", func(c *gin.Context) { _ = c.Error(errors.New("sql: no rows")) })

	w := serve(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"INTERNAL_ERROR"`)

	w = serve(r, http.MethodGet, "/err", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "sql")
}
