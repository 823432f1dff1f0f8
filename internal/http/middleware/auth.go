package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/zipzag-catalog/internal/http/response"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextAdminIDKey = "adminID"
	ContextRoleKey    = "role"
)

// AccessTokenParser проверяет access токен. Реализуется service.TokenManager.
type AccessTokenParser interface {
	ParseAccess(token string) (uuid.UUID, string, error)
}

// AuthMiddleware проверяет JWT access токен и кладёт администратора в контекст запроса,
// чтобы сервисы знали автора изменений.
func AuthMiddleware(tokens AccessTokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			response.Abort(c, apperror.ErrUnauthorized)
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		adminID, role, err := tokens.ParseAccess(raw)
		if err != nil || adminID == uuid.Nil {
			response.Abort(c, apperror.ErrInvalidToken)
			return
		}

		c.Set(ContextAdminIDKey, adminID)
		c.Set(ContextRoleKey, role)
		c.Request = c.Request.WithContext(service.WithActor(c.Request.Context(), adminID))
		c.Next()
	}
}

// RequireRole пропускает только администраторов с одной из перечисленных ролей.
// Должен стоять после AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRoleKey)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Abort(c, apperror.ErrForbidden)
	}
}
