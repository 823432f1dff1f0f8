package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/zipzag-catalog/internal/http/response"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
)

// UUIDValidator проверяет, что параметры пути являются валидными UUID.
// Использование: router.GET("/products/:id", UUIDValidator("id"), handler.Get)
func UUIDValidator(paramNames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range paramNames {
			raw := c.Param(name)
			if raw == "" {
				response.Abort(c, apperror.Validation(name, "параметр "+name+" обязателен"))
				return
			}
			if _, err := uuid.Parse(raw); err != nil {
				response.Abort(c, apperror.Validation(name, "параметр "+name+" должен быть валидным UUID"))
				return
			}
		}
		c.Next()
	}
}
