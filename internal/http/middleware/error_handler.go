package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/zipzag-catalog/internal/http/response"
	"github.com/ignatzorin/zipzag-catalog/internal/logger"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Ловит панику в хэндлерах и отвечает ошибкой из c.Errors, если хэндлер сам ничего не записал.
// Внутренние ошибки маскируются в response.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Log.WithFields(logrus.Fields{
					"panic":  r,
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
					"stack":  string(debug.Stack()),
				}).Error("panic в обработчике запроса")

				if !c.Writer.Written() {
					response.Abort(c, fmt.Errorf("panic: %v", r))
				}
			}
		}()

		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		response.Error(c, c.Errors.Last().Err)
	}
}
