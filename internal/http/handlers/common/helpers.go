package common

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/zipzag-catalog/internal/http/middleware"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/service"
)

// CurrentAdminID достаёт id администратора, которого положил AuthMiddleware.
func CurrentAdminID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextAdminIDKey)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	adminID, ok := raw.(uuid.UUID)
	if !ok || adminID == uuid.Nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return adminID, nil
}

// ParseUUIDParam разбирает UUID из параметра пути.
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(c.Param(paramName))
	if err != nil {
		return uuid.Nil, apperror.Validation(paramName, "неверный формат UUID")
	}
	return parsed, nil
}

// ParseOptionalUUID разбирает UUID из строки. Пустая строка означает nil.
func ParseOptionalUUID(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, apperror.Validation(field, "неверный формат UUID")
	}
	return &id, nil
}

// ParseUUIDList разбирает список UUID, ошибка привязана к полю.
func ParseUUIDList(field string, raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return nil, apperror.Validation(field, "неверный формат UUID: "+s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// BindJSON читает тело запроса. Ошибки привязки превращаются в 400.
func BindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.New(apperror.ErrCodeBadRequest, "пустое тело запроса")
		}
		return apperror.Wrap(err, apperror.ErrCodeBadRequest, "некорректное тело запроса")
	}
	return nil
}

// ParseIntQuery читает целочисленный query параметр с дефолтом.
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// ParseBoolQuery читает необязательный булев фильтр. Отсутствие параметра даёт nil.
func ParseBoolQuery(c *gin.Context, key string) (*bool, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return nil, apperror.Validation(key, "ожидается true или false")
	}
	return &parsed, nil
}

// ParseUUIDQuery читает необязательный UUID фильтр.
func ParseUUIDQuery(c *gin.Context, key string) (*uuid.UUID, error) {
	v := c.Query(key)
	return ParseOptionalUUID(key, &v)
}

// GetPagination читает limit и offset с дефолтами и ограничением сверху.
func GetPagination(c *gin.Context) (limit, offset int) {
	return service.NormalizePage(ParseIntQuery(c, "limit", 0), ParseIntQuery(c, "offset", 0))
}
