package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// DB то, что health check читает из пула соединений. Реализуется *sqlx.DB.
type DB interface {
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
}

// HealthHandler предоставляет endpoint для проверки здоровья сервиса.
type HealthHandler struct {
	db        DB
	cachePing func(ctx context.Context) error
}

// NewHealthHandler создаёт health handler. cachePing может быть nil, если Redis не настроен.
func NewHealthHandler(db DB, cachePing func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{db: db, cachePing: cachePing}
}

// HealthResponse представляет ответ health check.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Pool      PoolStats         `json:"pool"`
}

type PoolStats struct {
	Open    int `json:"open"`
	InUse   int `json:"inUse"`
	Idle    int `json:"idle"`
	MaxOpen int `json:"maxOpen"`
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "unhealthy"
		status = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	stats := h.db.Stats()
	if stats.MaxOpenConnections > 0 && stats.InUse >= stats.MaxOpenConnections {
		checks["connection_pool"] = "warning: pool exhausted"
	} else {
		checks["connection_pool"] = "healthy"
	}

	// кэш не обязателен, его отказ не делает сервис нездоровым
	if h.cachePing != nil {
		if err := h.cachePing(ctx); err != nil {
			checks["cache"] = "degraded"
		} else {
			checks["cache"] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
		Pool: PoolStats{
			Open:    stats.OpenConnections,
			InUse:   stats.InUse,
			Idle:    stats.Idle,
			MaxOpen: stats.MaxOpenConnections,
		},
	})
}
