package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/zipzag-catalog/internal/http/handlers/common"
	"github.com/ignatzorin/zipzag-catalog/internal/http/response"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
)

type DashboardService interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
	Activity(ctx context.Context, limit int) ([]models.Activity, error)
}

// DashboardHandler отдаёт счётчики и ленту активности.
type DashboardHandler struct {
	dashboard DashboardService
}

func NewDashboardHandler(dashboard DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats обрабатывает GET /dashboard/stats.
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// Activity обрабатывает GET /dashboard/activity?limit=.
func (h *DashboardHandler) Activity(c *gin.Context) {
	items, err := h.dashboard.Activity(c.Request.Context(), common.ParseIntQuery(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}
