package service

import (
	"context"
	"time"

	"github.com/ignatzorin/zipzag-catalog/internal/models"
)

type StatsRepository interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

// DashboardService отдаёт счётчики главной страницы через кэш.
type DashboardService struct {
	repo     StatsRepository
	cache    Cache
	cacheTTL time.Duration
	activity *ActivityService
}

func NewDashboardService(repo StatsRepository, cache Cache, cacheTTL time.Duration, activity *ActivityService) *DashboardService {
	return &DashboardService{repo: repo, cache: cache, cacheTTL: cacheTTL, activity: activity}
}

// Stats возвращает счётчики. Кэш сбрасывается при любой записи через ActivityService.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	stats, err := GetOrSet(ctx, s.cache, DashboardStatsCacheKey(), s.cacheTTL, func() (*models.DashboardStats, error) {
		return s.repo.Stats(ctx)
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return stats, nil
}

// Activity возвращает последние записи ленты.
func (s *DashboardService) Activity(ctx context.Context, limit int) ([]models.Activity, error) {
	return s.activity.Recent(ctx, limit)
}
