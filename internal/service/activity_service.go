package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/zipzag-catalog/internal/goroutine"
	"github.com/ignatzorin/zipzag-catalog/internal/logger"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
)

type ActivityRepository interface {
	Create(ctx context.Context, a *models.Activity) error
	ListRecent(ctx context.Context, limit int) ([]models.Activity, error)
}

// ActivityBroadcaster рассылает запись ленты подключённым администраторам.
type ActivityBroadcaster interface {
	BroadcastActivity(a *models.Activity)
}

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
	activityWriteTimeout = 5 * time.Second
)

type actorKey struct{}

// WithActor кладёт id администратора, выполняющего запрос, в контекст.
func WithActor(ctx context.Context, adminID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, adminID)
}

// ActorFrom достаёт id администратора из контекста.
func ActorFrom(ctx context.Context) *uuid.UUID {
	if id, ok := ctx.Value(actorKey{}).(uuid.UUID); ok && id != uuid.Nil {
		return &id
	}
	return nil
}

// ActivityService пишет ленту активности и сбрасывает кэш дашборда после изменений.
type ActivityService struct {
	repo        ActivityRepository
	broadcaster ActivityBroadcaster
	cache       Cache
	group       *goroutine.Group
}

func NewActivityService(repo ActivityRepository, broadcaster ActivityBroadcaster, cache Cache, group *goroutine.Group) *ActivityService {
	return &ActivityService{repo: repo, broadcaster: broadcaster, cache: cache, group: group}
}

// Record фиксирует изменение. Кэш дашборда сбрасывается сразу,
// запись в ленту и рассылка идут в фоне и не влияют на результат запроса.
func (s *ActivityService) Record(ctx context.Context, typ, action string, entityID uuid.UUID, message string) {
	if s.cache != nil {
		if err := s.cache.InvalidateByPrefix(ctx, DashboardCachePrefix); err != nil {
			logger.Log.WithError(err).Warn("activity: не удалось сбросить кэш дашборда")
		}
	}

	a := &models.Activity{
		Type:     typ,
		Action:   action,
		EntityID: &entityID,
		Message:  message,
		ActorID:  ActorFrom(ctx),
	}

	// запрос уже может быть завершён, поэтому отмену родителя не наследуем
	s.group.SafeGoWithContext(context.WithoutCancel(ctx), func(ctx context.Context) {
		writeCtx, cancel := context.WithTimeout(ctx, activityWriteTimeout)
		defer cancel()

		if err := s.repo.Create(writeCtx, a); err != nil {
			logger.Log.WithFields(logrus.Fields{
				"type":   typ,
				"action": action,
				"error":  err.Error(),
			}).Warn("activity: не удалось сохранить запись")
			return
		}
		if s.broadcaster != nil {
			s.broadcaster.BroadcastActivity(a)
		}
	})
}

// Recent возвращает последние записи ленты. limit ограничен диапазоном 1..100.
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	items, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if items == nil {
		items = []models.Activity{}
	}
	return items, nil
}
