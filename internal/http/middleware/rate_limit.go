package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/ignatzorin/zipzag-catalog/internal/http/response"
	"github.com/ignatzorin/zipzag-catalog/internal/logger"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
)

const rateLimitPrefix = "zipzag:limiter"

// NewRateLimitStore возвращает хранилище счётчиков. Без Redis счётчики живут в памяти процесса.
func NewRateLimitStore(rdb *redis.Client) (limiter.Store, error) {
	if rdb == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitPrefix,
			CleanUpInterval: time.Minute,
		}), nil
	}

	store, err := sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix:   rateLimitPrefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit: redis store: %w", err)
	}
	return store, nil
}

// RateLimitMiddleware ограничивает количество запросов с одного IP.
// scope разделяет счётчики разных групп маршрутов в одном хранилище.
func RateLimitMiddleware(store limiter.Store, scope string, limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = 1 * time.Minute
	}

	instance := limiter.New(store, limiter.Rate{
		Period: period,
		Limit:  limit,
	})

	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()
		lctx, err := instance.Get(c.Request.Context(), key)
		if err != nil {
			// без счётчика пропускаем запрос, админка не должна падать из-за Redis
			logger.Log.WithError(err).Warn("rate limit: не удалось получить счётчик")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", lctx.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", lctx.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", lctx.Reset))

		if lctx.Reached {
			response.Abort(c, apperror.New(apperror.ErrCodeRateLimited, "слишком много запросов, попробуйте позже"))
			return
		}

		c.Next()
	}
}
