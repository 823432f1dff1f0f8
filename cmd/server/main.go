package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/zipzag-catalog/internal/config"
	"github.com/ignatzorin/zipzag-catalog/internal/db"
	"github.com/ignatzorin/zipzag-catalog/internal/goroutine"
	httpHandlers "github.com/ignatzorin/zipzag-catalog/internal/http/handlers"
	"github.com/ignatzorin/zipzag-catalog/internal/http/middleware"
	httpRouter "github.com/ignatzorin/zipzag-catalog/internal/http/router"
	"github.com/ignatzorin/zipzag-catalog/internal/logger"
	"github.com/ignatzorin/zipzag-catalog/internal/metrics"
	"github.com/ignatzorin/zipzag-catalog/internal/repository"
	"github.com/ignatzorin/zipzag-catalog/internal/service"
	"github.com/ignatzorin/zipzag-catalog/internal/storage"
	"github.com/ignatzorin/zipzag-catalog/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.DefaultPool)
	if err != nil {
		logger.Log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	applied, err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath)
	if err != nil {
		logger.Log.Fatalf("main: ошибка миграций: %v", err)
	}
	if len(applied) > 0 {
		logger.Log.WithField("migrations", applied).Info("main: применены миграции")
	}

	// Кэш и лимитер: Redis при наличии REDIS_URL, иначе память процесса.
	var (
		rdb       *redis.Client
		cache     service.Cache
		cachePing func(context.Context) error
	)
	if cfg.RedisURL != "" {
		rdb, err = service.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Log.Fatalf("main: %v", err)
		}
		defer rdb.Close()
		cache = service.NewRedisCache(rdb, "zipzag")
		cachePing = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		memCache := service.NewMemoryCache(time.Minute)
		defer memCache.Close()
		cache = memCache
	}

	limiterStore, err := middleware.NewRateLimitStore(rdb)
	if err != nil {
		logger.Log.Fatalf("main: не удалось создать хранилище лимитера: %v", err)
	}

	images, err := storage.NewImageStorage(cfg.UploadDir, "/uploads", cfg.MaxUploadSizeMB)
	if err != nil {
		logger.Log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Вебсокеты и фоновые задачи.
	background := goroutine.NewGroup(logger.Log)
	hub := ws.NewHub()
	background.SafeGo(func() { hub.Run(ctx) })

	// Репозитории.
	activityRepo := repository.NewActivityRepository(dbConn)
	adminRepo := repository.NewAdminUserRepository(dbConn)
	categoryRepo := repository.NewCategoryRepository(dbConn)
	productRepo := repository.NewProductRepository(dbConn)
	customerRepo := repository.NewCustomerRepository(dbConn)
	catalogRepo := repository.NewCatalogRepository(dbConn)
	inquiryRepo := repository.NewInquiryRepository(dbConn)

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	activity := service.NewActivityService(activityRepo, hub, cache, background)
	authService := service.NewAuthService(adminRepo, tokenManager)
	adminService := service.NewAdminUserService(adminRepo, activity)
	categoryService := service.NewCategoryService(categoryRepo, cache, cfg.DashboardCacheTTL, activity)
	productService := service.NewProductService(productRepo, images, cache, activity)
	customerService := service.NewCustomerService(customerRepo, activity)
	catalogService := service.NewCatalogService(catalogRepo, productService, activity)
	inquiryService := service.NewInquiryService(inquiryRepo, activity)
	dashboardService := service.NewDashboardService(activityRepo, cache, cfg.DashboardCacheTTL, activity)

	created, err := adminService.EnsureBootstrapAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)
	if err != nil {
		logger.Log.Fatalf("main: не удалось создать первого администратора: %v", err)
	}
	if created {
		logger.Log.WithField("email", cfg.Admin.Email).Warn("main: создан super-admin по умолчанию, смените пароль")
	}

	// Метрики.
	m := metrics.New()
	m.GaugeFunc("ws", "clients", "Количество подключённых WebSocket клиентов.", func() float64 {
		return float64(hub.ClientCount())
	})
	m.GaugeFunc("db", "open_connections", "Открытые соединения с PostgreSQL.", func() float64 {
		return float64(dbConn.Stats().OpenConnections)
	})
	m.GaugeFunc("db", "in_use_connections", "Занятые соединения с PostgreSQL.", func() float64 {
		return float64(dbConn.Stats().InUse)
	})

	// HTTP хэндлеры и роутер.
	engine := httpRouter.SetupRouter(cfg, httpRouter.Handlers{
		Auth:       httpHandlers.NewAuthHandler(authService),
		AdminUsers: httpHandlers.NewAdminUserHandler(adminService),
		Categories: httpHandlers.NewCategoryHandler(categoryService),
		Products:   httpHandlers.NewProductHandler(productService, images.MaxUploadBytes()),
		Customers:  httpHandlers.NewCustomerHandler(customerService),
		Catalogs:   httpHandlers.NewCatalogHandler(catalogService),
		Inquiries:  httpHandlers.NewInquiryHandler(inquiryService),
		Dashboard:  httpHandlers.NewDashboardHandler(dashboardService),
		Health:     httpHandlers.NewHealthHandler(dbConn, cachePing),
		WS:         httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
	}, httpRouter.Deps{
		Tokens:         tokenManager,
		RateLimitStore: limiterStore,
		Metrics:        m,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Errorf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	logger.Log.WithFields(logrus.Fields{
		"port": cfg.HTTPPort,
		"env":  cfg.Env,
	}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}

	// Дожидаемся закрытия хаба и записи ленты активности, запущенной в фоне.
	waitCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := background.Wait(waitCtx); err != nil {
		logger.Log.Warnf("main: фоновые задачи не завершились: %v", err)
	}
	logger.Log.Info("main: сервер остановлен")
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.Errorf("main: ошибка закрытия базы: %v", err)
	}
}
