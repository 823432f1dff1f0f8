package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/zipzag-catalog/internal/config"
	"github.com/ignatzorin/zipzag-catalog/internal/http/handlers"
	"github.com/ignatzorin/zipzag-catalog/internal/http/middleware"
	"github.com/ignatzorin/zipzag-catalog/internal/metrics"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
)

// Handlers набор хэндлеров, собранный в main.
type Handlers struct {
	Auth       *handlers.AuthHandler
	AdminUsers *handlers.AdminUserHandler
	Categories *handlers.CategoryHandler
	Products   *handlers.ProductHandler
	Customers  *handlers.CustomerHandler
	Catalogs   *handlers.CatalogHandler
	Inquiries  *handlers.InquiryHandler
	Dashboard  *handlers.DashboardHandler
	Health     *handlers.HealthHandler
	WS         *handlers.WSHandler
}

// Deps инфраструктура, общая для всех маршрутов.
type Deps struct {
	Tokens         middleware.AccessTokenParser
	RateLimitStore limiter.Store
	Metrics        *metrics.Metrics
}

// вход в админку и публичный доступ к каталогам ограничиваются строже остального API
const strictRateLimit = 10

func SetupRouter(cfg *config.Config, h Handlers, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RequestLogger())
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", deps.Metrics.Handler())
	}
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.Static("/uploads", cfg.UploadDir)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(deps.RateLimitStore, "api", cfg.RateLimitLimit, cfg.RateLimitPeriod))

	strict := middleware.RateLimitMiddleware(deps.RateLimitStore, "strict", strictRateLimit, cfg.RateLimitPeriod)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", strict, h.Auth.Login)
		authGroup.POST("/refresh", strict, h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.GET("/me", middleware.AuthMiddleware(deps.Tokens), h.Auth.Me)
	}

	public := api.Group("/public")
	{
		public.POST("/catalogs/:id/access", strict, middleware.UUIDValidator("id"), h.Catalogs.Access)
	}

	api.GET("/ws", h.WS.Handle)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		admins := protected.Group("/admin-users")
		admins.Use(middleware.RequireRole(models.RoleSuperAdmin))
		{
			admins.GET("", h.AdminUsers.List)
			admins.POST("", h.AdminUsers.Create)
			admins.GET("/:id", middleware.UUIDValidator("id"), h.AdminUsers.Get)
			admins.PUT("/:id", middleware.UUIDValidator("id"), h.AdminUsers.Update)
			admins.DELETE("/:id", middleware.UUIDValidator("id"), h.AdminUsers.Delete)
		}

		protected.GET("/categories", h.Categories.List)
		protected.GET("/categories/tree", h.Categories.Tree)
		protected.POST("/categories", h.Categories.Create)
		protected.GET("/categories/:id", middleware.UUIDValidator("id"), h.Categories.Get)
		protected.PUT("/categories/:id", middleware.UUIDValidator("id"), h.Categories.Update)
		protected.DELETE("/categories/:id", middleware.UUIDValidator("id"), h.Categories.Delete)

		protected.GET("/products", h.Products.List)
		protected.POST("/products", h.Products.Create)
		protected.GET("/products/:id", middleware.UUIDValidator("id"), h.Products.Get)
		protected.PUT("/products/:id", middleware.UUIDValidator("id"), h.Products.Update)
		protected.DELETE("/products/:id", middleware.UUIDValidator("id"), h.Products.Delete)
		protected.POST("/products/:id/images", middleware.UUIDValidator("id"), h.Products.UploadImage)
		protected.DELETE("/products/:id/images/:imageId", middleware.UUIDValidator("id", "imageId"), h.Products.DeleteImage)

		protected.GET("/customers", h.Customers.List)
		protected.POST("/customers", h.Customers.Create)
		protected.GET("/customers/:id", middleware.UUIDValidator("id"), h.Customers.Get)
		protected.PUT("/customers/:id", middleware.UUIDValidator("id"), h.Customers.Update)
		protected.DELETE("/customers/:id", middleware.UUIDValidator("id"), h.Customers.Delete)

		protected.GET("/catalogs", h.Catalogs.List)
		protected.POST("/catalogs", h.Catalogs.Create)
		protected.GET("/catalogs/:id", middleware.UUIDValidator("id"), h.Catalogs.Get)
		protected.PUT("/catalogs/:id", middleware.UUIDValidator("id"), h.Catalogs.Update)
		protected.PUT("/catalogs/:id/products", middleware.UUIDValidator("id"), h.Catalogs.ReplaceProducts)
		protected.DELETE("/catalogs/:id", middleware.UUIDValidator("id"), h.Catalogs.Delete)

		protected.GET("/inquiries", h.Inquiries.List)
		protected.POST("/inquiries", h.Inquiries.Create)
		protected.GET("/inquiries/:id", middleware.UUIDValidator("id"), h.Inquiries.Get)
		protected.PUT("/inquiries/:id", middleware.UUIDValidator("id"), h.Inquiries.Update)
		protected.PATCH("/inquiries/:id/status", middleware.UUIDValidator("id"), h.Inquiries.UpdateStatus)
		protected.DELETE("/inquiries/:id", middleware.UUIDValidator("id"), h.Inquiries.Delete)

		protected.GET("/dashboard/stats", h.Dashboard.Stats)
		protected.GET("/dashboard/activity", h.Dashboard.Activity)
	}

	return r
}
