// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pocamarket/ceg-backend/internal/config"
	"github.com/pocamarket/ceg-backend/internal/events"
	"github.com/pocamarket/ceg-backend/internal/handlers"
	"github.com/pocamarket/ceg-backend/internal/middleware"
	"github.com/pocamarket/ceg-backend/internal/services"
	"github.com/pocamarket/ceg-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, publisher events.Publisher) *gin.Engine {
	// Initialize services
	accessService := services.NewAccessService(db)
	notificationService := services.NewNotificationService(db, publisher)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("S3 storage unavailable, falling back to local uploads")
		storageService = services.NewLocalStorageService(cfg)
	}

	authService := services.NewAuthService(db, cfg)
	groupPurchaseService := services.NewGroupPurchaseService(db, accessService)
	inventoryService := services.NewInventoryService(db, accessService, notificationService)
	orderService := services.NewOrderService(db, accessService, notificationService)
	catalogService := services.NewCatalogService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	groupPurchaseHandler := handlers.NewGroupPurchaseHandler(groupPurchaseService, inventoryService, orderService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	orderHandler := handlers.NewOrderHandler(orderService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, storageService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.PrometheusMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
		}

		// User routes
		users := v1.Group("/users")
		users.Use(middleware.AuthRequired())
		{
			users.GET("/me", authHandler.GetProfile)
			users.PUT("/me", authHandler.UpdateProfile)
		}

		// Group purchase routes
		groupPurchases := v1.Group("/group-purchases")
		{
			groupPurchases.GET("", middleware.OptionalAuth(), groupPurchaseHandler.List)
			groupPurchases.GET("/mine", middleware.AuthRequired(), groupPurchaseHandler.ListMine)
			groupPurchases.GET("/:id", middleware.OptionalAuth(), groupPurchaseHandler.Get)
			groupPurchases.GET("/:id/items", middleware.OptionalAuth(), groupPurchaseHandler.ListItems)

			// Authenticated routes
			protected := groupPurchases.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", groupPurchaseHandler.Create)
				protected.PUT("/:id", groupPurchaseHandler.Update)
				protected.POST("/:id/items", groupPurchaseHandler.AddItem)
				protected.POST("/:id/item-requests", groupPurchaseHandler.RequestItem)
				protected.POST("/:id/orders", middleware.OrderRateLimit(), groupPurchaseHandler.PlaceOrder)
				protected.GET("/:id/orders", groupPurchaseHandler.ListOrders)
			}
		}

		// Inventory item routes
		items := v1.Group("/items")
		{
			items.GET("/:id", middleware.OptionalAuth(), inventoryHandler.Get)

			protected := items.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.PUT("/:id", inventoryHandler.Update)
				protected.DELETE("/:id", inventoryHandler.Delete)
				protected.POST("/:id/approve", inventoryHandler.Approve)
				protected.POST("/:id/reject", inventoryHandler.Reject)
			}
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.GET("", orderHandler.ListMine)
			orders.GET("/:id", orderHandler.Get)
			orders.PUT("/:id/status", orderHandler.SetStatus)
		}

		// Cross-listing routes (public)
		listings := v1.Group("/listings")
		{
			listings.GET("", catalogHandler.CrossListings)
			listings.GET("/items", catalogHandler.Listings)
		}

		// Photocard catalog routes
		photocards := v1.Group("/photocards")
		{
			photocards.GET("", catalogHandler.SearchPhotocards)
			photocards.GET("/:id", catalogHandler.GetPhotocard)

			protected := photocards.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", catalogHandler.CreatePhotocard)
				protected.POST("/upload-image", middleware.UploadRateLimit(), catalogHandler.UploadImage)
			}
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
