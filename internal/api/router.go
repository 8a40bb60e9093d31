package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/api/handlers"
	"github.com/craftlane/storefront/internal/api/middleware"
	"github.com/craftlane/storefront/internal/commerce"
	"github.com/craftlane/storefront/internal/config"
	"github.com/craftlane/storefront/internal/ratelimit"
	"github.com/craftlane/storefront/internal/repository"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, store ratelimit.Store, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	var commerceClient *commerce.Client
	if cfg.Commerce.ShopDomain != "" && cfg.Commerce.AccessToken != "" {
		commerceClient = commerce.NewClient(cfg.Commerce, logger)
	}

	// Inbound webhooks. Registered for all methods so the handler owns
	// the 405 response; its transport guard also applies the looser
	// webhook rate budget itself.
	router.Any("/webhooks/orders/create", handlers.HandleOrderWebhook(cfg, repos, store, logger))

	// API v1 routes
	v1 := router.Group("/v1")
	v1.Use(middleware.RateLimit(store, "api", cfg.API.RateLimit, cfg.API.RateWindow, logger))
	{
		// Creator routes (require authentication)
		creatorRoutes := v1.Group("")
		creatorRoutes.Use(middleware.AuthMiddleware(repos, logger))
		{
			creatorRoutes.POST("/listings", handlers.HandleCreateListing(repos, logger))
			creatorRoutes.POST("/listings/:id/submit", handlers.HandleSubmitListing(repos, logger))
			creatorRoutes.GET("/listings", handlers.HandleMyListings(repos, logger))
			creatorRoutes.GET("/sales", handlers.HandleListSales(repos, logger))
			creatorRoutes.GET("/sales/summary", handlers.HandlePayoutSummary(repos, logger))
			creatorRoutes.GET("/activity", handlers.HandleActivityFeed(repos, logger))
		}

		// Admin routes (internal - for now using same auth, can be separated later)
		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AuthMiddleware(repos, logger))
		{
			adminRoutes.GET("/listings", handlers.HandleAdminListListings(repos, logger))
			adminRoutes.POST("/listings/:id/approve", handlers.HandleApproveListing(repos, commerceClient, logger))
			adminRoutes.POST("/listings/:id/reject", handlers.HandleRejectListing(repos, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
