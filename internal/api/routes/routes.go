package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/stableroute/stableroute_service/internal/api/handlers"
	"github.com/stableroute/stableroute_service/internal/api/middleware"
	"github.com/stableroute/stableroute_service/internal/infrastructure/di"
	"github.com/stableroute/stableroute_service/pkg/tracing"
)

// SetupRoutes configures all application routes
func SetupRoutes(container *di.Container) *gin.Engine {
	router := gin.New()

	// Global middleware - order matters for security
	router.Use(tracing.HTTPMiddleware())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestSizeLimit())
	router.Use(middleware.InputValidation())
	router.Use(middleware.Logger(container.Logger))
	router.Use(middleware.Recovery(container.Logger))
	router.Use(middleware.CORS(container.Config.Server.AllowedOrigins))
	router.Use(middleware.RateLimit(container.Config.Server.RateLimitPerMin))
	router.Use(middleware.SecurityHeaders())

	// Initialize handlers with services from DI container
	coreHandlers := handlers.NewCoreHandlers(container.DB, container.RedisClient, container.Messenger, container.Logger)
	quoteHandlers := handlers.NewQuoteHandlers(container.QuoteEngine, container.Logger)
	transferHandlers := handlers.NewTransferHandlers(container.TransferService, container.Logger)
	priceHandlers := handlers.NewPriceHandlers(
		container.PriceAggregator,
		container.Chains,
		container.Config.PriceFeed.Symbol,
		container.Logger,
	)
	registryHandlers := handlers.NewRegistryHandlers(container.BridgeRegistry, container.Chains, container.Logger)
	messengerHandlers := handlers.NewMessengerHandlers(container.Messenger, container.TransferService, container.Chains, container.Logger)

	// Health checks and metrics (no auth required)
	router.GET("/health", coreHandlers.Health)
	router.GET("/ready", coreHandlers.Ready)
	router.GET("/live", coreHandlers.Live)
	router.GET("/version", coreHandlers.Version)
	router.GET("/metrics", coreHandlers.Metrics)

	v1 := router.Group("/api/v1")
	{
		// Quoting
		v1.POST("/quotes", quoteHandlers.RequestQuote)
		v1.GET("/quotes/:id", quoteHandlers.GetQuote)

		// Transfers
		v1.POST("/transfers", transferHandlers.Execute)
		v1.GET("/transfers", transferHandlers.List)
		v1.GET("/transfers/:id", transferHandlers.Get)

		// Prices
		v1.GET("/prices", priceHandlers.GetPrices)
		v1.GET("/prices/:chain", priceHandlers.GetPrice)

		// Bridge catalog, read-only
		v1.GET("/bridges", registryHandlers.List)

		// Cross-chain messages. Receive is invoked by relayer callbacks
		// on destination-chain finality.
		v1.GET("/messages/:id", messengerHandlers.Get)
		v1.POST("/messages/:id/receive", messengerHandlers.Receive)
	}

	// Admin surface for registry and messenger control
	admin := v1.Group("/admin")
	admin.Use(middleware.Authentication(container.Config, container.Logger))
	admin.Use(middleware.AdminAuth())
	{
		admin.POST("/bridges", registryHandlers.Register)
		admin.GET("/bridges", registryHandlers.List)
		admin.GET("/bridges/:id", registryHandlers.Get)
		admin.PATCH("/bridges/:id", registryHandlers.Update)
		admin.POST("/bridges/:id/activate", registryHandlers.Activate)
		admin.POST("/bridges/:id/deactivate", registryHandlers.Deactivate)
		admin.PUT("/bridges/preferred", registryHandlers.SetPreferred)
		admin.DELETE("/bridges/preferred", registryHandlers.ClearPreferred)

		admin.GET("/chains", messengerHandlers.ListChains)
		admin.POST("/chains", messengerHandlers.AddChain)
		admin.DELETE("/chains/:id", messengerHandlers.RemoveChain)

		admin.GET("/messages", messengerHandlers.List)
		admin.POST("/messenger/pause", messengerHandlers.Pause)
		admin.POST("/messenger/unpause", messengerHandlers.Unpause)
	}

	return router
}
