package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stableroute/stableroute_service/internal/api/routes"
	"github.com/stableroute/stableroute_service/internal/infrastructure/config"
	"github.com/stableroute/stableroute_service/internal/infrastructure/database"
	"github.com/stableroute/stableroute_service/internal/infrastructure/di"
	"github.com/stableroute/stableroute_service/internal/workers/delivery_tracker"
	"github.com/stableroute/stableroute_service/internal/workers/price_refresh"
	"github.com/stableroute/stableroute_service/pkg/graceful"
	"github.com/stableroute/stableroute_service/pkg/logger"
	"github.com/stableroute/stableroute_service/pkg/metrics"
	"github.com/stableroute/stableroute_service/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.Environment)

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		CollectorURL: cfg.Tracing.CollectorURL,
		Environment:  cfg.Environment,
		SampleRate:   cfg.Tracing.SampleRate,
		Insecure:     cfg.Tracing.Insecure,
	}

	tracingShutdown, err := tracing.InitTracer(context.Background(), tracingConfig, log.Zap())
	if err != nil {
		log.Fatal("Failed to initialize tracing", "error", err)
	}
	defer tracingShutdown(context.Background())

	// Initialize database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Failed to close database connection", "error", err)
		}
	}()

	// Run migrations
	if err := database.RunMigrations(database.DSN(cfg.Database), cfg.Database.MigrationsPath); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Build dependency injection container
	container, err := di.NewContainer(cfg, db, log)
	if err != nil {
		log.Fatal("Failed to create DI container", "error", err)
	}

	// Initialize router with DI container
	router := routes.SetupRoutes(container)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	// Price refresh worker keeps the quote path off cold sources
	priceWorker := price_refresh.NewWorker(
		container.PriceAggregator,
		container.Chains,
		cfg.PriceFeed.Symbol,
		time.Duration(cfg.Workers.PriceRefreshSeconds)*time.Second,
		log.Zap(),
	)
	go priceWorker.Start(workerCtx)
	log.Info("Price refresh worker started")

	// Delivery tracker completes transfers when messages land
	deliveryWorker := delivery_tracker.NewWorker(
		container.Messenger,
		container.OracleClient,
		container.TransferService,
		time.Duration(cfg.Workers.DeliveryPollSeconds)*time.Second,
		cfg.Workers.DeliveryBatchSize,
		log.Zap(),
	)
	go deliveryWorker.Start(workerCtx)
	log.Info("Delivery tracker worker started")

	// Create server
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		log.Info("Starting server",
			"port", cfg.Server.Port,
			"environment", cfg.Environment,
			"source_chain", cfg.Messenger.SourceChain,
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	// Database connection metrics
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			stats := db.Stats()
			metrics.DatabaseConnectionsGauge.WithLabelValues("open").Set(float64(stats.OpenConnections))
			metrics.DatabaseConnectionsGauge.WithLabelValues("idle").Set(float64(stats.Idle))
			metrics.DatabaseConnectionsGauge.WithLabelValues("in_use").Set(float64(stats.InUse))
		}
	}()

	shutdown := graceful.NewShutdownManager(server, log)
	shutdown.Register(graceful.ShutdownFunc(func(timeout time.Duration) error {
		cancelWorkers()
		priceWorker.Stop()
		deliveryWorker.Stop()
		return nil
	}))
	shutdown.RegisterCloser(container)
	shutdown.WaitForShutdown()
}
