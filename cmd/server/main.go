// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hoshigear/inventory-api/internal/api"
	"github.com/hoshigear/inventory-api/internal/cache"
	"github.com/hoshigear/inventory-api/internal/config"
	"github.com/hoshigear/inventory-api/internal/repository/postgres"
	"github.com/hoshigear/inventory-api/internal/service"
	"github.com/hoshigear/inventory-api/internal/storage"
	"github.com/hoshigear/inventory-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize caches; a failed redis connection degrades to no
	// caching rather than taking the server down.
	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Forecast cache unavailable, running without it")
		forecastCache = cache.NewNoopForecastCache()
	}
	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Report cache unavailable, running without it")
		reportCache = cache.NewNoopReportCache()
	}

	// Invoice storage is optional; without it the order endpoints still
	// work, minus uploads and downloads.
	var store storage.ObjectStorage
	if cfg.Storage.Endpoint != "" {
		minioClient, err := storage.NewMinioClient(context.Background(), cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to connect to object storage: %v", err)
		}
		store = minioClient
	} else {
		logger.Log.Warn().Msg("No storage endpoint configured, invoice uploads disabled")
	}

	// Initialize repositories
	catalogRepo := postgres.NewCatalogRepository(db)
	historyRepo := postgres.NewHistoryRepository(db, catalogRepo)
	reportRepo := postgres.NewReportRepository(db)
	orderRepo := postgres.NewOrderRepository(db)

	// Initialize services
	services := &api.Services{
		CatalogService:  service.NewCatalogService(catalogRepo),
		ForecastService: service.NewForecastService(historyRepo, forecastCache, cfg.Forecast),
		ReportService:   service.NewReportService(reportRepo, catalogRepo, reportCache, cfg.Forecast),
		OrderService:    service.NewOrderService(orderRepo, store, forecastCache, reportCache),
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
