// cmd/forecast/main.go
//
// One-shot forecast runner. Computes projections, safe stock levels or
// restock alerts straight from the database and prints JSON, for cron
// jobs and quick inspection without the API server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/hoshigear/inventory-api/internal/cache"
	"github.com/hoshigear/inventory-api/internal/config"
	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/hoshigear/inventory-api/internal/repository/postgres"
	"github.com/hoshigear/inventory-api/internal/service"
)

func main() {
	// Parse command line flags
	productCode := flag.String("product", "", "Product code to forecast (required unless -alerts or -warm)")
	mode := flag.String("mode", "projection", "What to compute: projection, safe-stock or health")
	alerts := flag.Bool("alerts", false, "Compute restock alerts for the whole catalog instead")
	warm := flag.Bool("warm", false, "Precompute and cache forecasts for the whole catalog")
	workers := flag.Int("workers", 4, "Worker count for -warm")
	flag.Parse()

	cfg := config.Load()

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	catalogRepo := postgres.NewCatalogRepository(db)
	historyRepo := postgres.NewHistoryRepository(db, catalogRepo)

	// Warming needs the real cache; every other mode is a one-shot
	// computation and gains nothing from it.
	forecastCache := cache.NewNoopForecastCache()
	if *warm {
		forecastCache, err = cache.NewForecastCache(cfg.Cache)
		if err != nil {
			log.Fatalf("Failed to connect to cache: %v", err)
		}
	}
	forecastService := service.NewForecastService(historyRepo, forecastCache, cfg.Forecast)

	ctx := context.Background()

	var result any
	switch {
	case *warm:
		result, err = forecastService.WarmCache(ctx, domain.ProductFilter{}, *workers)
	case *alerts:
		result, err = forecastService.RestockAlerts(ctx, domain.ProductFilter{})
	case *productCode == "":
		log.Fatal("Product code is required (use -product flag)")
	case *mode == "projection":
		result, err = forecastService.Projection(ctx, *productCode)
	case *mode == "safe-stock":
		result, err = forecastService.SafeStock(ctx, *productCode)
	case *mode == "health":
		result, err = forecastService.Health(ctx, *productCode)
	default:
		log.Fatalf("Unknown mode: %s", *mode)
	}
	if err != nil {
		log.Fatalf("Forecast failed: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}
