// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hoshigear/inventory-api/internal/api/handlers"
	"github.com/hoshigear/inventory-api/internal/api/middleware"
	"github.com/hoshigear/inventory-api/internal/service"
)

type Services struct {
	CatalogService  *service.CatalogService
	ForecastService *service.ForecastService
	ReportService   *service.ReportService
	OrderService    *service.OrderService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.CatalogService != nil {
			catalogHandler := handlers.NewCatalogHandler(services.CatalogService)
			apiGroup.GET("/products", catalogHandler.ListProducts)
			apiGroup.GET("/products/:code", catalogHandler.GetProduct)
			apiGroup.GET("/referrers", catalogHandler.ListReferrers)
			apiGroup.GET("/code-tables", catalogHandler.GetCodeTables)
		}

		if services.ForecastService != nil {
			forecastHandler := handlers.NewForecastHandler(services.ForecastService)
			apiGroup.GET("/products/:code/projection", forecastHandler.GetProjection)
			apiGroup.GET("/products/:code/safe-stock", forecastHandler.GetSafeStock)
			apiGroup.GET("/products/:code/health", forecastHandler.GetHealth)
			apiGroup.DELETE("/products/:code/cache", forecastHandler.InvalidateProduct)

			forecastGroup := apiGroup.Group("/forecast")
			{
				forecastGroup.GET("/health", forecastHandler.GetHealthAll)
				forecastGroup.GET("/restock-alerts", forecastHandler.GetRestockAlerts)
			}
		}

		if services.ReportService != nil {
			reportHandler := handlers.NewReportHandler(services.ReportService)
			reportGroup := apiGroup.Group("/reports")
			{
				reportGroup.GET("/dashboard", reportHandler.GetDashboard)
				reportGroup.GET("/size-mix", reportHandler.GetSizeMix)
				reportGroup.GET("/revenue-buckets", reportHandler.GetRevenueBuckets)
				reportGroup.GET("/referrers", reportHandler.GetReferrerSummary)
			}
			apiGroup.POST("/sales/reassign-referrer", reportHandler.ReassignReferrer)
		}

		if services.OrderService != nil {
			orderHandler := handlers.NewOrderHandler(services.OrderService)
			orderGroup := apiGroup.Group("/orders")
			{
				orderGroup.GET("", orderHandler.ListOrders)
				orderGroup.GET("/:id", orderHandler.GetOrder)
				orderGroup.POST("/:id/invoice", orderHandler.UploadInvoice)
				orderGroup.GET("/:id/invoice", orderHandler.GetInvoiceURL)
				orderGroup.POST("/:id/items/:itemID/delivered", orderHandler.MarkDelivered)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
