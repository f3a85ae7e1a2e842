package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hoshigear/inventory-api/internal/service"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

// GetProjection returns the month-by-month stock projection for a
// product's variants.
func (h *ForecastHandler) GetProjection(c *gin.Context) {
	code := c.Param("code")
	projection, err := h.service.Projection(c.Request.Context(), code)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "failed to compute projection", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, projection)
}

// GetSafeStock returns the per-size stock floors for a product.
func (h *ForecastHandler) GetSafeStock(c *gin.Context) {
	code := c.Param("code")
	summary, err := h.service.SafeStock(c.Request.Context(), code)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "failed to compute safe stock", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetHealth returns the restock confidence score for one product.
func (h *ForecastHandler) GetHealth(c *gin.Context) {
	code := c.Param("code")
	health, err := h.service.Health(c.Request.Context(), code)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "failed to score product", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, health)
}

// GetHealthAll scores every product matching the filter.
func (h *ForecastHandler) GetHealthAll(c *gin.Context) {
	filter := parseProductFilter(c)
	results, err := h.service.HealthAll(c.Request.Context(), filter)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "failed to score products", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": results,
		"total":    len(results),
	})
}

// GetRestockAlerts returns the products that need reordering, most
// urgent first.
func (h *ForecastHandler) GetRestockAlerts(c *gin.Context) {
	filter := parseProductFilter(c)
	alerts, err := h.service.RestockAlerts(c.Request.Context(), filter)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "failed to compute restock alerts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"total":  len(alerts),
	})
}

// InvalidateProduct drops a product's cached forecasts.
func (h *ForecastHandler) InvalidateProduct(c *gin.Context) {
	code := c.Param("code")
	if err := h.service.InvalidateProduct(c.Request.Context(), code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invalidate cache", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "cache invalidated", "product_code": code})
}
