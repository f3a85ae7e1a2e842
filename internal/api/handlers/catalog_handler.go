package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hoshigear/inventory-api/internal/domain"
	"github.com/hoshigear/inventory-api/internal/service"
)

type CatalogHandler struct {
	service *service.CatalogService
}

func NewCatalogHandler(service *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// parseProductFilter builds a catalog filter from query params. Group
// values may be repeated or comma-separated:
//
//	?group=core&group=summer
//	?group=core,summer
func parseProductFilter(c *gin.Context) domain.ProductFilter {
	filter := domain.ProductFilter{
		Style:   strings.TrimSpace(c.Query("style")),
		Type:    strings.TrimSpace(c.Query("type")),
		Subtype: strings.TrimSpace(c.Query("subtype")),
		Age:     strings.TrimSpace(c.Query("age")),
	}

	if decommissioned := strings.TrimSpace(c.Query("include_decommissioned")); decommissioned != "" {
		filter.IncludeDecommissioned = decommissioned == "true" || decommissioned == "1"
	}

	for _, raw := range c.QueryArray("group") {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter.Groups = append(filter.Groups, part)
			}
		}
	}

	return filter
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrSaleNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ListProducts returns the catalog, optionally filtered by category.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	filter := parseProductFilter(c)
	products, err := h.service.ListProducts(c.Request.Context(), filter)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "failed to fetch products", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
	})
}

// GetProduct returns one product with its variants.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	code := c.Param("code")
	product, variants, err := h.service.GetProduct(c.Request.Context(), code)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "failed to fetch product", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":  product,
		"variants": variants,
	})
}

// ListReferrers returns every known referrer.
func (h *CatalogHandler) ListReferrers(c *gin.Context) {
	referrers, err := h.service.ListReferrers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch referrers", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"referrers": referrers})
}

// GetCodeTables returns the category vocabulary for filter dropdowns.
func (h *CatalogHandler) GetCodeTables(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.CodeTables())
}
