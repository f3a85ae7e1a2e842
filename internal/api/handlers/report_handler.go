package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hoshigear/inventory-api/internal/service"
)

type ReportHandler struct {
	service *service.ReportService
}

func NewReportHandler(service *service.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// parseDateRange reads from/to query params (YYYY-MM-DD), defaulting to
// the trailing twelve months.
func parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now().UTC()
	from := now.AddDate(0, -12, 0)
	to := now

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, false
		}
		from = parsed
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, false
		}
		to = parsed
	}
	return from, to, !to.Before(from)
}

// GetDashboard returns the per-category summary cards.
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	summaries, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch dashboard", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": summaries})
}

// GetSizeMix returns the recommended order mix per size.
func (h *ReportHandler) GetSizeMix(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	rows, err := h.service.SizeMix(c.Request.Context(), category)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "failed to compute size mix", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"sizes":    rows,
	})
}

// GetRevenueBuckets splits the window's revenue across the discount
// buckets.
func (h *ReportHandler) GetRevenueBuckets(c *gin.Context) {
	from, to, ok := parseDateRange(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range, expected from/to as YYYY-MM-DD"})
		return
	}

	buckets, err := h.service.RevenueBuckets(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute revenue buckets", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":    from.Format("2006-01-02"),
		"to":      to.Format("2006-01-02"),
		"buckets": buckets,
	})
}

// GetReferrerSummary rolls up attributed sales per referrer.
func (h *ReportHandler) GetReferrerSummary(c *gin.Context) {
	from, to, ok := parseDateRange(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range, expected from/to as YYYY-MM-DD"})
		return
	}

	summaries, err := h.service.Referrers(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch referrer summary", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":      from.Format("2006-01-02"),
		"to":        to.Format("2006-01-02"),
		"referrers": summaries,
	})
}

type reassignReferrerRequest struct {
	SaleIDs    []int64 `json:"sale_ids" binding:"required,min=1"`
	ReferrerID int64   `json:"referrer_id" binding:"required"`
}

// ReassignReferrer points the given sales at a referrer.
func (h *ReportHandler) ReassignReferrer(c *gin.Context) {
	var req reassignReferrerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	updated, err := h.service.ReassignReferrer(c.Request.Context(), req.SaleIDs, req.ReferrerID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "failed to reassign referrer", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
