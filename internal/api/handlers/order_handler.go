package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hoshigear/inventory-api/internal/service"
)

type OrderHandler struct {
	service *service.OrderService
}

func NewOrderHandler(service *service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// ListOrders returns every purchase order, newest first.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.service.ListOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  len(orders),
	})
}

// GetOrder returns one purchase order with its lines.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, items, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "failed to fetch order", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"items": items,
	})
}

// UploadInvoice attaches an invoice document to an order.
func (h *OrderHandler) UploadInvoice(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	file, err := c.FormFile("invoice")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no invoice file provided"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read invoice file"})
		return
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	invoiceID, err := h.service.UploadInvoice(c.Request.Context(), orderID, filepath.Base(file.Filename), contentType, file.Size, src)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "failed to upload invoice", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"invoice_id": invoiceID,
		"order_id":   orderID,
	})
}

// GetInvoiceURL returns a short-lived download link for an order's
// invoice.
func (h *OrderHandler) GetInvoiceURL(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	url, err := h.service.InvoiceURL(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "failed to build invoice url", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

type markDeliveredRequest struct {
	DateArrived    string `json:"date_arrived"`
	ActualQuantity *int   `json:"actual_quantity"`
}

// MarkDelivered records an order line's arrival, optionally with the
// quantity that actually showed up.
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("itemID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order item id"})
		return
	}

	var req markDeliveredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	arrived := time.Now().UTC()
	if req.DateArrived != "" {
		parsed, err := time.Parse("2006-01-02", req.DateArrived)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_arrived, expected YYYY-MM-DD"})
			return
		}
		arrived = parsed
	}
	if req.ActualQuantity != nil && *req.ActualQuantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actual_quantity must not be negative"})
		return
	}

	if err := h.service.MarkDelivered(c.Request.Context(), itemID, arrived, req.ActualQuantity); err != nil {
		c.JSON(statusForError(err), gin.H{"error": "failed to mark delivery", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "delivery recorded", "order_item_id": itemID})
}
