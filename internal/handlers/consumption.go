package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/despensa/planner-service/internal/consumption"
)

// ============================================================================
// Consumption Tracking Endpoints
// ============================================================================

// PurchaseRequest represents a completed shop to feed into the model
type PurchaseRequest struct {
	Date   string                      `json:"date,omitempty"`
	Market string                      `json:"market,omitempty"`
	Items  []consumption.PurchasedItem `json:"items" binding:"required,min=1"`
}

// RecordPurchase updates consumption averages from a completed shop
// POST /internal/consumption/purchase
func RecordPurchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if tracker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tracker not initialized"})
		return
	}

	purchase := consumption.Purchase{Market: req.Market, Items: req.Items}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		purchase.Date = date
	}

	summary, err := tracker.RecordPurchase(c.Request.Context(), purchase)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// CheckStock reports products predicted to run out soon
// GET /internal/consumption/check-stock
func CheckStock(c *gin.Context) {
	if tracker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tracker not initialized"})
		return
	}

	report, err := tracker.CheckStock(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// FeedbackRequest adjusts a product's estimate from user feedback
type FeedbackRequest struct {
	Product  string `json:"product" binding:"required"`
	Feedback string `json:"feedback" binding:"required,oneof=still_have already_finished inactive"`
}

// Feedback applies still_have / already_finished / inactive feedback
// POST /internal/consumption/feedback
func Feedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if tracker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tracker not initialized"})
		return
	}

	msg, err := tracker.ApplyFeedback(c.Request.Context(), req.Product, consumption.FeedbackType(req.Feedback))
	if err != nil {
		if errors.Is(err, consumption.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": msg,
	})
}

// Predict returns the tracked model entry for one product
// GET /internal/consumption/predict?product=...
func Predict(c *gin.Context) {
	name := c.Query("product")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product is required"})
		return
	}

	if tracker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tracker not initialized"})
		return
	}

	id, product, err := tracker.Predict(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, consumption.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": id,
		"product":    product,
	})
}
