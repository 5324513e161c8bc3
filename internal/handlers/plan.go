package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/despensa/planner-service/internal/export"
	"github.com/despensa/planner-service/internal/optimizer"
	"github.com/despensa/planner-service/internal/storage"
)

// ============================================================================
// Price Comparison Endpoints
// ============================================================================

// CompareItem represents one shopping list line in a comparison request
type CompareItem struct {
	Name           string  `json:"name" binding:"required"`
	Category       string  `json:"category,omitempty"`
	Quantity       float64 `json:"quantity,omitempty"`
	Unit           string  `json:"unit,omitempty"`
	PreferredStore string  `json:"preferred_store,omitempty"`
}

// CompareRequest represents a price comparison request. When Items is empty
// and UseInventory is set, the list is generated from the stored inventory.
type CompareRequest struct {
	Items        []CompareItem `json:"items" binding:"max=200"`
	UseInventory bool          `json:"use_inventory,omitempty"`
}

func (r CompareRequest) shoppingItems() []optimizer.ShoppingItem {
	items := make([]optimizer.ShoppingItem, len(r.Items))
	for i, it := range r.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		items[i] = optimizer.ShoppingItem{
			Name:           it.Name,
			Category:       it.Category,
			Quantity:       optimizer.Quantity{Value: qty, Unit: it.Unit},
			PreferredStore: it.PreferredStore,
		}
	}
	return items
}

// ComparePlan handles price comparison over an explicit item list or the
// stored inventory
// POST /internal/plan/compare
func ComparePlan(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if plannerSvc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "planner not initialized"})
		return
	}

	ctx := c.Request.Context()
	if req.UseInventory && len(req.Items) == 0 {
		result, err := plannerSvc.CompareInventory(ctx)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no inventory stored"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	result, err := plannerSvc.Compare(ctx, req.shoppingItems())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportPlan runs a comparison and returns it as a spreadsheet
// POST /internal/plan/export
func ExportPlan(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if plannerSvc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "planner not initialized"})
		return
	}

	ctx := c.Request.Context()
	result, err := plannerSvc.Compare(ctx, req.shoppingItems())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data, err := export.CompareXLSX(result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build spreadsheet: " + err.Error()})
		return
	}

	filename := fmt.Sprintf("plan-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
