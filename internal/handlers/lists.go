package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/despensa/planner-service/internal/storage"
)

// ============================================================================
// Shopping List Endpoints
// ============================================================================

func listError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no inventory or consumption model stored"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// WeeklyList merges the manual inventory list with consumption predictions
// GET /internal/lists/weekly
func WeeklyList(c *gin.Context) {
	if generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generator not initialized"})
		return
	}

	list, err := generator.Weekly(c.Request.Context())
	if err != nil {
		listError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// BulkList returns products due for a warehouse-style bulk purchase
// GET /internal/lists/bulk
func BulkList(c *gin.Context) {
	if generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generator not initialized"})
		return
	}

	list, err := generator.Bulk(c.Request.Context())
	if err != nil {
		listError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// PhysicalList groups predictions by physical store
// GET /internal/lists/physical
func PhysicalList(c *gin.Context) {
	if generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generator not initialized"})
		return
	}

	list, err := generator.Physical(c.Request.Context())
	if err != nil {
		listError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// TriageList splits the weekly list into online, physical and bulk-deferred
// GET /internal/lists/triage?next_bulk_date=YYYY-MM-DD
func TriageList(c *gin.Context) {
	if generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generator not initialized"})
		return
	}

	triage, err := generator.GenerateTriage(c.Request.Context(), c.Query("next_bulk_date"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			listError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, triage)
}
