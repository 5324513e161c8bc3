package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/despensa/planner-service/internal/storage"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// HealthCheck handles the health check endpoint
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status: "ok",
	}

	if docStore == nil {
		response.Storage = "not configured"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	// Exists doubles as a liveness probe for the backing store
	if _, err := docStore.Exists(c.Request.Context(), storage.KeyPreferences); err != nil {
		response.Storage = "disconnected"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	response.Storage = "connected"

	c.JSON(http.StatusOK, response)
}
