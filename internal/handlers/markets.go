package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/despensa/planner-service/internal/markets"
)

// MarketInfo describes one supported online market and its delivery terms
type MarketInfo struct {
	ID            string   `json:"id"`
	DeliveryCost  float64  `json:"delivery_cost"`
	FreeThreshold *float64 `json:"free_delivery_threshold,omitempty"`
	MinOrder      float64  `json:"min_order,omitempty"`
}

// ListMarkets returns the supported online markets in tie-break order
// GET /internal/markets
func ListMarkets(c *gin.Context) {
	ids := markets.Online()
	out := make([]MarketInfo, len(ids))
	for i, id := range ids {
		cfg := markets.Delivery(id)
		out[i] = MarketInfo{
			ID:            id,
			DeliveryCost:  cfg.Cost,
			FreeThreshold: cfg.FreeThreshold,
			MinOrder:      cfg.MinOrder,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"markets": out,
		"total":   len(out),
	})
}
