package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/despensa/planner-service/internal/importer"
	"github.com/despensa/planner-service/internal/pricecache"
)

// ============================================================================
// Price Cache Endpoints
// ============================================================================

// CacheUpdateRequest represents a single price observation to record
type CacheUpdateRequest struct {
	Market              string   `json:"market" binding:"required"`
	Product             string   `json:"product" binding:"required"`
	Name                string   `json:"name,omitempty"`
	Price               float64  `json:"price" binding:"required,gt=0"`
	PricePerUnit        float64  `json:"price_per_unit,omitempty"`
	Unit                string   `json:"unit,omitempty"`
	Brand               string   `json:"brand,omitempty"`
	Promo               string   `json:"promo,omitempty"`
	PromoEffectivePrice *float64 `json:"promo_effective_price,omitempty"`
	Available           *bool    `json:"available,omitempty"`
	ProductURL          string   `json:"product_url,omitempty"`
}

// CacheUpdate records one observed price
// POST /internal/cache/update
func CacheUpdate(c *gin.Context) {
	var req CacheUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if priceCache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not initialized"})
		return
	}

	name := req.Name
	if name == "" {
		name = req.Product
	}
	entry := pricecache.Entry{
		Name:                name,
		Price:               req.Price,
		PricePerUnit:        req.PricePerUnit,
		Unit:                req.Unit,
		Brand:               req.Brand,
		Promo:               req.Promo,
		PromoEffectivePrice: req.PromoEffectivePrice,
		Available:           req.Available,
		ProductURL:          req.ProductURL,
	}

	if err := priceCache.Update(c.Request.Context(), req.Market, req.Product, entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"market":  req.Market,
		"product": pricecache.NormalizeKey(req.Product),
	})
}

// CacheImport loads a price list spreadsheet into one market's cache. The
// request body is the raw xlsx file.
// POST /internal/cache/import?market=...&sheet=...
func CacheImport(c *gin.Context) {
	market := c.Query("market")
	if market == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market is required"})
		return
	}

	if priceCache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not initialized"})
		return
	}

	content, err := c.GetRawData()
	if err != nil || len(content) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be an xlsx file"})
		return
	}

	result, err := importer.ImportXLSX(c.Request.Context(), priceCache, market, content, c.Query("sheet"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// CacheEntry returns one cached entry and whether it is still valid
// GET /internal/cache/entry?market=...&product=...
func CacheEntry(c *gin.Context) {
	market, product := c.Query("market"), c.Query("product")
	if market == "" || product == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market and product are required"})
		return
	}

	if priceCache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not initialized"})
		return
	}

	entry, found, valid := priceCache.Get(market, product)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cached entry for product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"market": market,
		"key":    pricecache.NormalizeKey(product),
		"entry":  entry,
		"valid":  valid,
	})
}

// CacheSearch searches cached products by name
// GET /internal/cache/search?q=...&market=...&limit=...
func CacheSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	if priceCache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not initialized"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	results := priceCache.Search(query, c.Query("market"), limit)
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
	})
}

// CacheStats returns per-market entry counts and freshness
// GET /internal/cache/stats
func CacheStats(c *gin.Context) {
	if priceCache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not initialized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ttl_hours": priceCache.TTL().Hours(),
		"markets":   priceCache.Stats(),
	})
}

// CacheExpired lists entries past their TTL
// GET /internal/cache/expired?market=...
func CacheExpired(c *gin.Context) {
	if priceCache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not initialized"})
		return
	}

	expired := priceCache.Expired(c.Query("market"))
	c.JSON(http.StatusOK, gin.H{
		"expired": expired,
		"total":   len(expired),
	})
}
