package pricecache

import (
	"strings"
	"time"
)

// DefaultTTL is how long a scraped price entry stays usable. Shared by the
// cache and the comparison engine.
const DefaultTTL = 24 * time.Hour

// Entry is one cached price observation for (market, normalized product name).
// Written by the scraping flow, read-only to the comparison engine.
type Entry struct {
	Name                string    `json:"name"`
	Price               float64   `json:"price"`
	PricePerUnit        float64   `json:"price_per_unit,omitempty"`
	Unit                string    `json:"unit,omitempty"`
	Brand               string    `json:"brand,omitempty"`
	Promo               string    `json:"promo,omitempty"`
	PromoEffectivePrice *float64  `json:"promo_effective_price,omitempty"`
	Available           *bool     `json:"available,omitempty"`
	ProductURL          string    `json:"product_url,omitempty"`
	CachedAt            time.Time `json:"cached_at"`
}

// IsAvailable reports product availability. Absent means available.
func (e Entry) IsAvailable() bool {
	return e.Available == nil || *e.Available
}

// EffectivePrice returns the promotional price when one is set, otherwise the
// base price.
func (e Entry) EffectivePrice() float64 {
	if e.PromoEffectivePrice != nil && *e.PromoEffectivePrice > 0 {
		return *e.PromoEffectivePrice
	}
	return e.Price
}

// ValidAt reports whether the entry is still fresh at the given instant.
func (e Entry) ValidAt(now time.Time, ttl time.Duration) bool {
	if e.CachedAt.IsZero() {
		return false
	}
	return now.Sub(e.CachedAt) < ttl
}

// NormalizeKey normalizes a product name into its cache key form.
func NormalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
