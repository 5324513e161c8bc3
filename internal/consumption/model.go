// Package consumption tracks household purchase habits, predicts when
// products run out, and raises low-stock alerts.
package consumption

import (
	"math"
	"strings"
	"time"

	"github.com/despensa/planner-service/internal/optimizer"
)

// SeasonalFactors scales estimated consumption per category and month.
var SeasonalFactors = map[string]map[time.Month]float64{
	"gelados": {
		time.June: 1.3, time.July: 1.4, time.August: 1.4, time.September: 1.2,
	},
	"sumos": {
		time.June: 1.2, time.July: 1.3, time.August: 1.3, time.September: 1.2,
	},
	"sopas": {
		time.November: 1.2, time.December: 1.3, time.January: 1.3, time.February: 1.2,
	},
	"chocolate": {
		time.November: 1.2, time.December: 1.4, time.January: 1.2,
	},
}

// AlertThresholdDays is the stock horizon below which an alert fires.
const AlertThresholdDays = 2.0

// minConfidence gates predictions: products with fewer than 4 recorded
// purchases are not trusted for stock estimates or list generation.
const minConfidence = 0.5

// SeasonalFactor returns the multiplier for a category in a given month,
// 1.0 when unlisted.
func SeasonalFactor(category string, month time.Month) float64 {
	if f, ok := SeasonalFactors[category][month]; ok {
		return f
	}
	return 1.0
}

// weightedAverage favors recent values: the last entries weigh up to 4,
// older ones progressively less.
func weightedAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	const maxWeight = 4.0
	var sum, totalWeight float64
	n := len(values)
	for i, v := range values {
		w := math.Min(maxWeight, float64(n-i))
		sum += v * w
		totalWeight += w
	}
	return sum / totalWeight
}

// ProductID derives the model key from a product name.
func ProductID(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// PurchaseRecord is one historical purchase of a product.
type PurchaseRecord struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
	Unit     string    `json:"unit"`
	Market   string    `json:"market"`
	Price    float64   `json:"price"`
}

// WeeklyConsumption is the estimated amount consumed per week.
type WeeklyConsumption struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Product is one tracked product in the consumption model.
type Product struct {
	Name                    string              `json:"name"`
	Category                string              `json:"category"`
	PurchaseHistory         []PurchaseRecord    `json:"purchase_history"`
	PreferredBrand          string              `json:"preferred_brand,omitempty"`
	AcceptableBrands        []string            `json:"acceptable_brands,omitempty"`
	PreferredStore          string              `json:"preferred_store,omitempty"`
	BulkEligible            bool                `json:"bulk_eligible"`
	BulkQuantity            *optimizer.Quantity `json:"bulk_quantity,omitempty"`
	Confidence              float64             `json:"confidence"`
	AvgPurchaseIntervalDays float64             `json:"avg_purchase_interval_days,omitempty"`
	AvgWeeklyConsumption    *WeeklyConsumption  `json:"avg_weekly_consumption,omitempty"`
	LastPurchased           time.Time           `json:"last_purchased,omitempty"`
	LastQuantity            float64             `json:"last_quantity,omitempty"`
	EstimatedStockDays      *float64            `json:"estimated_stock_remaining_days,omitempty"`
	Active                  *bool               `json:"active,omitempty"`
}

// IsActive reports whether the product is still tracked; nil means active.
func (p *Product) IsActive() bool {
	return p.Active == nil || *p.Active
}

// Trusted reports whether the model has seen enough purchases of this product
// to act on its predictions.
func (p *Product) Trusted() bool {
	return p.Confidence >= minConfidence
}

// Model is the full consumption model keyed by product id.
type Model map[string]*Product

// historyLimit caps the purchase history kept per product.
const historyLimit = 12

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
