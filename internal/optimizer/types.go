// Package optimizer computes the cost-minimizing split of a shopping list
// across the configured online markets, including coupons, stored balances,
// delivery fees and a free-delivery rebalancing pass.
package optimizer

import (
	"github.com/despensa/planner-service/internal/markets"
	"github.com/despensa/planner-service/internal/pricecache"
)

// Quantity is an amount with a unit ("1.5 kg", "6 un").
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// ShoppingItem is one line of the shopping list. PreferredStore may name a
// market or a physical store; only online market identifiers affect routing.
type ShoppingItem struct {
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Quantity       Quantity `json:"quantity"`
	PreferredStore string   `json:"preferred_store,omitempty"`
}

// DefaultCategory is assumed when an item carries no category.
const DefaultCategory = "outros"

// CategoryOrDefault returns the item's category, defaulting empty to "outros".
func (s ShoppingItem) CategoryOrDefault() string {
	if s.Category == "" {
		return DefaultCategory
	}
	return s.Category
}

// ItemPrices pairs a shopping item with its resolved price entries per market.
// The caller resolves names against the price cache before optimization; the
// optimizer itself never touches the cache.
type ItemPrices struct {
	Item   ShoppingItem
	Prices map[string]pricecache.Entry
}

// Coupon is a flat-discount voucher with an optional minimum spend and
// category restriction. Empty Categories means the coupon applies to any cart.
type Coupon struct {
	Description string   `json:"description"`
	DiscountEUR float64  `json:"discount_eur"`
	MinSpend    float64  `json:"min_spend"`
	Categories  []string `json:"categories,omitempty"`
}

// AppliedCoupon records one coupon's contribution, in application order.
type AppliedCoupon struct {
	Description string  `json:"description"`
	Discount    float64 `json:"discount"`
}

// MarketConfig carries the per-market coupon set and stored balance from the
// household preferences. The zero value (no coupons, no balance) is valid.
type MarketConfig struct {
	Coupons []Coupon `json:"coupons,omitempty"`
	Balance float64  `json:"balance,omitempty"`
}

// AssignedItem is one item as it lands in a market's basket.
type AssignedItem struct {
	Name                  string   `json:"name"`
	Category              string   `json:"category"`
	Quantity              Quantity `json:"quantity"`
	Price                 float64  `json:"price"`
	Promo                 string   `json:"promo,omitempty"`
	PreferredStoreHonored bool     `json:"preferred_store_honored,omitempty"`
}

// MarketResult is the per-market breakdown of one optimization run. Monetary
// fields are rounded to 2 decimals at construction; intermediate accumulation
// is never rounded.
type MarketResult struct {
	Items          []AssignedItem  `json:"items"`
	Subtotal       float64         `json:"subtotal"`
	CouponDiscount float64         `json:"coupon_discount"`
	CouponsApplied []AppliedCoupon `json:"coupons_applied,omitempty"`
	BalanceUsed    float64         `json:"balance_used"`
	AfterDiscounts float64         `json:"after_discounts"`
	Delivery       float64         `json:"delivery"`
	Total          float64         `json:"total"`
}

// UnavailableItem is an input item found in no market's cache.
type UnavailableItem struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Alternative simulates buying the entire list from one market.
type Alternative struct {
	Strategy       string  `json:"strategy"`
	Subtotal       float64 `json:"subtotal"`
	CouponDiscount float64 `json:"coupon_discount"`
	BalanceUsed    float64 `json:"balance_used"`
	Delivery       float64 `json:"delivery"`
	Total          float64 `json:"total"`
	AllAvailable   bool    `json:"all_available"`
}

// Result is the complete outcome of one optimization run.
type Result struct {
	Markets             map[string]MarketResult `json:"markets"`
	Total               float64                 `json:"total"`
	SavingsVsBestSingle float64                 `json:"savings_vs_best_single"`
	Alternatives        []Alternative           `json:"alternatives"`
	Unavailable         []UnavailableItem       `json:"unavailable,omitempty"`
	RecommendationNote  *string                 `json:"recommendation_note"`
}

const (
	// RebalanceGapThreshold is the largest gap to a free-delivery threshold
	// the rebalancing pass will try to close.
	RebalanceGapThreshold = 5.0

	// SimplicityThreshold is the minimum saving of the split over the best
	// single-market purchase before splitting is recommended.
	SimplicityThreshold = 5.0
)

// Config holds the static optimization parameters: the ordered market list
// (iteration order breaks price ties, first listed wins) and the delivery
// table.
type Config struct {
	Markets             []string
	Delivery            map[string]markets.DeliveryConfig
	GapThreshold        float64
	SimplicityThreshold float64
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Markets:             markets.Online(),
		Delivery:            markets.DeliveryTable(),
		GapThreshold:        RebalanceGapThreshold,
		SimplicityThreshold: SimplicityThreshold,
	}
}
