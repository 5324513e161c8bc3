// Package preferences loads and validates the household preferences document:
// budget limits, per-market coupons and balances, and physical store metadata.
package preferences

import (
	"context"
	"errors"
	"fmt"

	"github.com/despensa/planner-service/internal/markets"
	"github.com/despensa/planner-service/internal/optimizer"
	"github.com/despensa/planner-service/internal/storage"
)

// Budget holds the household spending limits.
type Budget struct {
	WeeklyLimitEUR       float64 `json:"weekly_limit_eur"`
	BulkMonthlyBudgetEUR float64 `json:"bulk_monthly_budget_eur"`
}

// PhysicalStore is display metadata for a physical store; routing does not
// depend on it.
type PhysicalStore struct {
	Name           string `json:"name,omitempty"`
	VisitFrequency string `json:"visit_frequency,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// Preferences is the household preferences document.
type Preferences struct {
	Budget         Budget                            `json:"budget"`
	Markets        map[string]optimizer.MarketConfig `json:"markets,omitempty"`
	PhysicalStores map[string]PhysicalStore          `json:"physical_stores,omitempty"`
}

// DefaultBulkMonthlyBudget applies when the preferences configure none.
const DefaultBulkMonthlyBudget = 120.0

// Default returns preferences with the standard limits and no market extras.
func Default() Preferences {
	return Preferences{
		Budget: Budget{
			WeeklyLimitEUR:       optimizer.DefaultWeeklyLimit,
			BulkMonthlyBudgetEUR: DefaultBulkMonthlyBudget,
		},
	}
}

// Load reads preferences from the store, applying defaults when the document
// is absent or leaves limits unset. Malformed documents fail here, at the
// load boundary, never inside the optimizer.
func Load(ctx context.Context, store storage.DocumentStore) (Preferences, error) {
	var prefs Preferences
	err := store.Load(ctx, storage.KeyPreferences, &prefs)
	if errors.Is(err, storage.ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	if prefs.Budget.WeeklyLimitEUR == 0 {
		prefs.Budget.WeeklyLimitEUR = optimizer.DefaultWeeklyLimit
	}
	if prefs.Budget.BulkMonthlyBudgetEUR == 0 {
		prefs.Budget.BulkMonthlyBudgetEUR = DefaultBulkMonthlyBudget
	}

	if err := prefs.Validate(); err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

// Validate rejects structurally valid but nonsensical preferences.
func (p Preferences) Validate() error {
	if p.Budget.WeeklyLimitEUR < 0 {
		return fmt.Errorf("weekly_limit_eur cannot be negative: %v", p.Budget.WeeklyLimitEUR)
	}
	if p.Budget.BulkMonthlyBudgetEUR < 0 {
		return fmt.Errorf("bulk_monthly_budget_eur cannot be negative: %v", p.Budget.BulkMonthlyBudgetEUR)
	}
	for market, mc := range p.Markets {
		if !markets.IsOnline(market) {
			return fmt.Errorf("markets config references unknown market %q, expected one of %v", market, markets.Online())
		}
		if mc.Balance < 0 {
			return fmt.Errorf("market %q: balance cannot be negative: %v", market, mc.Balance)
		}
		for i, c := range mc.Coupons {
			if c.DiscountEUR < 0 {
				return fmt.Errorf("market %q: coupon %d (%q): discount_eur cannot be negative", market, i, c.Description)
			}
			if c.MinSpend < 0 {
				return fmt.Errorf("market %q: coupon %d (%q): min_spend cannot be negative", market, i, c.Description)
			}
		}
	}
	return nil
}
