package preferences

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/despensa/planner-service/internal/markets"
	"github.com/despensa/planner-service/internal/optimizer"
	"github.com/despensa/planner-service/internal/storage"
)

func newStore(t *testing.T) *storage.LocalStore {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestLoadDefaultsWhenAbsent(t *testing.T) {
	prefs, err := Load(context.Background(), newStore(t))
	require.NoError(t, err)
	assert.Equal(t, 150.0, prefs.Budget.WeeklyLimitEUR)
	assert.Equal(t, 120.0, prefs.Budget.BulkMonthlyBudgetEUR)
	assert.Empty(t, prefs.Markets)
}

func TestLoadFillsMissingLimits(t *testing.T) {
	store := newStore(t)
	saved := Preferences{
		Markets: map[string]optimizer.MarketConfig{
			markets.Continente: {Balance: 12.5},
		},
	}
	require.NoError(t, store.Save(context.Background(), storage.KeyPreferences, saved))

	prefs, err := Load(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 150.0, prefs.Budget.WeeklyLimitEUR)
	assert.Equal(t, 12.5, prefs.Markets[markets.Continente].Balance)
}

func TestLoadRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		prefs Preferences
		want  string
	}{
		{
			"negative weekly limit",
			Preferences{Budget: Budget{WeeklyLimitEUR: -10}},
			"weekly_limit_eur",
		},
		{
			"unknown market",
			Preferences{Markets: map[string]optimizer.MarketConfig{"mercadona": {}}},
			"unknown market",
		},
		{
			"negative balance",
			Preferences{Markets: map[string]optimizer.MarketConfig{markets.Continente: {Balance: -1}}},
			"balance",
		},
		{
			"negative coupon discount",
			Preferences{Markets: map[string]optimizer.MarketConfig{
				markets.PingoDoce: {Coupons: []optimizer.Coupon{{Description: "bad", DiscountEUR: -3}}},
			}},
			"discount_eur",
		},
		{
			"negative min spend",
			Preferences{Markets: map[string]optimizer.MarketConfig{
				markets.PingoDoce: {Coupons: []optimizer.Coupon{{Description: "bad", MinSpend: -1}}},
			}},
			"min_spend",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			require.NoError(t, store.Save(context.Background(), storage.KeyPreferences, tt.prefs))

			_, err := Load(context.Background(), store)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
