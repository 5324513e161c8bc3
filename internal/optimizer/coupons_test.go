package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cart(categories ...string) map[string]bool {
	m := make(map[string]bool, len(categories))
	for _, c := range categories {
		m[c] = true
	}
	return m
}

func TestApplyCouponsMinSpend(t *testing.T) {
	coupons := []Coupon{
		{Description: "5 off 50", DiscountEUR: 5.0, MinSpend: 50.0},
	}

	discount, applied := ApplyCoupons(49.99, coupons, cart("outros"))
	assert.Equal(t, 0.0, discount)
	assert.Empty(t, applied)

	discount, applied = ApplyCoupons(50.0, coupons, cart("outros"))
	assert.Equal(t, 5.0, discount)
	require.Len(t, applied, 1)
	assert.Equal(t, "5 off 50", applied[0].Description)
}

func TestApplyCouponsCategoryRestriction(t *testing.T) {
	coupons := []Coupon{
		{Description: "fresh only", DiscountEUR: 2.0, Categories: []string{"frescos"}},
		{Description: "any cart", DiscountEUR: 1.0},
	}

	discount, applied := ApplyCoupons(30.0, coupons, cart("mercearia"))
	assert.Equal(t, 1.0, discount)
	require.Len(t, applied, 1)
	assert.Equal(t, "any cart", applied[0].Description)

	discount, applied = ApplyCoupons(30.0, coupons, cart("frescos", "mercearia"))
	assert.Equal(t, 3.0, discount)
	assert.Len(t, applied, 2)
}

func TestApplyCouponsGreedyOrder(t *testing.T) {
	coupons := []Coupon{
		{Description: "small", DiscountEUR: 1.0},
		{Description: "big", DiscountEUR: 4.0},
		{Description: "medium", DiscountEUR: 2.0},
	}

	_, applied := ApplyCoupons(100.0, coupons, cart("outros"))
	require.Len(t, applied, 3)
	assert.Equal(t, "big", applied[0].Description)
	assert.Equal(t, "medium", applied[1].Description)
	assert.Equal(t, "small", applied[2].Description)
}

func TestApplyCouponsStableTieBreak(t *testing.T) {
	coupons := []Coupon{
		{Description: "first", DiscountEUR: 2.0},
		{Description: "second", DiscountEUR: 2.0},
	}

	_, applied := ApplyCoupons(100.0, coupons, cart("outros"))
	require.Len(t, applied, 2)
	assert.Equal(t, "first", applied[0].Description)
	assert.Equal(t, "second", applied[1].Description)
}

// Cumulative discount can never exceed the subtotal.
func TestApplyCouponsCappedAtSubtotal(t *testing.T) {
	coupons := []Coupon{
		{Description: "a", DiscountEUR: 4.0},
		{Description: "b", DiscountEUR: 3.0},
		{Description: "c", DiscountEUR: 2.0},
	}

	discount, applied := ApplyCoupons(5.0, coupons, cart("outros"))
	assert.Equal(t, 5.0, discount)
	// 4.0 applied in full, then b capped at the remaining 1.0, c contributes
	// nothing.
	require.Len(t, applied, 2)
	assert.Equal(t, 4.0, applied[0].Discount)
	assert.Equal(t, 1.0, applied[1].Discount)
}

func TestApplyCouponsDiscountBounds(t *testing.T) {
	coupons := []Coupon{
		{Description: "a", DiscountEUR: 7.5, MinSpend: 10},
		{Description: "b", DiscountEUR: 3.25},
		{Description: "zero", DiscountEUR: 0},
	}

	for _, subtotal := range []float64{0, 0.01, 3.0, 9.99, 10.0, 55.5, 200.0} {
		discount, _ := ApplyCoupons(subtotal, coupons, cart("outros"))
		assert.GreaterOrEqual(t, discount, 0.0, "subtotal %v", subtotal)
		assert.LessOrEqual(t, discount, subtotal, "subtotal %v", subtotal)
	}
}

func TestApplyCouponsNoCoupons(t *testing.T) {
	discount, applied := ApplyCoupons(42.0, nil, cart("outros"))
	assert.Equal(t, 0.0, discount)
	assert.Empty(t, applied)
}
