package optimizer

import (
	"sort"

	"github.com/despensa/planner-service/internal/money"
)

// ApplyCoupons selects and applies coupons against a subtotal. Eligible
// coupons (min spend reached, category restriction satisfied) are applied
// greedily in descending discount order, each capped at what remains of the
// subtotal, so the cumulative discount can never exceed it.
//
// Greedy, not globally optimal: discounts are small and additive in practice,
// so an exhaustive search buys nothing.
func ApplyCoupons(subtotal float64, coupons []Coupon, cartCategories map[string]bool) (float64, []AppliedCoupon) {
	eligible := make([]Coupon, 0, len(coupons))
	for _, c := range coupons {
		if c.DiscountEUR <= 0 || subtotal < c.MinSpend {
			continue
		}
		if len(c.Categories) > 0 && !intersects(c.Categories, cartCategories) {
			continue
		}
		eligible = append(eligible, c)
	}

	// Stable sort keeps the original order among equal discounts.
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].DiscountEUR > eligible[j].DiscountEUR
	})

	var applied []AppliedCoupon
	var total float64
	for _, c := range eligible {
		remaining := subtotal - total
		if remaining <= 0 {
			break
		}
		discount := c.DiscountEUR
		if discount > remaining {
			discount = remaining
		}
		total += discount
		applied = append(applied, AppliedCoupon{
			Description: c.Description,
			Discount:    money.Round2(discount),
		})
	}
	return money.Round2(total), applied
}

func intersects(categories []string, cart map[string]bool) bool {
	for _, c := range categories {
		if cart[c] {
			return true
		}
	}
	return false
}
