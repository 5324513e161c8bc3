package optimizer

// DeliveryCost returns the delivery fee for an order of the given value.
// Markets at or above their free-delivery threshold pay nothing. Markets
// without a delivery entry cost 0 — a permissive default, not an error.
func (c Config) DeliveryCost(market string, subtotal float64) float64 {
	dc, ok := c.Delivery[market]
	if !ok {
		return 0
	}
	if dc.FreeThreshold != nil && subtotal >= *dc.FreeThreshold {
		return 0
	}
	return dc.Cost
}

// GapToFreeDelivery returns how much more the order needs to reach free
// delivery, or 0 when the market has no threshold or is already past it.
func (c Config) GapToFreeDelivery(market string, subtotal float64) float64 {
	dc, ok := c.Delivery[market]
	if !ok || dc.FreeThreshold == nil {
		return 0
	}
	if gap := *dc.FreeThreshold - subtotal; gap > 0 {
		return gap
	}
	return 0
}
