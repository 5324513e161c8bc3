// Package markets holds the closed set of supermarket integrations and their
// static delivery configuration. This is the only file to touch when adding
// support for a new online supermarket.
package markets

// Market identifiers for the supported online integrations.
const (
	Continente = "continente"
	PingoDoce  = "pingodoce"
)

// DeliveryConfig holds the static delivery terms for one market.
// A nil FreeThreshold means delivery is never free for that market.
type DeliveryConfig struct {
	Cost          float64
	FreeThreshold *float64
	MinOrder      float64
}

var deliveryTable = map[string]DeliveryConfig{
	Continente: {Cost: 3.99, FreeThreshold: ptr(50.0), MinOrder: 0},
	PingoDoce:  {Cost: 2.99, FreeThreshold: ptr(100.0), MinOrder: 0},
}

func ptr(v float64) *float64 { return &v }

// Online returns the ordered list of markets with an active online
// integration. The order determines the tie-break when two markets quote the
// same price: the first listed wins.
func Online() []string {
	return []string{
		Continente,
		PingoDoce,
	}
}

// IsOnline reports whether id names a market with an online integration.
// A preferred_store value outside this set is a physical store and never
// affects online routing.
func IsOnline(id string) bool {
	for _, m := range Online() {
		if m == id {
			return true
		}
	}
	return false
}

// Delivery returns the delivery configuration for a market. Unknown markets
// get the zero config, which charges nothing. Permissive on purpose: an
// unconfigured market must not block an otherwise valid comparison.
func Delivery(market string) DeliveryConfig {
	cfg, ok := deliveryTable[market]
	if !ok {
		return DeliveryConfig{}
	}
	return cfg
}

// DeliveryTable returns a copy of the full delivery configuration table,
// keyed by market identifier.
func DeliveryTable() map[string]DeliveryConfig {
	out := make(map[string]DeliveryConfig, len(deliveryTable))
	for k, v := range deliveryTable {
		out[k] = v
	}
	return out
}
