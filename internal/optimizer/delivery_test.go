package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/despensa/planner-service/internal/markets"
)

func TestDeliveryCost(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		market   string
		subtotal float64
		want     float64
	}{
		{"below threshold", markets.Continente, 49.99, 3.99},
		{"at threshold", markets.Continente, 50.0, 0},
		{"above threshold", markets.Continente, 120.0, 0},
		{"second market below", markets.PingoDoce, 99.99, 2.99},
		{"second market at threshold", markets.PingoDoce, 100.0, 0},
		{"zero subtotal still charged", markets.Continente, 0, 3.99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.DeliveryCost(tt.market, tt.subtotal))
		})
	}
}

// Unconfigured markets never charge delivery. Permissive on purpose; this test
// pins the behavior so a config gap shows up here instead of in totals.
func TestDeliveryCostUnknownMarket(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.0, cfg.DeliveryCost("mercadona", 1.0))
	assert.Equal(t, 0.0, cfg.GapToFreeDelivery("mercadona", 1.0))
}

func TestGapToFreeDelivery(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 4.0, cfg.GapToFreeDelivery(markets.Continente, 46.0))
	assert.Equal(t, 0.0, cfg.GapToFreeDelivery(markets.Continente, 50.0))
	assert.Equal(t, 0.0, cfg.GapToFreeDelivery(markets.Continente, 80.0))
}

func TestDeliveryCostNoThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Delivery = map[string]markets.DeliveryConfig{
		"pickup": {Cost: 1.50},
	}

	// no threshold means delivery is never free
	assert.Equal(t, 1.50, cfg.DeliveryCost("pickup", 10_000.0))
	assert.Equal(t, 0.0, cfg.GapToFreeDelivery("pickup", 0))
}
