package markets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnlineOrderIsStable(t *testing.T) {
	assert.Equal(t, []string{Continente, PingoDoce}, Online())
}

func TestIsOnline(t *testing.T) {
	assert.True(t, IsOnline(Continente))
	assert.True(t, IsOnline(PingoDoce))
	assert.False(t, IsOnline("auchan"))
	assert.False(t, IsOnline("talho do bairro"))
	assert.False(t, IsOnline(""))
}

func TestDeliveryKnownMarkets(t *testing.T) {
	cont := Delivery(Continente)
	assert.Equal(t, 3.99, cont.Cost)
	require.NotNil(t, cont.FreeThreshold)
	assert.Equal(t, 50.0, *cont.FreeThreshold)

	pd := Delivery(PingoDoce)
	assert.Equal(t, 2.99, pd.Cost)
	require.NotNil(t, pd.FreeThreshold)
	assert.Equal(t, 100.0, *pd.FreeThreshold)
}

// Unknown markets deliberately get a zero-cost config. This is permissive and
// can mask a missing table entry, so it is pinned here rather than "fixed".
func TestDeliveryUnknownMarketIsZero(t *testing.T) {
	cfg := Delivery("auchan")
	assert.Equal(t, 0.0, cfg.Cost)
	assert.Nil(t, cfg.FreeThreshold)
}

func TestDeliveryTableIsACopy(t *testing.T) {
	table := DeliveryTable()
	table[Continente] = DeliveryConfig{Cost: 99}
	assert.Equal(t, 3.99, Delivery(Continente).Cost)
}
