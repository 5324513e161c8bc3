package pricecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/despensa/planner-service/internal/markets"
)

type memStore struct {
	snap  Snapshot
	saves int
}

func (m *memStore) Load(ctx context.Context) (Snapshot, error) {
	if m.snap == nil {
		return make(Snapshot), nil
	}
	return m.snap.Clone(), nil
}

func (m *memStore) Save(ctx context.Context, snap Snapshot) error {
	m.snap = snap.Clone()
	m.saves++
	return nil
}

func newTestCache(t *testing.T, snap Snapshot) (*Cache, *memStore) {
	t.Helper()
	store := &memStore{snap: snap}
	c, err := New(context.Background(), store, DefaultTTL)
	require.NoError(t, err)
	return c, store
}

func entryAt(price float64, cachedAt time.Time) Entry {
	return Entry{Name: "test", Price: price, CachedAt: cachedAt}
}

func TestLookupExactMatch(t *testing.T) {
	now := time.Now()
	c, _ := newTestCache(t, Snapshot{
		markets.Continente: {
			"leite meio gordo": entryAt(0.89, now),
		},
	})

	entry, ok := c.Lookup(markets.Continente, "Leite Meio Gordo")
	require.True(t, ok)
	assert.Equal(t, 0.89, entry.Price)
}

func TestLookupSubstringBothDirections(t *testing.T) {
	now := time.Now()
	c, _ := newTestCache(t, Snapshot{
		markets.Continente: {
			"leite meio gordo mimosa 1l": entryAt(0.89, now),
			"arroz":                      entryAt(1.19, now),
		},
	})

	// query is a substring of the cached key
	entry, ok := c.Lookup(markets.Continente, "leite meio gordo")
	require.True(t, ok)
	assert.Equal(t, 0.89, entry.Price)

	// cached key is a substring of the query
	entry, ok = c.Lookup(markets.Continente, "arroz agulha bom sucesso")
	require.True(t, ok)
	assert.Equal(t, 1.19, entry.Price)
}

func TestLookupDeterministicFallback(t *testing.T) {
	now := time.Now()
	c, _ := newTestCache(t, Snapshot{
		markets.Continente: {
			"azeite virgem extra": entryAt(4.99, now),
			"azeite virgem":       entryAt(3.99, now),
		},
	})

	// Both keys contain the query; the lexicographically first key wins, every
	// time.
	for i := 0; i < 10; i++ {
		entry, ok := c.Lookup(markets.Continente, "azeite")
		require.True(t, ok)
		assert.Equal(t, 3.99, entry.Price)
	}
}

func TestLookupExpiredEntryIsMiss(t *testing.T) {
	stale := time.Now().Add(-25 * time.Hour)
	c, _ := newTestCache(t, Snapshot{
		markets.Continente: {
			"leite": entryAt(0.89, stale),
		},
	})

	_, ok := c.Lookup(markets.Continente, "leite")
	assert.False(t, ok)
}

func TestLookupExpiredExactFallsThroughToFresherSubstring(t *testing.T) {
	now := time.Now()
	c, _ := newTestCache(t, Snapshot{
		markets.Continente: {
			"leite":            entryAt(0.89, now.Add(-25*time.Hour)),
			"leite meio gordo": entryAt(0.99, now),
		},
	})

	entry, ok := c.Lookup(markets.Continente, "leite")
	require.True(t, ok)
	assert.Equal(t, 0.99, entry.Price)
}

func TestLookupUnknownMarket(t *testing.T) {
	c, _ := newTestCache(t, Snapshot{})

	_, ok := c.Lookup("mercadona", "leite")
	assert.False(t, ok)
}

func TestUpdatePersistsAndStampsCachedAt(t *testing.T) {
	c, store := newTestCache(t, Snapshot{})

	err := c.Update(context.Background(), markets.PingoDoce, "Ovos Classe M", Entry{Price: 2.29})
	require.NoError(t, err)
	assert.Equal(t, 1, store.saves)

	entry, found, valid := c.Get(markets.PingoDoce, "ovos classe m")
	require.True(t, found)
	assert.True(t, valid)
	assert.Equal(t, 2.29, entry.Price)
	assert.Equal(t, "Ovos Classe M", entry.Name)
	assert.False(t, entry.CachedAt.IsZero())

	// made it to the store
	assert.Contains(t, store.snap[markets.PingoDoce], "ovos classe m")
}

func TestUpdateRejectsUnknownMarket(t *testing.T) {
	c, _ := newTestCache(t, Snapshot{})

	err := c.Update(context.Background(), "mercadona", "leite", Entry{Price: 1.0})
	assert.ErrorContains(t, err, "unknown market")
}

func TestUpdateRejectsEmptyProduct(t *testing.T) {
	c, _ := newTestCache(t, Snapshot{})

	err := c.Update(context.Background(), markets.Continente, "   ", Entry{Price: 1.0})
	assert.Error(t, err)
}

func TestSearchScoring(t *testing.T) {
	now := time.Now()
	c, _ := newTestCache(t, Snapshot{
		markets.Continente: {
			"leite":            entryAt(0.89, now),
			"leite meio gordo": entryAt(0.99, now),
		},
		markets.PingoDoce: {
			"leite magro": entryAt(0.85, now),
		},
	})

	results := c.Search("leite", "", 5)
	require.Len(t, results, 3)

	// exact match first with score 1.0
	assert.Equal(t, "leite", results[0].Key)
	assert.Equal(t, 1.0, results[0].Score)

	// partial matches score by coverage
	for _, r := range results[1:] {
		assert.Greater(t, r.Score, 0.5)
		assert.Less(t, r.Score, 1.0)
	}
}

func TestSearchFoldsDiacritics(t *testing.T) {
	now := time.Now()
	c, _ := newTestCache(t, Snapshot{
		markets.Continente: {
			"pão de forma": entryAt(1.29, now),
		},
	})

	results := c.Search("pao", "", 5)
	require.Len(t, results, 1)
	assert.Equal(t, "pão de forma", results[0].Key)
}

func TestSearchMarketFilterAndLimit(t *testing.T) {
	now := time.Now()
	snap := Snapshot{
		markets.Continente: map[string]Entry{},
		markets.PingoDoce:  {"leite": entryAt(0.85, now)},
	}
	for _, k := range []string{"leite a", "leite b", "leite c", "leite d", "leite e", "leite f"} {
		snap[markets.Continente][k] = entryAt(1.0, now)
	}
	c, _ := newTestCache(t, snap)

	results := c.Search("leite", markets.PingoDoce, 5)
	require.Len(t, results, 1)
	assert.Equal(t, markets.PingoDoce, results[0].Market)

	results = c.Search("leite", markets.Continente, 5)
	assert.Len(t, results, 5)
}

func TestExpiredAndStats(t *testing.T) {
	now := time.Now()
	c, _ := newTestCache(t, Snapshot{
		markets.Continente: {
			"fresh": entryAt(1.0, now),
			"stale": entryAt(1.0, now.Add(-25*time.Hour)),
		},
		markets.PingoDoce: {
			"fresh": entryAt(1.0, now),
		},
	})

	expired := c.Expired("")
	require.Len(t, expired, 1)
	assert.Equal(t, markets.Continente, expired[0].Market)
	assert.Equal(t, "stale", expired[0].Product)

	assert.Empty(t, c.Expired(markets.PingoDoce))

	stats := c.Stats()
	assert.Equal(t, MarketStats{Total: 2, Valid: 1, Expired: 1}, stats[markets.Continente])
	assert.Equal(t, MarketStats{Total: 1, Valid: 1, Expired: 0}, stats[markets.PingoDoce])
	assert.Equal(t, MarketStats{Total: 3, Valid: 2, Expired: 1}, stats["total"])
}

func TestEffectivePrice(t *testing.T) {
	promo := 0.79
	zero := 0.0

	assert.Equal(t, 0.89, Entry{Price: 0.89}.EffectivePrice())
	assert.Equal(t, 0.79, Entry{Price: 0.89, PromoEffectivePrice: &promo}.EffectivePrice())
	assert.Equal(t, 0.89, Entry{Price: 0.89, PromoEffectivePrice: &zero}.EffectivePrice())
}
