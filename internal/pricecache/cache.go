package pricecache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/despensa/planner-service/internal/markets"
)

// Cache holds the in-memory price snapshot and keeps it in sync with a Store.
// Reads take a consistent view for the duration of one comparison run; there
// are no concurrent writers during optimization.
type Cache struct {
	mu    sync.RWMutex
	snap  Snapshot
	store Store
	ttl   time.Duration

	// now is injectable for tests.
	now func() time.Time

	logger zerolog.Logger
}

// New creates a cache, loading the persisted snapshot from the store.
func New(ctx context.Context, store Store, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load price cache: %w", err)
	}
	c := &Cache{
		snap:   snap,
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: log.With().Str("component", "price_cache").Logger(),
	}
	c.logger.Info().Int("markets", len(snap)).Msg("Price cache loaded")
	return c, nil
}

// TTL returns the freshness window applied to entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Lookup resolves a free-text product name to a fresh price entry for one
// market. Exact key match wins; otherwise the market's entries are scanned
// for a substring match in either direction. Stale entries are treated as
// absent. Pure read, no side effects.
func (c *Cache) Lookup(market, productName string) (Entry, bool) {
	key := NormalizeKey(productName)
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	entries, ok := c.snap[market]
	if !ok {
		recordMiss(market)
		return Entry{}, false
	}

	if entry, ok := entries[key]; ok && entry.ValidAt(now, c.ttl) {
		recordHit(market)
		return entry, true
	}

	// Substring fallback. Keys are scanned in sorted order so the fallback is
	// deterministic across runs.
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if strings.Contains(k, key) || strings.Contains(key, k) {
			if entry := entries[k]; entry.ValidAt(now, c.ttl) {
				recordHit(market)
				return entry, true
			}
		}
	}

	recordMiss(market)
	return Entry{}, false
}

// Get returns the exact entry for (market, product) along with its freshness,
// without the substring fallback.
func (c *Cache) Get(market, productName string) (Entry, bool, bool) {
	key := NormalizeKey(productName)

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.snap[market][key]
	if !ok {
		return Entry{}, false, false
	}
	return entry, true, entry.ValidAt(c.now(), c.ttl)
}

// Update inserts or replaces the entry for (market, product) and persists the
// snapshot. CachedAt is stamped here.
func (c *Cache) Update(ctx context.Context, market, productName string, entry Entry) error {
	if !markets.IsOnline(market) {
		return fmt.Errorf("unknown market %q, expected one of %v", market, markets.Online())
	}

	key := NormalizeKey(productName)
	if key == "" {
		return fmt.Errorf("product name cannot be empty")
	}
	if entry.Name == "" {
		entry.Name = productName
	}
	entry.CachedAt = c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap[market] == nil {
		c.snap[market] = make(map[string]Entry)
	}
	c.snap[market][key] = entry

	if err := c.store.Save(ctx, c.snap); err != nil {
		return fmt.Errorf("failed to persist price cache: %w", err)
	}

	c.logger.Debug().
		Str("market", market).
		Str("key", key).
		Float64("price", entry.Price).
		Msg("Price entry updated")
	return nil
}

// UpdateBatch inserts or replaces many entries for one market under a single
// persist. Entries with an empty normalized name are skipped. Returns the
// number of entries written.
func (c *Cache) UpdateBatch(ctx context.Context, market string, entries []Entry) (int, error) {
	if !markets.IsOnline(market) {
		return 0, fmt.Errorf("unknown market %q, expected one of %v", market, markets.Online())
	}

	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap[market] == nil {
		c.snap[market] = make(map[string]Entry)
	}

	written := 0
	for _, entry := range entries {
		key := NormalizeKey(entry.Name)
		if key == "" {
			continue
		}
		entry.CachedAt = now
		c.snap[market][key] = entry
		written++
	}

	if written > 0 {
		if err := c.store.Save(ctx, c.snap); err != nil {
			return 0, fmt.Errorf("failed to persist price cache: %w", err)
		}
	}

	c.logger.Info().
		Str("market", market).
		Int("written", written).
		Msg("Price entries imported")
	return written, nil
}

// SearchResult is one scored hit from a fuzzy cache search.
type SearchResult struct {
	Market string  `json:"market"`
	Key    string  `json:"key"`
	Score  float64 `json:"score"`
	Entry  Entry   `json:"entry"`
}

// Search finds entries whose key contains the query, accent-insensitively.
// Exact key matches score 1.0, partial matches score by how much of the key
// the query covers. Market filters the search when non-empty.
func (c *Cache) Search(query, market string, limit int) []SearchResult {
	if limit <= 0 {
		limit = 5
	}
	q := foldKey(query)
	if q == "" {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var results []SearchResult
	for _, m := range markets.Online() {
		if market != "" && m != market {
			continue
		}
		for k, entry := range c.snap[m] {
			folded := FoldDiacritics(k)
			if !strings.Contains(folded, q) {
				continue
			}
			score := 0.5 + (float64(len(q))/float64(len(folded)))*0.5
			if folded == q {
				score = 1.0
			}
			results = append(results, SearchResult{Market: m, Key: k, Score: score, Entry: entry})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Key < results[j].Key
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// ExpiredEntry identifies one stale cache entry.
type ExpiredEntry struct {
	Market   string    `json:"market"`
	Product  string    `json:"product"`
	CachedAt time.Time `json:"cached_at"`
}

// Expired lists stale entries, optionally filtered to one market.
func (c *Cache) Expired(market string) []ExpiredEntry {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	var expired []ExpiredEntry
	for _, m := range markets.Online() {
		if market != "" && m != market {
			continue
		}
		keys := make([]string, 0, len(c.snap[m]))
		for k := range c.snap[m] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if entry := c.snap[m][k]; !entry.ValidAt(now, c.ttl) {
				expired = append(expired, ExpiredEntry{Market: m, Product: k, CachedAt: entry.CachedAt})
			}
		}
	}
	return expired
}

// MarketStats holds per-market entry counts.
type MarketStats struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Expired int `json:"expired"`
}

// Stats returns per-market and overall entry counts.
func (c *Cache) Stats() map[string]MarketStats {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make(map[string]MarketStats, len(markets.Online())+1)
	var totalValid, totalExpired int
	for _, m := range markets.Online() {
		s := MarketStats{Total: len(c.snap[m])}
		for _, entry := range c.snap[m] {
			if entry.ValidAt(now, c.ttl) {
				s.Valid++
			} else {
				s.Expired++
			}
		}
		totalValid += s.Valid
		totalExpired += s.Expired
		stats[m] = s
		recordEntryCount(m, s.Total)
	}
	stats["total"] = MarketStats{Total: totalValid + totalExpired, Valid: totalValid, Expired: totalExpired}
	return stats
}
