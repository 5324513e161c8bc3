// Package planner wires the shopping list, price cache and preferences into
// complete comparison runs.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/despensa/planner-service/internal/optimizer"
	"github.com/despensa/planner-service/internal/preferences"
	"github.com/despensa/planner-service/internal/pricecache"
	"github.com/despensa/planner-service/internal/shoppinglist"
	"github.com/despensa/planner-service/internal/storage"
)

// CompareResult is a full comparison payload: the optimization outcome plus
// run metadata and the budget check.
type CompareResult struct {
	optimizer.Result
	GeneratedAt      time.Time             `json:"generated_at"`
	ItemsCount       int                   `json:"items_count"`
	MissingFromCache []string              `json:"missing_from_cache,omitempty"`
	Warning          string                `json:"warning,omitempty"`
	BudgetCheck      optimizer.BudgetCheck `json:"budget_check"`
}

// Planner runs price comparisons over the cache and stored preferences.
type Planner struct {
	cache  *pricecache.Cache
	store  storage.DocumentStore
	cfg    optimizer.Config
	now    func() time.Time
	logger zerolog.Logger
}

// New creates a planner.
func New(cache *pricecache.Cache, store storage.DocumentStore, cfg optimizer.Config) *Planner {
	return &Planner{
		cache:  cache,
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		logger: log.With().Str("component", "planner").Logger(),
	}
}

// Compare resolves each item's prices from the cache, optimizes the split and
// checks the result against the weekly budget. Items found in no market are
// listed in both Unavailable and MissingFromCache; an empty list yields an
// all-zero result.
func (p *Planner) Compare(ctx context.Context, items []optimizer.ShoppingItem) (CompareResult, error) {
	prefs, err := preferences.Load(ctx, p.store)
	if err != nil {
		return CompareResult{}, err
	}

	withPrices := make([]optimizer.ItemPrices, 0, len(items))
	var missing []string
	for _, item := range items {
		prices := make(map[string]pricecache.Entry)
		for _, market := range p.cfg.Markets {
			if entry, ok := p.cache.Lookup(market, item.Name); ok {
				prices[market] = entry
			}
		}
		withPrices = append(withPrices, optimizer.ItemPrices{Item: item, Prices: prices})
		if len(prices) == 0 {
			missing = append(missing, item.Name)
		}
	}

	result := CompareResult{
		Result:           p.cfg.Optimize(withPrices, prefs.Markets),
		GeneratedAt:      p.now().UTC(),
		ItemsCount:       len(items),
		MissingFromCache: missing,
	}
	if len(missing) > 0 {
		result.Warning = fmt.Sprintf(
			"%d product(s) not found in the price cache. Refresh the cache before comparing.",
			len(missing))
	}
	result.BudgetCheck = optimizer.CheckBudget(result.Total, prefs.Budget.WeeklyLimitEUR)

	p.logger.Info().
		Int("items", len(items)).
		Int("missing", len(missing)).
		Float64("total", result.Total).
		Msg("Comparison completed")
	return result, nil
}

// CompareInventory runs Compare over the manual shopping list stored in the
// inventory document.
func (p *Planner) CompareInventory(ctx context.Context) (CompareResult, error) {
	gen := shoppinglist.NewGenerator(p.store)
	list, err := gen.Weekly(ctx)
	if err != nil {
		return CompareResult{}, err
	}
	items := make([]optimizer.ShoppingItem, 0, len(list.Items))
	for _, it := range list.Items {
		items = append(items, it.ShoppingItem())
	}
	return p.Compare(ctx, items)
}
