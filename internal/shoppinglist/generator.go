package shoppinglist

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/despensa/planner-service/internal/consumption"
	"github.com/despensa/planner-service/internal/markets"
	"github.com/despensa/planner-service/internal/optimizer"
	"github.com/despensa/planner-service/internal/preferences"
	"github.com/despensa/planner-service/internal/storage"
)

// Generator builds shopping lists from the inventory, the consumption model
// and the household preferences.
type Generator struct {
	store  storage.DocumentStore
	now    func() time.Time
	logger zerolog.Logger
}

// NewGenerator creates a generator over the given store.
func NewGenerator(store storage.DocumentStore) *Generator {
	return &Generator{
		store:  store,
		now:    time.Now,
		logger: log.With().Str("component", "list_generator").Logger(),
	}
}

func (g *Generator) loadInventory(ctx context.Context) (Inventory, error) {
	var inv Inventory
	err := g.store.Load(ctx, storage.KeyInventory, &inv)
	if errors.Is(err, storage.ErrNotFound) {
		return Inventory{}, nil
	}
	if err != nil {
		return Inventory{}, fmt.Errorf("failed to load inventory: %w", err)
	}
	return inv, nil
}

func (g *Generator) loadModel(ctx context.Context) (consumption.Model, error) {
	var model consumption.Model
	err := g.store.Load(ctx, storage.KeyConsumptionModel, &model)
	if errors.Is(err, storage.ErrNotFound) {
		return consumption.Model{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load consumption model: %w", err)
	}
	return model, nil
}

// isPhysical reports whether a model entry routes to a physical store: it has
// a preferred store that is not one of the online markets.
func isPhysical(preferredStore string) bool {
	return preferredStore != "" && !markets.IsOnline(preferredStore)
}

// sortedIDs fixes the model's iteration order so generated lists are stable.
func sortedIDs(model consumption.Model) []string {
	ids := make([]string, 0, len(model))
	for id := range model {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Weekly merges the manual shopping list with predictions for products
// running out within the horizon. Manual entries win name collisions.
// Physical-store products are excluded; they belong to Physical.
func (g *Generator) Weekly(ctx context.Context) (WeeklyList, error) {
	inv, err := g.loadInventory(ctx)
	if err != nil {
		return WeeklyList{}, err
	}
	model, err := g.loadModel(ctx)
	if err != nil {
		return WeeklyList{}, err
	}
	prefs, err := preferences.Load(ctx, g.store)
	if err != nil {
		return WeeklyList{}, err
	}

	var predicted []Item
	for _, id := range sortedIDs(model) {
		entry := model[id]
		if !entry.IsActive() || !entry.Trusted() || isPhysical(entry.PreferredStore) {
			continue
		}
		if entry.EstimatedStockDays == nil || *entry.EstimatedStockDays > PredictionHorizonDays {
			continue
		}
		if entry.AvgWeeklyConsumption == nil {
			continue
		}
		daysLeft := *entry.EstimatedStockDays
		predicted = append(predicted, Item{
			Name:     entry.Name,
			Category: entry.Category,
			Quantity: optimizer.Quantity{
				Value: round1(entry.AvgWeeklyConsumption.Value * BufferFactor),
				Unit:  entry.AvgWeeklyConsumption.Unit,
			},
			Source:         SourcePrediction,
			Confidence:     entry.Confidence,
			PreferredBrand: entry.PreferredBrand,
			PreferredStore: entry.PreferredStore,
			DaysLeft:       &daysLeft,
			BulkEligible:   entry.BulkEligible,
		})
	}

	manualNames := make(map[string]bool, len(inv.ShoppingList))
	combined := make([]Item, 0, len(inv.ShoppingList)+len(predicted))
	for _, item := range inv.ShoppingList {
		item.Source = SourceManual
		manualNames[strings.ToLower(item.Name)] = true
		combined = append(combined, item)
	}
	for _, item := range predicted {
		if !manualNames[strings.ToLower(item.Name)] {
			combined = append(combined, item)
		}
	}

	categorized := make(map[string][]Item)
	for _, item := range combined {
		cat := item.Category
		if cat == "" {
			cat = optimizer.DefaultCategory
		}
		categorized[cat] = append(categorized[cat], item)
	}

	g.logger.Debug().
		Int("manual", len(inv.ShoppingList)).
		Int("predicted", len(predicted)).
		Msg("Weekly list generated")

	return WeeklyList{
		Type:           "weekly",
		GeneratedAt:    g.now().UTC(),
		Items:          combined,
		Categorized:    categorized,
		TotalItems:     len(combined),
		ManualItems:    len(inv.ShoppingList),
		PredictedItems: len(predicted),
		BudgetLimit:    prefs.Budget.WeeklyLimitEUR,
	}, nil
}

// Bulk lists bulk-eligible products with quantities covering ~4.5 weeks, or
// the product's configured bulk quantity when set.
func (g *Generator) Bulk(ctx context.Context) (BulkList, error) {
	model, err := g.loadModel(ctx)
	if err != nil {
		return BulkList{}, err
	}
	prefs, err := preferences.Load(ctx, g.store)
	if err != nil {
		return BulkList{}, err
	}

	var items []Item
	for _, id := range sortedIDs(model) {
		entry := model[id]
		if !entry.IsActive() || !entry.BulkEligible || !entry.Trusted() || isPhysical(entry.PreferredStore) {
			continue
		}
		if entry.AvgWeeklyConsumption == nil {
			continue
		}
		quantity := round1(entry.AvgWeeklyConsumption.Value * BulkWeeks)
		if entry.BulkQuantity != nil {
			quantity = entry.BulkQuantity.Value
		}
		items = append(items, Item{
			Name:     entry.Name,
			Category: entry.Category,
			Quantity: optimizer.Quantity{
				Value: quantity,
				Unit:  entry.AvgWeeklyConsumption.Unit,
			},
			PreferredBrand: entry.PreferredBrand,
			PreferredStore: entry.PreferredStore,
			Source:         SourceBulkPrediction,
		})
	}

	return BulkList{
		Type:        "bulk",
		GeneratedAt: g.now().UTC(),
		Items:       items,
		TotalItems:  len(items),
		BudgetLimit: prefs.Budget.BulkMonthlyBudgetEUR,
	}, nil
}

// Physical builds a per-store visit reminder from products whose preferred
// store has no online integration. Products running out within the horizon
// are flagged urgent.
func (g *Generator) Physical(ctx context.Context) (PhysicalList, error) {
	model, err := g.loadModel(ctx)
	if err != nil {
		return PhysicalList{}, err
	}
	prefs, err := preferences.Load(ctx, g.store)
	if err != nil {
		return PhysicalList{}, err
	}

	stores := make(map[string]StoreList)
	totalItems := 0
	for _, id := range sortedIDs(model) {
		entry := model[id]
		if !entry.IsActive() || !entry.Trusted() || !isPhysical(entry.PreferredStore) {
			continue
		}
		if entry.AvgWeeklyConsumption == nil {
			continue
		}

		daysLeft := math.Inf(1)
		if entry.EstimatedStockDays != nil {
			daysLeft = *entry.EstimatedStockDays
		}

		quantity := round1(entry.AvgWeeklyConsumption.Value * BufferFactor)
		unit := entry.AvgWeeklyConsumption.Unit
		if entry.BulkEligible && entry.BulkQuantity != nil {
			quantity = entry.BulkQuantity.Value
			if entry.BulkQuantity.Unit != "" {
				unit = entry.BulkQuantity.Unit
			}
		}

		item := Item{
			Name:           entry.Name,
			Category:       entry.Category,
			Quantity:       optimizer.Quantity{Value: quantity, Unit: unit},
			PreferredBrand: entry.PreferredBrand,
			PreferredStore: entry.PreferredStore,
			Urgent:         daysLeft <= PredictionHorizonDays,
			BulkEligible:   entry.BulkEligible,
			Source:         SourcePhysicalPrediction,
		}
		if !math.IsInf(daysLeft, 1) {
			item.DaysLeft = &daysLeft
		}

		store, ok := stores[entry.PreferredStore]
		if !ok {
			cfg := prefs.PhysicalStores[entry.PreferredStore]
			name := cfg.Name
			if name == "" {
				name = cases.Title(language.Portuguese).String(entry.PreferredStore)
			}
			store = StoreList{
				StoreID:        entry.PreferredStore,
				Name:           name,
				VisitFrequency: cfg.VisitFrequency,
				Notes:          cfg.Notes,
			}
		}
		store.Items = append(store.Items, item)
		if item.Urgent {
			store.UrgentCount++
		}
		stores[entry.PreferredStore] = store
		totalItems++
	}

	return PhysicalList{
		Type:        "physical",
		GeneratedAt: g.now().UTC(),
		Stores:      stores,
		TotalStores: len(stores),
		TotalItems:  totalItems,
	}, nil
}

// GenerateTriage runs the weekly and physical generators concurrently, then
// splits the weekly list: bulk-eligible items wait for the bulk purchase when
// it is at most a week away.
func (g *Generator) GenerateTriage(ctx context.Context, nextBulkDate string) (Triage, error) {
	var (
		weekly   WeeklyList
		physical PhysicalList
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		weekly, err = g.Weekly(egCtx)
		return err
	})
	eg.Go(func() error {
		var err error
		physical, err = g.Physical(egCtx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return Triage{}, err
	}

	daysToBulk := 30
	if nextBulkDate != "" {
		next, err := time.Parse("2006-01-02", nextBulkDate)
		if err != nil {
			return Triage{}, fmt.Errorf("invalid next bulk date %q: %w", nextBulkDate, err)
		}
		daysToBulk = int(next.Sub(g.now()).Hours() / 24)
	}

	var weeklyItems, bulkItems []Item
	for _, item := range weekly.Items {
		if item.BulkEligible && daysToBulk <= 7 {
			bulkItems = append(bulkItems, item)
		} else {
			weeklyItems = append(weeklyItems, item)
		}
	}

	return Triage{
		Type:          "triage",
		GeneratedAt:   g.now().UTC(),
		WeeklyItems:   weeklyItems,
		BulkItems:     bulkItems,
		PhysicalItems: physical.Stores,
		NextBulkDate:  nextBulkDate,
		DaysToBulk:    daysToBulk,
		TotalWeekly:   len(weeklyItems),
		TotalBulk:     len(bulkItems),
		TotalPhysical: physical.TotalItems,
	}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
