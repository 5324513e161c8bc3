package shoppinglist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/despensa/planner-service/internal/consumption"
	"github.com/despensa/planner-service/internal/markets"
	"github.com/despensa/planner-service/internal/optimizer"
	"github.com/despensa/planner-service/internal/preferences"
	"github.com/despensa/planner-service/internal/storage"
)

func modelProduct(name string, daysLeft float64, opts ...func(*consumption.Product)) *consumption.Product {
	p := &consumption.Product{
		Name:                 name,
		Category:             "outros",
		Confidence:           0.75,
		EstimatedStockDays:   &daysLeft,
		AvgWeeklyConsumption: &consumption.WeeklyConsumption{Value: 2.0, Unit: "un"},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func withStore(id string) func(*consumption.Product) {
	return func(p *consumption.Product) { p.PreferredStore = id }
}

func bulkEligible(p *consumption.Product) { p.BulkEligible = true }

func lowConfidence(p *consumption.Product) { p.Confidence = 0.3 }

func inactive(p *consumption.Product) {
	f := false
	p.Active = &f
}

func setupGenerator(t *testing.T, model consumption.Model, inv Inventory, prefs *preferences.Preferences) *Generator {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	if model != nil {
		require.NoError(t, store.Save(ctx, storage.KeyConsumptionModel, model))
	}
	if len(inv.ShoppingList) > 0 {
		require.NoError(t, store.Save(ctx, storage.KeyInventory, inv))
	}
	if prefs != nil {
		require.NoError(t, store.Save(ctx, storage.KeyPreferences, prefs))
	}
	g := NewGenerator(store)
	g.now = func() time.Time { return time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC) }
	return g
}

func TestWeeklyMergesManualAndPredicted(t *testing.T) {
	model := consumption.Model{
		"leite": modelProduct("leite", 3),
		"arroz": modelProduct("arroz", 30), // plenty in stock, excluded
	}
	inv := Inventory{ShoppingList: []Item{
		{Name: "bolachas", Category: "mercearia", Quantity: optimizer.Quantity{Value: 1, Unit: "un"}},
	}}

	g := setupGenerator(t, model, inv, nil)
	list, err := g.Weekly(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, list.TotalItems)
	assert.Equal(t, 1, list.ManualItems)
	assert.Equal(t, 1, list.PredictedItems)
	assert.Equal(t, "bolachas", list.Items[0].Name)
	assert.Equal(t, SourceManual, list.Items[0].Source)
	assert.Equal(t, "leite", list.Items[1].Name)
	assert.Equal(t, SourcePrediction, list.Items[1].Source)
	// 2.0/week padded by 15%
	assert.Equal(t, 2.3, list.Items[1].Quantity.Value)
	assert.Equal(t, 150.0, list.BudgetLimit)
	assert.Len(t, list.Categorized["mercearia"], 1)
	assert.Len(t, list.Categorized["outros"], 1)
}

func TestWeeklyManualWinsNameCollision(t *testing.T) {
	model := consumption.Model{"leite": modelProduct("Leite", 2)}
	inv := Inventory{ShoppingList: []Item{
		{Name: "leite", Quantity: optimizer.Quantity{Value: 4, Unit: "l"}},
	}}

	g := setupGenerator(t, model, inv, nil)
	list, err := g.Weekly(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, list.TotalItems)
	assert.Equal(t, SourceManual, list.Items[0].Source)
	assert.Equal(t, 4.0, list.Items[0].Quantity.Value)
}

func TestWeeklyExcludesPhysicalInactiveAndUntrusted(t *testing.T) {
	model := consumption.Model{
		"talho":    modelProduct("carne", 1, withStore("talho do bairro")),
		"inativo":  modelProduct("inativo", 1, inactive),
		"duvidoso": modelProduct("duvidoso", 1, lowConfidence),
		"online":   modelProduct("iogurtes", 1, withStore(markets.Continente)),
	}

	g := setupGenerator(t, model, Inventory{}, nil)
	list, err := g.Weekly(context.Background())
	require.NoError(t, err)

	// only the online-preferred product survives, with the preference kept so
	// the optimizer can honor it
	require.Equal(t, 1, list.TotalItems)
	assert.Equal(t, "iogurtes", list.Items[0].Name)
	assert.Equal(t, markets.Continente, list.Items[0].PreferredStore)
}

func TestBulkList(t *testing.T) {
	model := consumption.Model{
		"detergente": modelProduct("detergente", 20, bulkEligible),
		"leite":      modelProduct("leite", 2), // not bulk eligible
		"racao": modelProduct("ração gato", 20, bulkEligible, func(p *consumption.Product) {
			p.BulkQuantity = &optimizer.Quantity{Value: 10, Unit: "kg"}
		}),
	}

	g := setupGenerator(t, model, Inventory{}, nil)
	list, err := g.Bulk(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, list.TotalItems)
	assert.Equal(t, 120.0, list.BudgetLimit)

	byName := map[string]Item{}
	for _, it := range list.Items {
		byName[it.Name] = it
	}
	// 2.0/week over 4.5 weeks
	assert.Equal(t, 9.0, byName["detergente"].Quantity.Value)
	// configured bulk quantity wins over the computed one
	assert.Equal(t, 10.0, byName["ração gato"].Quantity.Value)
	assert.Equal(t, SourceBulkPrediction, byName["detergente"].Source)
}

func TestPhysicalGroupsByStore(t *testing.T) {
	model := consumption.Model{
		"carne":  modelProduct("carne", 2, withStore("talho")),
		"peixe":  modelProduct("peixe", 20, withStore("peixaria")),
		"queijo": modelProduct("queijo", 5, withStore("talho")),
		"leite":  modelProduct("leite", 2), // online, excluded
	}
	prefs := preferences.Default()
	prefs.PhysicalStores = map[string]preferences.PhysicalStore{
		"talho": {Name: "Talho do Manel", VisitFrequency: "weekly"},
	}

	g := setupGenerator(t, model, Inventory{}, &prefs)
	list, err := g.Physical(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, list.TotalStores)
	assert.Equal(t, 3, list.TotalItems)

	talho := list.Stores["talho"]
	assert.Equal(t, "Talho do Manel", talho.Name)
	assert.Equal(t, "weekly", talho.VisitFrequency)
	assert.Len(t, talho.Items, 2)
	// carne (2 days) is urgent, queijo (5 days) also within the 9-day horizon
	assert.Equal(t, 2, talho.UrgentCount)

	peixaria := list.Stores["peixaria"]
	assert.Equal(t, "Peixaria", peixaria.Name) // title-cased fallback
	assert.Equal(t, 0, peixaria.UrgentCount)   // 20 days left
}

func TestTriageSplitsBulkWhenCloseToDate(t *testing.T) {
	model := consumption.Model{
		"detergente": modelProduct("detergente", 3, bulkEligible),
		"leite":      modelProduct("leite", 2),
	}

	g := setupGenerator(t, model, Inventory{}, nil)

	// bulk purchase a few days out: bulk-eligible items wait for it
	triage, err := g.GenerateTriage(context.Background(), "2026-03-06")
	require.NoError(t, err)
	assert.Equal(t, 4, triage.DaysToBulk) // midnight boundary truncates down
	require.Equal(t, 1, triage.TotalBulk)
	assert.Equal(t, "detergente", triage.BulkItems[0].Name)
	require.Equal(t, 1, triage.TotalWeekly)
	assert.Equal(t, "leite", triage.WeeklyItems[0].Name)

	// bulk purchase far away: everything stays weekly
	triage, err = g.GenerateTriage(context.Background(), "2026-03-25")
	require.NoError(t, err)
	assert.Equal(t, 0, triage.TotalBulk)
	assert.Equal(t, 2, triage.TotalWeekly)
}

func TestTriageDefaultsToMonthOut(t *testing.T) {
	g := setupGenerator(t, consumption.Model{}, Inventory{}, nil)

	triage, err := g.GenerateTriage(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 30, triage.DaysToBulk)
}

func TestTriageRejectsBadDate(t *testing.T) {
	g := setupGenerator(t, consumption.Model{}, Inventory{}, nil)

	_, err := g.GenerateTriage(context.Background(), "next tuesday")
	assert.Error(t, err)
}
