// Package shoppinglist merges manual entries with consumption-model
// predictions into weekly, bulk and physical-store shopping lists.
package shoppinglist

import (
	"time"

	"github.com/despensa/planner-service/internal/optimizer"
)

const (
	// BufferFactor pads predicted quantities by 15% for safety.
	BufferFactor = 1.15

	// BulkWeeks is how many weeks one bulk purchase should cover.
	BulkWeeks = 4.5

	// PredictionHorizonDays is the stock horizon for including predicted
	// items: anything running out within it goes on the list.
	PredictionHorizonDays = 9.0
)

// Item sources.
const (
	SourceManual             = "manual"
	SourcePrediction         = "prediction"
	SourceBulkPrediction     = "bulk_prediction"
	SourcePhysicalPrediction = "physical_prediction"
)

// Item is one shopping list line, manual or predicted.
type Item struct {
	Name           string             `json:"name"`
	Category       string             `json:"category"`
	Quantity       optimizer.Quantity `json:"quantity"`
	Source         string             `json:"source"`
	Confidence     float64            `json:"confidence,omitempty"`
	PreferredBrand string             `json:"preferred_brand,omitempty"`
	PreferredStore string             `json:"preferred_store,omitempty"`
	DaysLeft       *float64           `json:"days_left,omitempty"`
	Urgent         bool               `json:"urgent,omitempty"`
	BulkEligible   bool               `json:"bulk_eligible,omitempty"`
}

// ShoppingItem converts a list item into the optimizer's input shape.
func (i Item) ShoppingItem() optimizer.ShoppingItem {
	return optimizer.ShoppingItem{
		Name:           i.Name,
		Category:       i.Category,
		Quantity:       i.Quantity,
		PreferredStore: i.PreferredStore,
	}
}

// Inventory is the manual shopping list document.
type Inventory struct {
	ShoppingList []Item `json:"shopping_list"`
}

// WeeklyList is the merged weekly shopping list.
type WeeklyList struct {
	Type           string            `json:"type"`
	GeneratedAt    time.Time         `json:"generated_at"`
	Items          []Item            `json:"items"`
	Categorized    map[string][]Item `json:"categorized"`
	TotalItems     int               `json:"total_items"`
	ManualItems    int               `json:"manual_items"`
	PredictedItems int               `json:"predicted_items"`
	BudgetLimit    float64           `json:"budget_limit"`
}

// BulkList is the monthly bulk purchase list.
type BulkList struct {
	Type        string    `json:"type"`
	GeneratedAt time.Time `json:"generated_at"`
	Items       []Item    `json:"items"`
	TotalItems  int       `json:"total_items"`
	BudgetLimit float64   `json:"budget_limit"`
}

// StoreList groups physical-store reminders for one store.
type StoreList struct {
	StoreID        string `json:"store_id"`
	Name           string `json:"name"`
	VisitFrequency string `json:"visit_frequency,omitempty"`
	Notes          string `json:"notes,omitempty"`
	Items          []Item `json:"items"`
	UrgentCount    int    `json:"urgent_count"`
}

// PhysicalList is the physical-store visit reminder, grouped per store. It is
// never ordered online.
type PhysicalList struct {
	Type        string               `json:"type"`
	GeneratedAt time.Time            `json:"generated_at"`
	Stores      map[string]StoreList `json:"stores"`
	TotalStores int                  `json:"total_stores"`
	TotalItems  int                  `json:"total_items"`
}

// Triage splits the weekly list into order-now and wait-for-bulk, alongside
// the physical reminders.
type Triage struct {
	Type          string               `json:"type"`
	GeneratedAt   time.Time            `json:"generated_at"`
	WeeklyItems   []Item               `json:"weekly_items"`
	BulkItems     []Item               `json:"bulk_items"`
	PhysicalItems map[string]StoreList `json:"physical_items"`
	NextBulkDate  string               `json:"next_bulk_date,omitempty"`
	DaysToBulk    int                  `json:"days_to_bulk"`
	TotalWeekly   int                  `json:"total_weekly"`
	TotalBulk     int                  `json:"total_bulk"`
	TotalPhysical int                  `json:"total_physical"`
}
