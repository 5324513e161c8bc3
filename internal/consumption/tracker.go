package consumption

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/despensa/planner-service/internal/storage"
)

// PurchasedItem is one line of a recorded purchase.
type PurchasedItem struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Brand    string  `json:"brand,omitempty"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
	Price    float64 `json:"price,omitempty"`
}

// Purchase is one completed shop, as reported after checkout.
type Purchase struct {
	Date   time.Time       `json:"date"`
	Market string          `json:"market,omitempty"`
	Items  []PurchasedItem `json:"items"`
}

// UpdateSummary reports what a purchase did to the model.
type UpdateSummary struct {
	Updated   int `json:"updated"`
	ModelSize int `json:"model_size"`
}

// Alert flags a product predicted to run out within the alert threshold.
type Alert struct {
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	DaysLeft   float64 `json:"days_left"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// StockReport is the outcome of a stock check over the whole model.
type StockReport struct {
	Alerts  []Alert `json:"alerts"`
	Checked int     `json:"checked"`
}

// FeedbackType adjusts a product's consumption estimate from user feedback.
type FeedbackType string

const (
	// FeedbackStillHave: the product lasted longer than predicted.
	FeedbackStillHave FeedbackType = "still_have"
	// FeedbackAlreadyFinished: the product ran out before predicted.
	FeedbackAlreadyFinished FeedbackType = "already_finished"
	// FeedbackInactive: stop tracking the product.
	FeedbackInactive FeedbackType = "inactive"
)

// ErrProductNotFound is returned when feedback or prediction names a product
// absent from the model.
var ErrProductNotFound = errors.New("product not found in consumption model")

// Tracker maintains the consumption model in a document store.
type Tracker struct {
	store  storage.DocumentStore
	now    func() time.Time
	logger zerolog.Logger
}

// NewTracker creates a tracker over the given store.
func NewTracker(store storage.DocumentStore) *Tracker {
	return &Tracker{
		store:  store,
		now:    time.Now,
		logger: log.With().Str("component", "consumption_tracker").Logger(),
	}
}

func (t *Tracker) loadModel(ctx context.Context) (Model, error) {
	var model Model
	err := t.store.Load(ctx, storage.KeyConsumptionModel, &model)
	if errors.Is(err, storage.ErrNotFound) {
		return make(Model), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load consumption model: %w", err)
	}
	if model == nil {
		model = make(Model)
	}
	return model, nil
}

func (t *Tracker) saveModel(ctx context.Context, model Model) error {
	if err := t.store.Save(ctx, storage.KeyConsumptionModel, model); err != nil {
		return fmt.Errorf("failed to save consumption model: %w", err)
	}
	return nil
}

// RecordPurchase folds a completed purchase into the model: appends to each
// product's history (last 12 kept), recomputes the weighted consumption
// averages and refreshes the stock estimate.
func (t *Tracker) RecordPurchase(ctx context.Context, purchase Purchase) (UpdateSummary, error) {
	model, err := t.loadModel(ctx)
	if err != nil {
		return UpdateSummary{}, err
	}

	date := purchase.Date
	if date.IsZero() {
		date = t.now().UTC()
	}
	market := purchase.Market
	if market == "" {
		market = "unknown"
	}

	for _, item := range purchase.Items {
		id := item.ID
		if id == "" {
			id = ProductID(item.Name)
		}

		entry, ok := model[id]
		if !ok {
			entry = &Product{
				Name:     item.Name,
				Category: item.Category,
			}
			if entry.Category == "" {
				entry.Category = "outros"
			}
			if item.Brand != "" {
				entry.PreferredBrand = item.Brand
				entry.AcceptableBrands = []string{item.Brand}
			}
			model[id] = entry
		}

		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		unit := item.Unit
		if unit == "" {
			unit = "un"
		}

		entry.PurchaseHistory = append(entry.PurchaseHistory, PurchaseRecord{
			Date:     date,
			Quantity: quantity,
			Unit:     unit,
			Market:   market,
			Price:    item.Price,
		})
		if n := len(entry.PurchaseHistory); n > historyLimit {
			entry.PurchaseHistory = entry.PurchaseHistory[n-historyLimit:]
		}

		recomputeAverages(entry)

		entry.LastPurchased = date
		entry.LastQuantity = quantity
		entry.Confidence = math.Min(1.0, float64(len(entry.PurchaseHistory))/8)

		if entry.AvgWeeklyConsumption != nil {
			if daily := entry.AvgWeeklyConsumption.Value / 7; daily > 0 {
				est := round1(quantity / daily)
				entry.EstimatedStockDays = &est
			}
		}
	}

	if err := t.saveModel(ctx, model); err != nil {
		return UpdateSummary{}, err
	}
	t.appendHistory(ctx, purchase)

	t.logger.Info().
		Int("items", len(purchase.Items)).
		Str("market", market).
		Msg("Purchase recorded")
	return UpdateSummary{Updated: len(purchase.Items), ModelSize: len(model)}, nil
}

// recomputeAverages derives the purchase interval and weekly consumption from
// consecutive history pairs, weighting recent purchases higher.
func recomputeAverages(entry *Product) {
	history := entry.PurchaseHistory
	if len(history) < 2 {
		return
	}

	var intervals, weekly []float64
	for i := 1; i < len(history); i++ {
		days := math.Floor(history[i].Date.Sub(history[i-1].Date).Hours() / 24)
		if days > 0 {
			intervals = append(intervals, days)
			weekly = append(weekly, history[i-1].Quantity/days*7)
		}
	}

	if len(intervals) > 0 {
		entry.AvgPurchaseIntervalDays = round1(weightedAverage(intervals))
	}
	if len(weekly) > 0 {
		entry.AvgWeeklyConsumption = &WeeklyConsumption{
			Value: round2(weightedAverage(weekly)),
			Unit:  history[len(history)-1].Unit,
		}
	}
}

// CheckStock refreshes every trusted product's stock estimate, applying the
// category's seasonal factor to the consumption rate, and returns alerts for
// products predicted to run out within the threshold. The refreshed estimates
// are persisted.
func (t *Tracker) CheckStock(ctx context.Context) (StockReport, error) {
	model, err := t.loadModel(ctx)
	if err != nil {
		return StockReport{}, err
	}

	now := t.now().UTC()
	var alerts []Alert

	for id, entry := range model {
		if !entry.Trusted() || entry.LastPurchased.IsZero() {
			continue
		}
		if entry.AvgWeeklyConsumption == nil || entry.AvgWeeklyConsumption.Value <= 0 {
			continue
		}

		daily := entry.AvgWeeklyConsumption.Value / 7 * SeasonalFactor(entry.Category, now.Month())
		daysSince := math.Floor(now.Sub(entry.LastPurchased).Hours() / 24)
		remaining := entry.LastQuantity - daily*daysSince
		daysLeft := remaining / daily

		est := round1(math.Max(0, daysLeft))
		entry.EstimatedStockDays = &est

		if daysLeft <= AlertThresholdDays {
			alerts = append(alerts, Alert{
				ProductID:  id,
				Name:       entry.Name,
				DaysLeft:   round1(daysLeft),
				Category:   entry.Category,
				Confidence: entry.Confidence,
			})
		}
	}

	if err := t.saveModel(ctx, model); err != nil {
		return StockReport{}, err
	}
	return StockReport{Alerts: alerts, Checked: len(model)}, nil
}

// ApplyFeedback corrects a product's estimate: "still_have" slows the assumed
// consumption by 20% and pushes the estimate out, "already_finished" speeds
// it up by 20% and zeroes the estimate, "inactive" stops tracking.
func (t *Tracker) ApplyFeedback(ctx context.Context, productName string, feedback FeedbackType) (string, error) {
	model, err := t.loadModel(ctx)
	if err != nil {
		return "", err
	}

	id, entry, err := findProduct(model, productName)
	if err != nil {
		return "", err
	}

	switch feedback {
	case FeedbackStillHave:
		if entry.AvgWeeklyConsumption != nil {
			entry.AvgWeeklyConsumption.Value *= 0.8
			current := 0.0
			if entry.EstimatedStockDays != nil {
				current = *entry.EstimatedStockDays
			}
			est := math.Max(3, current+3)
			entry.EstimatedStockDays = &est
		}
	case FeedbackAlreadyFinished:
		if entry.AvgWeeklyConsumption != nil {
			entry.AvgWeeklyConsumption.Value *= 1.2
			est := 0.0
			entry.EstimatedStockDays = &est
		}
	case FeedbackInactive:
		inactive := false
		entry.Active = &inactive
	default:
		return "", fmt.Errorf("unknown feedback type %q", feedback)
	}

	if err := t.saveModel(ctx, model); err != nil {
		return "", err
	}
	t.logger.Info().Str("product", id).Str("feedback", string(feedback)).Msg("Feedback applied")
	return id, nil
}

// Predict returns the model entry for a product, matching exact id first and
// falling back to a name substring match.
func (t *Tracker) Predict(ctx context.Context, productName string) (string, *Product, error) {
	model, err := t.loadModel(ctx)
	if err != nil {
		return "", nil, err
	}
	id, entry, err := findProduct(model, productName)
	if err != nil {
		return "", nil, err
	}
	return id, entry, nil
}

// Products returns the full model.
func (t *Tracker) Products(ctx context.Context) (Model, error) {
	return t.loadModel(ctx)
}

func findProduct(model Model, name string) (string, *Product, error) {
	id := ProductID(name)
	if entry, ok := model[id]; ok {
		return id, entry, nil
	}
	lower := strings.ToLower(name)
	for pid, entry := range model {
		if strings.Contains(strings.ToLower(entry.Name), lower) {
			return pid, entry, nil
		}
	}
	return "", nil, fmt.Errorf("%w: %q", ErrProductNotFound, name)
}

// appendHistory keeps a rolling log of recorded purchases. Best effort; a
// history write failure never fails the model update.
func (t *Tracker) appendHistory(ctx context.Context, purchase Purchase) {
	const limit = 52

	var history []Purchase
	err := t.store.Load(ctx, storage.KeyShoppingHistory, &history)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		t.logger.Warn().Err(err).Msg("Failed to load shopping history")
		return
	}
	history = append(history, purchase)
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	if err := t.store.Save(ctx, storage.KeyShoppingHistory, history); err != nil {
		t.logger.Warn().Err(err).Msg("Failed to save shopping history")
	}
}
