package optimizer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/despensa/planner-service/internal/money"
	"github.com/despensa/planner-service/internal/pricecache"
)

// assignment is one item placed in a market's basket. pricedIn names the
// market whose cache entry prices the item; it normally equals the assigned
// market but stays on the source market when a rebalancing move lands the
// item somewhere its price is unknown.
type assignment struct {
	item     ShoppingItem
	prices   map[string]pricecache.Entry
	pricedIn string
	honored  bool
}

func (a assignment) entry() pricecache.Entry {
	return a.prices[a.pricedIn]
}

func (a assignment) price() float64 {
	return a.entry().EffectivePrice()
}

// usable reports whether the item has an available, priced entry in a market.
func (a assignment) usable(market string) bool {
	e, ok := a.prices[market]
	return ok && e.IsAvailable() && e.EffectivePrice() > 0
}

// Optimize assigns each item to a market, builds per-market totals with
// coupons, balance and delivery, runs one rebalancing pass over free-delivery
// thresholds, and compares the split against buying everything from a single
// market. Items priced in no market are reported in Unavailable, never
// dropped. marketCfg may be nil; missing markets default to no coupons and
// zero balance.
func (c Config) Optimize(items []ItemPrices, marketCfg map[string]MarketConfig) Result {
	start := time.Now()
	recordBasketSize(len(items))

	result := Result{Markets: make(map[string]MarketResult)}
	if len(items) == 0 {
		recordOptimization(time.Since(start))
		return result
	}

	// Step 1: greedy assignment, preference first, then cheapest effective
	// price with ties going to the first configured market.
	assigned := make(map[string][]assignment, len(c.Markets))
	for _, ip := range items {
		a := assignment{item: ip.Item, prices: ip.Prices}

		if p := ip.Item.PreferredStore; p != "" && c.hasMarket(p) && a.usable(p) {
			a.pricedIn = p
			a.honored = true
			assigned[p] = append(assigned[p], a)
			continue
		}

		best := ""
		bestPrice := 0.0
		for _, m := range c.Markets {
			if !a.usable(m) {
				continue
			}
			price := ip.Prices[m].EffectivePrice()
			if best == "" || price < bestPrice {
				best = m
				bestPrice = price
			}
		}
		if best == "" {
			result.Unavailable = append(result.Unavailable, UnavailableItem{
				Name:   ip.Item.Name,
				Reason: "not found in any market's cache",
			})
			recordUnavailable()
			continue
		}
		a.pricedIn = best
		assigned[best] = append(assigned[best], a)
	}

	// Step 2: per-market results.
	for _, m := range c.Markets {
		if len(assigned[m]) > 0 {
			result.Markets[m] = c.buildMarketResult(m, assigned[m], marketCfg[m])
		}
	}

	// Step 3: one rebalancing pass per target market.
	c.rebalance(assigned, result.Markets, marketCfg)

	// Step 4: grand total.
	var total float64
	for _, mr := range result.Markets {
		total += mr.Total
	}
	result.Total = money.Round2(total)

	// Steps 5 and 6: single-market alternatives and the recommendation.
	result.Alternatives = c.alternatives(items, marketCfg)
	if len(result.Alternatives) > 0 {
		best := result.Alternatives[0]
		savings := best.Total - result.Total
		result.SavingsVsBestSingle = money.Round2(savings)
		if savings < c.SimplicityThreshold {
			market := strings.TrimPrefix(best.Strategy, "all_")
			note := fmt.Sprintf(
				"Splitting saves only %.2f EUR vs buying everything at %s; consider a single order for simplicity.",
				savings, market)
			result.RecommendationNote = &note
		}
	}

	recordOptimization(time.Since(start))
	return result
}

func (c Config) hasMarket(id string) bool {
	for _, m := range c.Markets {
		if m == id {
			return true
		}
	}
	return false
}

// buildMarketResult computes the full breakdown for one market's basket.
// Accumulation is unrounded; fields are rounded once, here.
func (c Config) buildMarketResult(market string, assigns []assignment, mc MarketConfig) MarketResult {
	var subtotal float64
	categories := make(map[string]bool)
	items := make([]AssignedItem, 0, len(assigns))
	for _, a := range assigns {
		price := a.price()
		subtotal += price
		categories[a.item.CategoryOrDefault()] = true
		items = append(items, AssignedItem{
			Name:                  a.item.Name,
			Category:              a.item.CategoryOrDefault(),
			Quantity:              a.item.Quantity,
			Price:                 money.Round2(price),
			Promo:                 a.entry().Promo,
			PreferredStoreHonored: a.honored,
		})
	}

	discount, applied := ApplyCoupons(subtotal, mc.Coupons, categories)
	balanceUsed := mc.Balance
	if covered := subtotal - discount; covered < balanceUsed {
		balanceUsed = covered
	}
	if balanceUsed < 0 {
		balanceUsed = 0
	}
	after := subtotal - discount - balanceUsed
	delivery := c.DeliveryCost(market, after)

	return MarketResult{
		Items:          items,
		Subtotal:       money.Round2(subtotal),
		CouponDiscount: discount,
		CouponsApplied: applied,
		BalanceUsed:    money.Round2(balanceUsed),
		AfterDiscounts: money.Round2(after),
		Delivery:       money.Round2(delivery),
		Total:          money.Round2(after + delivery),
	}
}

// rebalance tries once per target market to close a small gap to free
// delivery by pulling the cheapest items from other markets, committing only
// when the extra item cost is beaten by the delivery fee saved. Single pass:
// no cascading re-checks after a move.
func (c Config) rebalance(assigned map[string][]assignment, results map[string]MarketResult, marketCfg map[string]MarketConfig) {
	for _, target := range c.Markets {
		res, ok := results[target]
		if !ok {
			continue
		}
		gap := c.GapToFreeDelivery(target, res.AfterDiscounts)
		if gap <= 0 || gap > c.GapThreshold || res.Delivery == 0 {
			continue
		}
		deliverySaved := res.Delivery

		type candidate struct {
			source string
			idx    int
			added  float64 // price the item contributes at the target
			extra  float64 // cost increase of buying it there instead
		}
		var moves []candidate
		var accumulated, extraCost float64

	donors:
		for _, source := range c.Markets {
			if source == target || len(assigned[source]) == 0 {
				continue
			}
			idxs := make([]int, len(assigned[source]))
			for i := range idxs {
				idxs[i] = i
			}
			sort.SliceStable(idxs, func(x, y int) bool {
				return assigned[source][idxs[x]].price() < assigned[source][idxs[y]].price()
			})
			for _, i := range idxs {
				if accumulated >= gap {
					break donors
				}
				a := assigned[source][i]
				if a.honored {
					continue
				}
				added := a.price()
				extra := 0.0
				if a.usable(target) {
					added = a.prices[target].EffectivePrice()
					extra = added - a.price()
				}
				moves = append(moves, candidate{source: source, idx: i, added: added, extra: extra})
				accumulated += added
				extraCost += extra
			}
		}

		if len(moves) == 0 || accumulated < gap || extraCost >= deliverySaved {
			continue
		}

		// Commit: transfer each item, re-pricing it at the target when the
		// target has an entry for it.
		removed := make(map[string]map[int]bool)
		for _, mv := range moves {
			a := assigned[mv.source][mv.idx]
			if a.usable(target) {
				a.pricedIn = target
			}
			assigned[target] = append(assigned[target], a)
			if removed[mv.source] == nil {
				removed[mv.source] = make(map[int]bool)
			}
			removed[mv.source][mv.idx] = true
		}
		for source, idxs := range removed {
			kept := assigned[source][:0]
			for i, a := range assigned[source] {
				if !idxs[i] {
					kept = append(kept, a)
				}
			}
			assigned[source] = kept

			if len(kept) == 0 {
				delete(assigned, source)
				delete(results, source)
			} else {
				results[source] = c.buildMarketResult(source, kept, marketCfg[source])
			}
		}
		results[target] = c.buildMarketResult(target, assigned[target], marketCfg[target])
		recordRebalanceCommit()
	}
}

// alternatives simulates buying the whole list from each single market,
// sorted cheapest first.
func (c Config) alternatives(items []ItemPrices, marketCfg map[string]MarketConfig) []Alternative {
	alts := make([]Alternative, 0, len(c.Markets))
	for _, m := range c.Markets {
		var subtotal float64
		allAvailable := true
		categories := make(map[string]bool)
		for _, ip := range items {
			e, ok := ip.Prices[m]
			if !ok || !e.IsAvailable() || e.EffectivePrice() <= 0 {
				allAvailable = false
				continue
			}
			subtotal += e.EffectivePrice()
			categories[ip.Item.CategoryOrDefault()] = true
		}

		mc := marketCfg[m]
		discount, _ := ApplyCoupons(subtotal, mc.Coupons, categories)
		balanceUsed := mc.Balance
		if covered := subtotal - discount; covered < balanceUsed {
			balanceUsed = covered
		}
		if balanceUsed < 0 {
			balanceUsed = 0
		}
		after := subtotal - discount - balanceUsed
		delivery := c.DeliveryCost(m, after)

		alts = append(alts, Alternative{
			Strategy:       "all_" + m,
			Subtotal:       money.Round2(subtotal),
			CouponDiscount: discount,
			BalanceUsed:    money.Round2(balanceUsed),
			Delivery:       money.Round2(delivery),
			Total:          money.Round2(after + delivery),
			AllAvailable:   allAvailable,
		})
	}
	sort.SliceStable(alts, func(i, j int) bool { return alts[i].Total < alts[j].Total })
	return alts
}
