package optimizer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// optimizationDuration tracks the time taken for a full split computation.
	optimizationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_calculation_duration_seconds",
		Help:    "Time taken for one split optimization",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1},
	})

	// basketSize tracks the distribution of basket sizes.
	basketSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_basket_items_count",
		Help:    "Number of items in optimization requests",
		Buckets: []float64{1, 5, 10, 20, 50, 100},
	})

	// unavailableItems counts items priced in no market.
	unavailableItems = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optimizer_unavailable_items_total",
		Help: "Total number of items found in no market's cache",
	})

	// rebalanceCommits counts committed free-delivery rebalancing moves.
	rebalanceCommits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optimizer_rebalance_commits_total",
		Help: "Total number of committed delivery-threshold rebalances",
	})
)

func recordOptimization(d time.Duration) {
	optimizationDuration.Observe(d.Seconds())
}

func recordBasketSize(n int) {
	basketSize.Observe(float64(n))
}

func recordUnavailable() {
	unavailableItems.Inc()
}

func recordRebalanceCommit() {
	rebalanceCommits.Inc()
}
