package pricecache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// lookupHits tracks cache lookup hits per market.
	lookupHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricecache_lookup_hits_total",
		Help: "Total number of price cache lookup hits by market",
	}, []string{"market"})

	// lookupMisses tracks cache lookup misses per market.
	lookupMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricecache_lookup_misses_total",
		Help: "Total number of price cache lookup misses by market",
	}, []string{"market"})

	// entryCount tracks the number of cached entries per market.
	entryCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pricecache_entries",
		Help: "Number of cached price entries by market",
	}, []string{"market"})
)

func recordHit(market string) {
	lookupHits.WithLabelValues(market).Inc()
}

func recordMiss(market string) {
	lookupMisses.WithLabelValues(market).Inc()
}

func recordEntryCount(market string, n int) {
	entryCount.WithLabelValues(market).Set(float64(n))
}
