package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup outcomes.
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

var (
	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_cache_lookups_total",
			Help: "Total number of rating cache lookups by entry kind and result",
		},
		[]string{"kind", "result"},
	)

	computationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rating_computation_duration_seconds",
			Help:    "Time spent computing a value that was not served from cache",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"kind"},
	)

	bulkBatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rating_bulk_batch_size",
			Help:    "Number of distinct users per bulk rating calculation",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(cacheLookupsTotal)
	prometheus.MustRegister(computationDuration)
	prometheus.MustRegister(bulkBatchSize)
}
