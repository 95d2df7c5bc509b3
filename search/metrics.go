package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	providerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dinewheel_provider_requests_total",
		Help: "Places provider calls issued, labeled by query strategy.",
	}, []string{"strategy"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dinewheel_cache_hits_total",
		Help: "Searches served from the session result cache.",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dinewheel_cache_misses_total",
		Help: "Searches that had to run the aggregation pipeline.",
	})

	searchesInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dinewheel_searches_inflight",
		Help: "Aggregations currently running.",
	})
)
