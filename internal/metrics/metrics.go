package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "desola_provider_attempts_total",
			Help: "Provider search attempts by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderSearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "desola_provider_search_duration_seconds",
			Help:    "Successful provider search duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "desola_search_requests_total",
			Help: "Aggregated search requests by outcome",
		},
		[]string{"outcome"},
	)

	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "desola_cache_hits_total",
			Help: "Cache hits by tier",
		},
		[]string{"tier"},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "desola_cache_misses_total",
			Help: "Cache misses across both tiers",
		},
	)
)
