package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits tracks successful reads.
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scholar_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	// cacheMisses tracks reads of absent or expired keys.
	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scholar_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// cacheSets tracks insertions and overwrites.
	cacheSets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scholar_cache_sets_total",
			Help: "Total number of cache writes",
		},
	)

	// cacheDeletes tracks explicit removals, including tag invalidations.
	cacheDeletes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scholar_cache_deletes_total",
			Help: "Total number of explicit cache deletes",
		},
	)

	// cacheEvictions tracks removals forced by the count or memory ceiling.
	cacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scholar_cache_evictions_total",
			Help: "Total number of cache evictions",
		},
	)

	// cacheEntries tracks the current number of live entries.
	cacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scholar_cache_entries",
			Help: "Current number of live cache entries",
		},
	)

	// cacheMemoryBytes tracks the current estimated memory usage.
	cacheMemoryBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scholar_cache_memory_bytes",
			Help: "Current estimated cache memory usage in bytes",
		},
	)
)
