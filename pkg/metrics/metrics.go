// Package metrics provides the centralized Prometheus metrics reference for
// the cache engine. Metrics are defined in their owning packages (cache,
// httpcache, warming) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the cache engine.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Store Metrics (pkg/cache):
//   - scholar_cache_hits_total (Counter): Cache hits
//   - scholar_cache_misses_total (Counter): Cache misses
//   - scholar_cache_sets_total (Counter): Cache writes
//   - scholar_cache_deletes_total (Counter): Explicit deletes, including tag invalidations
//   - scholar_cache_evictions_total (Counter): Ceiling-forced evictions
//   - scholar_cache_entries (Gauge): Live entries
//   - scholar_cache_memory_bytes (Gauge): Estimated memory usage
//
// Middleware Metrics (pkg/httpcache):
//   - scholar_httpcache_requests_total{result} (Counter): Requests by result (hit, miss, bypass)
//   - scholar_httpcache_faults_total (Counter): Cache faults degraded to forced misses
//
// Warming Metrics (pkg/warming):
//   - scholar_warmup_runs_total{kind} (Counter): Warmup runs by kind (essentials, queue)
//   - scholar_warmup_tasks_total{outcome} (Counter): Warmup tasks by outcome (success, failed, skipped)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   rate(scholar_cache_hits_total[5m]) /
//   (rate(scholar_cache_hits_total[5m]) + rate(scholar_cache_misses_total[5m]))
//
//   # Memory Fill Ratio (against a 100 MiB budget)
//   scholar_cache_memory_bytes / (100 * 1024 * 1024)
//
//   # Middleware Hit Share
//   rate(scholar_httpcache_requests_total{result="hit"}[5m]) /
//   rate(scholar_httpcache_requests_total[5m])
//
//   # Warmup Failure Rate
//   rate(scholar_warmup_tasks_total{outcome="failed"}[1h])
