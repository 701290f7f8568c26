// Package cache provides the in-process cache engine for the scholarship
// platform: a concurrent key/value store with TTL expiry, tag-based bulk
// invalidation, and size-aware eviction.
//
// # Usage
//
//	store := cache.New(cache.DefaultConfig())
//	defer store.Close()
//
//	store.Set(keys.ScholarshipDetails("42"), details,
//		cache.WithTags(keys.TagScholarships))
//
//	if v, ok := cache.GetAs[Scholarship](store, keys.ScholarshipDetails("42")); ok {
//		// cache hit
//		_ = v
//	}
//
// # Expiry
//
// Every entry carries an absolute expiry time. When Set is called without
// WithTTL, the TTL comes from the key's prefix namespace (see package keys).
// Expired entries are removed lazily on read and swept periodically by a
// background janitor owned by the Store; Close stops the janitor.
//
// # Eviction
//
// Two ceilings bound the store. At the entry-count ceiling one entry is
// evicted by pure LRU. At the memory ceiling entries are evicted cheapest
// first, ranked by hitCount / (secondsIdle + 1), until usage drops to 80% of
// the ceiling. A value larger than the memory ceiling itself is refused.
//
// # Statistics
//
// Stats returns a point-in-time snapshot of hit/miss/set/delete/eviction
// counters plus memory usage. The same figures are mirrored to Prometheus;
// the Prometheus counters are process-cumulative and are not reset by Clear.
//
// Misses are not errors: Get returns (nil, false) and no operation on the
// Store has an error return.
package cache
