package cache

import "time"

// item is one live cache entry. Items are owned exclusively by the Store and
// only touched under the Store's lock.
type item struct {
	// value is the cached payload, materialized by the caller before Set.
	value any

	// expiresAt is the absolute expiry time; the item is logically absent
	// once now is past it.
	expiresAt time.Time

	// tags group the item for bulk invalidation. May be empty.
	tags []string

	// hitCount increments on every successful read.
	hitCount uint64

	// lastAccess is updated on every successful read; drives LRU ordering
	// and the idle term of the eviction score.
	lastAccess time.Time

	// size is the estimated serialized size in bytes, fixed at insertion.
	size int64

	// seq is the insertion sequence number, used as a deterministic
	// tie-break during eviction.
	seq uint64
}

// expired reports whether the item is logically absent at now.
func (it *item) expired(now time.Time) bool {
	return now.After(it.expiresAt)
}

// hasAnyTag reports whether the item's tag set intersects tags.
func (it *item) hasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range it.tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// score ranks the item for memory-pressure eviction: few hits and long idle
// time both push the score down, and the lowest score is evicted first.
func (it *item) score(now time.Time) float64 {
	idle := now.Sub(it.lastAccess).Seconds()
	if idle < 0 {
		idle = 0
	}
	return float64(it.hitCount) / (idle + 1)
}
