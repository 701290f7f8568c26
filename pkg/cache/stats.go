package cache

// StatsSnapshot is a point-in-time view of the store's counters and usage.
type StatsSnapshot struct {
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Sets      uint64  `json:"sets"`
	Deletes   uint64  `json:"deletes"`
	Evictions uint64  `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`

	// Size is the current number of live entries; MaxSize the entry ceiling.
	Size    int `json:"size"`
	MaxSize int `json:"max_size"`

	// MemoryUsage is the current estimated usage in bytes; MaxMemory the
	// memory ceiling.
	MemoryUsage int64 `json:"memory_usage"`
	MaxMemory   int64 `json:"max_memory"`
}

// counters holds the store's internal statistics. Mutated only under the
// store lock; reset by Clear.
type counters struct {
	hits      uint64
	misses    uint64
	sets      uint64
	deletes   uint64
	evictions uint64
}
