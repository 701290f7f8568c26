package cache

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/almonzeir/myscholar-cache/pkg/keys"
	"github.com/almonzeir/myscholar-cache/pkg/logging"
)

// memoryEvictTarget is the fill ratio eviction drives usage down to when the
// memory ceiling is hit.
const memoryEvictTarget = 0.8

// Config controls store capacity and maintenance behavior.
type Config struct {
	// MaxEntries is the entry-count ceiling (default 1000).
	MaxEntries int

	// MaxMemory is the memory budget in bytes (default 100 MiB).
	MaxMemory int64

	// CleanupInterval is the janitor sweep period (default 5 minutes);
	// zero or negative disables the janitor. Lazy expiry on read still
	// applies either way.
	CleanupInterval time.Duration

	// SizeEstimator overrides the default JSON-based size estimate.
	SizeEstimator SizeEstimator

	// Logger receives warnings about refused values. Defaults to the
	// "cache" component logger.
	Logger *zerolog.Logger
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxEntries:      1000,
		MaxMemory:       100 * 1024 * 1024,
		CleanupInterval: 5 * time.Minute,
	}
}

// Store is a concurrency-safe in-memory cache with TTL expiry, tag
// invalidation, and size-aware eviction.
//
// The Store owns a background janitor goroutine started by New; call Close
// to stop it. All other operations are in-memory and effectively
// non-blocking, so none of them takes a context.
type Store struct {
	mu            sync.RWMutex
	items         map[string]*item
	currentMemory int64
	seq           uint64
	stats         counters

	maxEntries int
	maxMemory  int64
	estimate   SizeEstimator
	logger     zerolog.Logger

	// now is swapped out in tests to drive expiry deterministically.
	now func() time.Time

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New constructs a store and starts its janitor (if enabled). New never
// returns nil.
func New(cfg Config) *Store {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1000
	}
	if cfg.MaxMemory <= 0 {
		cfg.MaxMemory = 100 * 1024 * 1024
	}
	if cfg.SizeEstimator == nil {
		cfg.SizeEstimator = JSONSize
	}

	var logger zerolog.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	} else {
		logger = logging.NewLogger("cache")
	}

	s := &Store{
		items:      make(map[string]*item),
		maxEntries: cfg.MaxEntries,
		maxMemory:  cfg.MaxMemory,
		estimate:   cfg.SizeEstimator,
		logger:     logger,
		now:        time.Now,
		done:       make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		s.wg.Add(1)
		go s.janitor(cfg.CleanupInterval)
	}

	return s
}

// Close stops the janitor. Safe to call multiple times; the store remains
// usable afterwards, minus background sweeping.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

// janitor periodically sweeps expired entries. A ticker-based full scan is
// deliberate: it avoids per-entry timers and keeps the sweep under the same
// lock discipline as foreground operations.
func (s *Store) janitor(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// Get returns the value at key, or (nil, false) on a miss. Absence is a
// normal outcome, never an error. Expired entries are removed on the spot.
//
// Get takes the write lock: a hit mutates the item's bookkeeping and an
// expired entry is physically removed.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	it, ok := s.items[key]
	if !ok {
		s.stats.misses++
		cacheMisses.Inc()
		return nil, false
	}
	if it.expired(now) {
		s.removeLocked(key, it)
		s.stats.misses++
		cacheMisses.Inc()
		return nil, false
	}

	it.hitCount++
	it.lastAccess = now
	s.stats.hits++
	cacheHits.Inc()
	return it.value, true
}

// GetAs is a typed read: it returns the value at key asserted to T. A type
// mismatch is reported as a miss to the caller (the underlying hit is still
// counted, since the entry was found).
func GetAs[T any](s *Store, key string) (T, bool) {
	var zero T
	v, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Has reports whether key holds a live entry. Unlike Get it mutates nothing:
// no hit/miss counters, no lazy removal. Used by the warmer's skip-if-cached
// check so warming runs do not distort statistics.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[key]
	return ok && !it.expired(s.now())
}

// SetOption configures one Set call.
type SetOption func(*setOptions)

type setOptions struct {
	ttl  time.Duration
	tags []string
}

// WithTTL overrides the prefix-derived default TTL.
func WithTTL(ttl time.Duration) SetOption {
	return func(o *setOptions) { o.ttl = ttl }
}

// WithTags attaches invalidation tags to the entry.
func WithTags(tags ...string) SetOption {
	return func(o *setOptions) { o.tags = tags }
}

// Set stores value at key, overwriting any existing entry. Without WithTTL
// the TTL follows the key's prefix namespace (keys.DefaultTTL). Set never
// fails: a value that cannot be size-estimated is charged a default
// estimate, and a value larger than the memory ceiling is refused with a
// warning rather than an error.
func (s *Store) Set(key string, value any, opts ...SetOption) {
	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}
	ttl := o.ttl
	if ttl <= 0 {
		ttl = keys.DefaultTTL(key)
	}

	size := s.estimate(value)
	if size < 0 {
		size = defaultSizeEstimate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if size > s.maxMemory {
		s.logger.Warn().
			Str("key", key).
			Int64("size_bytes", size).
			Int64("max_memory", s.maxMemory).
			Msg("value exceeds memory ceiling, not cached")
		return
	}

	now := s.now()

	// Drop any existing entry first so accounting reflects only the new
	// value and the ceilings see the true post-overwrite state.
	if old, ok := s.items[key]; ok {
		s.removeLocked(key, old)
	}

	if len(s.items) >= s.maxEntries {
		s.evictLRULocked()
	}
	if s.currentMemory+size > s.maxMemory {
		s.evictToTargetLocked(size, now)
	}

	s.seq++
	s.items[key] = &item{
		value:      value,
		expiresAt:  now.Add(ttl),
		tags:       o.tags,
		lastAccess: now,
		size:       size,
		seq:        s.seq,
	}
	s.currentMemory += size
	s.stats.sets++
	cacheSets.Inc()
	s.updateGaugesLocked()
}

// Delete removes key. Removing an absent key is a no-op.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[key]
	if !ok {
		return
	}
	s.removeLocked(key, it)
	s.stats.deletes++
	cacheDeletes.Inc()
	s.updateGaugesLocked()
}

// Clear removes all entries and resets memory accounting and the snapshot
// counters. Process-cumulative Prometheus counters are left alone.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]*item)
	s.currentMemory = 0
	s.stats = counters{}
	s.updateGaugesLocked()
}

// InvalidateByTags removes every entry whose tag set intersects tags and
// returns the number removed. The whole group is removed under one lock
// acquisition, so concurrent readers never observe a half-invalidated group.
func (s *Store) InvalidateByTags(tags []string) int {
	if len(tags) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, it := range s.items {
		if it.hasAnyTag(tags) {
			s.removeLocked(key, it)
			s.stats.deletes++
			cacheDeletes.Inc()
			removed++
		}
	}
	if removed > 0 {
		s.updateGaugesLocked()
	}
	return removed
}

// Cleanup sweeps all expired entries. Idempotent and safe to call
// concurrently with every other operation; the janitor calls it on a timer.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, it := range s.items {
		if it.expired(now) {
			s.removeLocked(key, it)
		}
	}
	s.updateGaugesLocked()
}

// Stats returns a snapshot of the store's counters and usage.
func (s *Store) Stats() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := StatsSnapshot{
		Hits:        s.stats.hits,
		Misses:      s.stats.misses,
		Sets:        s.stats.sets,
		Deletes:     s.stats.deletes,
		Evictions:   s.stats.evictions,
		Size:        len(s.items),
		MaxSize:     s.maxEntries,
		MemoryUsage: s.currentMemory,
		MaxMemory:   s.maxMemory,
	}
	if total := snap.Hits + snap.Misses; total > 0 {
		snap.HitRate = float64(snap.Hits) / float64(total)
	}
	return snap
}

// removeLocked unlinks one item and keeps memory accounting consistent.
// Callers hold the write lock and own any counter updates.
func (s *Store) removeLocked(key string, it *item) {
	delete(s.items, key)
	s.currentMemory -= it.size
}

// evictLRULocked evicts exactly one entry, the one with the oldest
// lastAccess, ties broken by insertion order.
func (s *Store) evictLRULocked() {
	var victimKey string
	var victim *item
	for key, it := range s.items {
		if victim == nil ||
			it.lastAccess.Before(victim.lastAccess) ||
			(it.lastAccess.Equal(victim.lastAccess) && it.seq < victim.seq) {
			victimKey, victim = key, it
		}
	}
	if victim == nil {
		return
	}
	s.removeLocked(victimKey, victim)
	s.stats.evictions++
	cacheEvictions.Inc()
}

// evictToTargetLocked evicts entries cheapest-first until admitting incoming
// bytes would keep usage at or under 80% of the memory ceiling. The loop is
// capped at the entry count observed on entry, so a pathological size
// distribution cannot spin it.
func (s *Store) evictToTargetLocked(incoming int64, now time.Time) {
	target := int64(float64(s.maxMemory) * memoryEvictTarget)

	for range len(s.items) {
		if s.currentMemory+incoming <= target || len(s.items) == 0 {
			return
		}

		var victimKey string
		var victim *item
		for key, it := range s.items {
			if victim == nil ||
				it.score(now) < victim.score(now) ||
				(it.score(now) == victim.score(now) && it.seq < victim.seq) {
				victimKey, victim = key, it
			}
		}
		s.removeLocked(victimKey, victim)
		s.stats.evictions++
		cacheEvictions.Inc()
	}
}

// updateGaugesLocked mirrors current usage to Prometheus.
func (s *Store) updateGaugesLocked() {
	cacheEntries.Set(float64(len(s.items)))
	cacheMemoryBytes.Set(float64(s.currentMemory))
}
