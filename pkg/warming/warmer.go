// Package warming populates likely-needed cache keys ahead of first request,
// avoiding cold-cache latency spikes.
//
// The Warmer owns two workloads: a fixed essentials catalog refreshed on a
// schedule, and an ad-hoc priority queue of tasks drained on demand. At most
// one warmup batch runs at a time; overlapping triggers return a zero
// Result instead of double-writing.
package warming

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/almonzeir/myscholar-cache/pkg/cache"
	"github.com/almonzeir/myscholar-cache/pkg/logging"
)

// Config controls the warmer's schedule and catalog.
type Config struct {
	// InitialDelay before the first scheduled essentials run (default 10s).
	InitialDelay time.Duration

	// Interval between scheduled essentials runs (default 1h).
	Interval time.Duration

	// Essentials overrides the default catalog.
	Essentials []Essential

	// Logger defaults to the "warming" component logger.
	Logger *zerolog.Logger
}

// DefaultConfig returns the production schedule with the default catalog.
func DefaultConfig() Config {
	return Config{
		InitialDelay: 10 * time.Second,
		Interval:     time.Hour,
	}
}

// Warmer populates the store ahead of demand.
type Warmer struct {
	store      *cache.Store
	essentials []Essential
	logger     zerolog.Logger

	mu    sync.Mutex
	queue []Task

	// warming guards against overlapping batches.
	warming atomic.Bool

	initialDelay time.Duration
	interval     time.Duration

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New constructs a warmer. Call Start to begin scheduled runs.
func New(store *cache.Store, cfg Config) *Warmer {
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 10 * time.Second
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Essentials == nil {
		cfg.Essentials = DefaultEssentials()
	}

	var logger zerolog.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	} else {
		logger = logging.NewLogger("warming")
	}

	return &Warmer{
		store:        store,
		essentials:   cfg.Essentials,
		logger:       logger,
		initialDelay: cfg.InitialDelay,
		interval:     cfg.Interval,
		done:         make(chan struct{}),
	}
}

// AddTask enqueues a warmup task and re-sorts the queue by priority.
func (w *Warmer) AddTask(task Task) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.queue = append(w.queue, task)
	sortByPriority(w.queue)
}

// QueueLen reports the number of pending tasks.
func (w *Warmer) QueueLen() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// WarmupEssentials runs the fixed catalog through the store. If another
// warmup batch is already in progress it refuses and returns a zero Result.
// Individual failures are recorded in Errors and never abort the batch.
func (w *Warmer) WarmupEssentials(ctx context.Context) Result {
	if !w.warming.CompareAndSwap(false, true) {
		w.logger.Debug().Msg("warmup already in progress, skipping essentials run")
		return Result{}
	}
	defer w.warming.Store(false)

	start := time.Now()
	var res Result

	for _, e := range w.essentials {
		data, err := w.load(ctx, e)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", e.Key, err))
			tasksTotal.WithLabelValues("failed").Inc()
			w.logger.Warn().Str("key", e.Key).Err(err).Msg("essential warmup failed")
			continue
		}

		opts := []cache.SetOption{cache.WithTags(e.Tags...)}
		if e.TTL > 0 {
			opts = append(opts, cache.WithTTL(e.TTL))
		}
		w.store.Set(e.Key, data, opts...)
		res.Success++
		tasksTotal.WithLabelValues("success").Inc()
	}

	res.TotalTime = time.Since(start)
	runsTotal.WithLabelValues("essentials").Inc()
	w.logger.Info().
		Int("success", res.Success).
		Int("failed", res.Failed).
		Dur("duration", res.TotalTime).
		Msg("essentials warmup finished")
	return res
}

// load runs one essential's loader, containing panics as task failures.
func (w *Warmer) load(ctx context.Context, e Essential) (data any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			data, err = nil, fmt.Errorf("loader panic: %v", rec)
		}
	}()

	if e.Load == nil {
		return nil, fmt.Errorf("no loader configured")
	}
	return e.Load(ctx)
}

// ProcessQueue drains the task queue, FIFO within each priority tier. Keys
// already live in the store are skipped so freshly-set data is not
// clobbered. Refuses with a zero Result while another batch runs.
func (w *Warmer) ProcessQueue(ctx context.Context) Result {
	if !w.warming.CompareAndSwap(false, true) {
		w.logger.Debug().Msg("warmup already in progress, skipping queue drain")
		return Result{}
	}
	defer w.warming.Store(false)

	w.mu.Lock()
	tasks := w.queue
	w.queue = nil
	w.mu.Unlock()

	start := time.Now()
	var res Result

	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			// Remaining tasks fail closed on cancellation.
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", t.Key, err))
			tasksTotal.WithLabelValues("failed").Inc()
			continue
		}
		if t.Key == "" {
			res.Failed++
			res.Errors = append(res.Errors, "task with empty key")
			tasksTotal.WithLabelValues("failed").Inc()
			continue
		}
		if w.store.Has(t.Key) {
			res.Skipped++
			tasksTotal.WithLabelValues("skipped").Inc()
			continue
		}

		opts := []cache.SetOption{cache.WithTags(t.Tags...)}
		if t.TTL > 0 {
			opts = append(opts, cache.WithTTL(t.TTL))
		}
		w.store.Set(t.Key, t.Data, opts...)
		res.Success++
		tasksTotal.WithLabelValues("success").Inc()
	}

	res.TotalTime = time.Since(start)
	runsTotal.WithLabelValues("queue").Inc()
	w.logger.Info().
		Int("success", res.Success).
		Int("failed", res.Failed).
		Int("skipped", res.Skipped).
		Dur("duration", res.TotalTime).
		Msg("warmup queue drained")
	return res
}

// Start launches the background schedule: one essentials run after the
// initial delay, then one per interval. Failures are logged, never
// propagated. Call Stop to shut the schedule down.
func (w *Warmer) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		select {
		case <-w.done:
			return
		case <-time.After(w.initialDelay):
		}
		w.WarmupEssentials(context.Background())

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.done:
				return
			case <-ticker.C:
				w.WarmupEssentials(context.Background())
			}
		}
	}()
}

// Stop cancels the schedule and waits for any in-flight run to return.
// Safe to call multiple times.
func (w *Warmer) Stop() {
	w.closeOnce.Do(func() {
		close(w.done)
	})
	w.wg.Wait()
}
