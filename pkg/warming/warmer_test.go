package warming

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/almonzeir/myscholar-cache/pkg/cache"
	"github.com/almonzeir/myscholar-cache/pkg/keys"
)

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()
	cfg := cache.DefaultConfig()
	cfg.CleanupInterval = 0
	s := cache.New(cfg)
	t.Cleanup(s.Close)
	return s
}

func TestAddTask_PriorityOrdering(t *testing.T) {
	w := New(newTestStore(t), DefaultConfig())

	w.AddTask(Task{Key: "low-1", Priority: PriorityLow})
	w.AddTask(Task{Key: "high-1", Priority: PriorityHigh})
	w.AddTask(Task{Key: "med-1", Priority: PriorityMedium})
	w.AddTask(Task{Key: "high-2", Priority: PriorityHigh})

	want := []string{"high-1", "high-2", "med-1", "low-1"}
	if len(w.queue) != len(want) {
		t.Fatalf("queue length = %d, want %d", len(w.queue), len(want))
	}
	for i, k := range want {
		if w.queue[i].Key != k {
			t.Errorf("queue[%d] = %s, want %s (high > medium > low, stable within tier)",
				i, w.queue[i].Key, k)
		}
	}
}

func TestProcessQueue_SkipsCachedKeys(t *testing.T) {
	store := newTestStore(t)
	store.Set("scholarship:featured", "fresh-data")

	w := New(store, DefaultConfig())
	w.AddTask(Task{Key: "scholarship:featured", Data: "stale-warmup-data"})
	w.AddTask(Task{Key: "api:countries", Data: []string{"DE"}})

	res := w.ProcessQueue(context.Background())

	if res.Skipped != 1 || res.Success != 1 {
		t.Errorf("result = %+v, want 1 skipped and 1 success", res)
	}
	if v, _ := store.Get("scholarship:featured"); v != "fresh-data" {
		t.Errorf("warmup clobbered freshly-set data: %v", v)
	}
	if !store.Has("api:countries") {
		t.Error("uncached task was not written")
	}
	if w.QueueLen() != 0 {
		t.Errorf("queue not drained: %d tasks left", w.QueueLen())
	}
}

func TestProcessQueue_TaskFailureIsolated(t *testing.T) {
	w := New(newTestStore(t), DefaultConfig())
	w.AddTask(Task{Key: "api:fields", Data: []string{"physics"}})
	w.AddTask(Task{Key: "", Data: "broken"})
	w.AddTask(Task{Key: "api:countries", Data: []string{"DE"}})

	res := w.ProcessQueue(context.Background())

	if res.Failed != 1 || len(res.Errors) != 1 {
		t.Errorf("result = %+v, want exactly 1 failure recorded", res)
	}
	if res.Success != 2 {
		t.Errorf("success = %d, want 2: one bad task must not abort siblings", res.Success)
	}
}

func TestWarmupEssentials_DefaultCatalog(t *testing.T) {
	store := newTestStore(t)
	w := New(store, DefaultConfig())

	res := w.WarmupEssentials(context.Background())

	if res.Failed != 0 || len(res.Errors) != 0 {
		t.Fatalf("result = %+v, want no failures", res)
	}
	if res.Success != len(DefaultEssentials()) {
		t.Errorf("success = %d, want %d", res.Success, len(DefaultEssentials()))
	}

	for _, key := range []string{
		keys.Countries(), keys.FieldsOfStudy(),
		keys.FeaturedScholarships(), keys.AggregateStats(),
	} {
		if !store.Has(key) {
			t.Errorf("essential key %s not warmed", key)
		}
	}
}

func TestWarmupEssentials_LoaderFailureIsolated(t *testing.T) {
	store := newTestStore(t)
	cfg := DefaultConfig()
	cfg.Essentials = []Essential{
		{Key: "api:ok", Load: StaticLoader("v")},
		{Key: "api:bad", Load: func(context.Context) (any, error) {
			return nil, errors.New("upstream down")
		}},
		{Key: "api:panics", Load: func(context.Context) (any, error) {
			panic("loader bug")
		}},
	}
	w := New(store, cfg)

	res := w.WarmupEssentials(context.Background())

	if res.Success != 1 || res.Failed != 2 {
		t.Errorf("result = %+v, want 1 success and 2 failures", res)
	}
	if len(res.Errors) != 2 {
		t.Errorf("errors = %v, want 2 entries", res.Errors)
	}
	if !store.Has("api:ok") {
		t.Error("healthy essential not warmed despite sibling failures")
	}
}

func TestWarmupEssentials_ConcurrentGuard(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	cfg := DefaultConfig()
	cfg.Essentials = []Essential{
		{Key: "api:slow", Load: func(context.Context) (any, error) {
			close(entered)
			<-release
			return "v", nil
		}},
	}
	w := New(newTestStore(t), cfg)

	var first Result
	done := make(chan struct{})
	go func() {
		first = w.WarmupEssentials(context.Background())
		close(done)
	}()

	// Trigger the second run while the first is provably mid-batch.
	<-entered
	second := w.WarmupEssentials(context.Background())
	close(release)
	<-done

	if second.Success != 0 || second.Failed != 0 || second.TotalTime != 0 {
		t.Errorf("overlapping run = %+v, want a zero-result refusal", second)
	}
	if first.Success != 1 {
		t.Errorf("first run = %+v, want 1 success", first)
	}
}

func TestStartStop_ScheduledRun(t *testing.T) {
	store := newTestStore(t)
	cfg := DefaultConfig()
	cfg.InitialDelay = 10 * time.Millisecond
	cfg.Interval = time.Hour
	w := New(store, cfg)

	w.Start()
	defer w.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for !store.Has(keys.Countries()) {
		if time.Now().After(deadline) {
			t.Fatal("scheduled essentials run never populated the store")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStop_BeforeInitialDelay(t *testing.T) {
	store := newTestStore(t)
	cfg := DefaultConfig()
	cfg.InitialDelay = time.Hour
	w := New(store, cfg)

	w.Start()
	w.Stop() // must return promptly, not wait out the delay

	if store.Has(keys.Countries()) {
		t.Error("stopped warmer still ran the essentials batch")
	}
}
