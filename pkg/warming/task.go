package warming

import (
	"encoding/json"
	"sort"
	"time"
)

// Priority orders warmup tasks. Higher priorities drain first; tasks within
// one tier keep their enqueue order.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// String returns the priority name.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// Task is one queued warmup unit: a materialized value to plant under a key.
// Tasks are consumed exactly once by ProcessQueue.
type Task struct {
	Key      string
	Data     any
	TTL      time.Duration
	Tags     []string
	Priority Priority
}

// Result summarizes one warmup batch. Individual task failures are recorded
// here and never abort sibling tasks.
type Result struct {
	Success   int
	Failed    int
	Skipped   int
	TotalTime time.Duration
	Errors    []string
}

// resultJSON is the wire shape of Result: the duration travels as integer
// milliseconds.
type resultJSON struct {
	Success     int      `json:"success"`
	Failed      int      `json:"failed"`
	Skipped     int      `json:"skipped"`
	TotalTimeMS int64    `json:"total_time_ms"`
	Errors      []string `json:"errors,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Success:     r.Success,
		Failed:      r.Failed,
		Skipped:     r.Skipped,
		TotalTimeMS: r.TotalTime.Milliseconds(),
		Errors:      r.Errors,
	})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var v resultJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Result{
		Success:   v.Success,
		Failed:    v.Failed,
		Skipped:   v.Skipped,
		TotalTime: time.Duration(v.TotalTimeMS) * time.Millisecond,
		Errors:    v.Errors,
	}
	return nil
}

// sortByPriority orders tasks high > medium > low, stable within a tier.
func sortByPriority(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority > tasks[j].Priority
	})
}
