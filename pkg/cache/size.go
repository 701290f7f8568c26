package cache

import "encoding/json"

// defaultSizeEstimate is charged for values that cannot be JSON-encoded.
// Estimation failures never reject a Set.
const defaultSizeEstimate = 1024

// SizeEstimator estimates the in-memory cost of a value in bytes. The
// estimate is advisory: eviction correctness depends on it being consistent
// and monotonic, not exact.
type SizeEstimator func(value any) int64

// JSONSize estimates size as twice the JSON encoding length, approximating
// two bytes per character of the serialized form.
func JSONSize(value any) int64 {
	data, err := json.Marshal(value)
	if err != nil {
		return defaultSizeEstimate
	}
	return int64(len(data)) * 2
}
