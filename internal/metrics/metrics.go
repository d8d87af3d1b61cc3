package metrics

import (
	"sync"
	"sync/atomic"
)

// rateLimitStats holds counters for rate limit drops (HTTP 429).
// Kept simple/thread-safe for use from middlewares and exposition.
type rateLimitStats struct {
	total uint64
	mu    sync.Mutex
	byKey map[string]uint64
}

var rl rateLimitStats

// IncRateLimitDrop increments drop counters for the given scope key.
// Use "global" for global limiter rejections.
func IncRateLimitDrop(key string) {
	if key == "" {
		key = "global"
	}
	atomic.AddUint64(&rl.total, 1)
	rl.mu.Lock()
	if rl.byKey == nil {
		rl.byKey = make(map[string]uint64)
	}
	rl.byKey[key]++
	rl.mu.Unlock()
}

// RateLimitSnapshot returns a copy of the current counters.
func RateLimitSnapshot() (total uint64, by map[string]uint64) {
	total = atomic.LoadUint64(&rl.total)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	by = make(map[string]uint64, len(rl.byKey))
	for k, v := range rl.byKey {
		by[k] = v
	}
	return total, by
}
