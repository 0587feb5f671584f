package logger

import (
	"context"
	"sort"
	"sync"
	"time"
)

type opCounter struct {
	total   int64
	failed  int64
	latency time.Duration
}

type registry struct {
	mu  sync.Mutex
	ops map[string]*opCounter
}

var globalMetrics = &registry{ops: make(map[string]*opCounter)}

type OperationStats struct {
	Operation    string
	Total        int64
	Failed       int64
	AvgLatencyMs float64
}

// OperationKey builds the "provider.op" metric key.
func OperationKey(provider, op string) string {
	return provider + "." + op
}

func RecordOperation(operation string, err error, duration time.Duration) {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	c, ok := globalMetrics.ops[operation]
	if !ok {
		c = &opCounter{}
		globalMetrics.ops[operation] = c
	}
	c.total++
	c.latency += duration
	if err != nil {
		c.failed++
	}
}

// Snapshot returns the counters sorted by operation key.
func Snapshot() []OperationStats {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	out := make([]OperationStats, 0, len(globalMetrics.ops))
	for op, c := range globalMetrics.ops {
		s := OperationStats{Operation: op, Total: c.total, Failed: c.failed}
		if c.total > 0 {
			s.AvgLatencyMs = float64(c.latency.Nanoseconds()) / float64(c.total) / 1e6
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// TimedOperation runs fn under the "provider.op" key and records its
// outcome and latency.
func TimedOperation(ctx context.Context, provider, op string, fn func() error) error {
	key := OperationKey(provider, op)
	start := time.Now()
	log := FromContext(ctx).ForProvider(provider).With("op", op)
	log.Debug("provider call started")

	err := fn()
	duration := time.Since(start)
	RecordOperation(key, err, duration)

	if err != nil {
		log.Warn("provider call failed", "error", err, "duration", duration)
	} else {
		log.Debug("provider call completed", "duration", duration)
	}
	return err
}

func ResetMetrics() {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()
	globalMetrics.ops = make(map[string]*opCounter)
}
