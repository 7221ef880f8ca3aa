package service

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// Operation Statistics
// =============================================================================

var latencyBucketNames = []string{"lt_10ms", "lt_50ms", "lt_100ms", "lt_500ms", "lt_1s", "gt_1s"}

// OperationStats keeps in-process counters per named operation for the
// /info endpoint. Prometheus carries the same data for scraping.
type OperationStats struct {
	mu  sync.RWMutex
	ops map[string]*opCounters
}

type opCounters struct {
	total   atomic.Int64
	success atomic.Int64
	failed  atomic.Int64
	latency map[string]*atomic.Int64
}

// NewOperationStats creates an empty collector.
func NewOperationStats() *OperationStats {
	return &OperationStats{ops: make(map[string]*opCounters)}
}

// Record counts one execution of op.
func (s *OperationStats) Record(op string, duration time.Duration, success bool) {
	c := s.counters(op)
	c.total.Add(1)
	if success {
		c.success.Add(1)
	} else {
		c.failed.Add(1)
	}
	c.latency[latencyBucket(duration)].Add(1)
}

func (s *OperationStats) counters(op string) *opCounters {
	s.mu.RLock()
	c, ok := s.ops[op]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok = s.ops[op]; ok {
		return c
	}
	c = &opCounters{latency: make(map[string]*atomic.Int64, len(latencyBucketNames))}
	for _, name := range latencyBucketNames {
		c.latency[name] = &atomic.Int64{}
	}
	s.ops[op] = c
	return c
}

func latencyBucket(d time.Duration) string {
	switch {
	case d < 10*time.Millisecond:
		return "lt_10ms"
	case d < 50*time.Millisecond:
		return "lt_50ms"
	case d < 100*time.Millisecond:
		return "lt_100ms"
	case d < 500*time.Millisecond:
		return "lt_500ms"
	case d < time.Second:
		return "lt_1s"
	default:
		return "gt_1s"
	}
}

// OperationSnapshot is the exported view of one operation.
type OperationSnapshot struct {
	Operation   string           `json:"operation"`
	Total       int64            `json:"total"`
	Success     int64            `json:"success"`
	Failed      int64            `json:"failed"`
	SuccessRate float64          `json:"success_rate"`
	Latency     map[string]int64 `json:"latency_buckets"`
}

// Export returns a snapshot of every operation, sorted by name.
func (s *OperationStats) Export() []OperationSnapshot {
	s.mu.RLock()
	names := make([]string, 0, len(s.ops))
	for name := range s.ops {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)

	out := make([]OperationSnapshot, 0, len(names))
	for _, name := range names {
		c := s.counters(name)
		snap := OperationSnapshot{
			Operation: name,
			Total:     c.total.Load(),
			Success:   c.success.Load(),
			Failed:    c.failed.Load(),
			Latency:   make(map[string]int64, len(c.latency)),
		}
		if snap.Total > 0 {
			snap.SuccessRate = float64(snap.Success) / float64(snap.Total) * 100
		}
		for k, v := range c.latency {
			snap.Latency[k] = v.Load()
		}
		out = append(out, snap)
	}
	return out
}
