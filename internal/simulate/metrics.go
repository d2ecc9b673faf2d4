package simulate

import (
	"sync"
	"time"

	"github.com/okian/rondo/pkg/metrics"
)

// Bucket aggregates completed requests for one action kind. Count and
// Errors only ever increase; Errors never exceeds Count.
type Bucket struct {
	Count     uint64
	Errors    uint64
	TotalTime time.Duration
}

// AvgLatency returns the running average latency, zero for an empty bucket.
func (b Bucket) AvgLatency() time.Duration {
	if b.Count == 0 {
		return 0
	}
	return b.TotalTime / time.Duration(b.Count)
}

// Metrics is the shared aggregate mutated by every worker and read by the
// supervisor's reporting loop. All buckets share one mutex so a snapshot
// never observes a partially applied record.
type Metrics struct {
	mu         sync.Mutex
	buckets    map[Action]*Bucket
	iterations uint64
	start      time.Time
}

// NewMetrics creates an empty aggregate with one bucket per action kind.
func NewMetrics() *Metrics {
	m := &Metrics{
		buckets: make(map[Action]*Bucket, len(Actions())),
		start:   time.Now(),
	}
	for _, a := range Actions() {
		m.buckets[a] = &Bucket{}
	}
	return m
}

// Record folds one outcome into the action's bucket: count always, elapsed
// always, errors only on failure.
func (m *Metrics) Record(action Action, outcome Outcome) {
	m.mu.Lock()
	b := m.buckets[action]
	b.Count++
	b.TotalTime += outcome.Elapsed
	if outcome.Failed() {
		b.Errors++
	}
	m.mu.Unlock()

	// Mirror into the Prometheus series outside the critical section.
	metrics.RecordRequest(action.String(), outcome.Status.String())
	metrics.RecordRequestDuration(action.String(), float64(outcome.Elapsed.Microseconds())/1e3)
	if outcome.Failed() {
		metrics.RecordRequestError(action.String())
	}
}

// AddIteration notes one completed worker loop pass and returns the new total.
func (m *Metrics) AddIteration() uint64 {
	m.mu.Lock()
	m.iterations++
	n := m.iterations
	m.mu.Unlock()

	metrics.RecordIteration()
	return n
}

// Iterations returns the number of completed loop passes across all workers.
func (m *Metrics) Iterations() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.iterations
}

// Snapshot returns a consistent point-in-time copy of every bucket.
func (m *Metrics) Snapshot() map[Action]Bucket {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[Action]Bucket, len(m.buckets))
	for a, b := range m.buckets {
		out[a] = *b
	}
	return out
}

// Uptime returns how long this aggregate has been collecting.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.start)
}
