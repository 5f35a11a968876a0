package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Interval captures completion activity over one roll period. The
// live display reads these for its rate column and sparkline.
type Interval struct {
	Timestamp time.Time     `json:"timestamp"`
	Completed int64         `json:"completed"`
	Failed    int64         `json:"failed"`
	Rate      float64       `json:"rate"`
	P95       time.Duration `json:"p95"`
	Phase     Phase         `json:"phase"`
}

// Window keeps a bounded ring of recent intervals. Observations land
// in lock-free accumulators; Roll seals them into an interval once
// per period, so the series stays continuous even when no executions
// complete.
type Window struct {
	mu        sync.RWMutex
	intervals []Interval
	head      int // next write position
	count     int
	size      int
	last      time.Time

	completed atomic.Int64
	failed    atomic.Int64
}

// NewWindow creates a window retaining at most size intervals.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = 600
	}
	return &Window{
		intervals: make([]Interval, size),
		size:      size,
		last:      time.Now(),
	}
}

// Observe records one completion into the current accumulator.
func (w *Window) Observe(success bool) {
	w.completed.Add(1)
	if !success {
		w.failed.Add(1)
	}
}

// Roll seals the current accumulator into a new interval and resets
// it. Called by the aggregator's emitter once per period.
func (w *Window) Roll(p95 time.Duration, phase Phase) Interval {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	completed := w.completed.Swap(0)
	failed := w.failed.Swap(0)

	elapsed := now.Sub(w.last).Seconds()
	if elapsed <= 0 {
		elapsed = 1.0
	}

	iv := Interval{
		Timestamp: now,
		Completed: completed,
		Failed:    failed,
		Rate:      float64(completed) / elapsed,
		P95:       p95,
		Phase:     phase,
	}

	w.intervals[w.head] = iv
	w.head = (w.head + 1) % w.size
	if w.count < w.size {
		w.count++
	}
	w.last = now

	return iv
}

// Recent returns up to n of the most recent intervals in
// chronological order. The result is a copy.
func (w *Window) Recent(n int) []Interval {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if n > w.count {
		n = w.count
	}
	if n <= 0 {
		return nil
	}

	result := make([]Interval, n)
	for i := 0; i < n; i++ {
		idx := (w.head - n + i + w.size) % w.size
		result[i] = w.intervals[idx]
	}
	return result
}

// LatestRate returns the completion rate of the most recent sealed
// interval, 0 when none exist yet.
func (w *Window) LatestRate() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.count == 0 {
		return 0
	}
	idx := (w.head - 1 + w.size) % w.size
	return w.intervals[idx].Rate
}

// Len returns the number of sealed intervals.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.count
}
