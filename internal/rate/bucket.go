package rate

import (
	"sync"
	"time"
)

// Bucket converts a continuous target rate into discrete dispatch
// events without drift.
//
// # Algorithm
//
// The bucket accumulates owed events as elapsed-time x rate. Each call
// to Take drains the integer part of the accumulator and returns it as
// the number of events to dispatch now; the fractional remainder
// carries forward, so an owed event is only ever deferred to a later
// tick, never lost to rounding. Changing the rate preserves the
// fraction: at low rates the accumulator may take many ticks to cross
// 1.0, and resetting it on every rate update would starve dispatch.
//
// # Thread Safety
//
// Bucket is safe for concurrent use. The scheduling loop owns SetRate
// and Take; observers may read CurrentRate concurrently.
type Bucket struct {
	mu          sync.Mutex
	rate        float64   // events per second
	last        time.Time // previous Take timestamp
	accumulated float64   // owed events, fractional
}

// NewBucket creates a dispatch accumulator with the given initial
// rate. The accumulator starts empty; the first call to Take anchors
// the time base and returns 0.
func NewBucket(rate float64) *Bucket {
	if rate < 0 {
		rate = 0
	}
	return &Bucket{rate: rate}
}

// SetRate updates the target rate. The accumulated fraction is kept.
func (b *Bucket) SetRate(rate float64) {
	if rate < 0 {
		rate = 0
	}
	b.mu.Lock()
	b.rate = rate
	b.mu.Unlock()
}

// CurrentRate returns the current target rate in events per second.
func (b *Bucket) CurrentRate() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rate
}

// Take advances the accumulator to now and returns the number of
// whole events owed since the previous call.
func (b *Bucket) Take(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.last.IsZero() {
		b.last = now
		return 0
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	b.last = now
	b.accumulated += elapsed * b.rate

	n := int(b.accumulated)
	b.accumulated -= float64(n)
	return n
}

// Accumulated returns the current fractional backlog. Intended for
// tests and diagnostics.
func (b *Bucket) Accumulated() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accumulated
}

// Reset clears the accumulator and time base, as when reusing a
// bucket for a new run.
func (b *Bucket) Reset() {
	b.mu.Lock()
	b.accumulated = 0
	b.last = time.Time{}
	b.mu.Unlock()
}
