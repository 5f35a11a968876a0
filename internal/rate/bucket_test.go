package rate

import (
	"testing"
	"time"
)

func TestBucket_Take_FirstCallAnchors(t *testing.T) {
	b := NewBucket(100)

	now := time.Unix(1000, 0)
	if got := b.Take(now); got != 0 {
		t.Errorf("first Take() = %d, want 0", got)
	}
}

func TestBucket_Take_AccumulatesAtRate(t *testing.T) {
	b := NewBucket(10) // 10 events/second

	start := time.Unix(1000, 0)
	b.Take(start)

	// One second at 10/s owes exactly 10 events.
	if got := b.Take(start.Add(time.Second)); got != 10 {
		t.Errorf("Take(+1s) = %d, want 10", got)
	}

	// Nothing owed immediately afterwards.
	if got := b.Take(start.Add(time.Second)); got != 0 {
		t.Errorf("Take(same instant) = %d, want 0", got)
	}
}

func TestBucket_Take_CarriesFraction(t *testing.T) {
	b := NewBucket(4) // 4 events/second = one per 250ms

	start := time.Unix(1000, 0)
	b.Take(start)

	// 125ms at 4/s accumulates 0.5: nothing fires yet.
	if got := b.Take(start.Add(125 * time.Millisecond)); got != 0 {
		t.Errorf("Take(+125ms) = %d, want 0", got)
	}

	// Another 125ms crosses 1.0: exactly one event.
	if got := b.Take(start.Add(250 * time.Millisecond)); got != 1 {
		t.Errorf("Take(+250ms) = %d, want 1", got)
	}
}

func TestBucket_Take_LowRateNeverLosesEvents(t *testing.T) {
	b := NewBucket(0.5) // one event per 2 seconds

	start := time.Unix(1000, 0)
	b.Take(start)

	total := 0
	for i := 1; i <= 80; i++ {
		total += b.Take(start.Add(time.Duration(i) * 250 * time.Millisecond))
	}

	// 20 seconds at 0.5/s owes 10 events, all of which must fire
	// despite every individual tick owing only 0.125.
	if total != 10 {
		t.Errorf("total events over 20s = %d, want 10", total)
	}
}

func TestBucket_SetRate_KeepsFraction(t *testing.T) {
	b := NewBucket(4)

	start := time.Unix(1000, 0)
	b.Take(start)

	// Accumulate 0.5 owed events at the old rate.
	b.Take(start.Add(125 * time.Millisecond))
	if acc := b.Accumulated(); acc != 0.5 {
		t.Fatalf("Accumulated() = %v, want 0.5", acc)
	}

	b.SetRate(2)

	// 250ms at the new rate adds 0.5, crossing the boundary; the
	// fraction from before the rate change must not be discarded.
	if got := b.Take(start.Add(375 * time.Millisecond)); got != 1 {
		t.Errorf("Take after SetRate = %d, want 1", got)
	}
}

func TestBucket_Take_ZeroRate(t *testing.T) {
	b := NewBucket(0)

	start := time.Unix(1000, 0)
	b.Take(start)

	if got := b.Take(start.Add(time.Hour)); got != 0 {
		t.Errorf("Take at zero rate = %d, want 0", got)
	}
}

func TestBucket_Take_ClampsBackwardsClock(t *testing.T) {
	b := NewBucket(100)

	start := time.Unix(1000, 0)
	b.Take(start)

	if got := b.Take(start.Add(-time.Second)); got != 0 {
		t.Errorf("Take with earlier timestamp = %d, want 0", got)
	}
}

func TestBucket_Reset(t *testing.T) {
	b := NewBucket(10)

	start := time.Unix(1000, 0)
	b.Take(start)
	b.Take(start.Add(50 * time.Millisecond)) // leaves 0.5 accumulated

	b.Reset()

	if acc := b.Accumulated(); acc != 0 {
		t.Errorf("Accumulated() after Reset = %v, want 0", acc)
	}
	// First Take after Reset re-anchors the time base.
	if got := b.Take(start.Add(time.Minute)); got != 0 {
		t.Errorf("Take after Reset = %d, want 0", got)
	}
}
