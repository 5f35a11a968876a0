package rate

import (
	"time"

	"github.com/wesleyorama2/surge/internal/errs"
)

// Spike alternates between a baseline rate and a spike rate on a
// fixed cycle: within each Interval, the first SpikeDuration runs at
// SpikeRate and the remainder at Baseline. Useful for testing how a
// target recovers from repeated surges.
type Spike struct {
	Baseline      float64
	SpikeRate     float64
	SpikeDuration time.Duration
	Interval      time.Duration
}

// NewSpike creates a periodic spike pattern.
func NewSpike(baseline, spikeRate float64, spikeDuration, interval time.Duration) (*Spike, error) {
	s := &Spike{
		Baseline:      baseline,
		SpikeRate:     spikeRate,
		SpikeDuration: spikeDuration,
		Interval:      interval,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Rate implements Pattern.
func (s *Spike) Rate(elapsed time.Duration) float64 {
	if elapsed < 0 {
		return s.Baseline
	}
	if elapsed%s.Interval < s.SpikeDuration {
		return s.SpikeRate
	}
	return s.Baseline
}

// Name implements Pattern.
func (s *Spike) Name() string { return "spike" }

// Validate implements Pattern.
func (s *Spike) Validate() error {
	if s.Baseline < 0 {
		return errs.Config("baseline", "must be non-negative, got %g", s.Baseline)
	}
	if s.SpikeRate < 0 {
		return errs.Config("spikeRate", "must be non-negative, got %g", s.SpikeRate)
	}
	if s.SpikeDuration <= 0 {
		return errs.Config("spikeDuration", "must be positive, got %s", s.SpikeDuration)
	}
	if s.Interval <= 0 {
		return errs.Config("interval", "must be positive, got %s", s.Interval)
	}
	return nil
}

// Burst produces a single surge: InitialRate until Delay has elapsed,
// BurstRate for BurstDuration, then FinalRate for the rest of the run.
type Burst struct {
	InitialRate   float64
	BurstRate     float64
	BurstDuration time.Duration
	Delay         time.Duration

	// FinalRate is the rate after the burst window. NewBurst defaults
	// it to InitialRate.
	FinalRate float64
}

// NewBurst creates a one-shot burst pattern. The post-burst rate
// defaults to initialRate; set FinalRate before Validate to override.
func NewBurst(initialRate, burstRate float64, burstDuration, delay time.Duration) (*Burst, error) {
	b := &Burst{
		InitialRate:   initialRate,
		BurstRate:     burstRate,
		BurstDuration: burstDuration,
		Delay:         delay,
		FinalRate:     initialRate,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Rate implements Pattern.
func (b *Burst) Rate(elapsed time.Duration) float64 {
	switch {
	case elapsed < b.Delay:
		return b.InitialRate
	case elapsed < b.Delay+b.BurstDuration:
		return b.BurstRate
	default:
		return b.FinalRate
	}
}

// Name implements Pattern.
func (b *Burst) Name() string { return "burst" }

// Validate implements Pattern.
func (b *Burst) Validate() error {
	if b.InitialRate < 0 {
		return errs.Config("initialRate", "must be non-negative, got %g", b.InitialRate)
	}
	if b.BurstRate < 0 {
		return errs.Config("burstRate", "must be non-negative, got %g", b.BurstRate)
	}
	if b.FinalRate < 0 {
		return errs.Config("finalRate", "must be non-negative, got %g", b.FinalRate)
	}
	if b.BurstDuration <= 0 {
		return errs.Config("burstDuration", "must be positive, got %s", b.BurstDuration)
	}
	if b.Delay < 0 {
		return errs.Config("delay", "must be non-negative, got %s", b.Delay)
	}
	return nil
}
