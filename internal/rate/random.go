package rate

import (
	"math/rand"
	"sync"
	"time"

	"github.com/wesleyorama2/surge/internal/errs"
)

// SteadyState holds a target rate with random jitter applied to every
// evaluation: Rate(t) = Target * (1 + U(-Jitter, +Jitter)), floored at
// zero. Jitter must be in [0, 1).
type SteadyState struct {
	Target float64
	Jitter float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSteadyState creates a jittered steady-state pattern seeded from
// the current time.
func NewSteadyState(target, jitter float64) (*SteadyState, error) {
	return NewSteadyStateWithSeed(target, jitter, time.Now().UnixNano())
}

// NewSteadyStateWithSeed creates a jittered steady-state pattern with
// an explicit seed for reproducible runs.
func NewSteadyStateWithSeed(target, jitter float64, seed int64) (*SteadyState, error) {
	s := &SteadyState{
		Target: target,
		Jitter: jitter,
		rng:    rand.New(rand.NewSource(seed)),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Rate implements Pattern.
func (s *SteadyState) Rate(time.Duration) float64 {
	s.mu.Lock()
	u := s.rng.Float64()*2 - 1
	s.mu.Unlock()

	r := s.Target * (1 + u*s.Jitter)
	if r < 0 {
		r = 0
	}
	return r
}

// Name implements Pattern.
func (s *SteadyState) Name() string { return "steady" }

// Validate implements Pattern.
func (s *SteadyState) Validate() error {
	if s.Target < 0 {
		return errs.Config("target", "must be non-negative, got %g", s.Target)
	}
	if s.Jitter < 0 || s.Jitter >= 1 {
		return errs.Config("jitter", "must be in [0, 1), got %g", s.Jitter)
	}
	return nil
}

// Distribution selects how a Chaos pattern draws its rates.
type Distribution string

// Supported chaos distributions.
const (
	DistUniform     Distribution = "uniform"
	DistGaussian    Distribution = "gaussian"
	DistExponential Distribution = "exponential"
)

// Chaos re-draws a random rate from [Min, Max] every ChangeInterval.
// The first interval always runs at Min. Runs are reproducible only
// when constructed with an explicit seed.
type Chaos struct {
	Min            float64
	Max            float64
	ChangeInterval time.Duration
	Distribution   Distribution

	mu         sync.Mutex
	rng        *rand.Rand
	lastBucket int64
	current    float64
}

// NewChaos creates a randomized pattern seeded from the current time.
func NewChaos(min, max float64, changeInterval time.Duration, dist Distribution) (*Chaos, error) {
	return NewChaosWithSeed(min, max, changeInterval, dist, time.Now().UnixNano())
}

// NewChaosWithSeed creates a randomized pattern with an explicit seed
// for reproducible runs.
func NewChaosWithSeed(min, max float64, changeInterval time.Duration, dist Distribution, seed int64) (*Chaos, error) {
	c := &Chaos{
		Min:            min,
		Max:            max,
		ChangeInterval: changeInterval,
		Distribution:   dist,
		rng:            rand.New(rand.NewSource(seed)),
		current:        min,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Rate implements Pattern.
func (c *Chaos) Rate(elapsed time.Duration) float64 {
	if elapsed < 0 {
		elapsed = 0
	}
	bucket := int64(elapsed / c.ChangeInterval)

	c.mu.Lock()
	defer c.mu.Unlock()

	if bucket != c.lastBucket {
		c.lastBucket = bucket
		c.current = c.draw()
	}
	return c.current
}

func (c *Chaos) draw() float64 {
	switch c.Distribution {
	case DistGaussian:
		mean := (c.Min + c.Max) / 2
		std := (c.Max - c.Min) / 6
		r := mean + c.rng.NormFloat64()*std
		if r < c.Min {
			r = c.Min
		}
		if r > c.Max {
			r = c.Max
		}
		return r
	case DistExponential:
		scale := (c.Max - c.Min) / 5
		r := c.Min + c.rng.ExpFloat64()*scale
		if r > c.Max {
			r = c.Max
		}
		return r
	default: // uniform
		return c.Min + c.rng.Float64()*(c.Max-c.Min)
	}
}

// Name implements Pattern.
func (c *Chaos) Name() string { return "chaos" }

// Validate implements Pattern.
func (c *Chaos) Validate() error {
	if c.Min < 0 {
		return errs.Config("min", "must be non-negative, got %g", c.Min)
	}
	if c.Max < c.Min {
		return errs.Config("max", "must be >= min, got min=%g max=%g", c.Min, c.Max)
	}
	if c.ChangeInterval <= 0 {
		return errs.Config("changeInterval", "must be positive, got %s", c.ChangeInterval)
	}
	switch c.Distribution {
	case DistUniform, DistGaussian, DistExponential:
		return nil
	default:
		return errs.Config("distribution", "unknown distribution %q", string(c.Distribution))
	}
}
