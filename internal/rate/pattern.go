// Package rate provides traffic rate patterns and the dispatch
// accumulator for open-model load generation.
//
// A Pattern maps elapsed test time to a target dispatch rate in
// events per second. Patterns are pure lookups: evaluating one has no
// side effects, and apart from the explicitly randomized variants
// (SteadyState, Chaos) the same elapsed time always yields the same
// rate. Patterns are built once during configuration and treated as
// read-only afterwards, so the scheduler can evaluate them without
// synchronization.
package rate

import (
	"time"

	"github.com/wesleyorama2/surge/internal/errs"
)

// Pattern maps elapsed time since run start to a target rate.
//
// Implementations guarantee Rate(t) >= 0 for all t >= 0. Validate
// reports construction-time parameter errors; the New* constructors
// call it so an invalid pattern never escapes.
type Pattern interface {
	// Rate returns the target dispatch rate, in events per second,
	// for the given elapsed time.
	Rate(elapsed time.Duration) float64

	// Name identifies the pattern kind for reporting.
	Name() string

	// Validate checks construction parameters.
	Validate() error
}

// Constant holds a fixed rate for the whole run.
type Constant struct {
	// Target is the dispatch rate in events per second.
	Target float64
}

// NewConstant creates a constant-rate pattern.
func NewConstant(target float64) (*Constant, error) {
	c := &Constant{Target: target}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Rate implements Pattern.
func (c *Constant) Rate(time.Duration) float64 { return c.Target }

// Name implements Pattern.
func (c *Constant) Name() string { return "constant" }

// Validate implements Pattern.
func (c *Constant) Validate() error {
	if c.Target < 0 {
		return errs.Config("target", "must be non-negative, got %g", c.Target)
	}
	return nil
}

// Ramp interpolates linearly from Start to End over RampDuration,
// then holds End for the remainder of the run.
type Ramp struct {
	Start        float64
	End          float64
	RampDuration time.Duration
}

// NewRamp creates a linear ramp pattern.
func NewRamp(start, end float64, rampDuration time.Duration) (*Ramp, error) {
	r := &Ramp{Start: start, End: end, RampDuration: rampDuration}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Rate implements Pattern.
func (r *Ramp) Rate(elapsed time.Duration) float64 {
	if elapsed >= r.RampDuration {
		return r.End
	}
	if elapsed < 0 {
		return r.Start
	}
	progress := float64(elapsed) / float64(r.RampDuration)
	return r.Start + progress*(r.End-r.Start)
}

// Name implements Pattern.
func (r *Ramp) Name() string { return "ramp" }

// Validate implements Pattern.
func (r *Ramp) Validate() error {
	if r.Start < 0 {
		return errs.Config("start", "must be non-negative, got %g", r.Start)
	}
	if r.End < 0 {
		return errs.Config("end", "must be non-negative, got %g", r.End)
	}
	if r.RampDuration <= 0 {
		return errs.Config("rampDuration", "must be positive, got %s", r.RampDuration)
	}
	return nil
}
