package rate

import (
	"math"
	"time"

	"github.com/wesleyorama2/surge/internal/errs"
)

// StepLadder moves between Start and End in Steps discrete levels,
// holding each level for StepDuration. Step i (zero-based) runs at
// Start + (End-Start)*i/(Steps-1); after the final step the rate
// stays clamped at End. Descending ladders use Start > End.
type StepLadder struct {
	Start        float64
	End          float64
	Steps        int
	StepDuration time.Duration
}

// NewStepLadder creates a stepped ramp pattern.
func NewStepLadder(start, end float64, steps int, stepDuration time.Duration) (*StepLadder, error) {
	s := &StepLadder{Start: start, End: end, Steps: steps, StepDuration: stepDuration}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Rate implements Pattern.
func (s *StepLadder) Rate(elapsed time.Duration) float64 {
	if elapsed < 0 {
		return s.Start
	}
	step := int(elapsed / s.StepDuration)
	if step >= s.Steps {
		return s.End
	}
	return s.Start + (s.End-s.Start)*float64(step)/float64(s.Steps-1)
}

// Name implements Pattern.
func (s *StepLadder) Name() string { return "step" }

// Validate implements Pattern.
func (s *StepLadder) Validate() error {
	if s.Start < 0 {
		return errs.Config("start", "must be non-negative, got %g", s.Start)
	}
	if s.End < 0 {
		return errs.Config("end", "must be non-negative, got %g", s.End)
	}
	if s.Steps < 2 {
		return errs.Config("steps", "must be at least 2, got %d", s.Steps)
	}
	if s.StepDuration <= 0 {
		return errs.Config("stepDuration", "must be positive, got %s", s.StepDuration)
	}
	return nil
}

// Waveform selects the shape of a Wave pattern.
type Waveform string

// Supported waveforms.
const (
	WaveSine     Waveform = "sine"
	WaveSquare   Waveform = "square"
	WaveSawtooth Waveform = "sawtooth"
)

// Wave oscillates between Min and Max with the given Period. Sine
// varies smoothly, square alternates between the two extremes at half
// period, and sawtooth ramps from Min to Max then resets.
type Wave struct {
	Min      float64
	Max      float64
	Period   time.Duration
	Waveform Waveform
}

// NewWave creates an oscillating pattern.
func NewWave(min, max float64, period time.Duration, waveform Waveform) (*Wave, error) {
	w := &Wave{Min: min, Max: max, Period: period, Waveform: waveform}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Rate implements Pattern.
func (w *Wave) Rate(elapsed time.Duration) float64 {
	if elapsed < 0 {
		elapsed = 0
	}
	phase := float64(elapsed%w.Period) / float64(w.Period)

	switch w.Waveform {
	case WaveSquare:
		if phase < 0.5 {
			return w.Max
		}
		return w.Min
	case WaveSawtooth:
		return w.Min + phase*(w.Max-w.Min)
	default: // sine
		v := (math.Sin(phase*2*math.Pi) + 1) / 2
		return w.Min + v*(w.Max-w.Min)
	}
}

// Name implements Pattern.
func (w *Wave) Name() string { return "wave" }

// Validate implements Pattern.
func (w *Wave) Validate() error {
	if w.Min < 0 {
		return errs.Config("min", "must be non-negative, got %g", w.Min)
	}
	if w.Max < w.Min {
		return errs.Config("max", "must be >= min, got min=%g max=%g", w.Min, w.Max)
	}
	if w.Period <= 0 {
		return errs.Config("period", "must be positive, got %s", w.Period)
	}
	switch w.Waveform {
	case WaveSine, WaveSquare, WaveSawtooth:
		return nil
	default:
		return errs.Config("waveform", "unknown waveform %q", string(w.Waveform))
	}
}
