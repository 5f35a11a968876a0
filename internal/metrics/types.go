package metrics

import "time"

// Phase labels which part of the run an observation belongs to.
// Outcomes are attributed to the phase in effect when they complete,
// so work admitted during warmup but finishing after it counts.
type Phase string

const (
	// PhaseInit is the setup phase before any load is generated
	PhaseInit Phase = "init"

	// PhaseWarmup is the warmup phase, excluded from final statistics
	PhaseWarmup Phase = "warmup"

	// PhaseMeasuring is the measured portion of the run
	PhaseMeasuring Phase = "measuring"

	// PhaseDraining is the graceful wind-down after measurement ends
	PhaseDraining Phase = "draining"

	// PhaseDone indicates the run has completed
	PhaseDone Phase = "done"
)

// Snapshot is a point-in-time view of all collected metrics.
type Snapshot struct {
	// RunID identifies the run this snapshot belongs to, stamped by
	// the orchestrator
	RunID string `json:"runId,omitempty"`

	// Name is the run name, stamped by the orchestrator
	Name string `json:"name,omitempty"`

	// Completed execution counts for the measured phase
	Total   int64 `json:"total"`
	Success int64 `json:"success"`
	Failure int64 `json:"failure"`
	Timeout int64 `json:"timeout"`

	// Admission bookkeeping. Throttled executions were never admitted,
	// abandoned ones were cut short by cancellation.
	Throttled int64 `json:"throttled"`
	Abandoned int64 `json:"abandoned"`

	// WarmupTotal counts executions that completed during warmup
	WarmupTotal int64 `json:"warmupTotal"`

	// TotalBytes is the total payload bytes received
	TotalBytes int64 `json:"totalBytes"`

	// SuccessRate is the percentage of measured executions that
	// succeeded, 0 when nothing completed
	SuccessRate float64 `json:"successRate"`

	// Latency aggregates measured-phase durations
	Latency LatencyStats `json:"latency"`

	// PerWorkload breaks latency down by workload name
	PerWorkload map[string]LatencyStats `json:"perWorkload,omitempty"`

	// Statuses counts measured completions by status class, such as
	// "200" or "timeout"
	Statuses map[string]int64 `json:"statuses,omitempty"`

	// Errors counts measured failures by error class
	Errors map[string]int64 `json:"errors,omitempty"`

	// Custom aggregates workload-reported metric samples by name
	Custom map[string]CustomStat `json:"custom,omitempty"`

	// RPS is the average completion rate over the measured phase
	RPS float64 `json:"rps"`

	// LiveRPS is the completion rate of the most recent interval
	LiveRPS float64 `json:"liveRps"`

	// InFlight is the number of executions currently running
	InFlight int `json:"inFlight"`

	// TargetRate is the arrival rate the pattern currently requests
	TargetRate float64 `json:"targetRate"`

	Phase     Phase         `json:"phase"`
	Elapsed   time.Duration `json:"elapsed"`
	StartTime time.Time     `json:"startTime"`
	Timestamp time.Time     `json:"timestamp"`
}

// LatencyStats contains latency statistics.
type LatencyStats struct {
	Min    time.Duration `json:"min"`
	Max    time.Duration `json:"max"`
	Mean   time.Duration `json:"mean"`
	StdDev time.Duration `json:"stdDev"`
	P50    time.Duration `json:"p50"`
	P90    time.Duration `json:"p90"`
	P95    time.Duration `json:"p95"`
	P99    time.Duration `json:"p99"`
	Count  int64         `json:"count"`
}

// CustomStat is the bounded-memory aggregate kept per custom metric.
// Individual samples are never retained.
type CustomStat struct {
	Count int64   `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Mean returns the average sample value, 0 when no samples exist.
func (s CustomStat) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// PhaseChange records when a phase transition occurred.
type PhaseChange struct {
	// Phase is the phase that was entered
	Phase Phase

	// Timestamp is when the phase change occurred
	Timestamp time.Time

	// Completed is the measured completion count at the time of the change
	Completed int64
}

// Config contains configuration for the aggregator.
type Config struct {
	// Interval is the roll interval for live time-series intervals (default: 1s)
	Interval time.Duration

	// WindowSize is the maximum number of intervals to retain (default: 600)
	WindowSize int

	// HistogramMin is the minimum recordable latency in microseconds (default: 1)
	HistogramMin int64

	// HistogramMax is the maximum recordable latency in microseconds (default: 3600000000 = 1 hour)
	HistogramMax int64

	// HistogramSigFigs is the number of significant figures (default: 3)
	HistogramSigFigs int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Interval:         time.Second,
		WindowSize:       600,
		HistogramMin:     1,
		HistogramMax:     3600000000, // 1 hour in microseconds
		HistogramSigFigs: 3,
	}
}
