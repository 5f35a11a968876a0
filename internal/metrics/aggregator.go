// Package metrics collects and aggregates execution outcomes.
//
// Latencies go into HDR histograms for accurate percentiles, counters
// use atomic operations for lock-free updates, and a background
// emitter seals per-second intervals for the live display. Warmup
// completions are tracked separately and never reach the final
// statistics.
package metrics

import (
	"context"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Aggregator is the single sink for everything the scheduler and
// workloads observe during a run.
//
// # Thread Safety
//
// Aggregator is safe for concurrent use. Counters use atomic
// operations, histograms use mutex protection, and the background
// emitter runs in its own goroutine. After Finalize all recording
// methods become no-ops, so stragglers finishing late cannot skew a
// sealed result.
type Aggregator struct {
	// Measured-phase latencies, 1 microsecond to 1 hour, 3 significant figures
	hist   *hdrhistogram.Histogram
	histMu sync.Mutex

	// Per-workload histograms for the breakdown table
	workloadHists   map[string]*hdrhistogram.Histogram
	workloadHistsMu sync.RWMutex

	// Measured-phase completion counters
	total   atomic.Int64
	success atomic.Int64
	failure atomic.Int64
	timeout atomic.Int64

	// Admission bookkeeping
	throttled atomic.Int64
	abandoned atomic.Int64

	// Warmup activity, kept out of the measured counters
	warmupTotal   atomic.Int64
	warmupSuccess atomic.Int64

	totalBytes atomic.Int64

	// Custom metric aggregates by name
	custom   map[string]CustomStat
	customMu sync.Mutex

	// Status and error-class tables for the final report
	statuses map[string]int64
	errors   map[string]int64
	tableMu  sync.Mutex

	window *Window

	// Phase tracking
	phase          Phase
	phaseMu        sync.RWMutex
	phaseHistory   []PhaseChange
	measuringStart time.Time
	measuringEnd   time.Time

	// Live gauges for the display
	inFlight   atomic.Int32
	targetRate atomic.Uint64 // float64 bits

	startTime time.Time
	finalized atomic.Bool

	emitterCtx    context.Context
	emitterCancel context.CancelFunc
	emitterWg     sync.WaitGroup

	config Config
}

// NewAggregator creates an aggregator with default configuration.
func NewAggregator() *Aggregator {
	return NewAggregatorWithConfig(DefaultConfig())
}

// NewAggregatorWithConfig creates an aggregator with custom
// configuration and starts its background emitter.
func NewAggregatorWithConfig(config Config) *Aggregator {
	if config.Interval <= 0 {
		config.Interval = time.Second
	}
	if config.HistogramMin <= 0 {
		config.HistogramMin = 1
	}
	if config.HistogramMax <= 0 {
		config.HistogramMax = 3600000000
	}
	if config.HistogramSigFigs <= 0 {
		config.HistogramSigFigs = 3
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &Aggregator{
		hist:          hdrhistogram.New(config.HistogramMin, config.HistogramMax, config.HistogramSigFigs),
		workloadHists: make(map[string]*hdrhistogram.Histogram),
		custom:        make(map[string]CustomStat),
		statuses:      make(map[string]int64),
		errors:        make(map[string]int64),
		window:        NewWindow(config.WindowSize),
		phase:         PhaseInit,
		startTime:     time.Now(),
		emitterCtx:    ctx,
		emitterCancel: cancel,
		config:        config,
	}

	a.emitterWg.Add(1)
	go a.runEmitter()

	return a
}

// Record records one completed execution.
//
// The attribution phase is read at call time, which is completion
// time: work admitted during warmup but finishing after it counts,
// and warmup completions only feed the warmup counters.
func (a *Aggregator) Record(name string, duration time.Duration, success bool, status string, failure error, custom map[string]float64) {
	if a.finalized.Load() {
		return
	}

	if a.GetPhase() == PhaseWarmup {
		a.warmupTotal.Add(1)
		if success {
			a.warmupSuccess.Add(1)
		}
		a.window.Observe(success)
		return
	}

	a.recordLatency(name, duration)

	a.total.Add(1)
	if success {
		a.success.Add(1)
	} else {
		a.failure.Add(1)
	}

	if status != "" || (!success && failure != nil) {
		a.tableMu.Lock()
		if status != "" {
			a.statuses[status]++
		}
		if !success && failure != nil {
			a.errors[errorClass(failure)]++
		}
		a.tableMu.Unlock()
	}

	if custom != nil {
		a.recordCustom(custom)
	}
	a.window.Observe(success)
}

// errorClass reduces an error to the leading segment of its message,
// so repeated failures of one kind accumulate under a single key.
// Splitting on ": " rather than ":" keeps URLs in one piece.
func errorClass(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i > 0 {
		return msg[:i]
	}
	return msg
}

// RecordTimeout records an execution that exceeded its deadline. The
// elapsed duration still enters the histogram so the tail reflects
// how long callers actually waited.
func (a *Aggregator) RecordTimeout(name string, duration time.Duration) {
	if a.finalized.Load() {
		return
	}

	if a.GetPhase() == PhaseWarmup {
		a.warmupTotal.Add(1)
		a.window.Observe(false)
		return
	}

	a.recordLatency(name, duration)
	a.total.Add(1)
	a.timeout.Add(1)

	a.tableMu.Lock()
	a.statuses["timeout"]++
	a.tableMu.Unlock()

	a.window.Observe(false)
}

// RecordThrottled records an execution rejected at admission. It
// never ran, so no duration exists.
func (a *Aggregator) RecordThrottled() {
	if a.finalized.Load() {
		return
	}
	a.throttled.Add(1)
}

// RecordAbandoned records an execution cut short by cancellation.
// Partial durations are discarded.
func (a *Aggregator) RecordAbandoned() {
	if a.finalized.Load() {
		return
	}
	a.abandoned.Add(1)
}

func (a *Aggregator) recordLatency(name string, duration time.Duration) {
	micros := duration.Microseconds()
	if micros < a.config.HistogramMin {
		micros = a.config.HistogramMin
	}
	if micros > a.config.HistogramMax {
		micros = a.config.HistogramMax
	}

	a.histMu.Lock()
	a.hist.RecordValue(micros)
	a.histMu.Unlock()

	if name != "" {
		// RecordValue is not thread-safe, so the write lock covers it.
		a.workloadHistsMu.Lock()
		hist, ok := a.workloadHists[name]
		if !ok {
			hist = hdrhistogram.New(a.config.HistogramMin, a.config.HistogramMax, a.config.HistogramSigFigs)
			a.workloadHists[name] = hist
		}
		hist.RecordValue(micros)
		a.workloadHistsMu.Unlock()
	}
}

func (a *Aggregator) recordCustom(samples map[string]float64) {
	a.customMu.Lock()
	defer a.customMu.Unlock()

	for name, value := range samples {
		if name == "bytes_received" {
			a.totalBytes.Add(int64(value))
		}
		stat, ok := a.custom[name]
		if !ok {
			a.custom[name] = CustomStat{Count: 1, Sum: value, Min: value, Max: value}
			continue
		}
		stat.Count++
		stat.Sum += value
		if value < stat.Min {
			stat.Min = value
		}
		if value > stat.Max {
			stat.Max = value
		}
		a.custom[name] = stat
	}
}

// SetPhase updates the current phase. Entering the measured phase
// starts the RPS clock, leaving it stops the clock.
func (a *Aggregator) SetPhase(phase Phase) {
	a.phaseMu.Lock()
	defer a.phaseMu.Unlock()

	if a.phase == phase {
		return
	}

	now := time.Now()
	if phase == PhaseMeasuring {
		a.measuringStart = now
	}
	if a.phase == PhaseMeasuring {
		a.measuringEnd = now
	}

	a.phase = phase
	a.phaseHistory = append(a.phaseHistory, PhaseChange{
		Phase:     phase,
		Timestamp: now,
		Completed: a.total.Load(),
	})
}

// GetPhase returns the current phase.
func (a *Aggregator) GetPhase() Phase {
	a.phaseMu.RLock()
	defer a.phaseMu.RUnlock()
	return a.phase
}

// GetPhaseHistory returns the phase transitions seen so far.
func (a *Aggregator) GetPhaseHistory() []PhaseChange {
	a.phaseMu.RLock()
	defer a.phaseMu.RUnlock()

	result := make([]PhaseChange, len(a.phaseHistory))
	copy(result, a.phaseHistory)
	return result
}

// SetInFlight updates the count of currently running executions.
func (a *Aggregator) SetInFlight(n int) {
	a.inFlight.Store(int32(n))
}

// GetInFlight returns the count of currently running executions.
func (a *Aggregator) GetInFlight() int {
	return int(a.inFlight.Load())
}

// SetTargetRate publishes the arrival rate the pattern currently
// requests, for display only.
func (a *Aggregator) SetTargetRate(rate float64) {
	a.targetRate.Store(math.Float64bits(rate))
}

// GetTargetRate returns the last published target arrival rate.
func (a *Aggregator) GetTargetRate() float64 {
	return math.Float64frombits(a.targetRate.Load())
}

func (a *Aggregator) runEmitter() {
	defer a.emitterWg.Done()

	ticker := time.NewTicker(a.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.emitterCtx.Done():
			return
		case <-ticker.C:
			a.roll()
		}
	}
}

func (a *Aggregator) roll() {
	a.histMu.Lock()
	p95 := time.Duration(a.hist.ValueAtQuantile(95)) * time.Microsecond
	a.histMu.Unlock()

	a.window.Roll(p95, a.GetPhase())
}

// GetRecent returns up to n of the most recent live intervals.
func (a *Aggregator) GetRecent(n int) []Interval {
	return a.window.Recent(n)
}

// GetWorkloadStats returns per-workload latency statistics.
func (a *Aggregator) GetWorkloadStats() map[string]LatencyStats {
	a.workloadHistsMu.RLock()
	defer a.workloadHistsMu.RUnlock()

	result := make(map[string]LatencyStats, len(a.workloadHists))
	for name, hist := range a.workloadHists {
		result[name] = latencyStats(hist)
	}
	return result
}

// GetSnapshot returns a point-in-time view of all metrics.
func (a *Aggregator) GetSnapshot() *Snapshot {
	a.histMu.Lock()
	latency := latencyStats(a.hist)
	a.histMu.Unlock()

	total := a.total.Load()
	successes := a.success.Load()

	// Success rate is a percentage, and an empty run is 0, not NaN.
	successRate := 0.0
	if total > 0 {
		successRate = float64(successes) / float64(total) * 100
	}

	a.phaseMu.RLock()
	phase := a.phase
	measuringStart := a.measuringStart
	measuringEnd := a.measuringEnd
	a.phaseMu.RUnlock()

	rps := 0.0
	if !measuringStart.IsZero() {
		end := measuringEnd
		if end.IsZero() {
			end = time.Now()
		}
		if secs := end.Sub(measuringStart).Seconds(); secs > 0 {
			rps = float64(total) / secs
		}
	}

	a.customMu.Lock()
	custom := make(map[string]CustomStat, len(a.custom))
	for name, stat := range a.custom {
		custom[name] = stat
	}
	a.customMu.Unlock()

	a.tableMu.Lock()
	statuses := make(map[string]int64, len(a.statuses))
	for status, count := range a.statuses {
		statuses[status] = count
	}
	errs := make(map[string]int64, len(a.errors))
	for class, count := range a.errors {
		errs[class] = count
	}
	a.tableMu.Unlock()

	return &Snapshot{
		Total:       total,
		Success:     successes,
		Failure:     a.failure.Load(),
		Timeout:     a.timeout.Load(),
		Throttled:   a.throttled.Load(),
		Abandoned:   a.abandoned.Load(),
		WarmupTotal: a.warmupTotal.Load(),
		TotalBytes:  a.totalBytes.Load(),
		SuccessRate: successRate,
		Latency:     latency,
		PerWorkload: a.GetWorkloadStats(),
		Statuses:    statuses,
		Errors:      errs,
		Custom:      custom,
		RPS:         rps,
		LiveRPS:     a.window.LatestRate(),
		InFlight:    a.GetInFlight(),
		TargetRate:  a.GetTargetRate(),
		Phase:       phase,
		Elapsed:     time.Since(a.startTime),
		StartTime:   a.startTime,
		Timestamp:   time.Now(),
	}
}

// Finalize seals the aggregator: the emitter stops, a last interval
// is rolled, and every subsequent Record call becomes a no-op.
// Finalize is idempotent.
func (a *Aggregator) Finalize() {
	if !a.finalized.CompareAndSwap(false, true) {
		return
	}

	a.emitterCancel()
	a.emitterWg.Wait()
	a.roll()

	a.phaseMu.Lock()
	if !a.measuringStart.IsZero() && a.measuringEnd.IsZero() {
		a.measuringEnd = time.Now()
	}
	a.phaseMu.Unlock()

	a.SetPhase(PhaseDone)
}

func latencyStats(hist *hdrhistogram.Histogram) LatencyStats {
	count := hist.TotalCount()
	if count == 0 {
		return LatencyStats{}
	}
	return LatencyStats{
		Min:    time.Duration(hist.Min()) * time.Microsecond,
		Max:    time.Duration(hist.Max()) * time.Microsecond,
		Mean:   time.Duration(hist.Mean()) * time.Microsecond,
		StdDev: time.Duration(hist.StdDev()) * time.Microsecond,
		P50:    time.Duration(hist.ValueAtQuantile(50)) * time.Microsecond,
		P90:    time.Duration(hist.ValueAtQuantile(90)) * time.Microsecond,
		P95:    time.Duration(hist.ValueAtQuantile(95)) * time.Microsecond,
		P99:    time.Duration(hist.ValueAtQuantile(99)) * time.Microsecond,
		Count:  count,
	}
}
