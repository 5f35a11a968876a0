// Package scheduler drives the open-model execution loop: a rate
// pattern decides how many executions each tick owes, a fractional
// accumulator carries the remainder, and a fixed worker pool enforces
// the concurrency ceiling. The dispatch loop never blocks on slow
// executions; work that cannot be admitted is queued up to a bound
// and counted as throttled beyond it.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wesleyorama2/surge/internal/errs"
	"github.com/wesleyorama2/surge/internal/metrics"
	"github.com/wesleyorama2/surge/internal/rate"
	"github.com/wesleyorama2/surge/internal/workload"
)

// Config contains the scheduling parameters for one run.
type Config struct {
	// Duration is the length of the measured phase.
	Duration time.Duration

	// Warmup is the length of the warmup phase before measurement.
	// Zero skips warmup entirely.
	Warmup time.Duration

	// MaxConcurrent is the admission ceiling: the number of workers,
	// and therefore the most executions in flight at once (default: 1000).
	MaxConcurrent int

	// QueueCapacity bounds the FIFO of dispatched-but-unadmitted
	// executions. Zero means no queue: a dispatch with no idle worker
	// is immediately throttled.
	QueueCapacity int

	// Tick is the dispatch resolution (default: 100ms).
	Tick time.Duration

	// ExecTimeout is the per-execution deadline. Zero disables it.
	ExecTimeout time.Duration

	// GraceTimeout bounds how long a graceful stop waits for in-flight
	// executions before abandoning them (default: 30s).
	GraceTimeout time.Duration
}

// Scheduler runs one load test: it admits executions according to a
// rate pattern, enforces the concurrency ceiling through its worker
// pool, and reports every outcome to the aggregator. A scheduler is
// single-use.
type Scheduler struct {
	cfg      Config
	pattern  rate.Pattern
	registry *workload.Registry
	agg      *metrics.Aggregator
	env      *workload.Env

	bucket *rate.Bucket
	state  atomic.Int32

	// jobs hands executions directly to idle workers; the pending
	// FIFO lives in queue, owned solely by the dispatch loop.
	jobs  chan workload.Workload
	queue []workload.Workload

	inFlight atomic.Int32
	wg       sync.WaitGroup

	stopCh   chan struct{}
	stopOnce sync.Once

	cancelMu      sync.Mutex
	cancelRun     context.CancelFunc
	userCancelled atomic.Bool
}

// New creates a scheduler. The pattern and registry must already be
// valid; the registry is frozen at Run time if the caller has not
// done so.
func New(cfg Config, pattern rate.Pattern, registry *workload.Registry, agg *metrics.Aggregator, env *workload.Env) (*Scheduler, error) {
	if pattern == nil {
		return nil, errs.Config("pattern", "a rate pattern is required")
	}
	if registry == nil {
		return nil, errs.Config("workloads", "a workload registry is required")
	}
	if agg == nil {
		return nil, errs.Config("metrics", "a metrics aggregator is required")
	}
	if cfg.Duration <= 0 {
		return nil, errs.Config("duration", "must be positive, got %v", cfg.Duration)
	}
	if cfg.Warmup < 0 {
		return nil, errs.Config("warmup", "must not be negative, got %v", cfg.Warmup)
	}
	if cfg.QueueCapacity < 0 {
		return nil, errs.Config("queueCapacity", "must not be negative, got %d", cfg.QueueCapacity)
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1000
	}
	if cfg.Tick <= 0 {
		cfg.Tick = 100 * time.Millisecond
	}
	if cfg.GraceTimeout <= 0 {
		cfg.GraceTimeout = 30 * time.Second
	}
	if env == nil {
		env = &workload.Env{}
	}

	return &Scheduler{
		cfg:      cfg,
		pattern:  pattern,
		registry: registry,
		agg:      agg,
		env:      env,
		bucket:   rate.NewBucket(0),
		stopCh:   make(chan struct{}),
	}, nil
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// InFlight returns the number of executions currently running.
func (s *Scheduler) InFlight() int {
	return int(s.inFlight.Load())
}

// Run executes the full lifecycle and blocks until the run reaches a
// terminal state. It returns a StateError when called on a scheduler
// that already ran, and ctx.Err() when the parent context is
// cancelled mid-run.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateWarmup)) {
		return errs.State("run", s.State().String())
	}

	// Freeze is idempotent, so a registry the caller already sealed
	// passes straight through. An empty registry fails here, before
	// any load is generated.
	if err := s.registry.Freeze(); err != nil {
		s.state.Store(int32(StateIdle))
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancelMu.Lock()
	s.cancelRun = cancel
	s.cancelMu.Unlock()
	defer cancel()

	s.jobs = make(chan workload.Workload)
	for i := 0; i < s.cfg.MaxConcurrent; i++ {
		s.wg.Add(1)
		go s.worker(runCtx)
	}

	if s.cfg.Warmup > 0 {
		s.agg.SetPhase(metrics.PhaseWarmup)
		s.dispatchLoop(runCtx, s.cfg.Warmup)
	}

	if runCtx.Err() == nil && !s.stopRequested() {
		s.state.Store(int32(StateMeasuring))
		s.agg.SetPhase(metrics.PhaseMeasuring)
		s.dispatchLoop(runCtx, s.cfg.Duration)
	}

	s.windDown(ctx, runCtx, cancel)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// Stop requests a graceful stop: admission ends, in-flight executions
// finish within the grace timeout, and their results count. Stop is
// idempotent and safe to call from any goroutine at any time.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Cancel aborts the run: admission ends and in-flight executions are
// discarded as abandoned rather than awaited. Cancel is idempotent.
func (s *Scheduler) Cancel() {
	s.userCancelled.Store(true)
	s.cancelMu.Lock()
	if s.cancelRun != nil {
		s.cancelRun()
	}
	s.cancelMu.Unlock()
}

func (s *Scheduler) stopRequested() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

// dispatchLoop generates load for one phase. The pattern clock and
// the fractional accumulator restart at the phase boundary, so the
// measured phase sees the pattern from its own t=0 exactly as the
// warmup did. Returns when the phase duration elapses, a stop is
// requested, or the run context ends.
func (s *Scheduler) dispatchLoop(ctx context.Context, phase time.Duration) {
	start := time.Now()
	deadline := start.Add(phase)
	s.bucket.Reset()

	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			if !now.Before(deadline) {
				return
			}
			r := s.pattern.Rate(now.Sub(start))
			s.bucket.SetRate(r)
			s.agg.SetTargetRate(r)
			s.pump(s.bucket.Take(now))
		}
	}
}

// pump hands pending and freshly owed executions to idle workers.
// Queued items always go first so admission order stays FIFO.
func (s *Scheduler) pump(fresh int) {
	for len(s.queue) > 0 {
		if !s.tryHandoff(s.queue[0]) {
			break
		}
		s.queue = s.queue[1:]
	}

	for i := 0; i < fresh; i++ {
		w, err := s.registry.Select()
		if err != nil {
			return
		}
		if len(s.queue) > 0 || !s.tryHandoff(w) {
			s.enqueue(w)
		}
	}
}

// tryHandoff offers one execution to an idle worker without blocking.
func (s *Scheduler) tryHandoff(w workload.Workload) bool {
	select {
	case s.jobs <- w:
		return true
	default:
		return false
	}
}

func (s *Scheduler) enqueue(w workload.Workload) {
	if len(s.queue) < s.cfg.QueueCapacity {
		s.queue = append(s.queue, w)
		return
	}
	s.agg.RecordThrottled()
}

// windDown ends the run. A graceful stop drains in-flight executions
// within the grace timeout; a cancelled run discards them. Anything
// still queued was never admitted and counts as throttled either way.
func (s *Scheduler) windDown(parent, runCtx context.Context, cancel context.CancelFunc) {
	for range s.queue {
		s.agg.RecordThrottled()
	}
	s.queue = nil
	close(s.jobs)

	cancelled := runCtx.Err() != nil
	if !cancelled {
		s.state.Store(int32(StateDraining))
		s.agg.SetPhase(metrics.PhaseDraining)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	if cancelled {
		<-done
	} else {
		select {
		case <-done:
		case <-time.After(s.cfg.GraceTimeout):
			// Stragglers past the grace window are abandoned.
			cancel()
			<-done
		}
	}

	s.agg.Finalize()

	if s.userCancelled.Load() || parent.Err() != nil {
		s.state.Store(int32(StateCancelled))
	} else {
		s.state.Store(int32(StateStopped))
	}
}
