package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/wesleyorama2/surge/internal/workload"
)

// worker consumes executions until the jobs channel closes. The pool
// size is the admission ceiling: a worker runs one execution at a
// time, so at most MaxConcurrent executions are ever in flight.
func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()

	for w := range s.jobs {
		s.agg.SetInFlight(int(s.inFlight.Add(1)))
		s.execute(ctx, w)
		s.agg.SetInFlight(int(s.inFlight.Add(-1)))
	}
}

// execute runs one workload under the per-execution deadline and
// classifies the outcome.
//
// The workload runs in a child goroutine with a buffered result
// channel, so a workload that ignores its context cannot wedge the
// worker: the slot is reclaimed at the deadline and the late result
// is discarded when it eventually arrives. A workload that panics is
// recorded as a failure, never crashing the run.
func (s *Scheduler) execute(runCtx context.Context, w workload.Workload) {
	execCtx := runCtx
	if s.cfg.ExecTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(runCtx, s.cfg.ExecTimeout)
		defer cancel()
	}

	result := make(chan workload.Outcome, 1)
	start := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				result <- workload.Outcome{
					Success: false,
					Status:  "panic",
					Err:     fmt.Errorf("workload panic: %v", r),
				}
			}
		}()
		result <- w.Execute(execCtx, s.env)
	}()

	select {
	case out := <-result:
		switch {
		case runCtx.Err() != nil:
			// The run was cancelled while this execution raced to
			// finish. Its result is discarded, not failed.
			s.agg.RecordAbandoned()
		case execCtx.Err() == context.DeadlineExceeded:
			s.agg.RecordTimeout(w.Name(), time.Since(start))
		default:
			duration := out.Duration
			if duration <= 0 {
				duration = time.Since(start)
			}
			s.agg.Record(w.Name(), duration, out.Success, out.Status, out.Err, out.Metrics)
		}
	case <-execCtx.Done():
		if runCtx.Err() != nil {
			s.agg.RecordAbandoned()
		} else {
			s.agg.RecordTimeout(w.Name(), time.Since(start))
		}
	}
}
