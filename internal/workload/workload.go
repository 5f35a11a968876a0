// Package workload defines the unit of synthetic work the engine
// dispatches, the registry that selects among weighted workloads, and
// the built-in HTTP, WebSocket, and function-backed workload kinds.
package workload

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Workload is one kind of synthetic call. Execute performs a single
// call and reports what happened; it is invoked concurrently from many
// executions and must not retain or mutate shared state beyond what
// Env provides. Implementations return an Outcome rather than an
// error: a failing call is a recorded measurement, not a fault.
type Workload interface {
	// Name identifies the workload in configuration and reports.
	Name() string

	// Execute performs one call. The context carries the
	// per-execution deadline and run cancellation.
	Execute(ctx context.Context, env *Env) Outcome
}

// Initializer is an optional hook run once before the first dispatch.
type Initializer interface {
	Setup(ctx context.Context, env *Env) error
}

// Finalizer is an optional hook run once after the run drains.
type Finalizer interface {
	Teardown(ctx context.Context, env *Env) error
}

// Outcome is the immutable result of one executed call. It is
// consumed exactly once by the metrics aggregator and then discarded.
type Outcome struct {
	// Success reports whether the call did what the workload expected.
	Success bool

	// Duration is the observed wall time of the call.
	Duration time.Duration

	// Status classifies the outcome for the status table, such as an
	// HTTP status code ("200") or an error class ("dial", "timeout").
	Status string

	// Err carries the failure cause when Success is false.
	Err error

	// Metrics holds optional named measurements taken during the
	// call, folded into the run's custom metric table.
	Metrics map[string]float64
}

// Env carries the shared resources an execution may use. It is built
// once by the orchestrator before the run starts and is read-only
// from then on, so executions use it without synchronization.
type Env struct {
	// HTTPClient is the shared pooled client for HTTP workloads.
	HTTPClient *http.Client

	// WSDialer is the shared dialer for WebSocket workloads.
	WSDialer *websocket.Dialer

	// BaseURL prefixes relative workload URLs.
	BaseURL string

	// Headers are applied to every HTTP request before
	// workload-specific headers.
	Headers map[string]string

	// Vars are free-form values available to custom workloads.
	Vars map[string]string
}

// Func adapts a plain function into a Workload. It is the vehicle for
// user-defined behavior that is neither an HTTP call nor a socket
// exchange.
type Func struct {
	// WorkloadName labels the function in reports.
	WorkloadName string

	// Fn performs one call.
	Fn func(ctx context.Context, env *Env) Outcome
}

// Name implements Workload.
func (f *Func) Name() string { return f.WorkloadName }

// Execute implements Workload.
func (f *Func) Execute(ctx context.Context, env *Env) Outcome {
	return f.Fn(ctx, env)
}

// NewFunc creates a function-backed workload.
func NewFunc(name string, fn func(ctx context.Context, env *Env) Outcome) *Func {
	return &Func{WorkloadName: name, Fn: fn}
}
