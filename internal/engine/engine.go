// Package engine provides the orchestrator that assembles and drives
// a load run.
//
// An Engine is built with chained calls, started once, and observed
// while it runs:
//
//	snap, err := engine.New("checkout").
//		Configure(engine.RunConfig{Duration: 2 * time.Minute}).
//		AddScenario(browse, 4).
//		AddScenario(purchase, 1).
//		SetPattern(pattern).
//		Run(ctx)
//
// Builder errors are deferred: the first invalid call is remembered
// and returned by Run, so call sites can chain without checking each
// step.
package engine

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wesleyorama2/surge/internal/errs"
	"github.com/wesleyorama2/surge/internal/metrics"
	"github.com/wesleyorama2/surge/internal/rate"
	"github.com/wesleyorama2/surge/internal/report"
	"github.com/wesleyorama2/surge/internal/scheduler"
	"github.com/wesleyorama2/surge/internal/workload"
)

// RunConfig tunes a single run.
//
// Zero fields fall back to DefaultRunConfig at run start, except
// Warmup and QueueCapacity, which are taken as given because zero is
// a meaningful setting for both.
type RunConfig struct {
	// Name overrides the name given to New when non-empty.
	Name string

	// Duration is the length of the measured phase (default: 60s).
	Duration time.Duration

	// Warmup is the ramp-in before measurement begins. Completions
	// during warmup are excluded from the final snapshot. Zero skips
	// the phase entirely.
	Warmup time.Duration

	// MaxConcurrent caps simultaneously running executions
	// (default: 1000).
	MaxConcurrent int

	// QueueCapacity bounds the admission queue. Zero admits work only
	// when a slot is immediately free; anything beyond capacity is
	// counted throttled and dropped.
	QueueCapacity int

	// Tick is the dispatch granularity (default: 100ms).
	Tick time.Duration

	// GraceTimeout bounds the drain after a graceful stop
	// (default: 30s).
	GraceTimeout time.Duration

	// ExecTimeout bounds each execution (default: 30s). A negative
	// value disables the per-execution deadline.
	ExecTimeout time.Duration

	// ConsoleOutput asks the caller to attach a live progress
	// display. The engine itself never prints.
	ConsoleOutput bool

	// BaseURL prefixes relative workload URLs.
	BaseURL string

	// Headers are applied to every HTTP request before
	// workload-specific headers.
	Headers map[string]string

	// Vars are free-form values exposed to workloads through Env.
	Vars map[string]string

	// HTTPTimeout caps requests made through the shared client
	// (default: 30s).
	HTTPTimeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification for
	// both HTTP and WebSocket workloads.
	InsecureSkipVerify bool
}

// DefaultRunConfig returns the configuration used for unset fields,
// including a 5 second warmup.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Duration:      60 * time.Second,
		Warmup:        5 * time.Second,
		MaxConcurrent: 1000,
		Tick:          100 * time.Millisecond,
		GraceTimeout:  30 * time.Second,
		ExecTimeout:   30 * time.Second,
		HTTPTimeout:   30 * time.Second,
		ConsoleOutput: true,
	}
}

func applyDefaults(cfg RunConfig) RunConfig {
	def := DefaultRunConfig()
	if cfg.Duration == 0 {
		cfg.Duration = def.Duration
	}
	if cfg.MaxConcurrent == 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if cfg.Tick == 0 {
		cfg.Tick = def.Tick
	}
	if cfg.GraceTimeout == 0 {
		cfg.GraceTimeout = def.GraceTimeout
	}
	if cfg.ExecTimeout == 0 {
		cfg.ExecTimeout = def.ExecTimeout
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = def.HTTPTimeout
	}
	return cfg
}

func validateRunConfig(cfg RunConfig) error {
	if cfg.Duration <= 0 {
		return errs.Config("duration", "must be positive, got %v", cfg.Duration)
	}
	if cfg.Warmup < 0 {
		return errs.Config("warmup", "must not be negative, got %v", cfg.Warmup)
	}
	if cfg.MaxConcurrent < 1 {
		return errs.Config("maxConcurrent", "must be at least 1, got %d", cfg.MaxConcurrent)
	}
	if cfg.QueueCapacity < 0 {
		return errs.Config("queueCapacity", "must not be negative, got %d", cfg.QueueCapacity)
	}
	return nil
}

// Engine coordinates one load run end to end.
//
// It owns the pieces the run is assembled from:
//   - the workload registry and its selection weights
//   - the arrival-rate pattern
//   - the shared execution environment (pooled HTTP client, dialer)
//   - the scheduler that dispatches work
//   - the metrics aggregator the final snapshot comes from
//
// An Engine runs exactly once. Builder calls after Run has started
// record a StateError, and a second Run returns one.
type Engine struct {
	mu       sync.Mutex
	name     string
	cfg      RunConfig
	pattern  rate.Pattern
	registry *workload.Registry
	err      error

	started   bool
	startedAt time.Time
	runID     string
	agg       *metrics.Aggregator
	sched     *scheduler.Scheduler
	result    *metrics.Snapshot
}

// New creates an engine for a named run. The name appears in reports
// and stored history.
func New(name string) *Engine {
	if name == "" {
		name = "surge"
	}
	return &Engine{
		name:     name,
		cfg:      DefaultRunConfig(),
		registry: workload.NewRegistry(),
	}
}

// deferBuildErr records a state fault for builder calls made after
// the run started. The first recorded error wins and surfaces from
// Run or Err.
func (e *Engine) deferBuildErr(op string) bool {
	if !e.started {
		return false
	}
	if e.err == nil {
		e.err = errs.State(op, "started")
	}
	return true
}

// Configure replaces the run configuration.
func (e *Engine) Configure(cfg RunConfig) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deferBuildErr("configure") {
		return e
	}
	e.cfg = cfg
	if cfg.Name != "" {
		e.name = cfg.Name
	}
	return e
}

// AddScenario registers a workload with its selection weight. Weights
// are relative: a workload with weight 4 is selected four times as
// often as one with weight 1.
func (e *Engine) AddScenario(w workload.Workload, weight float64) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deferBuildErr("add scenario") {
		return e
	}
	if err := e.registry.Add(w, weight); err != nil && e.err == nil {
		e.err = err
	}
	return e
}

// SetPattern sets the arrival-rate pattern that drives dispatch.
func (e *Engine) SetPattern(p rate.Pattern) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deferBuildErr("set pattern") {
		return e
	}
	e.pattern = p
	return e
}

// Err returns the first error recorded by builder calls, nil if none.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Run executes the full lifecycle: validate, freeze the registry, run
// setup hooks, drive the scheduler through warmup and measurement,
// run teardown hooks, and return the final snapshot. It blocks until
// the run reaches a terminal state.
//
// Run fails before any load is generated with a ConfigurationError
// when no scenario or pattern is set or the configuration is invalid,
// and with a StateError when the engine already ran. When the parent
// context is cancelled mid-run it returns ctx.Err() alongside the
// partial snapshot.
func (e *Engine) Run(ctx context.Context) (*metrics.Snapshot, error) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return nil, errs.State("run", "started")
	}
	if e.err != nil {
		err := e.err
		e.mu.Unlock()
		return nil, err
	}
	if e.registry.Len() == 0 {
		e.mu.Unlock()
		return nil, errs.Config("workloads", "at least one scenario is required")
	}
	if e.pattern == nil {
		e.mu.Unlock()
		return nil, errs.Config("pattern", "a rate pattern is required")
	}

	cfg := applyDefaults(e.cfg)
	if err := validateRunConfig(cfg); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if err := e.pattern.Validate(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if err := e.registry.Freeze(); err != nil {
		e.mu.Unlock()
		return nil, err
	}

	execTimeout := cfg.ExecTimeout
	if execTimeout < 0 {
		execTimeout = 0
	}

	env := buildEnv(cfg)
	agg := metrics.NewAggregator()
	sched, err := scheduler.New(scheduler.Config{
		Duration:      cfg.Duration,
		Warmup:        cfg.Warmup,
		MaxConcurrent: cfg.MaxConcurrent,
		QueueCapacity: cfg.QueueCapacity,
		Tick:          cfg.Tick,
		ExecTimeout:   execTimeout,
		GraceTimeout:  cfg.GraceTimeout,
	}, e.pattern, e.registry, agg, env)
	if err != nil {
		agg.Finalize()
		e.mu.Unlock()
		return nil, err
	}

	// Point of no return: from here the engine is spent even if setup
	// hooks fail.
	e.started = true
	e.startedAt = time.Now()
	e.cfg = cfg
	e.runID = uuid.New().String()
	e.agg = agg
	e.sched = sched
	name := e.name
	runID := e.runID
	registry := e.registry
	e.mu.Unlock()

	if err := runSetup(ctx, registry, env, cfg.GraceTimeout); err != nil {
		agg.Finalize()
		return nil, err
	}

	runErr := sched.Run(ctx)

	// Teardown runs even when the run context is gone.
	teardownErr := runTeardown(registry, env, cfg.GraceTimeout)

	snap := agg.GetSnapshot()
	snap.RunID = runID
	snap.Name = name

	e.mu.Lock()
	e.result = snap
	e.mu.Unlock()

	if runErr == nil {
		runErr = teardownErr
	}
	return snap, runErr
}

// Stop requests a graceful stop: admission ends, in-flight executions
// finish within the grace timeout, and their results count. Safe to
// call at any time, from any goroutine, including a signal handler.
func (e *Engine) Stop() {
	e.mu.Lock()
	sched := e.sched
	e.mu.Unlock()
	if sched != nil {
		sched.Stop()
	}
}

// Cancel aborts the run: in-flight executions are discarded as
// abandoned rather than awaited. Safe to call at any time.
func (e *Engine) Cancel() {
	e.mu.Lock()
	sched := e.sched
	e.mu.Unlock()
	if sched != nil {
		sched.Cancel()
	}
}

// State returns the scheduler lifecycle state, StateIdle before Run.
func (e *Engine) State() scheduler.State {
	e.mu.Lock()
	sched := e.sched
	e.mu.Unlock()
	if sched == nil {
		return scheduler.StateIdle
	}
	return sched.State()
}

// Running reports whether a run is currently in progress.
func (e *Engine) Running() bool {
	return e.State().Running()
}

// Progress returns how far through warmup plus measurement the run
// is, from 0 to 1. Terminal states report 1.
func (e *Engine) Progress() float64 {
	e.mu.Lock()
	started := e.started
	startedAt := e.startedAt
	total := e.cfg.Warmup + e.cfg.Duration
	finished := e.result != nil
	e.mu.Unlock()

	if !started {
		return 0
	}
	if finished || total <= 0 {
		return 1
	}
	p := float64(time.Since(startedAt)) / float64(total)
	if p > 1 {
		p = 1
	}
	return p
}

// Live returns a mid-run snapshot for progress display, nil before
// the run starts.
func (e *Engine) Live() *metrics.Snapshot {
	e.mu.Lock()
	agg, runID, name := e.agg, e.runID, e.name
	e.mu.Unlock()
	if agg == nil {
		return nil
	}
	snap := agg.GetSnapshot()
	snap.RunID = runID
	snap.Name = name
	return snap
}

// Result returns the final snapshot, nil until Run completes.
func (e *Engine) Result() *metrics.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// Report renders the final snapshot to w. Formats are "console",
// "json", and "html". Calling Report before Run has produced a result
// is a StateError.
func (e *Engine) Report(format string, w io.Writer) error {
	e.mu.Lock()
	snap := e.result
	e.mu.Unlock()
	if snap == nil {
		return errs.State("report", "no result")
	}
	return report.Render(format, w, snap)
}

// buildEnv assembles the shared execution environment. The HTTP
// client pools connections across the whole run; workloads never
// build their own.
func buildEnv(cfg RunConfig) *workload.Env {
	transport := &http.Transport{
		MaxIdleConns:        1000,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 45 * time.Second,
	}
	if cfg.InsecureSkipVerify {
		tlsCfg := &tls.Config{InsecureSkipVerify: true}
		transport.TLSClientConfig = tlsCfg
		dialer.TLSClientConfig = tlsCfg
	}

	return &workload.Env{
		HTTPClient: &http.Client{Transport: transport, Timeout: cfg.HTTPTimeout},
		WSDialer:   dialer,
		BaseURL:    cfg.BaseURL,
		Headers:    cfg.Headers,
		Vars:       cfg.Vars,
	}
}

// runSetup invokes Setup on every workload that implements
// Initializer, in registration order. On failure the hooks that
// already ran are torn down before the error returns.
func runSetup(ctx context.Context, reg *workload.Registry, env *workload.Env, grace time.Duration) error {
	var done []workload.Workload
	for _, w := range reg.Workloads() {
		init, ok := w.(workload.Initializer)
		if !ok {
			continue
		}
		if err := init.Setup(ctx, env); err != nil {
			teardown(done, env, grace)
			return fmt.Errorf("setup %s: %w", w.Name(), err)
		}
		done = append(done, w)
	}
	return nil
}

// runTeardown invokes Teardown on every workload that implements
// Finalizer. It runs detached from the run context so cleanup still
// happens after cancellation, bounded by the grace timeout.
func runTeardown(reg *workload.Registry, env *workload.Env, grace time.Duration) error {
	return teardown(reg.Workloads(), env, grace)
}

func teardown(ws []workload.Workload, env *workload.Env, grace time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	var firstErr error
	for _, w := range ws {
		fin, ok := w.(workload.Finalizer)
		if !ok {
			continue
		}
		if err := fin.Teardown(ctx, env); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("teardown %s: %w", w.Name(), err)
		}
	}
	return firstErr
}
