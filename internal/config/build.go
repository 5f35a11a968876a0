package config

import (
	"fmt"
	"time"

	"github.com/wesleyorama2/surge/internal/engine"
	"github.com/wesleyorama2/surge/internal/errs"
	"github.com/wesleyorama2/surge/internal/rate"
	"github.com/wesleyorama2/surge/internal/workload"
)

// Scenario pairs a built workload with its selection weight.
type Scenario struct {
	Workload workload.Workload
	Weight   float64
}

// Build turns a validated configuration into engine inputs: the run
// settings, the rate pattern, and one scenario per workload entry.
func Build(cfg *Config) (engine.RunConfig, rate.Pattern, []Scenario, error) {
	rc := engine.DefaultRunConfig()
	rc.Name = cfg.Name
	rc.ConsoleOutput = cfg.Console == nil || *cfg.Console
	rc.BaseURL = cfg.Settings.BaseURL
	rc.Headers = cfg.Settings.Headers
	rc.Vars = cfg.Settings.Variables
	rc.InsecureSkipVerify = cfg.Settings.InsecureSkipVerify

	if cfg.Duration != 0 {
		rc.Duration = time.Duration(cfg.Duration)
	}
	if cfg.Warmup != nil {
		rc.Warmup = time.Duration(*cfg.Warmup)
	}
	if cfg.MaxConcurrent != 0 {
		rc.MaxConcurrent = cfg.MaxConcurrent
	}
	if cfg.QueueCapacity != 0 {
		rc.QueueCapacity = cfg.QueueCapacity
	}
	if cfg.GraceTimeout != 0 {
		rc.GraceTimeout = time.Duration(cfg.GraceTimeout)
	}
	if cfg.ExecTimeout != 0 {
		rc.ExecTimeout = time.Duration(cfg.ExecTimeout)
	}
	if cfg.Settings.Timeout != 0 {
		rc.HTTPTimeout = time.Duration(cfg.Settings.Timeout)
	}

	pattern, err := buildPattern(&cfg.Rate, cfg.Seed)
	if err != nil {
		return engine.RunConfig{}, nil, nil, err
	}

	scenarios := make([]Scenario, 0, len(cfg.Workloads))
	for i := range cfg.Workloads {
		w, err := buildWorkload(&cfg.Workloads[i])
		if err != nil {
			return engine.RunConfig{}, nil, nil, err
		}
		weight := cfg.Workloads[i].Weight
		if weight == 0 {
			weight = 1
		}
		scenarios = append(scenarios, Scenario{Workload: w, Weight: weight})
	}

	return rc, pattern, scenarios, nil
}

// buildPattern maps the flat rate block onto the pattern constructor
// it names. Omitted distribution and waveform fields fall back to
// uniform and sine.
func buildPattern(rc *RateConfig, seed int64) (rate.Pattern, error) {
	switch rc.Pattern {
	case "constant":
		return rate.NewConstant(rc.Target)
	case "ramp":
		return rate.NewRamp(rc.Start, rc.End, time.Duration(rc.Duration))
	case "spike":
		return rate.NewSpike(rc.Baseline, rc.Peak, time.Duration(rc.Duration), time.Duration(rc.Interval))
	case "burst":
		return rate.NewBurst(rc.Baseline, rc.Peak, time.Duration(rc.Duration), time.Duration(rc.Delay))
	case "steady":
		if seed != 0 {
			return rate.NewSteadyStateWithSeed(rc.Target, rc.Jitter, seed)
		}
		return rate.NewSteadyState(rc.Target, rc.Jitter)
	case "step":
		return rate.NewStepLadder(rc.Start, rc.End, rc.Steps, time.Duration(rc.Duration))
	case "chaos":
		dist := rate.Distribution(rc.Distribution)
		if dist == "" {
			dist = rate.DistUniform
		}
		if seed != 0 {
			return rate.NewChaosWithSeed(rc.Min, rc.Max, time.Duration(rc.Interval), dist, seed)
		}
		return rate.NewChaos(rc.Min, rc.Max, time.Duration(rc.Interval), dist)
	case "wave":
		wf := rate.Waveform(rc.Waveform)
		if wf == "" {
			wf = rate.WaveSine
		}
		return rate.NewWave(rc.Min, rc.Max, time.Duration(rc.Period), wf)
	default:
		return nil, errs.Config("pattern", "unknown rate pattern %q", rc.Pattern)
	}
}

// buildWorkload constructs the executable workload for one entry. The
// schema and Validate have already pinned the shape, so the switch
// only decides which block drives it.
func buildWorkload(wc *WorkloadConfig) (workload.Workload, error) {
	switch {
	case wc.HTTP != nil:
		h := &workload.HTTP{
			WorkloadName: wc.Name,
			Method:       wc.HTTP.Method,
			URL:          wc.HTTP.URL,
			Headers:      wc.HTTP.Headers,
			Body:         wc.HTTP.Body,
			ExpectStatus: wc.HTTP.ExpectStatus,
			Timeout:      time.Duration(wc.HTTP.Timeout),
		}
		for _, c := range wc.HTTP.Checks {
			h.Checks = append(h.Checks, workload.Check{Path: c.Path, Equals: c.Equals})
		}
		return h, nil
	case wc.WebSocket != nil:
		return &workload.Socket{
			WorkloadName: wc.Name,
			URL:          wc.WebSocket.URL,
			Headers:      wc.WebSocket.Headers,
			Message:      wc.WebSocket.Message,
			Expect:       wc.WebSocket.Expect,
		}, nil
	default:
		return nil, errs.Config(fmt.Sprintf("workloads.%s", wc.Name), "one of http or websocket is required")
	}
}

// Sample returns the starter configuration written by surge init.
func Sample() *Config {
	warmup := Duration(5 * time.Second)
	return &Config{
		Name:          "sample load test",
		Duration:      Duration(60 * time.Second),
		Warmup:        &warmup,
		MaxConcurrent: 200,
		Rate: RateConfig{
			Pattern:  "ramp",
			Start:    1,
			End:      25,
			Duration: Duration(60 * time.Second),
		},
		Workloads: []WorkloadConfig{
			{
				Name:   "list_products",
				Weight: 4,
				HTTP: &HTTPConfig{
					Method:       "GET",
					URL:          "/api/products",
					ExpectStatus: 200,
				},
			},
			{
				Name:   "create_order",
				Weight: 1,
				HTTP: &HTTPConfig{
					Method:  "POST",
					URL:     "/api/orders",
					Headers: map[string]string{"Content-Type": "application/json"},
					Body:    `{"product_id": 1, "quantity": 2}`,
				},
			},
		},
		Report: ReportConfig{Format: "console"},
		Settings: Settings{
			BaseURL: "http://localhost:8080",
			Timeout: Duration(10 * time.Second),
		},
	}
}
