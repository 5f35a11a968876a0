// Package config parses, validates, and builds run configurations.
//
// Files are YAML or JSON, decided by extension. A loaded file passes
// two gates before it becomes a run: structural validation against
// the embedded JSON schema, then semantic validation of everything a
// schema cannot express. Build turns the result into engine inputs.
//
// Example YAML:
//
//	name: "checkout smoke"
//	duration: 2m
//	warmup: 10s
//	rate:
//	  pattern: ramp
//	  start: 5
//	  end: 50
//	  duration: 2m
//	workloads:
//	  - name: browse
//	    weight: 4
//	    http:
//	      method: GET
//	      url: /api/products
//	settings:
//	  base_url: "https://staging.example.com"
package config

import (
	"time"
)

// Config is the root of a configuration file.
type Config struct {
	// Name of the run (for reporting and history)
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Duration is the length of the measured phase
	Duration Duration `json:"duration,omitempty" yaml:"duration,omitempty"`

	// Warmup is the ramp-in excluded from final statistics. Omitted
	// means the default warmup; an explicit "0s" skips the phase.
	Warmup *Duration `json:"warmup,omitempty" yaml:"warmup,omitempty"`

	// MaxConcurrent caps simultaneously running executions
	MaxConcurrent int `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty"`

	// QueueCapacity bounds the admission queue; 0 disables queueing
	QueueCapacity int `json:"queue_capacity,omitempty" yaml:"queue_capacity,omitempty"`

	// Console toggles the live progress display (default true)
	Console *bool `json:"console,omitempty" yaml:"console,omitempty"`

	// GraceTimeout bounds the drain after a graceful stop
	GraceTimeout Duration `json:"grace_timeout,omitempty" yaml:"grace_timeout,omitempty"`

	// ExecTimeout bounds each execution; "-1s" disables the deadline
	ExecTimeout Duration `json:"exec_timeout,omitempty" yaml:"exec_timeout,omitempty"`

	// Seed makes randomized rate patterns reproducible when non-zero
	Seed int64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	// Rate selects and parameterizes the arrival-rate pattern
	Rate RateConfig `json:"rate" yaml:"rate"`

	// Workloads defines the weighted scenario mix
	Workloads []WorkloadConfig `json:"workloads" yaml:"workloads"`

	// Report selects the final report format and destination
	Report ReportConfig `json:"report,omitempty" yaml:"report,omitempty"`

	// History controls persisting run summaries
	History HistoryConfig `json:"history,omitempty" yaml:"history,omitempty"`

	// Settings are shared by every workload
	Settings Settings `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// RateConfig parameterizes one arrival-rate pattern. Fields are
// shared across patterns; each pattern reads the ones it needs.
type RateConfig struct {
	// Pattern is one of: constant, ramp, spike, burst, steady, step,
	// chaos, wave
	Pattern string `json:"pattern" yaml:"pattern"`

	// Target is the rate for constant and steady patterns
	Target float64 `json:"target,omitempty" yaml:"target,omitempty"`

	// Jitter is the uniform variation around target for steady
	Jitter float64 `json:"jitter,omitempty" yaml:"jitter,omitempty"`

	// Start and End bound ramp and step patterns
	Start float64 `json:"start,omitempty" yaml:"start,omitempty"`
	End   float64 `json:"end,omitempty" yaml:"end,omitempty"`

	// Steps is the number of plateaus for the step pattern
	Steps int `json:"steps,omitempty" yaml:"steps,omitempty"`

	// Baseline and Peak shape spike and burst patterns
	Baseline float64 `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	Peak     float64 `json:"peak,omitempty" yaml:"peak,omitempty"`

	// Min and Max bound chaos and wave patterns
	Min float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max float64 `json:"max,omitempty" yaml:"max,omitempty"`

	// Duration is the pattern-local duration: ramp length, spike
	// width, burst width, or step plateau length
	Duration Duration `json:"duration,omitempty" yaml:"duration,omitempty"`

	// Interval is the spike repeat interval or chaos change interval
	Interval Duration `json:"interval,omitempty" yaml:"interval,omitempty"`

	// Delay is the burst start offset
	Delay Duration `json:"delay,omitempty" yaml:"delay,omitempty"`

	// Period is the wave oscillation period
	Period Duration `json:"period,omitempty" yaml:"period,omitempty"`

	// Distribution selects chaos draws: uniform, gaussian, exponential
	Distribution string `json:"distribution,omitempty" yaml:"distribution,omitempty"`

	// Waveform selects the wave shape: sine, square, sawtooth
	Waveform string `json:"waveform,omitempty" yaml:"waveform,omitempty"`
}

// WorkloadConfig defines one weighted scenario.
type WorkloadConfig struct {
	// Name identifies the workload in reports
	Name string `json:"name" yaml:"name"`

	// Type is http or websocket; inferred from the present block when
	// omitted
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Weight is the relative selection weight (default 1)
	Weight float64 `json:"weight,omitempty" yaml:"weight,omitempty"`

	HTTP      *HTTPConfig      `json:"http,omitempty" yaml:"http,omitempty"`
	WebSocket *WebSocketConfig `json:"websocket,omitempty" yaml:"websocket,omitempty"`
}

// HTTPConfig defines an HTTP workload.
type HTTPConfig struct {
	// Method defaults to GET
	Method string `json:"method,omitempty" yaml:"method,omitempty"`

	// URL is absolute or relative to settings.base_url
	URL string `json:"url" yaml:"url"`

	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    string            `json:"body,omitempty" yaml:"body,omitempty"`

	// ExpectStatus is the exact status counting as success; 0 accepts
	// any non-4xx/5xx response
	ExpectStatus int `json:"expect_status,omitempty" yaml:"expect_status,omitempty"`

	// Checks assert values in the JSON response body
	Checks []CheckConfig `json:"checks,omitempty" yaml:"checks,omitempty"`

	// Timeout tightens the per-call deadline below exec_timeout
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// CheckConfig asserts one value in a JSON response body.
type CheckConfig struct {
	// Path is a JSONPath expression
	Path string `json:"path" yaml:"path"`

	// Equals is the expected value, compared as a string
	Equals string `json:"equals" yaml:"equals"`
}

// WebSocketConfig defines a WebSocket workload: dial, optionally send
// a message, optionally await an exact reply, close.
type WebSocketConfig struct {
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Message string            `json:"message,omitempty" yaml:"message,omitempty"`
	Expect  string            `json:"expect,omitempty" yaml:"expect,omitempty"`
}

// ReportConfig selects the final report rendering.
type ReportConfig struct {
	// Format is console, json, or html (default console)
	Format string `json:"format,omitempty" yaml:"format,omitempty"`

	// Output is a file path; empty writes to stdout
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// HistoryConfig controls persisting run summaries.
type HistoryConfig struct {
	// Enabled turns on saving each run to the history store
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Path overrides the default store location (~/.surge/history.db)
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Settings are shared by every workload in the run.
type Settings struct {
	// BaseURL prefixes relative workload URLs
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Timeout caps requests made through the shared HTTP client
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// InsecureSkipVerify disables TLS certificate verification
	InsecureSkipVerify bool `json:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty"`

	// Headers are applied to every HTTP request
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Variables are free-form values exposed to workloads
	Variables map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// Duration is a time.Duration that marshals as a string ("30s",
// "2m") in both JSON and YAML.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*d = 0
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// String returns the duration in time.Duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}
