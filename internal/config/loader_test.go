package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wesleyorama2/surge/internal/errs"
)

const fullYAML = `
name: "checkout smoke"
duration: 90s
warmup: 10s
max_concurrent: 500
queue_capacity: 50
console: false
grace_timeout: 15s
exec_timeout: 5s
seed: 42
rate:
  pattern: ramp
  start: 5
  end: 50
  duration: 90s
workloads:
  - name: browse
    weight: 4
    http:
      method: GET
      url: /api/products
      expect_status: 200
      checks:
        - path: "$.healthy"
          equals: "true"
  - name: checkout
    http:
      method: POST
      url: /api/orders
      headers:
        Content-Type: application/json
      body: '{"product_id": 1}'
      timeout: 2s
  - name: live_feed
    type: websocket
    websocket:
      url: ws://localhost:8080/feed
      message: ping
      expect: pong
report:
  format: json
  output: report.json
history:
  enabled: true
settings:
  base_url: "http://localhost:8080"
  timeout: 10s
  insecure_skip_verify: true
  headers:
    Authorization: "Bearer token"
  variables:
    tenant: acme
`

func TestParse_YAML(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML), "test.yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Name != "checkout smoke" {
		t.Errorf("Name = %v, want %v", cfg.Name, "checkout smoke")
	}
	if time.Duration(cfg.Duration) != 90*time.Second {
		t.Errorf("Duration = %v, want %v", cfg.Duration, 90*time.Second)
	}
	if cfg.Warmup == nil || time.Duration(*cfg.Warmup) != 10*time.Second {
		t.Errorf("Warmup = %v, want 10s", cfg.Warmup)
	}
	if cfg.MaxConcurrent != 500 {
		t.Errorf("MaxConcurrent = %v, want %v", cfg.MaxConcurrent, 500)
	}
	if cfg.QueueCapacity != 50 {
		t.Errorf("QueueCapacity = %v, want %v", cfg.QueueCapacity, 50)
	}
	if cfg.Console == nil || *cfg.Console {
		t.Errorf("Console = %v, want false", cfg.Console)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %v, want %v", cfg.Seed, 42)
	}

	if cfg.Rate.Pattern != "ramp" {
		t.Errorf("Rate.Pattern = %v, want ramp", cfg.Rate.Pattern)
	}
	if cfg.Rate.Start != 5 || cfg.Rate.End != 50 {
		t.Errorf("Rate bounds = %v..%v, want 5..50", cfg.Rate.Start, cfg.Rate.End)
	}

	if len(cfg.Workloads) != 3 {
		t.Fatalf("len(Workloads) = %v, want %v", len(cfg.Workloads), 3)
	}

	browse := cfg.Workloads[0]
	if browse.Name != "browse" {
		t.Errorf("Workloads[0].Name = %v, want browse", browse.Name)
	}
	if browse.Weight != 4 {
		t.Errorf("Workloads[0].Weight = %v, want %v", browse.Weight, 4)
	}
	if browse.HTTP == nil {
		t.Fatal("Workloads[0].HTTP is nil")
	}
	if browse.HTTP.ExpectStatus != 200 {
		t.Errorf("ExpectStatus = %v, want %v", browse.HTTP.ExpectStatus, 200)
	}
	if len(browse.HTTP.Checks) != 1 || browse.HTTP.Checks[0].Path != "$.healthy" {
		t.Errorf("Checks = %+v, want one check on $.healthy", browse.HTTP.Checks)
	}

	checkout := cfg.Workloads[1]
	if checkout.HTTP == nil {
		t.Fatal("Workloads[1].HTTP is nil")
	}
	if checkout.HTTP.Headers["Content-Type"] != "application/json" {
		t.Errorf("Headers = %v, want Content-Type set", checkout.HTTP.Headers)
	}
	if time.Duration(checkout.HTTP.Timeout) != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", checkout.HTTP.Timeout)
	}

	feed := cfg.Workloads[2]
	if feed.WebSocket == nil {
		t.Fatal("Workloads[2].WebSocket is nil")
	}
	if feed.WebSocket.Expect != "pong" {
		t.Errorf("Expect = %v, want pong", feed.WebSocket.Expect)
	}

	if cfg.Report.Format != "json" || cfg.Report.Output != "report.json" {
		t.Errorf("Report = %+v, want json to report.json", cfg.Report)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if cfg.Settings.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %v, want http://localhost:8080", cfg.Settings.BaseURL)
	}
	if !cfg.Settings.InsecureSkipVerify {
		t.Error("InsecureSkipVerify = false, want true")
	}
	if cfg.Settings.Headers["Authorization"] != "Bearer token" {
		t.Errorf("Settings.Headers = %v, want Authorization set", cfg.Settings.Headers)
	}
	if cfg.Settings.Variables["tenant"] != "acme" {
		t.Errorf("Settings.Variables = %v, want tenant=acme", cfg.Settings.Variables)
	}
}

func TestParse_JSON(t *testing.T) {
	jsonConfig := `{
		"name": "api baseline",
		"duration": "30s",
		"rate": {"pattern": "constant", "target": 25},
		"workloads": [
			{"name": "health", "http": {"url": "/healthz"}}
		]
	}`

	cfg, err := Parse([]byte(jsonConfig), "test.json")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Name != "api baseline" {
		t.Errorf("Name = %v, want %v", cfg.Name, "api baseline")
	}
	if cfg.Rate.Target != 25 {
		t.Errorf("Rate.Target = %v, want %v", cfg.Rate.Target, 25)
	}
	if cfg.Workloads[0].HTTP.URL != "/healthz" {
		t.Errorf("URL = %v, want /healthz", cfg.Workloads[0].HTTP.URL)
	}

	// Omitted tri-state fields stay unset so Build can apply defaults.
	if cfg.Warmup != nil {
		t.Errorf("Warmup = %v, want nil", cfg.Warmup)
	}
	if cfg.Console != nil {
		t.Errorf("Console = %v, want nil", cfg.Console)
	}
}

func TestParse_SchemaViolations(t *testing.T) {
	valid := `"rate": {"pattern": "constant", "target": 1}, "workloads": [{"name": "a", "http": {"url": "/"}}]`

	tests := []struct {
		name   string
		config string
	}{
		{
			name:   "unknown top-level key",
			config: `{` + valid + `, "concurrency": 10}`,
		},
		{
			name:   "unknown rate pattern",
			config: `{"rate": {"pattern": "zigzag"}, "workloads": [{"name": "a", "http": {"url": "/"}}]}`,
		},
		{
			name:   "numeric duration",
			config: `{"duration": 30, ` + valid + `}`,
		},
		{
			name:   "missing rate",
			config: `{"workloads": [{"name": "a", "http": {"url": "/"}}]}`,
		},
		{
			name:   "empty workloads",
			config: `{"rate": {"pattern": "constant", "target": 1}, "workloads": []}`,
		},
		{
			name:   "zero weight",
			config: `{"rate": {"pattern": "constant", "target": 1}, "workloads": [{"name": "a", "weight": 0, "http": {"url": "/"}}]}`,
		},
		{
			name:   "workload without name",
			config: `{"rate": {"pattern": "constant", "target": 1}, "workloads": [{"http": {"url": "/"}}]}`,
		},
		{
			name:   "out-of-range expect_status",
			config: `{"rate": {"pattern": "constant", "target": 1}, "workloads": [{"name": "a", "http": {"url": "/", "expect_status": 700}}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.config), "test.json")
			if err == nil {
				t.Fatal("Parse() accepted an invalid config")
			}
			if !strings.Contains(err.Error(), "schema") {
				t.Errorf("error = %v, want a schema violation", err)
			}
		})
	}
}

func TestParse_SemanticErrors(t *testing.T) {
	tests := []struct {
		name      string
		config    string
		wantField string
	}{
		{
			name:      "duplicate workload names",
			config:    `{"rate": {"pattern": "constant", "target": 1}, "workloads": [{"name": "ping", "http": {"url": "/"}}, {"name": "ping", "http": {"url": "/"}}]}`,
			wantField: "workloads[1].name",
		},
		{
			name:      "workload without a block",
			config:    `{"rate": {"pattern": "constant", "target": 1}, "workloads": [{"name": "bare"}]}`,
			wantField: "workloads[0]",
		},
		{
			name:      "both blocks",
			config:    `{"rate": {"pattern": "constant", "target": 1}, "workloads": [{"name": "a", "http": {"url": "/"}, "websocket": {"url": "ws://x/"}}]}`,
			wantField: "workloads[0]",
		},
		{
			name:      "type contradicts block",
			config:    `{"rate": {"pattern": "constant", "target": 1}, "workloads": [{"name": "a", "type": "websocket", "http": {"url": "/"}}]}`,
			wantField: "workloads[0].type",
		},
		{
			name:      "negative ramp start",
			config:    `{"rate": {"pattern": "ramp", "start": -5, "end": 10, "duration": "30s"}, "workloads": [{"name": "a", "http": {"url": "/"}}]}`,
			wantField: "rate.start",
		},
		{
			name:      "negative run duration",
			config:    `{"duration": "-10s", "rate": {"pattern": "constant", "target": 1}, "workloads": [{"name": "a", "http": {"url": "/"}}]}`,
			wantField: "duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.config), "test.json")
			if err == nil {
				t.Fatal("Parse() accepted an invalid config")
			}
			if !errs.IsConfiguration(err) {
				t.Errorf("error = %v, want a configuration error", err)
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantField)
			}
		})
	}
}

func TestParse_ReportsAllProblems(t *testing.T) {
	config := `{
		"rate": {"pattern": "ramp", "start": -5, "end": 10, "duration": "30s"},
		"workloads": [
			{"name": "ping", "http": {"url": "/"}},
			{"name": "ping", "http": {"url": "/"}}
		]
	}`

	_, err := Parse([]byte(config), "test.json")
	if err == nil {
		t.Fatal("Parse() accepted an invalid config")
	}

	var verrs *ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error = %T, want *ValidationErrors", err)
	}
	if len(verrs.Errors) != 2 {
		t.Errorf("len(Errors) = %v, want 2:\n%v", len(verrs.Errors), verrs)
	}
}

func TestParse_BadSyntax(t *testing.T) {
	if _, err := Parse([]byte("rate: [unbalanced"), "bad.yaml"); err == nil {
		t.Error("Parse() accepted malformed YAML")
	}
	if _, err := Parse([]byte("{not json"), "bad.json"); err == nil {
		t.Error("Parse() accepted malformed JSON")
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "surge.yaml")
	if err := os.WriteFile(path, []byte(fullYAML), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Name != "checkout smoke" {
		t.Errorf("Name = %v, want %v", cfg.Name, "checkout smoke")
	}
}

func TestLoad_NotFound(t *testing.T) {
	if _, err := Load("/nonexistent/surge.yaml"); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := Sample()

	for _, name := range []string{"surge.yaml", "surge.json"} {
		t.Run(filepath.Ext(name), func(t *testing.T) {
			path := filepath.Join(tmpDir, name)
			if err := Save(cfg, path); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if loaded.Name != cfg.Name {
				t.Errorf("Name = %v, want %v", loaded.Name, cfg.Name)
			}
			if loaded.Duration != cfg.Duration {
				t.Errorf("Duration = %v, want %v", loaded.Duration, cfg.Duration)
			}
			if loaded.Warmup == nil || *loaded.Warmup != *cfg.Warmup {
				t.Errorf("Warmup = %v, want %v", loaded.Warmup, *cfg.Warmup)
			}
			if loaded.Rate != cfg.Rate {
				t.Errorf("Rate = %+v, want %+v", loaded.Rate, cfg.Rate)
			}
			if len(loaded.Workloads) != len(cfg.Workloads) {
				t.Fatalf("len(Workloads) = %v, want %v", len(loaded.Workloads), len(cfg.Workloads))
			}
			if loaded.Workloads[0].Weight != cfg.Workloads[0].Weight {
				t.Errorf("Weight = %v, want %v", loaded.Workloads[0].Weight, cfg.Workloads[0].Weight)
			}
			if loaded.Workloads[1].HTTP.Body != cfg.Workloads[1].HTTP.Body {
				t.Errorf("Body = %v, want %v", loaded.Workloads[1].HTTP.Body, cfg.Workloads[1].HTTP.Body)
			}
			if loaded.Settings.BaseURL != cfg.Settings.BaseURL {
				t.Errorf("BaseURL = %v, want %v", loaded.Settings.BaseURL, cfg.Settings.BaseURL)
			}
		})
	}
}

func TestDuration_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{
			name:  "milliseconds",
			input: `"250ms"`,
			want:  250 * time.Millisecond,
		},
		{
			name:  "combined",
			input: `"1h30m"`,
			want:  90 * time.Minute,
		},
		{
			name:  "negative disables a deadline",
			input: `"-1s"`,
			want:  -time.Second,
		},
		{
			name:  "empty string",
			input: `""`,
			want:  0,
		},
		{
			name:  "null",
			input: `null`,
			want:  0,
		},
		{
			name:    "not a duration",
			input:   `"fast"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalJSON([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalJSON(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && time.Duration(d) != tt.want {
				t.Errorf("UnmarshalJSON(%s) = %v, want %v", tt.input, time.Duration(d), tt.want)
			}
		})
	}
}
