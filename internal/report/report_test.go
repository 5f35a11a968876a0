package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/wesleyorama2/surge/internal/errs"
	"github.com/wesleyorama2/surge/internal/metrics"
)

func sampleSnapshot() *metrics.Snapshot {
	return &metrics.Snapshot{
		RunID:       "0a1b2c3d-0000-4000-8000-000000000000",
		Name:        "checkout flow",
		Total:       1000,
		Success:     950,
		Failure:     30,
		Timeout:     20,
		Throttled:   12,
		Abandoned:   3,
		WarmupTotal: 40,
		TotalBytes:  5 * 1024 * 1024,
		SuccessRate: 95.0,
		Latency: metrics.LatencyStats{
			Min:    2 * time.Millisecond,
			Max:    980 * time.Millisecond,
			Mean:   120 * time.Millisecond,
			StdDev: 45 * time.Millisecond,
			P50:    95 * time.Millisecond,
			P90:    240 * time.Millisecond,
			P95:    310 * time.Millisecond,
			P99:    600 * time.Millisecond,
			Count:  1000,
		},
		PerWorkload: map[string]metrics.LatencyStats{
			"browse": {
				Count: 600, P50: 80 * time.Millisecond, P95: 200 * time.Millisecond,
				P99: 400 * time.Millisecond, Max: 700 * time.Millisecond,
			},
			"checkout": {
				Count: 400, P50: 120 * time.Millisecond, P95: 380 * time.Millisecond,
				P99: 650 * time.Millisecond, Max: 980 * time.Millisecond,
			},
		},
		Statuses: map[string]int64{"200": 950, "500": 30, "timeout": 20},
		Errors:   map[string]int64{"unexpected status 500": 30},
		Custom: map[string]metrics.CustomStat{
			"bytes_received": {Count: 950, Sum: 5242880, Min: 1024, Max: 8192},
		},
		RPS:       16.7,
		Phase:     metrics.PhaseDone,
		Elapsed:   60 * time.Second,
		StartTime: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Timestamp: time.Date(2025, 6, 1, 12, 1, 0, 0, time.UTC),
	}
}

func TestConsole(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	if err := Console(&buf, sampleSnapshot()); err != nil {
		t.Fatalf("Console failed: %v", err)
	}
	out := buf.String()

	expectedContents := []string{
		"checkout flow",
		"run 0a1b2c3d",
		"Duration:",
		"Completed:      1,000",
		"Success Rate:   95.0%",
		"Throughput:     16.7 req/s",
		"Data Received:  5.00 MB",
		"40 completions excluded",
		"Latency:",
		"P95:",
		"Outcomes:",
		"Succeeded:",
		"Timed Out:",
		"Throttled:",
		"Abandoned:",
		"Status Classes:",
		"200:",
		"timeout:",
		"Errors:",
		"unexpected status 500",
		"Workloads:",
		"browse",
		"checkout",
		"Custom Metrics:",
		"bytes_received",
	}
	for _, expected := range expectedContents {
		if !strings.Contains(out, expected) {
			t.Errorf("console output does not contain %q", expected)
		}
	}
}

func TestConsoleEmptyRun(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	snap := &metrics.Snapshot{Phase: metrics.PhaseDone}
	if err := Console(&buf, snap); err != nil {
		t.Fatalf("Console failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "load test") {
		t.Error("expected fallback title for unnamed run")
	}
	if !strings.Contains(out, "Success Rate:   0.0%") {
		t.Error("expected zero success rate for empty run")
	}
	if strings.Contains(out, "Status Classes:") {
		t.Error("empty run should not print a status table")
	}
}

func TestConsoleNilSnapshot(t *testing.T) {
	var buf bytes.Buffer
	if err := Console(&buf, nil); err == nil {
		t.Error("expected error for nil snapshot, got nil")
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleSnapshot()); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	var decoded metrics.Snapshot
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if decoded.Total != 1000 {
		t.Errorf("decoded total = %d, expected 1000", decoded.Total)
	}
	if decoded.RunID != "0a1b2c3d-0000-4000-8000-000000000000" {
		t.Errorf("decoded runId = %q", decoded.RunID)
	}
	if decoded.Latency.P95 != 310*time.Millisecond {
		t.Errorf("decoded p95 = %v, expected 310ms", decoded.Latency.P95)
	}
	if decoded.Statuses["200"] != 950 {
		t.Errorf("decoded statuses = %v", decoded.Statuses)
	}
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(&buf, sampleSnapshot()); err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	out := buf.String()

	expectedContents := []string{
		"<!DOCTYPE html>",
		"<title>checkout flow - Surge Report</title>",
		"Success Rate",
		"card-value warn",
		"Status Classes",
		"unexpected status 500",
		"browse",
		"bytes_received",
		"Generated by surge",
	}
	for _, expected := range expectedContents {
		if !strings.Contains(out, expected) {
			t.Errorf("HTML does not contain %q", expected)
		}
	}
}

func TestHTMLNilSnapshot(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(&buf, nil); err == nil {
		t.Error("expected error for nil snapshot, got nil")
	}
}

func TestRenderDispatch(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	snap := sampleSnapshot()

	for _, format := range []string{"", "console", "json", "html"} {
		var buf bytes.Buffer
		if err := Render(format, &buf, snap); err != nil {
			t.Errorf("Render(%q) failed: %v", format, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Render(%q) wrote nothing", format)
		}
	}

	var buf bytes.Buffer
	err := Render("xml", &buf, snap)
	if err == nil {
		t.Fatal("expected error for unknown format, got nil")
	}
	if !errs.IsConfiguration(err) {
		t.Errorf("unknown format should be a configuration error, got %T", err)
	}
}
