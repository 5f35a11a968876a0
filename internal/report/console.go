package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/wesleyorama2/surge/internal/metrics"
)

// scheme groups the colors the console summary uses. Color output
// honors the fatih/color globals, so NO_COLOR and non-TTY writers
// degrade to plain text.
type scheme struct {
	rule  *color.Color
	title *color.Color
	value *color.Color
	good  *color.Color
	warn  *color.Color
	bad   *color.Color
	dim   *color.Color
}

func newScheme() *scheme {
	return &scheme{
		rule:  color.New(color.FgCyan),
		title: color.New(color.Bold),
		value: color.New(color.FgCyan),
		good:  color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		bad:   color.New(color.FgRed),
		dim:   color.New(color.Faint),
	}
}

// Console writes a human-readable summary of the run.
//
// Timed out, throttled, and abandoned work is listed apart from
// application failures, so a slow dependency and an overloaded
// generator read differently at a glance.
func Console(w io.Writer, snap *metrics.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	s := newScheme()
	var b strings.Builder

	rule := strings.Repeat("━", 56)
	title := snap.Name
	if title == "" {
		title = "load test"
	}

	b.WriteString(s.rule.Sprint(rule) + "\n")
	if snap.RunID != "" {
		b.WriteString(fmt.Sprintf("%s  %s\n", s.title.Sprint(title), s.dim.Sprint("run "+shortID(snap.RunID))))
	} else {
		b.WriteString(s.title.Sprint(title) + "\n")
	}
	b.WriteString(s.rule.Sprint(rule) + "\n\n")

	b.WriteString(fmt.Sprintf("Duration:       %s\n", s.value.Sprint(formatDuration(snap.Elapsed))))
	b.WriteString(fmt.Sprintf("Completed:      %s\n", s.value.Sprint(formatNumber(snap.Total))))

	rateColor := s.good
	switch {
	case snap.Total == 0:
		rateColor = s.dim
	case snap.SuccessRate < 95:
		rateColor = s.bad
	case snap.SuccessRate < 99:
		rateColor = s.warn
	}
	b.WriteString(fmt.Sprintf("Success Rate:   %s\n", rateColor.Sprintf("%.1f%%", snap.SuccessRate)))
	b.WriteString(fmt.Sprintf("Throughput:     %s\n", s.value.Sprintf("%.1f req/s", snap.RPS)))
	if snap.TotalBytes > 0 {
		b.WriteString(fmt.Sprintf("Data Received:  %s\n", s.value.Sprint(formatBytes(snap.TotalBytes))))
	}
	if snap.WarmupTotal > 0 {
		b.WriteString(fmt.Sprintf("Warmup:         %s\n", s.dim.Sprintf("%s completions excluded", formatNumber(snap.WarmupTotal))))
	}
	b.WriteString("\n")

	if snap.Latency.Count > 0 {
		b.WriteString(s.title.Sprint("Latency:") + "\n")
		rows := []struct {
			label string
			d     time.Duration
		}{
			{"Min", snap.Latency.Min},
			{"P50", snap.Latency.P50},
			{"P90", snap.Latency.P90},
			{"P95", snap.Latency.P95},
			{"P99", snap.Latency.P99},
			{"Max", snap.Latency.Max},
			{"Mean", snap.Latency.Mean},
		}
		for _, r := range rows {
			b.WriteString(fmt.Sprintf("  %-6s %s\n", r.label+":", formatLatency(r.d)))
		}
		b.WriteString("\n")
	}

	b.WriteString(s.title.Sprint("Outcomes:") + "\n")
	outcomes := []struct {
		label string
		n     int64
		c     *color.Color
	}{
		{"Succeeded", snap.Success, s.good},
		{"Failed", snap.Failure, s.bad},
		{"Timed Out", snap.Timeout, s.warn},
		{"Throttled", snap.Throttled, s.warn},
		{"Abandoned", snap.Abandoned, s.dim},
	}
	for _, o := range outcomes {
		val := formatNumber(o.n)
		if o.n > 0 {
			val = o.c.Sprint(val)
		}
		b.WriteString(fmt.Sprintf("  %-11s %s\n", o.label+":", val))
	}
	b.WriteString("\n")

	if len(snap.Statuses) > 0 {
		b.WriteString(s.title.Sprint("Status Classes:") + "\n")
		for _, row := range sortedCounts(snap.Statuses) {
			b.WriteString(fmt.Sprintf("  %-12s %s\n", row.Key+":", formatNumber(row.Count)))
		}
		b.WriteString("\n")
	}

	if len(snap.Errors) > 0 {
		b.WriteString(s.title.Sprint("Errors:") + "\n")
		for _, row := range sortedCounts(snap.Errors) {
			b.WriteString(fmt.Sprintf("  %6s  %s\n", s.bad.Sprint(formatNumber(row.Count)), row.Key))
		}
		b.WriteString("\n")
	}

	if len(snap.PerWorkload) > 1 {
		width := 0
		rows := workloadRows(snap.PerWorkload)
		for _, r := range rows {
			if len(r.Name) > width {
				width = len(r.Name)
			}
		}
		b.WriteString(s.title.Sprint("Workloads:") + "\n")
		for _, r := range rows {
			b.WriteString(fmt.Sprintf("  %-*s %8s  p50 %-9s p95 %-9s p99 %-9s max %s\n",
				width, r.Name, formatNumber(r.Stats.Count),
				formatLatency(r.Stats.P50), formatLatency(r.Stats.P95),
				formatLatency(r.Stats.P99), formatLatency(r.Stats.Max)))
		}
		b.WriteString("\n")
	}

	if len(snap.Custom) > 0 {
		width := 0
		rows := customRows(snap.Custom)
		for _, r := range rows {
			if len(r.Name) > width {
				width = len(r.Name)
			}
		}
		b.WriteString(s.title.Sprint("Custom Metrics:") + "\n")
		for _, r := range rows {
			b.WriteString(fmt.Sprintf("  %-*s count %-9s min %-10s mean %-10s max %s\n",
				width, r.Name, formatNumber(r.Stat.Count),
				formatFloat(r.Stat.Min), formatFloat(r.Stat.Mean()), formatFloat(r.Stat.Max)))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// shortID trims a run ID to the leading UUID segment for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
