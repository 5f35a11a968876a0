package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/wesleyorama2/surge/internal/metrics"
)

// formatDuration formats a wall-clock duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		if secs == 0 {
			return fmt.Sprintf("%dm", mins)
		}
		return fmt.Sprintf("%dm %02ds", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %02dm", hours, mins)
}

// formatLatency formats a latency with precision that tracks its
// magnitude.
func formatLatency(d time.Duration) string {
	if d == 0 {
		return "0"
	}
	if d < time.Microsecond {
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		ms := float64(d.Microseconds()) / 1000.0
		if ms < 10 {
			return fmt.Sprintf("%.2fms", ms)
		}
		if ms < 100 {
			return fmt.Sprintf("%.1fms", ms)
		}
		return fmt.Sprintf("%dms", int(ms))
	}
	s := d.Seconds()
	if s < 10 {
		return fmt.Sprintf("%.2fs", s)
	}
	return fmt.Sprintf("%.1fs", s)
}

// formatNumber formats a count with thousands separators.
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	offset := len(str) % 3
	if offset > 0 {
		result.WriteString(str[:offset])
	}
	for i := offset; i < len(str); i += 3 {
		if result.Len() > 0 {
			result.WriteString(",")
		}
		result.WriteString(str[i : i+3])
	}
	return result.String()
}

// formatBytes formats a byte count using binary units.
func formatBytes(n int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
		tb = gb * 1024
	)

	switch {
	case n >= tb:
		return fmt.Sprintf("%.2f TB", float64(n)/tb)
	case n >= gb:
		return fmt.Sprintf("%.2f GB", float64(n)/gb)
	case n >= mb:
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.2f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// formatFloat renders custom metric values without scientific
// notation, dropping the fraction when there is none.
func formatFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return formatNumber(int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

// CountRow is one row of a status or error table, ordered for display.
type CountRow struct {
	Key   string
	Count int64
}

// sortedCounts orders a count table by descending count, then key.
func sortedCounts(m map[string]int64) []CountRow {
	rows := make([]CountRow, 0, len(m))
	for key, count := range m {
		rows = append(rows, CountRow{Key: key, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

// WorkloadRow is one row of the per-workload breakdown.
type WorkloadRow struct {
	Name  string
	Stats metrics.LatencyStats
}

// workloadRows orders the per-workload breakdown by name.
func workloadRows(m map[string]metrics.LatencyStats) []WorkloadRow {
	rows := make([]WorkloadRow, 0, len(m))
	for name, stats := range m {
		rows = append(rows, WorkloadRow{Name: name, Stats: stats})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

// CustomRow is one row of the custom metric table.
type CustomRow struct {
	Name string
	Stat metrics.CustomStat
}

// customRows orders the custom metric table by name.
func customRows(m map[string]metrics.CustomStat) []CustomRow {
	rows := make([]CustomRow, 0, len(m))
	for name, stat := range m {
		rows = append(rows, CustomRow{Name: name, Stat: stat})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}
