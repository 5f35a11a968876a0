package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/wesleyorama2/surge/internal/metrics"
)

// HTML writes the snapshot as a standalone HTML page. The page embeds
// its own styling, so the file can be mailed around or attached to a
// ticket without losing anything.
func HTML(w io.Writer, snap *metrics.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	tmpl, err := template.New("report").Funcs(templateFuncs()).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}
	if err := tmpl.Execute(w, snap); err != nil {
		return fmt.Errorf("render report template: %w", err)
	}
	return nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDuration": formatDuration,
		"formatLatency":  formatLatency,
		"formatNumber":   formatNumber,
		"formatBytes":    formatBytes,
		"formatFloat":    formatFloat,
		"sortedCounts":   sortedCounts,
		"workloadRows":   workloadRows,
		"customRows":     customRows,
		"rateClass": func(rate float64) string {
			switch {
			case rate < 95:
				return "bad"
			case rate < 99:
				return "warn"
			default:
				return "good"
			}
		},
	}
}
