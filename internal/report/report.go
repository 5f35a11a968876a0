// Package report renders final run snapshots for people and machines.
//
// Three formats are supported: a colored console summary, a
// standalone HTML page, and indented JSON for downstream tooling.
// All three render the same snapshot, so a run saved as JSON carries
// everything the console summary showed.
package report

import (
	"io"

	"github.com/wesleyorama2/surge/internal/errs"
	"github.com/wesleyorama2/surge/internal/metrics"
)

// Render writes snap to w in the named format. Formats are "console",
// "json", and "html"; the empty string means console.
func Render(format string, w io.Writer, snap *metrics.Snapshot) error {
	switch format {
	case "console", "":
		return Console(w, snap)
	case "json":
		return JSON(w, snap)
	case "html":
		return HTML(w, snap)
	default:
		return errs.Config("format", "unknown report format %q", format)
	}
}

// Formats lists the formats Render accepts.
func Formats() []string {
	return []string{"console", "json", "html"}
}
