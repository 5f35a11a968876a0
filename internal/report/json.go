package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/wesleyorama2/surge/internal/metrics"
)

// JSON writes the snapshot as indented JSON. Durations are encoded
// as nanosecond integers, which keeps the format loadable without a
// custom decoder.
func JSON(w io.Writer, snap *metrics.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
