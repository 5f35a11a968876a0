package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wesleyorama2/surge/internal/history"
	"github.com/wesleyorama2/surge/internal/metrics"
)

// seedHistory stores n runs a minute apart and returns the store path
// and the run IDs, oldest first.
func seedHistory(t *testing.T, n int) (string, []string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	base := time.Now().Add(-time.Hour)
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		id := strings.Repeat(string(rune('a'+i)), 8) + "-1111-2222-3333-444444444444"
		ids[i] = id
		err := store.Save(&metrics.Snapshot{
			RunID:       id,
			Name:        "run " + string(rune('a'+i)),
			Total:       int64(100 * (i + 1)),
			Success:     int64(100 * (i + 1)),
			SuccessRate: 100,
			Latency:     metrics.LatencyStats{P95: 80 * time.Millisecond},
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("save run %d: %v", i, err)
		}
	}
	return path, ids
}

func TestListHistory(t *testing.T) {
	path, ids := seedHistory(t, 3)

	var buf bytes.Buffer
	if err := listHistory(path, 0, &buf); err != nil {
		t.Fatalf("listHistory() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "RUN") || !strings.Contains(out, "P95") {
		t.Errorf("output missing table header: %q", out)
	}
	for i, id := range ids {
		if !strings.Contains(out, shortID(id)) {
			t.Errorf("output missing run %d (%s): %q", i, shortID(id), out)
		}
	}
	// Newest first: the last saved run appears before the first.
	if strings.Index(out, shortID(ids[2])) > strings.Index(out, shortID(ids[0])) {
		t.Errorf("runs not listed newest first: %q", out)
	}
	if !strings.Contains(out, "run c") {
		t.Errorf("output missing run name: %q", out)
	}
	if !strings.Contains(out, "80ms") {
		t.Errorf("output missing P95: %q", out)
	}
}

func TestListHistory_Limit(t *testing.T) {
	path, ids := seedHistory(t, 3)

	var buf bytes.Buffer
	if err := listHistory(path, 1, &buf); err != nil {
		t.Fatalf("listHistory() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, shortID(ids[2])) {
		t.Errorf("limited list missing newest run: %q", out)
	}
	if strings.Contains(out, shortID(ids[0])) {
		t.Errorf("limited list includes older run: %q", out)
	}
}

func TestListHistory_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	var buf bytes.Buffer
	if err := listHistory(path, 0, &buf); err != nil {
		t.Fatalf("listHistory() error = %v", err)
	}
	if !strings.Contains(buf.String(), "history is empty") {
		t.Errorf("output = %q, want history is empty", buf.String())
	}
}

func TestShowHistory(t *testing.T) {
	path, ids := seedHistory(t, 2)

	// Full ID and short prefix both resolve.
	for _, id := range []string{ids[1], shortID(ids[1])} {
		var buf bytes.Buffer
		if err := showHistory(path, id, "json", &buf); err != nil {
			t.Fatalf("showHistory(%q) error = %v", id, err)
		}
		var snap metrics.Snapshot
		if err := json.Unmarshal(buf.Bytes(), &snap); err != nil {
			t.Fatalf("showHistory(%q) output is not JSON: %v", id, err)
		}
		if snap.RunID != ids[1] {
			t.Errorf("showHistory(%q) run ID = %q, want %q", id, snap.RunID, ids[1])
		}
	}
}

func TestShowHistory_Unknown(t *testing.T) {
	path, _ := seedHistory(t, 1)

	err := showHistory(path, "deadbeef", "json", new(bytes.Buffer))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("showHistory() error = %v, want not found", err)
	}
}

func TestClearHistory(t *testing.T) {
	path, _ := seedHistory(t, 3)

	var buf bytes.Buffer
	if err := clearHistory(path, 0, &buf); err != nil {
		t.Fatalf("clearHistory() error = %v", err)
	}
	if !strings.Contains(buf.String(), "history cleared") {
		t.Errorf("output = %q, want history cleared", buf.String())
	}

	buf.Reset()
	if err := listHistory(path, 0, &buf); err != nil {
		t.Fatalf("listHistory() after clear error = %v", err)
	}
	if !strings.Contains(buf.String(), "history is empty") {
		t.Errorf("history not empty after clear: %q", buf.String())
	}
}

func TestClearHistory_Keep(t *testing.T) {
	path, ids := seedHistory(t, 3)

	var buf bytes.Buffer
	if err := clearHistory(path, 2, &buf); err != nil {
		t.Fatalf("clearHistory() error = %v", err)
	}
	if !strings.Contains(buf.String(), "kept the 2 most recent runs, removed 1") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	if err := listHistory(path, 0, &buf); err != nil {
		t.Fatalf("listHistory() after prune error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, shortID(ids[0])) {
		t.Errorf("oldest run survived prune: %q", out)
	}
	for _, id := range ids[1:] {
		if !strings.Contains(out, shortID(id)) {
			t.Errorf("recent run %s missing after prune: %q", shortID(id), out)
		}
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"0d6adfe2-48f3-4d1f-bd3b-2a63c3f9a3b4", "0d6adfe2"},
		{"abcdefghijklmnop", "abcdefgh"},
		{"short", "short"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := shortID(tt.id); got != tt.want {
			t.Errorf("shortID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
