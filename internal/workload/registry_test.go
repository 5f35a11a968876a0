package workload

import (
	"context"
	"testing"

	"github.com/wesleyorama2/surge/internal/errs"
)

func noopWorkload(name string) Workload {
	return NewFunc(name, func(ctx context.Context, env *Env) Outcome {
		return Outcome{Success: true}
	})
}

func TestRegistry_Add_Validation(t *testing.T) {
	tests := []struct {
		name     string
		workload Workload
		weight   float64
	}{
		{"nil workload", nil, 1.0},
		{"zero weight", noopWorkload("a"), 0},
		{"negative weight", noopWorkload("a"), -2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			err := r.Add(tt.workload, tt.weight)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errs.IsConfiguration(err) {
				t.Errorf("Expected configuration error, got %v", err)
			}
		})
	}
}

func TestRegistry_Add_AfterFreeze(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(noopWorkload("a"), 1.0); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := r.Freeze(); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}

	err := r.Add(noopWorkload("b"), 1.0)
	if err == nil {
		t.Fatal("Expected error adding after freeze, got nil")
	}
	if !errs.IsState(err) {
		t.Errorf("Expected state error, got %v", err)
	}
}

func TestRegistry_Freeze_Empty(t *testing.T) {
	r := NewRegistry()
	err := r.Freeze()
	if err == nil {
		t.Fatal("Expected error freezing empty registry, got nil")
	}
	if !errs.IsConfiguration(err) {
		t.Errorf("Expected configuration error, got %v", err)
	}
}

func TestRegistry_Freeze_Idempotent(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(noopWorkload("a"), 1.0); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := r.Freeze(); err != nil {
		t.Fatalf("First freeze failed: %v", err)
	}
	if err := r.Freeze(); err != nil {
		t.Errorf("Second freeze failed: %v", err)
	}
	if !r.Frozen() {
		t.Error("Expected registry to report frozen")
	}
}

func TestRegistry_Select_BeforeFreeze(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(noopWorkload("a"), 1.0); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := r.Select(); err == nil {
		t.Fatal("Expected error selecting before freeze, got nil")
	}
}

func TestRegistry_Select_SingleWorkload(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(noopWorkload("only"), 3.0); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := r.Freeze(); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}

	for i := 0; i < 100; i++ {
		w, err := r.Select()
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if w.Name() != "only" {
			t.Fatalf("Expected workload only, got %s", w.Name())
		}
	}
}

func TestRegistry_Select_WeightedDistribution(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(noopWorkload("heavy"), 8.0); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := r.Add(noopWorkload("light"), 2.0); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := r.Freeze(); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}

	const draws = 10000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		w, err := r.Select()
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		counts[w.Name()]++
	}

	// An 8:2 split over 10,000 draws should land near 80%/20%. A 5%
	// band is far beyond any plausible sampling noise.
	heavyPct := float64(counts["heavy"]) / draws * 100
	if heavyPct < 75 || heavyPct > 85 {
		t.Errorf("Expected heavy share near 80%%, got %.1f%%", heavyPct)
	}
	if counts["heavy"]+counts["light"] != draws {
		t.Errorf("Expected %d total draws, got %d", draws, counts["heavy"]+counts["light"])
	}
}

func TestRegistry_TotalWeight(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(noopWorkload("a"), 1.5); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := r.Add(noopWorkload("b"), 2.5); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if r.Len() != 2 {
		t.Errorf("Expected 2 workloads, got %d", r.Len())
	}
	if r.TotalWeight() != 4.0 {
		t.Errorf("Expected total weight 4.0, got %v", r.TotalWeight())
	}
}
