package workload

import (
	"math/rand"
	"sort"

	"github.com/wesleyorama2/surge/internal/errs"
)

// Registry holds the weighted set of workloads for a run. Workloads
// are added single-threaded during configuration; Freeze seals the
// set and precomputes the cumulative weights that make selection an
// O(log n) binary search. A frozen registry is read-only, so Select
// is safe from any number of concurrent dispatch paths.
type Registry struct {
	entries []entry
	cum     []float64 // cum[i] = sum of weights [0..i]
	total   float64
	frozen  bool
}

type entry struct {
	w      Workload
	weight float64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a workload with a positive selection weight. The
// probability of selection is weight over the total weight of all
// registered workloads.
func (r *Registry) Add(w Workload, weight float64) error {
	if r.frozen {
		return errs.State("add workload", "frozen")
	}
	if w == nil {
		return errs.Config("workload", "must not be nil")
	}
	if weight <= 0 {
		return errs.Config("weight", "must be positive, got %g", weight)
	}
	r.entries = append(r.entries, entry{w: w, weight: weight})
	return nil
}

// Freeze seals the registry and builds the cumulative weight table.
// At least one workload must be registered with total weight above
// zero. Freeze is idempotent.
func (r *Registry) Freeze() error {
	if r.frozen {
		return nil
	}
	if len(r.entries) == 0 {
		return errs.Config("workloads", "at least one workload is required")
	}

	r.cum = make([]float64, len(r.entries))
	r.total = 0
	for i, e := range r.entries {
		r.total += e.weight
		r.cum[i] = r.total
	}
	if r.total <= 0 {
		return errs.Config("workloads", "total weight must be positive")
	}
	r.frozen = true
	return nil
}

// Select draws one workload at random, weighted, with replacement.
// The registry must be frozen. Prior selections never affect future
// probabilities.
func (r *Registry) Select() (Workload, error) {
	if !r.frozen {
		return nil, &errs.StateError{Op: "select", State: "unfrozen"}
	}
	x := rand.Float64() * r.total
	i := sort.Search(len(r.cum), func(i int) bool { return r.cum[i] > x })
	if i >= len(r.entries) {
		i = len(r.entries) - 1
	}
	return r.entries[i].w, nil
}

// Len returns the number of registered workloads.
func (r *Registry) Len() int { return len(r.entries) }

// TotalWeight returns the sum of all registered weights.
func (r *Registry) TotalWeight() float64 {
	if r.frozen {
		return r.total
	}
	var t float64
	for _, e := range r.entries {
		t += e.weight
	}
	return t
}

// Frozen reports whether the registry has been sealed.
func (r *Registry) Frozen() bool { return r.frozen }

// Workloads returns the registered workloads in registration order,
// for running setup and teardown hooks.
func (r *Registry) Workloads() []Workload {
	ws := make([]Workload, len(r.entries))
	for i, e := range r.entries {
		ws[i] = e.w
	}
	return ws
}
