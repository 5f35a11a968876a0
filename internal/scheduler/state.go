package scheduler

// State is the lifecycle state of a scheduler.
//
// The legal transitions are:
//
//	Idle -> Warmup -> Measuring -> Draining -> Stopped
//
// A run without a warmup period skips straight to Measuring, and
// Cancel moves any running state directly to Cancelled. Stopped and
// Cancelled are terminal: a scheduler runs exactly once.
type State int32

const (
	// StateIdle is the state before Run is called
	StateIdle State = iota

	// StateWarmup is the warmup period, excluded from final statistics
	StateWarmup

	// StateMeasuring is the measured portion of the run
	StateMeasuring

	// StateDraining means no new work is admitted and in-flight
	// executions are completing
	StateDraining

	// StateStopped means the run ended gracefully
	StateStopped

	// StateCancelled means the run was aborted and in-flight work
	// was discarded
	StateCancelled
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWarmup:
		return "warmup"
	case StateMeasuring:
		return "measuring"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is one the scheduler never
// leaves.
func (s State) Terminal() bool {
	return s == StateStopped || s == StateCancelled
}

// Running reports whether load is being generated or drained.
func (s State) Running() bool {
	return s == StateWarmup || s == StateMeasuring || s == StateDraining
}
