// Package errs defines the error taxonomy shared across the engine.
//
// Two error kinds are fatal and surface synchronously at the call site:
// ConfigurationError (invalid patterns, weights, or run settings, raised
// before any load is generated) and StateError (API misuse such as
// mutating a test that is already running). Everything that happens to an
// individual execution (failure, timeout, abandonment) is an outcome
// classification, not an error type; those fold into metrics and never
// propagate.
package errs

import (
	"errors"
	"fmt"
)

// ConfigurationError indicates an invalid configuration value. It is
// always raised before the run enters warmup, never mid-run.
type ConfigurationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Message)
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// Config builds a ConfigurationError for a named field.
func Config(field, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsConfiguration reports whether err is (or wraps) a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// StateError indicates an operation invoked in a lifecycle state that
// does not permit it, such as adding a scenario after run() started or
// calling run() twice on the same instance.
type StateError struct {
	Op    string
	State string
}

// Error implements the error interface.
func (e *StateError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Op, e.State)
}

// State builds a StateError.
func State(op, state string) *StateError {
	return &StateError{Op: op, State: state}
}

// IsState reports whether err is (or wraps) a StateError.
func IsState(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}
