package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigurationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ConfigurationError
		want string
	}{
		{
			name: "with field",
			err:  Config("target", "must be non-negative, got %g", -5.0),
			want: "invalid configuration: target: must be non-negative, got -5",
		},
		{
			name: "without field",
			err:  &ConfigurationError{Message: "no workloads registered"},
			want: "invalid configuration: no workloads registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStateError_Error(t *testing.T) {
	err := State("add workload", "running")
	want := "add workload not allowed in state running"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsConfiguration(t *testing.T) {
	base := Config("weight", "must be positive")

	if !IsConfiguration(base) {
		t.Error("IsConfiguration() = false for a direct ConfigurationError")
	}
	if !IsConfiguration(fmt.Errorf("build scenario: %w", base)) {
		t.Error("IsConfiguration() = false for a wrapped ConfigurationError")
	}
	if IsConfiguration(errors.New("weight must be positive")) {
		t.Error("IsConfiguration() = true for a plain error")
	}
	if IsConfiguration(State("run", "running")) {
		t.Error("IsConfiguration() = true for a StateError")
	}
	if IsConfiguration(nil) {
		t.Error("IsConfiguration(nil) = true")
	}
}

func TestIsState(t *testing.T) {
	base := State("run", "finished")

	if !IsState(base) {
		t.Error("IsState() = false for a direct StateError")
	}
	if !IsState(fmt.Errorf("start: %w", base)) {
		t.Error("IsState() = false for a wrapped StateError")
	}
	if IsState(Config("duration", "must be positive")) {
		t.Error("IsState() = true for a ConfigurationError")
	}
	if IsState(nil) {
		t.Error("IsState(nil) = true")
	}
}

func TestErrorsAs_ExtractsField(t *testing.T) {
	wrapped := fmt.Errorf("loading config: %w", Config("rate.jitter", "must be in [0, 1), got 1.5"))

	var ce *ConfigurationError
	if !errors.As(wrapped, &ce) {
		t.Fatal("errors.As failed to extract ConfigurationError")
	}
	if ce.Field != "rate.jitter" {
		t.Errorf("Field = %q, want %q", ce.Field, "rate.jitter")
	}
}
