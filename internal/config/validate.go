package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wesleyorama2/surge/internal/errs"
)

// ValidationErrors collects every semantic problem found in one pass,
// so a bad file reports all of its faults at once instead of one per
// edit cycle.
type ValidationErrors struct {
	Errors []*errs.ConfigurationError
}

// Add records an error against a named field.
func (e *ValidationErrors) Add(field, format string, args ...interface{}) {
	e.Errors = append(e.Errors, errs.Config(field, format, args...))
}

// HasErrors reports whether any problem was recorded.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *ValidationErrors) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err
	}
	return out
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no validation errors"
	case 1:
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:", len(e.Errors))
	for _, err := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Validate applies the semantic rules the JSON schema cannot express.
// It returns nil when the configuration is usable, otherwise a
// ValidationErrors listing every problem.
func (c *Config) Validate() error {
	verrs := &ValidationErrors{}

	if c.Duration < 0 {
		verrs.Add("duration", "must not be negative, got %v", time.Duration(c.Duration))
	}
	if c.Warmup != nil && *c.Warmup < 0 {
		verrs.Add("warmup", "must not be negative, got %v", time.Duration(*c.Warmup))
	}
	if c.GraceTimeout < 0 {
		verrs.Add("grace_timeout", "must not be negative, got %v", time.Duration(c.GraceTimeout))
	}

	c.validateRate(verrs)
	c.validateWorkloads(verrs)

	if f := c.Report.Format; f != "" && f != "console" && f != "json" && f != "html" {
		verrs.Add("report.format", "unknown report format %q", f)
	}

	if verrs.HasErrors() {
		return verrs
	}
	return nil
}

// validateRate builds the pattern once and folds any constructor
// error into the collection, so rate parameters are checked by the
// same code that will interpret them at run time.
func (c *Config) validateRate(verrs *ValidationErrors) {
	_, err := buildPattern(&c.Rate, c.Seed)
	if err == nil {
		return
	}
	var ce *errs.ConfigurationError
	if errors.As(err, &ce) {
		verrs.Add("rate."+ce.Field, "%s", ce.Message)
		return
	}
	verrs.Add("rate", "%v", err)
}

func (c *Config) validateWorkloads(verrs *ValidationErrors) {
	if len(c.Workloads) == 0 {
		verrs.Add("workloads", "at least one workload is required")
		return
	}

	seen := make(map[string]bool, len(c.Workloads))
	for i := range c.Workloads {
		w := &c.Workloads[i]
		prefix := fmt.Sprintf("workloads[%d]", i)

		switch {
		case w.Name == "":
			verrs.Add(prefix+".name", "name is required")
		case seen[w.Name]:
			verrs.Add(prefix+".name", "duplicate workload name %q", w.Name)
		}
		seen[w.Name] = true

		if w.Weight < 0 {
			verrs.Add(prefix+".weight", "must be positive, got %g", w.Weight)
		}

		switch {
		case w.HTTP != nil && w.WebSocket != nil:
			verrs.Add(prefix, "http and websocket blocks are mutually exclusive")
		case w.HTTP != nil:
			if w.Type != "" && w.Type != "http" {
				verrs.Add(prefix+".type", "type %q does not match the http block", w.Type)
			}
			if w.HTTP.URL == "" {
				verrs.Add(prefix+".http.url", "url is required")
			}
			if w.HTTP.Timeout < 0 {
				verrs.Add(prefix+".http.timeout", "must not be negative, got %v", time.Duration(w.HTTP.Timeout))
			}
		case w.WebSocket != nil:
			if w.Type != "" && w.Type != "websocket" {
				verrs.Add(prefix+".type", "type %q does not match the websocket block", w.Type)
			}
			if w.WebSocket.URL == "" {
				verrs.Add(prefix+".websocket.url", "url is required")
			}
		default:
			verrs.Add(prefix, "one of http or websocket is required")
		}
	}
}
