package workload

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"strconv"
	"strings"
	"time"

	"github.com/wesleyorama2/surge/pkg/jsonpath"
)

// Check asserts one value in a JSON response body.
type Check struct {
	// Path is a JSONPath expression into the response body.
	Path string

	// Equals is the expected value, compared as a string.
	Equals string
}

// HTTP performs one HTTP request per execution against the target.
// Relative URLs are resolved against the environment's base URL, and
// environment headers apply before workload headers.
type HTTP struct {
	WorkloadName string
	Method       string
	URL          string
	Headers      map[string]string
	Body         string

	// ExpectStatus is the exact status code that counts as success.
	// Zero accepts any non-4xx/5xx response.
	ExpectStatus int

	// Checks are JSON body assertions applied after the status check.
	Checks []Check

	// Timeout tightens the per-call deadline below the scheduler's
	// execution budget. Zero inherits the budget unchanged.
	Timeout time.Duration
}

// Name implements Workload.
func (h *HTTP) Name() string { return h.WorkloadName }

// Execute implements Workload. The reported duration covers the full
// exchange including reading the response body; time to first byte
// and body size are attached as custom metrics.
func (h *HTTP) Execute(ctx context.Context, env *Env) Outcome {
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	url := h.URL
	if !strings.Contains(url, "://") {
		url = strings.TrimRight(env.BaseURL, "/") + "/" + strings.TrimLeft(url, "/")
	}

	method := h.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if h.Body != "" {
		body = strings.NewReader(h.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return Outcome{Status: "invalid-request", Err: err}
	}
	for k, v := range env.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	if h.Body != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	var firstByte time.Time
	trace := &httptrace.ClientTrace{
		GotFirstResponseByte: func() { firstByte = time.Now() },
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	start := time.Now()
	resp, err := env.HTTPClient.Do(req)
	if err != nil {
		return Outcome{
			Duration: time.Since(start),
			Status:   classifyNetErr(err),
			Err:      err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	if err != nil {
		return Outcome{Duration: duration, Status: classifyNetErr(err), Err: err}
	}

	metrics := map[string]float64{
		"bytes_received": float64(len(respBody)),
	}
	if !firstByte.IsZero() {
		metrics["ttfb_ms"] = float64(firstByte.Sub(start)) / float64(time.Millisecond)
	}

	out := Outcome{
		Duration: duration,
		Status:   strconv.Itoa(resp.StatusCode),
		Metrics:  metrics,
	}

	if h.ExpectStatus > 0 {
		if resp.StatusCode != h.ExpectStatus {
			out.Err = &unexpectedStatusError{got: resp.StatusCode, want: h.ExpectStatus}
			return out
		}
	} else if resp.StatusCode >= 400 {
		out.Err = &unexpectedStatusError{got: resp.StatusCode}
		return out
	}

	for _, c := range h.Checks {
		got, err := jsonpath.Extract(string(respBody), c.Path)
		if err != nil {
			out.Status = "check"
			out.Err = err
			return out
		}
		if got != c.Equals {
			out.Status = "check"
			out.Err = &checkError{path: c.Path, got: got, want: c.Equals}
			return out
		}
	}

	out.Success = true
	return out
}

type unexpectedStatusError struct {
	got  int
	want int
}

func (e *unexpectedStatusError) Error() string {
	if e.want > 0 {
		return "unexpected status " + strconv.Itoa(e.got) + ", want " + strconv.Itoa(e.want)
	}
	return "unexpected status " + strconv.Itoa(e.got)
}

type checkError struct {
	path string
	got  string
	want string
}

func (e *checkError) Error() string {
	return "check " + e.path + ": got " + e.got + ", want " + e.want
}

// classifyNetErr maps a transport error to a status classifier so the
// error table groups failures by cause rather than by message.
func classifyNetErr(err error) string {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return oe.Op
	}
	return "error"
}
