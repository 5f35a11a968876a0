package workload

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

// Socket performs one WebSocket exchange per execution: dial, send an
// optional message, await an optional reply, close. It exercises
// connection churn rather than long-lived sessions.
type Socket struct {
	WorkloadName string
	URL          string
	Headers      map[string]string

	// Message is sent as a text frame after the handshake. Empty
	// means connect-and-close.
	Message string

	// Expect, when set, must match the first reply exactly.
	Expect string
}

// Name implements Workload.
func (s *Socket) Name() string { return s.WorkloadName }

// Execute implements Workload. Dial failures carry the handshake
// status code as the classifier when the server answered at all.
func (s *Socket) Execute(ctx context.Context, env *Env) Outcome {
	header := http.Header{}
	for k, v := range env.Headers {
		header.Set(k, v)
	}
	for k, v := range s.Headers {
		header.Set(k, v)
	}

	dialer := env.WSDialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	start := time.Now()
	conn, resp, err := dialer.DialContext(ctx, s.URL, header)
	if err != nil {
		status := "dial"
		if resp != nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		return Outcome{Duration: time.Since(start), Status: status, Err: err}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	metrics := map[string]float64{}

	if s.Message != "" {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(s.Message)); err != nil {
			return Outcome{Duration: time.Since(start), Status: "write", Err: err}
		}
		metrics["bytes_sent"] = float64(len(s.Message))
	}

	if s.Expect != "" {
		_, reply, err := conn.ReadMessage()
		if err != nil {
			return Outcome{Duration: time.Since(start), Status: "read", Err: err}
		}
		metrics["bytes_received"] = float64(len(reply))
		if string(reply) != s.Expect {
			return Outcome{
				Duration: time.Since(start),
				Status:   "mismatch",
				Err:      &checkError{path: "reply", got: string(reply), want: s.Expect},
				Metrics:  metrics,
			}
		}
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	return Outcome{
		Success:  true,
		Duration: time.Since(start),
		Status:   "open",
		Metrics:  metrics,
	}
}
