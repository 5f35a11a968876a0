package workload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func echoServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, msg); err != nil {
				return
			}
		}
	}))
	return server, "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestSocket_Execute_Echo(t *testing.T) {
	server, wsURL := echoServer(t)
	defer server.Close()

	s := &Socket{
		WorkloadName: "echo",
		URL:          wsURL,
		Message:      "ping",
		Expect:       "ping",
	}
	out := s.Execute(context.Background(), &Env{})

	if !out.Success {
		t.Fatalf("Expected success, got failure: %v", out.Err)
	}
	if out.Status != "open" {
		t.Errorf("Expected status open, got %s", out.Status)
	}
	if out.Metrics["bytes_sent"] != 4 {
		t.Errorf("Expected 4 bytes sent, got %v", out.Metrics["bytes_sent"])
	}
	if out.Metrics["bytes_received"] != 4 {
		t.Errorf("Expected 4 bytes received, got %v", out.Metrics["bytes_received"])
	}
}

func TestSocket_Execute_Mismatch(t *testing.T) {
	server, wsURL := echoServer(t)
	defer server.Close()

	s := &Socket{
		WorkloadName: "echo",
		URL:          wsURL,
		Message:      "ping",
		Expect:       "pong",
	}
	out := s.Execute(context.Background(), &Env{})

	if out.Success {
		t.Fatal("Expected mismatch failure")
	}
	if out.Status != "mismatch" {
		t.Errorf("Expected status mismatch, got %s", out.Status)
	}
}

func TestSocket_Execute_ConnectOnly(t *testing.T) {
	server, wsURL := echoServer(t)
	defer server.Close()

	s := &Socket{WorkloadName: "connect", URL: wsURL}
	out := s.Execute(context.Background(), &Env{})

	if !out.Success {
		t.Fatalf("Expected success, got failure: %v", out.Err)
	}
}

func TestSocket_Execute_DialFailure(t *testing.T) {
	// A plain HTTP server rejects the upgrade with a non-101 status.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	s := &Socket{WorkloadName: "rejected", URL: wsURL}
	out := s.Execute(context.Background(), &Env{})

	if out.Success {
		t.Fatal("Expected dial failure")
	}
	if out.Status != "403" {
		t.Errorf("Expected status 403, got %s", out.Status)
	}
}
