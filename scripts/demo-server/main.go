// Demo target server for local load testing. Serves the endpoints the
// starter configuration (surge init) points at, with optional latency
// and error injection to make runs look less synthetic.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var (
	addr      = flag.String("addr", ":8080", "listen address")
	latency   = flag.Duration("latency", 0, "added latency per request")
	jitter    = flag.Duration("jitter", 0, "random extra latency, 0 to latency+jitter")
	errorRate = flag.Float64("error-rate", 0, "fraction of requests answered with 500")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func main() {
	flag.Parse()

	http.HandleFunc("/health", withFaults(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"healthy": true})
	}))

	http.HandleFunc("/api/products", withFaults(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "name": "anvil", "price": 18.50},
			{"id": 2, "name": "rocket skates", "price": 79.99},
			{"id": 3, "name": "giant magnet", "price": 42.00},
		})
	}))

	http.HandleFunc("/api/orders", withFaults(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":     rand.Intn(1_000_000),
			"status": "accepted",
		})
	}))

	http.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
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
			if string(msg) == "ping" {
				msg = []byte("pong")
			}
			if err := conn.WriteMessage(mt, msg); err != nil {
				return
			}
		}
	})

	server := &http.Server{
		Addr:              *addr,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	log.Printf("demo server listening on %s", *addr)
	log.Printf("endpoints: GET /health, GET /api/products, POST /api/orders, WS /feed")
	if *latency > 0 || *errorRate > 0 {
		log.Printf("faults: latency=%v jitter=%v error-rate=%.2f", *latency, *jitter, *errorRate)
	}
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

// withFaults wraps a handler with the configured latency and error
// injection.
func withFaults(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		delay := *latency
		if *jitter > 0 {
			delay += time.Duration(rand.Int63n(int64(*jitter)))
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		if *errorRate > 0 && rand.Float64() < *errorRate {
			http.Error(w, "injected failure", http.StatusInternalServerError)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
