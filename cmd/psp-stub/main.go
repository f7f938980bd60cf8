// Command psp-stub is a fake payment provider for local development and
// integration tests. It issues QR transfers that complete after a few
// status polls and card payments that redirect to a placeholder page.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// pollsUntilCompleted is how many status reads a transfer stays pending.
const pollsUntilCompleted = 2

type paymentState struct {
	polls int
}

type stub struct {
	mu       sync.Mutex
	payments map[string]*paymentState
}

func main() {
	addr := flag.String("addr", "0.0.0.0:9090", "listen address")
	flag.Parse()

	s := &stub{payments: make(map[string]*paymentState)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/transfers", s.createTransfer)
	mux.HandleFunc("POST /v1/card-payments", s.createCardPayment)
	mux.HandleFunc("GET /v1/payments/{id}", s.paymentStatus)

	slog.Info("psp-stub listening", slog.String("addr", *addr))
	if err := http.ListenAndServe(*addr, mux); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (s *stub) createTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"orderId"`
		Amount  int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	id := "pay_" + uuid.New().String()
	s.mu.Lock()
	s.payments[id] = &paymentState{}
	s.mu.Unlock()

	slog.Info("transfer created",
		slog.String("payment_id", id),
		slog.String("order_id", req.OrderID),
		slog.Int64("amount", req.Amount),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"paymentId": id,
		"qrImage":   "data:image/png;base64,c3R1Yi1xcg==",
		"expiresAt": time.Now().Add(15 * time.Minute).UTC().Format(time.RFC3339),
	})
}

func (s *stub) createCardPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"paymentUrl": "https://psp-stub.invalid/pay/" + req.OrderID,
	})
}

func (s *stub) paymentStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	p, ok := s.payments[id]
	if ok {
		p.polls++
	}
	s.mu.Unlock()

	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	status := "pending"
	if p.polls > pollsUntilCompleted {
		status = "completed"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"status": status,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
