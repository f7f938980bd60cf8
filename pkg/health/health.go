// Package health provides Kubernetes-style liveness and readiness probes.
//
// All registered checks run on a single background goroutine that scans
// them once per interval. Thresholds modelled on Kubernetes probe config
// prevent flapping: a check flips unhealthy only after failing
// consecutively failureThreshold times, and back to healthy after
// succeeding successThreshold times.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CheckFunc probes one component. It returns nil when the component is
// healthy.
type CheckFunc func(ctx context.Context) error

const (
	defaultFailureThreshold = 3
	defaultSuccessThreshold = 1
)

// check holds configuration and state for a single probe. State is
// guarded by the owning Health's mutex.
type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	healthy  bool
	lastErr  error
	fails    int
	passes   int
	liveness bool
}

// Health manages liveness and readiness checks for a service.
type Health struct {
	mu     sync.Mutex
	checks []*check
	ready  bool
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Health in the not-ready state; call SetReady(true) once
// initialization completes.
func New() *Health {
	return &Health{}
}

func (h *Health) add(name string, timeout time.Duration, fn CheckFunc, liveness bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.checks = append(h.checks, &check{
		name:     name,
		timeout:  timeout,
		fn:       fn,
		healthy:  true, // assume healthy until proven otherwise
		liveness: liveness,
	})
}

// AddLivenessCheck registers a check that decides whether the process is
// alive at all, such as a goroutine-leak probe.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.add(name, timeout, fn, true)
}

// AddReadinessCheck registers a check that decides whether the service
// can take traffic, such as database connectivity.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.add(name, timeout, fn, false)
}

// Start launches the scan goroutine, probing every check once per
// interval. Register all checks before calling Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	h.done = make(chan struct{})
	done := h.done
	h.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		h.scan(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.scan(ctx)
			}
		}
	}()
}

// scan probes every check once and applies the thresholds. Check
// functions run outside the lock so a slow probe never blocks the HTTP
// endpoints.
func (h *Health) scan(ctx context.Context) {
	h.mu.Lock()
	checks := make([]*check, len(h.checks))
	copy(checks, h.checks)
	h.mu.Unlock()

	for _, c := range checks {
		probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.fn(probeCtx)
		cancel()

		h.mu.Lock()
		c.lastErr = err
		if err != nil {
			c.passes = 0
			c.fails++
			if c.fails >= defaultFailureThreshold {
				c.healthy = false
			}
		} else {
			c.fails = 0
			c.passes++
			if c.passes >= defaultSuccessThreshold {
				c.healthy = true
			}
		}
		h.mu.Unlock()
	}
}

// SetReady flips the manual readiness gate. Typically set true after
// startup and false at the beginning of graceful shutdown.
func (h *Health) SetReady(ready bool) {
	h.mu.Lock()
	h.ready = ready
	h.mu.Unlock()
}

// IsReady reports whether the service should take traffic: the manual
// gate is open and every readiness check passes.
func (h *Health) IsReady() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.ready {
		return false
	}
	for _, c := range h.checks {
		if !c.liveness && !c.healthy {
			return false
		}
	}
	return true
}

// Stop cancels the scan goroutine and waits for it to exit. Safe to call
// more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.cancel, h.done = nil, nil
	h.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 while all liveness checks pass, else
// 503 with the failing checks listed.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, h.failures(true))
}

// ReadyEndpoint serves /readyz: 200 while the manual gate is open and
// all readiness checks pass, else 503 with details.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	ready := h.ready
	h.mu.Unlock()

	failures := h.failures(false)
	if !ready {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

// failures collects name -> message for unhealthy checks of one kind.
func (h *Health) failures(liveness bool) map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()

	failures := make(map[string]string)
	for _, c := range h.checks {
		if c.liveness != liveness || c.healthy {
			continue
		}
		if c.lastErr != nil {
			failures[c.name] = c.lastErr.Error()
		} else {
			failures[c.name] = "check is unhealthy"
		}
	}
	return failures
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{Status: "ok"}
	code := http.StatusOK
	if len(failures) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failures
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
