// Package health exposes liveness and readiness endpoints over the
// service's external dependencies.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// defaultCheckTimeout bounds a readiness sweep when no timeout is
// configured.
const defaultCheckTimeout = 5 * time.Second

// Checker reports whether one dependency is usable. The document
// source client is the main implementor.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Status is the health response body.
type Status struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler serves the health endpoints over a set of registered
// dependency checkers.
type Handler struct {
	mu       sync.RWMutex
	timeout  time.Duration
	checkers []Checker
}

// NewHandler creates a health handler. A non-positive timeout falls
// back to the default.
func NewHandler(timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	return &Handler{timeout: timeout}
}

// RegisterChecker adds a dependency to the readiness sweep.
func (h *Handler) RegisterChecker(c Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, c)
}

// Health reports that the process is up. Dependencies are not touched;
// use Ready for that.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, Status{Status: "ok"})
}

// Live reports process liveness; it never fails while the process runs.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, Status{Status: "live"})
}

// Ready sweeps every registered checker under the configured timeout
// and reports 503 unless all of them pass.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.mu.RLock()
	checkers := make([]Checker, len(h.checkers))
	copy(checkers, h.checkers)
	h.mu.RUnlock()

	result := Status{
		Status: "ready",
		Checks: make(map[string]string, len(checkers)),
	}
	code := http.StatusOK

	for _, c := range checkers {
		if err := c.Check(ctx); err != nil {
			result.Checks[c.Name()] = err.Error()
			result.Status = "not_ready"
			code = http.StatusServiceUnavailable
			continue
		}
		result.Checks[c.Name()] = "ok"
	}

	writeStatus(w, code, result)
}

func writeStatus(w http.ResponseWriter, code int, s Status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(s)
}
