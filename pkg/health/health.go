// Package health serves liveness and readiness probes backed by periodic
// checks.
//
// Each check runs in its own goroutine. A check turns unhealthy after
// FailureThreshold consecutive failures and healthy again after
// SuccessThreshold consecutive successes. Checks marked Advisory are reported
// in the probe body but never fail the probe; the storefront uses them for
// dependencies it can run without, such as the commerce platform itself.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc returns nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

// Kind selects the probe a check contributes to.
type Kind int

const (
	Liveness Kind = iota
	Readiness
)

// Check describes one registered check.
type Check struct {
	Name    string
	Timeout time.Duration
	Fn      CheckFunc
	// Advisory checks are reported but do not fail the probe.
	Advisory bool
	// Thresholds default to 3 failures and 1 success.
	FailureThreshold int
	SuccessThreshold int
}

type state struct {
	Check

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	// Owned by the check goroutine.
	fails, successes int
}

func (s *state) err() error {
	if p := s.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

func (s *state) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	err := s.Fn(ctx)
	s.lastErr.Store(&err)
	if err != nil {
		s.successes = 0
		s.fails++
		if s.fails >= s.FailureThreshold {
			s.healthy.Store(false)
		}
		return
	}
	s.fails = 0
	s.successes++
	if s.successes >= s.SuccessThreshold {
		s.healthy.Store(true)
	}
}

// Health tracks the probes of the process.
type Health struct {
	ready atomic.Bool

	mu     sync.RWMutex
	checks map[Kind][]*state
	cancel context.CancelFunc
}

// New creates a Health that reports not ready until SetReady(true).
func New() *Health {
	return &Health{checks: make(map[Kind][]*state)}
}

// Register adds a check to probe kind. Checks start healthy.
func (h *Health) Register(kind Kind, c Check) {
	if c.Timeout <= 0 {
		c.Timeout = time.Second
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 3
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = 1
	}
	s := &state{Check: c}
	s.healthy.Store(true)

	h.mu.Lock()
	h.checks[kind] = append(h.checks[kind], s)
	h.mu.Unlock()
}

// AddLivenessCheck registers a liveness check with default thresholds.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.Register(Liveness, Check{Name: name, Timeout: timeout, Fn: fn})
}

// AddReadinessCheck registers a readiness check with default thresholds.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.Register(Readiness, Check{Name: name, Timeout: timeout, Fn: fn})
}

func (h *Health) snapshot(kind Kind) []*state {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]*state(nil), h.checks[kind]...)
}

// Start runs every registered check now and then every interval until Stop
// or ctx cancellation.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.cancel = cancel
	h.mu.Unlock()

	for _, s := range append(h.snapshot(Liveness), h.snapshot(Readiness)...) {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				s.run(ctx)
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}()
	}
}

// Stop cancels the check goroutines. It is safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate, typically false on shutdown.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the gate is open and no blocking readiness check
// is failing.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}
	rep := evaluate(h.snapshot(Readiness))
	return len(rep.Checks) == 0
}

// Report is the probe response body.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	// Degraded lists failing advisory checks.
	Degraded map[string]string `json:"degraded,omitempty"`
}

func evaluate(states []*state) Report {
	rep := Report{Status: "ok"}
	for _, s := range states {
		if s.healthy.Load() {
			continue
		}
		msg := "check is unhealthy"
		if err := s.err(); err != nil {
			msg = err.Error()
		}
		if s.Advisory {
			if rep.Degraded == nil {
				rep.Degraded = make(map[string]string)
			}
			rep.Degraded[s.Name] = msg
			continue
		}
		if rep.Checks == nil {
			rep.Checks = make(map[string]string)
		}
		rep.Checks[s.Name] = msg
	}
	switch {
	case len(rep.Checks) > 0:
		rep.Status = "unhealthy"
	case len(rep.Degraded) > 0:
		rep.Status = "degraded"
	}
	return rep
}

// LiveEndpoint serves /livez.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	write(w, evaluate(h.snapshot(Liveness)))
}

// ReadyEndpoint serves /readyz.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	rep := evaluate(h.snapshot(Readiness))
	if !h.ready.Load() {
		if rep.Checks == nil {
			rep.Checks = make(map[string]string)
		}
		rep.Checks["_readiness"] = "service is not ready"
		rep.Status = "unhealthy"
	}
	write(w, rep)
}

func write(w http.ResponseWriter, rep Report) {
	status := http.StatusOK
	if rep.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rep)
}
