package health

import (
	"context"
	"sync"
	"time"
)

// CheckFunc probes one component. It returns nil when the component is
// healthy or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of a single component check.
type CheckResult struct {
	// Status is "ok" or "unhealthy".
	Status string `json:"status"`

	// Message carries the error text for unhealthy components.
	Message string `json:"message,omitempty"`
}

// Report is the aggregated health view served to operators. It only
// carries component readiness booleans and status strings, never
// analyzed content.
type Report struct {
	// Status is "ok" when every check passed, "degraded" otherwise.
	Status string `json:"status"`

	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Healthy reports whether every component check passed.
func (r *Report) Healthy() bool {
	return r.Status == "ok"
}

// Checker runs registered component checks with a per-check timeout.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	timeout time.Duration
}

// New creates a Checker. A zero timeout defaults to 5 seconds per
// check.
func New(timeout time.Duration) *Checker {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		checks:  make(map[string]CheckFunc),
		timeout: timeout,
	}
}

// Register adds or replaces the check for a named component.
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Check runs every registered check and aggregates the results.
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	report := Report{
		Status:    "ok",
		Checks:    make(map[string]CheckResult, len(checks)),
		Timestamp: time.Now().UTC(),
	}

	for name, fn := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := fn(checkCtx)
		cancel()

		if err != nil {
			report.Status = "degraded"
			report.Checks[name] = CheckResult{Status: "unhealthy", Message: err.Error()}
		} else {
			report.Checks[name] = CheckResult{Status: "ok"}
		}
	}

	return report
}
