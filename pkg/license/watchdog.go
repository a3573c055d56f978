package license

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// MinInterval is the floor for the watchdog re-check interval.
// Anything lower would hot-loop against the usage backend for no
// enforcement benefit.
const MinInterval = 60 * time.Second

// defaultStopWait bounds how long Stop waits for an in-flight check.
const defaultStopWait = 5 * time.Second

// WatchdogConfig configures the background license watchdog.
type WatchdogConfig struct {
	// Interval between background checks. Values below MinInterval are
	// raised to it.
	Interval time.Duration `yaml:"interval"`

	// Mode is the enforcement mode, "degrade" or "stop".
	Mode EnforcementMode `yaml:"mode"`
}

// Watchdog re-validates the license on a fixed interval and exposes
// the latest status to request handlers. The status is swapped
// atomically as a whole value; the halt flag is what request gating in
// stop mode reads. Request handlers also call Gate synchronously, so a
// request is never served against stale invalid state just because the
// watchdog has not fired yet.
type Watchdog struct {
	validator *Validator
	config    WatchdogConfig
	logger    *slog.Logger

	status atomic.Pointer[Status]
	halted atomic.Bool

	// mode is read on every request by Gate and written by config hot
	// reload, so it is swapped as a whole value like status.
	mode atomic.Pointer[EnforcementMode]

	cron    *cron.Cron
	mu      sync.Mutex
	running bool

	// checkMu serializes checks so a synchronous Gate and a watchdog
	// tick cannot interleave mid-validation.
	checkMu sync.Mutex
}

// NewWatchdog creates a Watchdog. The interval floor is applied here.
func NewWatchdog(validator *Validator, config WatchdogConfig, logger *slog.Logger) (*Watchdog, error) {
	if validator == nil {
		return nil, fmt.Errorf("validator is required")
	}
	if !config.Mode.Valid() {
		return nil, fmt.Errorf("invalid enforcement mode %q", config.Mode)
	}
	if config.Interval < MinInterval {
		config.Interval = MinInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watchdog{
		validator: validator,
		config:    config,
		logger:    logger.With("component", "license_watchdog"),
		cron:      cron.New(),
	}
	w.status.Store(&Status{State: StateUnchecked})
	w.mode.Store(&config.Mode)
	return w, nil
}

// Start runs an initial synchronous check and then begins the periodic
// background checks. In stop mode an invalid license at startup aborts
// startup.
func (w *Watchdog) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	status := w.check(ctx)
	if !status.Valid() && w.Mode() == ModeStop {
		return fmt.Errorf("license invalid at startup: %s", status.Reason)
	}

	spec := fmt.Sprintf("@every %s", w.config.Interval)
	if _, err := w.cron.AddFunc(spec, func() {
		w.check(context.Background())
	}); err != nil {
		return fmt.Errorf("failed to schedule license check: %w", err)
	}

	w.cron.Start()
	w.running = true

	w.logger.Info("license watchdog started",
		"interval", w.config.Interval.String(),
		"mode", string(w.Mode()),
		"state", string(status.State),
	)

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}

// check runs one validation, swaps the status and updates the halt
// flag. Each check is authoritative; a valid check clears a halt set
// by an earlier invalid one.
func (w *Watchdog) check(ctx context.Context) *Status {
	w.checkMu.Lock()
	defer w.checkMu.Unlock()

	status := w.validator.Check(ctx)
	w.status.Store(&status)

	if status.Valid() {
		if w.halted.Swap(false) {
			w.logger.Info("license valid again, resuming request handling")
		}
		return &status
	}

	switch w.Mode() {
	case ModeStop:
		if !w.halted.Swap(true) {
			w.logger.Error("license invalid, halting request handling",
				"reason", status.Reason)
		}
	default:
		w.logger.Warn("license invalid, continuing in degraded mode",
			"reason", status.Reason)
	}
	return &status
}

// Status returns the latest check result. Never nil.
func (w *Watchdog) Status() *Status {
	return w.status.Load()
}

// Halted reports whether stop-mode enforcement is currently rejecting
// requests.
func (w *Watchdog) Halted() bool {
	return w.halted.Load()
}

// EnsureFresh returns the current status, re-validating first when the
// last check is older than the watchdog interval. Validation is
// idempotent, so double-checking against the background task has no
// side effects beyond freshness.
func (w *Watchdog) EnsureFresh(ctx context.Context) *Status {
	status := w.status.Load()
	if status.State != StateUnchecked && time.Since(status.CheckedAt) < w.config.Interval {
		return status
	}
	return w.check(ctx)
}

// Gate is the per-request license check. It refreshes the status if
// stale and, in stop mode, rejects with a LicenseError when the
// license is invalid. In degrade mode invalid licenses pass through
// (the check itself already logged the warning).
func (w *Watchdog) Gate(ctx context.Context) error {
	status := w.EnsureFresh(ctx)
	if status.Valid() {
		return nil
	}
	if w.Mode() == ModeStop {
		return NewLicenseError(status.Reason)
	}
	return nil
}

// Mode returns the current enforcement mode.
func (w *Watchdog) Mode() EnforcementMode {
	return *w.mode.Load()
}

// SetMode changes the enforcement mode at runtime (config hot reload).
// Switching to degrade clears any active halt.
func (w *Watchdog) SetMode(mode EnforcementMode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid enforcement mode %q", mode)
	}
	w.mode.Store(&mode)
	if mode == ModeDegrade {
		w.halted.Store(false)
	}
	return nil
}

// Stop cancels the background checks and waits, bounded, for any
// in-flight check to finish.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false

	stopCtx := w.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(defaultStopWait):
		w.logger.Warn("timed out waiting for license check to finish")
	}
	w.logger.Info("license watchdog stopped")
}
