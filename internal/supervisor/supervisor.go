package supervisor

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/loykin/warden/internal/metrics"
)

const (
	// DefaultStatusCacheTTL bounds how long a cached status is served without
	// re-probing the OS. Status queries come from UI polling and the HTTP API,
	// so probes are amortized over this window.
	DefaultStatusCacheTTL = time.Second
	// DefaultGracePeriod is how long a managed stop waits after the graceful
	// request before escalating to a kill.
	DefaultGracePeriod = 5 * time.Second
)

// Op identifies a public supervisor operation in observer callbacks and
// history events.
type Op string

const (
	OpStart       Op = "start"
	OpStop        Op = "stop"
	OpForceStop   Op = "force_stop"
	OpManagedStop Op = "managed_stop"
)

// Observer receives a notification after each public operation with its
// outcome and the status cached at that point. The supervisor calls them
// synchronously on the operation path, so implementations must be fast and
// bound any I/O with a timeout.
type Observer func(op Op, ok bool, status Status, pid int)

// Supervisor controls the lifecycle of a single daemon process through a
// platform Controller. All public methods are safe for concurrent use.
//
// Two pieces of shared state exist: the cached (status, timestamp) pair
// guarded by mu, and the managed-stop single-flight flag. They are guarded
// separately on purpose: status updates are far more frequent than managed
// stop sessions and sharing a lock would serialize unrelated callers.
type Supervisor struct {
	ctrl   Controller
	logger *slog.Logger

	mu           sync.Mutex
	lastStatus   Status
	lastStatusAt time.Time
	lastPID      int

	stopInFlight atomic.Bool

	cacheTTL    time.Duration
	gracePeriod time.Duration

	observer Observer
}

// Option configures a Supervisor at construction time.
type Option func(*Supervisor)

// WithStatusCacheTTL overrides the recency window for cached status.
func WithStatusCacheTTL(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.cacheTTL = d
		}
	}
}

// WithGracePeriod overrides the managed-stop escalation delay.
func WithGracePeriod(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.gracePeriod = d
		}
	}
}

// WithLogger sets the structured logger used for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Supervisor) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver installs a hook invoked after each public operation.
func WithObserver(o Observer) Option {
	return func(s *Supervisor) { s.observer = o }
}

// New constructs a supervisor bound to one platform controller. The caller
// owns instance wiring; there is no process-wide singleton so tests can hold
// independent supervisors.
func New(ctrl Controller, opts ...Option) *Supervisor {
	s := &Supervisor{
		ctrl:        ctrl,
		logger:      slog.Default(),
		cacheTTL:    DefaultStatusCacheTTL,
		gracePeriod: DefaultGracePeriod,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GracePeriod reports the configured managed-stop escalation delay.
func (s *Supervisor) GracePeriod() time.Duration { return s.gracePeriod }

// setLastKnown updates the cached status and its timestamp together. This is
// the only writer of the pair; readers take the same lock, so a torn
// (status, timestamp) read is impossible. pid < 0 keeps the previously
// cached pid.
func (s *Supervisor) setLastKnown(st Status, pid int) {
	s.mu.Lock()
	prev := s.lastStatus
	s.lastStatus = st
	s.lastStatusAt = time.Now()
	if pid >= 0 {
		s.lastPID = pid
	}
	s.mu.Unlock()
	if prev != st {
		metrics.RecordTransition(prev.String(), st.String())
		metrics.SetCurrentStatus(st.String())
	}
}

// lastKnown returns the cached status and whether it is still fresh.
func (s *Supervisor) lastKnown() (Status, bool) {
	s.mu.Lock()
	st, at := s.lastStatus, s.lastStatusAt
	s.mu.Unlock()
	if at.IsZero() {
		return st, false
	}
	return st, time.Since(at) < s.cacheTTL
}

// Query returns the daemon's status, serving the cached value while it is
// inside the recency window and probing the OS otherwise. A failed probe
// yields StatusUnknown without refreshing the cache timestamp, so a broken
// probe is never cached as authoritative.
func (s *Supervisor) Query() Status {
	if st, fresh := s.lastKnown(); fresh {
		metrics.IncQuery(true)
		return st
	}
	metrics.IncQuery(false)
	return s.probe()
}

// probe asks the adapter for a realtime status, refreshing the cache on
// success. A failed probe leaves the cache untouched.
func (s *Supervisor) probe() Status {
	ok, pid := s.ctrl.DaemonPID()
	if !ok {
		s.logger.Warn("daemon pid probe failed")
		return StatusUnknown
	}
	if pid > 0 {
		s.setLastKnown(StatusRunning, pid)
		return StatusRunning
	}
	s.setLastKnown(StatusStopped, 0)
	return StatusStopped
}

// Start spawns the daemon. It fails without side effects when the daemon is
// already running or starting.
func (s *Supervisor) Start() bool {
	switch s.Query() {
	case StatusRunning, StatusStarting:
		s.logger.Debug("start rejected: daemon already active")
		s.notify(OpStart, false)
		return false
	}
	s.setLastKnown(StatusStarting, -1)
	if !s.ctrl.StartDaemon() {
		// No process was created, so Stopped is the honest cached value.
		s.logger.Error("daemon spawn failed")
		s.setLastKnown(StatusStopped, 0)
		s.notify(OpStart, false)
		return false
	}
	s.logger.Info("daemon starting")
	metrics.IncStart()
	s.notify(OpStart, true)
	return true
}

// Stop requests a graceful shutdown. It does not wait for the daemon to
// exit; callers observe completion through subsequent Query calls.
func (s *Supervisor) Stop() bool {
	if s.Query() != StatusRunning {
		s.logger.Debug("stop rejected: daemon not running")
		s.notify(OpStop, false)
		return false
	}
	s.setLastKnown(StatusStopping, -1)
	if !s.ctrl.StopDaemon() {
		s.logger.Error("graceful stop request failed")
		s.setLastKnown(StatusUnknown, -1)
		s.notify(OpStop, false)
		return false
	}
	s.logger.Info("daemon stopping")
	metrics.IncStop()
	s.notify(OpStop, true)
	return true
}

// ForceStop terminates the daemon unconditionally, bypassing the graceful
// path. Escape hatch and the escalation step of ManagedStop.
func (s *Supervisor) ForceStop() bool {
	if s.Query() != StatusRunning {
		s.logger.Debug("force stop rejected: daemon not running")
		s.notify(OpForceStop, false)
		return false
	}
	if !s.ctrl.KillDaemon() {
		s.logger.Error("force kill failed")
		s.setLastKnown(StatusUnknown, -1)
		s.notify(OpForceStop, false)
		return false
	}
	s.logger.Info("daemon killed")
	s.setLastKnown(StatusStopped, 0)
	metrics.IncForceKill()
	s.notify(OpForceStop, true)
	return true
}

// ManagedStop begins a graceful-then-forceful shutdown session. At most one
// session exists at a time; a second call while one is in flight returns
// false immediately. True means the session was initiated, not that the
// daemon has stopped.
//
// Start/Stop/ForceStop/Query are intentionally not blocked while a session
// runs; they act on the same process and may race with it.
func (s *Supervisor) ManagedStop() bool {
	if !s.stopInFlight.CompareAndSwap(false, true) {
		s.logger.Debug("managed stop rejected: session already in flight")
		s.notify(OpManagedStop, false)
		return false
	}
	if s.Query() != StatusRunning {
		s.stopInFlight.Store(false)
		s.logger.Debug("managed stop rejected: daemon not running")
		s.notify(OpManagedStop, false)
		return false
	}
	metrics.IncManagedStop()
	s.notify(OpManagedStop, true)
	go s.runManagedStop()
	return true
}

// runManagedStop is the session worker: graceful request, bounded wait,
// conditional kill. The flag release is deferred so every exit path,
// including adapter failures, frees the session slot.
func (s *Supervisor) runManagedStop() {
	defer s.stopInFlight.Store(false)

	if !s.Stop() {
		s.logger.Warn("managed stop: graceful request failed, will escalate after grace period")
	}
	time.Sleep(s.gracePeriod)
	// The re-check bypasses the cache: Stop cached Stopping, and a recency
	// window at or above the grace period would serve that stale value and
	// mask a daemon that ignored the graceful request.
	if s.probe() == StatusRunning {
		s.logger.Warn("managed stop: daemon still running after grace period, escalating",
			"grace_period", s.gracePeriod)
		metrics.IncManagedStopEscalation()
		if !s.ForceStop() {
			s.logger.Error("managed stop: force kill failed")
		}
		return
	}
	s.logger.Info("managed stop: daemon exited within grace period")
}

// notify reports the operation outcome to the observer along with the
// cached status and pid. It never probes the adapter.
func (s *Supervisor) notify(op Op, ok bool) {
	if s.observer == nil {
		return
	}
	s.mu.Lock()
	st, pid := s.lastStatus, s.lastPID
	s.mu.Unlock()
	s.observer(op, ok, st, pid)
}
