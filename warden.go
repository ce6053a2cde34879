package warden

import (
	"log/slog"
	"net/http"
	"time"

	cfg "github.com/loykin/warden/internal/config"
	"github.com/loykin/warden/internal/history"
	hfactory "github.com/loykin/warden/internal/history/factory"
	"github.com/loykin/warden/internal/metrics"
	"github.com/loykin/warden/internal/platform"
	iapi "github.com/loykin/warden/internal/server"
	"github.com/loykin/warden/internal/supervisor"
	"github.com/prometheus/client_golang/prometheus"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Status = supervisor.Status

const (
	StatusUnknown  = supervisor.StatusUnknown
	StatusStarting = supervisor.StatusStarting
	StatusRunning  = supervisor.StatusRunning
	StatusStopping = supervisor.StatusStopping
	StatusStopped  = supervisor.StatusStopped
)

// Controller is the platform hook a Supervisor drives. Implement it to
// supervise something other than an OS process.
type Controller = supervisor.Controller

type Op = supervisor.Op

const (
	OpStart       = supervisor.OpStart
	OpStop        = supervisor.OpStop
	OpForceStop   = supervisor.OpForceStop
	OpManagedStop = supervisor.OpManagedStop
)

type Observer = supervisor.Observer

type Option = supervisor.Option

// WithStatusCacheTTL overrides the recency window for cached status.
func WithStatusCacheTTL(d time.Duration) Option { return supervisor.WithStatusCacheTTL(d) }

// WithGracePeriod overrides the managed-stop escalation delay.
func WithGracePeriod(d time.Duration) Option { return supervisor.WithGracePeriod(d) }

// WithLogger sets the structured logger used for lifecycle events.
func WithLogger(l *slog.Logger) Option { return supervisor.WithLogger(l) }

// WithObserver installs a hook invoked after each public operation.
func WithObserver(o Observer) Option { return supervisor.WithObserver(o) }

// Supervisor is a thin facade over internal/supervisor.Supervisor.
// It provides a stable public API for embedding.

type Supervisor struct{ inner *supervisor.Supervisor }

func New(ctrl Controller, opts ...Option) *Supervisor {
	return &Supervisor{inner: supervisor.New(ctrl, opts...)}
}

func (s *Supervisor) Start() bool       { return s.inner.Start() }
func (s *Supervisor) Stop() bool        { return s.inner.Stop() }
func (s *Supervisor) ForceStop() bool   { return s.inner.ForceStop() }
func (s *Supervisor) ManagedStop() bool { return s.inner.ManagedStop() }
func (s *Supervisor) Query() Status     { return s.inner.Query() }

// GracePeriod reports the configured managed-stop escalation delay.
func (s *Supervisor) GracePeriod() time.Duration { return s.inner.GracePeriod() }

// DaemonSpec describes the daemon binary under supervision.
type DaemonSpec = platform.DaemonSpec

// NewController builds the OS process controller for the given daemon spec.
func NewController(spec DaemonSpec, log *slog.Logger) *platform.Controller {
	return platform.New(spec, log)
}

type Config = cfg.Config

type HistoryConfig = cfg.HistoryConfig

func LoadConfig(path string) (*Config, error) {
	return cfg.Load(path)
}

type HistorySink = history.Sink

type HistoryEvent = history.Event

// NewHistorySink builds a lifecycle event sink from a DSN
// (sqlite://, postgres://, clickhouse://).
func NewHistorySink(dsn string) (HistorySink, error) {
	return hfactory.NewSinkFromDSN(dsn)
}

// NewHistoryObserver adapts a sink into a supervisor observer.
func NewHistoryObserver(sink HistorySink, log *slog.Logger) Observer {
	return history.NewObserver(sink, log)
}

// NewHTTPServer starts an HTTP server exposing the control API for the given
// supervisor.
func NewHTTPServer(addr, basePath string, s *Supervisor) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, s.inner)
}

// NewHTTPHandler returns the control API as an http.Handler for mounting in
// an existing server or mux.
func NewHTTPHandler(basePath string, s *Supervisor) http.Handler {
	return iapi.NewRouter(s.inner, basePath).Handler()
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts an HTTP server on addr exposing /metrics using the
// default registry. It returns any immediate listen error; otherwise it runs
// the server in the caller goroutine.
func ServeMetrics(addr string) error {
	http.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           nil,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
