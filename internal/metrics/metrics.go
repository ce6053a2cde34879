package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// daemonStatuses mirrors supervisor.AllStatuses by name; kept as plain
// strings because the supervisor imports this package, so deriving the list
// from it would cycle.
var daemonStatuses = []string{"unknown", "starting", "running", "stopping", "stopped"}

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	daemonStarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "warden",
			Subsystem: "daemon",
			Name:      "starts_total",
			Help:      "Number of successful daemon starts.",
		},
	)
	daemonStops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "warden",
			Subsystem: "daemon",
			Name:      "stops_total",
			Help:      "Number of graceful stop requests issued.",
		},
	)
	daemonForceKills = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "warden",
			Subsystem: "daemon",
			Name:      "force_kills_total",
			Help:      "Number of force kills issued.",
		},
	)
	managedStops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "warden",
			Subsystem: "daemon",
			Name:      "managed_stops_total",
			Help:      "Number of managed stop sessions begun.",
		},
	)
	managedStopEscalations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "warden",
			Subsystem: "daemon",
			Name:      "managed_stop_escalations_total",
			Help:      "Managed stop sessions that escalated to a force kill.",
		},
	)
	statusQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "warden",
			Subsystem: "daemon",
			Name:      "status_queries_total",
			Help:      "Status queries, partitioned by cache outcome.",
		}, []string{"source"},
	)
	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "warden",
			Subsystem: "daemon",
			Name:      "status_transitions_total",
			Help:      "Number of transitions between cached daemon statuses.",
		}, []string{"from", "to"},
	)
	currentStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "warden",
			Subsystem: "daemon",
			Name:      "current_status",
			Help:      "Current cached daemon status (1 = active status, 0 = inactive).",
		}, []string{"status"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{daemonStarts, daemonStops, daemonForceKills, managedStops, managedStopEscalations, statusQueries, statusTransitions, currentStatus}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler that serves Prometheus metrics for the DefaultGatherer.
// The caller is responsible for starting an HTTP server and wiring the route.
func Handler() http.Handler { return promhttp.Handler() }

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func IncStart() {
	if regOK.Load() {
		daemonStarts.Inc()
	}
}

func IncStop() {
	if regOK.Load() {
		daemonStops.Inc()
	}
}

func IncForceKill() {
	if regOK.Load() {
		daemonForceKills.Inc()
	}
}

func IncManagedStop() {
	if regOK.Load() {
		managedStops.Inc()
	}
}

func IncManagedStopEscalation() {
	if regOK.Load() {
		managedStopEscalations.Inc()
	}
}

// IncQuery records a status query; cacheHit selects the "cache" or "probe" label.
func IncQuery(cacheHit bool) {
	if !regOK.Load() {
		return
	}
	source := "probe"
	if cacheHit {
		source = "cache"
	}
	statusQueries.WithLabelValues(source).Inc()
}

func RecordTransition(from, to string) {
	if regOK.Load() {
		statusTransitions.WithLabelValues(from, to).Inc()
	}
}

// SetCurrentStatus flips the status gauge so exactly one status reports 1.
func SetCurrentStatus(status string) {
	if !regOK.Load() {
		return
	}
	for _, st := range daemonStatuses {
		v := float64(0)
		if st == status {
			v = 1
		}
		currentStatus.WithLabelValues(st).Set(v)
	}
}
