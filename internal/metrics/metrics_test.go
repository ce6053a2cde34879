package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegisterIdempotentAndCountersWork(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	// idempotent: calling again should be no-op
	if err := Register(reg); err != nil {
		t.Fatalf("second register: %v", err)
	}

	// Exercise helpers; they should work only after Register
	IncStart()
	IncStart()
	IncStop()
	IncForceKill()
	IncManagedStop()
	IncManagedStopEscalation()
	IncQuery(true)
	IncQuery(false)
	RecordTransition("starting", "running")
	SetCurrentStatus("running")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	// Very basic assertions that our metric names exist and have samples
	wantNames := map[string]bool{
		"warden_daemon_starts_total":                   false,
		"warden_daemon_stops_total":                    false,
		"warden_daemon_force_kills_total":              false,
		"warden_daemon_managed_stops_total":            false,
		"warden_daemon_managed_stop_escalations_total": false,
		"warden_daemon_status_queries_total":           false,
		"warden_daemon_status_transitions_total":       false,
		"warden_daemon_current_status":                 false,
	}
	for _, mf := range mfs {
		if _, ok := wantNames[mf.GetName()]; ok {
			wantNames[mf.GetName()] = true
		}
	}
	for name, seen := range wantNames {
		if !seen {
			t.Fatalf("metric %s not gathered", name)
		}
	}

	// The status gauge must report exactly one active status.
	SetCurrentStatus("stopping")
	mfs, err = reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "warden_daemon_current_status" {
			continue
		}
		var active int
		for _, m := range mf.GetMetric() {
			if m.GetGauge().GetValue() == 1 {
				active++
				if got := m.GetLabel()[0].GetValue(); got != "stopping" {
					t.Fatalf("active status label = %q, want stopping", got)
				}
			}
		}
		if active != 1 {
			t.Fatalf("expected exactly one active status, got %d", active)
		}
		return
	}
	t.Fatalf("current_status gauge not found")
}

func TestHandlerServesMetrics(t *testing.T) {
	_ = Register(prometheus.DefaultRegisterer)
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "go_goroutines") {
		t.Fatalf("expected default runtime metrics in output")
	}
}
