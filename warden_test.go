package warden

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type fakeController struct {
	mu  sync.Mutex
	pid int
}

func (f *fakeController) StartDaemon() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pid = 1234
	return true
}

func (f *fakeController) StopDaemon() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pid = 0
	return true
}

func (f *fakeController) KillDaemon() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pid = 0
	return true
}

func (f *fakeController) DaemonPID() (bool, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return true, f.pid
}

func TestFacadeLifecycle(t *testing.T) {
	var events []Op
	var mu sync.Mutex
	sup := New(&fakeController{},
		WithStatusCacheTTL(time.Millisecond),
		WithGracePeriod(50*time.Millisecond),
		WithObserver(func(op Op, ok bool, status Status, pid int) {
			mu.Lock()
			events = append(events, op)
			mu.Unlock()
		}),
	)

	if !sup.Start() {
		t.Fatalf("start failed")
	}
	time.Sleep(5 * time.Millisecond)
	if st := sup.Query(); st != StatusRunning {
		t.Fatalf("expected running, got %v", st)
	}
	if !sup.ManagedStop() {
		t.Fatalf("managed stop failed")
	}
	deadline := time.Now().Add(2 * time.Second)
	for sup.Query() != StatusStopped {
		if time.Now().After(deadline) {
			t.Fatalf("daemon did not stop")
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) == 0 || events[0] != OpStart {
		t.Fatalf("observer events not delivered: %v", events)
	}
}

func TestFacadeHTTPHandler(t *testing.T) {
	sup := New(&fakeController{}, WithStatusCacheTTL(time.Millisecond))
	h := NewHTTPHandler("/api", sup)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint returned %d", rec.Code)
	}
}

func TestRegisterMetricsIdempotent(t *testing.T) {
	if err := RegisterMetricsDefault(); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := RegisterMetricsDefault(); err != nil {
		t.Fatalf("second register should be tolerated: %v", err)
	}
}
