package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loykin/warden/internal/supervisor"
)

// stubController pretends to manage a daemon; pid != 0 means running.
type stubController struct {
	mu  sync.Mutex
	pid int
}

func (s *stubController) StartDaemon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pid = 77
	return true
}

func (s *stubController) StopDaemon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pid = 0
	return true
}

func (s *stubController) KillDaemon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pid = 0
	return true
}

func (s *stubController) DaemonPID() (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return true, s.pid
}

func setupRouter(t *testing.T, base string, ctrl supervisor.Controller) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sup := supervisor.New(ctrl, supervisor.WithStatusCacheTTL(time.Millisecond))
	return NewRouter(sup, base).Handler()
}

func doReq(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeOK(t *testing.T, rec *httptest.ResponseRecorder) bool {
	t.Helper()
	var resp struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return resp.OK
}

func TestStartEndpoint(t *testing.T) {
	h := setupRouter(t, "/api", &stubController{})
	rec := doReq(t, h, http.MethodPost, "/api/start")
	if rec.Code != http.StatusOK || !decodeOK(t, rec) {
		t.Fatalf("expected 200 ok, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestStartConflictWhenRunning(t *testing.T) {
	h := setupRouter(t, "/api", &stubController{pid: 9})
	rec := doReq(t, h, http.MethodPost, "/api/start")
	if rec.Code != http.StatusConflict || decodeOK(t, rec) {
		t.Fatalf("expected 409 with ok=false, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestStopNotRunningConflict(t *testing.T) {
	h := setupRouter(t, "", &stubController{})
	rec := doReq(t, h, http.MethodPost, "/stop")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestForceStopEndpoint(t *testing.T) {
	h := setupRouter(t, "/api", &stubController{pid: 9})
	rec := doReq(t, h, http.MethodPost, "/api/force-stop")
	if rec.Code != http.StatusOK || !decodeOK(t, rec) {
		t.Fatalf("expected 200 ok, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestManagedStopEndpoint(t *testing.T) {
	h := setupRouter(t, "/api", &stubController{pid: 9})
	rec := doReq(t, h, http.MethodPost, "/api/managed-stop")
	if rec.Code != http.StatusOK || !decodeOK(t, rec) {
		t.Fatalf("expected 200 ok, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestStatusEndpoint(t *testing.T) {
	h := setupRouter(t, "/api", &stubController{pid: 9})
	rec := doReq(t, h, http.MethodGet, "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Status    string    `json:"status"`
		CheckedAt time.Time `json:"checked_at"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Status != "running" {
		t.Fatalf("expected running, got %q", resp.Status)
	}
	if resp.CheckedAt.IsZero() {
		t.Fatalf("checked_at not set")
	}
}

func TestHealthzEndpoint(t *testing.T) {
	h := setupRouter(t, "", &stubController{})
	rec := doReq(t, h, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK || !decodeOK(t, rec) {
		t.Fatalf("expected 200 ok, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := setupRouter(t, "", &stubController{})
	rec := doReq(t, h, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSanitizeBase(t *testing.T) {
	cases := map[string]string{
		"":      "",
		"/":     "",
		"api":   "/api",
		"/api":  "/api",
		"/api/": "/api",
		" /x ":  "/x",
	}
	for in, want := range cases {
		if got := sanitizeBase(in); got != want {
			t.Fatalf("sanitizeBase(%q) = %q, want %q", in, got, want)
		}
	}
}
