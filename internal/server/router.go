package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loykin/warden/internal/metrics"
	"github.com/loykin/warden/internal/supervisor"
)

// Router provides embeddable HTTP handlers for controlling the supervised
// daemon.
// Endpoints:
//
//	POST {basePath}/start
//	POST {basePath}/stop
//	POST {basePath}/force-stop
//	POST {basePath}/managed-stop
//	GET  {basePath}/status
//	GET  {basePath}/healthz
//	GET  {basePath}/metrics
//
// The POST endpoints answer {"ok":true} with 200, or {"ok":false} with 409
// when the supervisor rejected the operation (wrong state or a session
// already in flight). basePath may be empty or start with '/'; no trailing
// slash.
type Router struct {
	sup      *supervisor.Supervisor
	basePath string
}

// NewRouter constructs a new Router with configurable basePath.
// Example basePath: "/api" results in /api/start, /api/status, etc.
func NewRouter(sup *supervisor.Supervisor, basePath string) *Router {
	return &Router{sup: sup, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in any
// server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.POST("/start", r.handleOp(supervisor.OpStart))
	group.POST("/stop", r.handleOp(supervisor.OpStop))
	group.POST("/force-stop", r.handleOp(supervisor.OpForceStop))
	group.POST("/managed-stop", r.handleOp(supervisor.OpManagedStop))
	group.GET("/status", r.handleStatus)
	group.GET("/healthz", r.handleHealthz)
	group.GET("/metrics", gin.WrapH(metrics.Handler()))
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
func NewServer(addr, basePath string, sup *supervisor.Supervisor) (*http.Server, error) {
	r := NewRouter(sup, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server, nil
}

// --- Handlers ---

type okResp struct {
	OK bool `json:"ok"`
}

type statusResp struct {
	Status    supervisor.Status `json:"status"`
	CheckedAt time.Time         `json:"checked_at"`
}

func (r *Router) handleOp(op supervisor.Op) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ok bool
		switch op {
		case supervisor.OpStart:
			ok = r.sup.Start()
		case supervisor.OpStop:
			ok = r.sup.Stop()
		case supervisor.OpForceStop:
			ok = r.sup.ForceStop()
		case supervisor.OpManagedStop:
			ok = r.sup.ManagedStop()
		}
		code := http.StatusOK
		if !ok {
			// The request was understood but the supervisor's state rejected it.
			code = http.StatusConflict
		}
		writeJSON(c, code, okResp{OK: ok})
	}
}

func (r *Router) handleStatus(c *gin.Context) {
	st := r.sup.Query()
	writeJSON(c, http.StatusOK, statusResp{Status: st, CheckedAt: time.Now()})
}

func (r *Router) handleHealthz(c *gin.Context) {
	// Reports warden's own liveness, not the daemon's.
	writeJSON(c, http.StatusOK, okResp{OK: true})
}
