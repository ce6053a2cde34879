// Package platform provides the OS-specific supervisor.Controller
// implementations. The build-tagged files carry the spawn/signal/kill
// primitives; everything else is shared.
package platform

import (
	"io"
	"log/slog"
	"sync"

	"github.com/loykin/warden/internal/logger"
)

// DaemonSpec describes the daemon the controller manages.
type DaemonSpec struct {
	Name    string        // used for log file naming; defaults to "daemon"
	Command string        // path to the daemon binary
	Args    []string      // arguments passed to the binary
	WorkDir string        // working directory, empty for inherit
	PIDFile string        // pidfile path; required for pid resolution across restarts
	Log     logger.Config // daemon stdout/stderr destinations
}

func (s *DaemonSpec) name() string {
	if s.Name == "" {
		return "daemon"
	}
	return s.Name
}

// Controller implements supervisor.Controller for the local OS. It remembers
// the last spawned process so pid resolution works even without a pidfile,
// but the pidfile is authoritative: it survives supervisor restarts.
type Controller struct {
	spec   DaemonSpec
	logger *slog.Logger

	mu         sync.Mutex
	lastPID    int
	outCloser  io.WriteCloser
	errCloser  io.WriteCloser
}

// New returns a controller for the current OS.
func New(spec DaemonSpec, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{spec: spec, logger: log}
}

// DaemonPID resolves the daemon pid. The pidfile is consulted first; a pid
// whose process is gone counts as not running and the stale pidfile is
// removed. Falls back to the last spawned pid when no pidfile is configured.
func (c *Controller) DaemonPID() (bool, int) {
	if c.spec.PIDFile != "" {
		pid, err := ReadPIDFile(c.spec.PIDFile)
		if err != nil {
			if isNotExist(err) {
				return true, 0
			}
			c.logger.Warn("pidfile read failed", "path", c.spec.PIDFile, "error", err)
			return false, 0
		}
		if pid > 0 && processAlive(pid) {
			return true, pid
		}
		RemovePIDFile(c.spec.PIDFile)
		return true, 0
	}

	c.mu.Lock()
	pid := c.lastPID
	c.mu.Unlock()
	if pid > 0 && processAlive(pid) {
		return true, pid
	}
	return true, 0
}

// resolvePID is the shared preamble of the stop/kill primitives.
func (c *Controller) resolvePID() (int, bool) {
	ok, pid := c.DaemonPID()
	if !ok || pid == 0 {
		return 0, false
	}
	return pid, true
}

func (c *Controller) setLastPID(pid int) {
	c.mu.Lock()
	c.lastPID = pid
	c.mu.Unlock()
}

// openOutputs prepares the daemon's stdout/stderr writers, creating
// lumberjack-backed files when configured.
func (c *Controller) openOutputs() (io.Writer, io.Writer) {
	outW, errW, err := c.spec.Log.ProcessWriters(c.spec.name())
	if err != nil {
		c.logger.Warn("daemon log writer setup failed", "error", err)
		return nil, nil
	}
	c.mu.Lock()
	c.outCloser, c.errCloser = outW, errW
	c.mu.Unlock()
	var ow, ew io.Writer
	if outW != nil {
		ow = outW
	}
	if errW != nil {
		ew = errW
	}
	return ow, ew
}

// closeOutputs closes the daemon log writers, best-effort.
func (c *Controller) closeOutputs() {
	c.mu.Lock()
	out, errw := c.outCloser, c.errCloser
	c.outCloser, c.errCloser = nil, nil
	c.mu.Unlock()
	if out != nil {
		_ = out.Close()
	}
	if errw != nil {
		_ = errw.Close()
	}
}
