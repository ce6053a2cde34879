//go:build !windows

package platform

import (
	"os"
	"os/exec"
	"syscall"
)

// StartDaemon spawns the daemon detached in its own session so terminal
// signals aimed at warden never reach it. A reaper goroutine waits on the
// child to avoid leaving a zombie behind.
func (c *Controller) StartDaemon() bool {
	cmd := exec.Command(c.spec.Command, c.spec.Args...)
	if c.spec.WorkDir != "" {
		cmd.Dir = c.spec.WorkDir
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	ow, ew := c.openOutputs()
	if ow != nil {
		cmd.Stdout = ow
	} else {
		cmd.Stdout, _ = os.OpenFile(os.DevNull, os.O_RDWR, 0)
	}
	if ew != nil {
		cmd.Stderr = ew
	} else {
		cmd.Stderr, _ = os.OpenFile(os.DevNull, os.O_RDWR, 0)
	}

	if err := cmd.Start(); err != nil {
		c.logger.Error("daemon spawn failed", "command", c.spec.Command, "error", err)
		c.closeOutputs()
		return false
	}
	pid := cmd.Process.Pid
	c.setLastPID(pid)
	if c.spec.PIDFile != "" {
		if err := WritePIDFile(c.spec.PIDFile, pid); err != nil {
			c.logger.Warn("pidfile write failed", "path", c.spec.PIDFile, "error", err)
		}
	}
	go func() {
		_ = cmd.Wait()
		c.closeOutputs()
	}()
	c.logger.Info("daemon spawned", "pid", pid)
	return true
}

// StopDaemon sends SIGTERM. Fire-and-forget: exit is observed through
// DaemonPID probes.
func (c *Controller) StopDaemon() bool {
	pid, ok := c.resolvePID()
	if !ok {
		return false
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		c.logger.Error("sigterm failed", "pid", pid, "error", err)
		return false
	}
	return true
}

// KillDaemon sends SIGKILL.
func (c *Controller) KillDaemon() bool {
	pid, ok := c.resolvePID()
	if !ok {
		return false
	}
	if err := syscall.Kill(pid, syscall.SIGKILL); err != nil {
		c.logger.Error("sigkill failed", "pid", pid, "error", err)
		return false
	}
	return true
}

// processAlive probes pid with signal 0.
func processAlive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
