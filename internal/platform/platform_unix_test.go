//go:build !windows

package platform

import (
	"path/filepath"
	"testing"
	"time"
)

func sleepSpec(t *testing.T) DaemonSpec {
	t.Helper()
	return DaemonSpec{
		Name:    "sleeper",
		Command: "/bin/sh",
		Args:    []string{"-c", "sleep 30"},
		PIDFile: filepath.Join(t.TempDir(), "sleeper.pid"),
	}
}

func waitForPID(t *testing.T, c *Controller, want bool) int {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		ok, pid := c.DaemonPID()
		if !ok {
			t.Fatalf("pid probe failed")
		}
		if (pid > 0) == want {
			return pid
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("daemon did not reach running=%v in time", want)
	return 0
}

func TestStartAndKillRealProcess(t *testing.T) {
	c := New(sleepSpec(t), nil)

	if !c.StartDaemon() {
		t.Fatalf("StartDaemon failed")
	}
	pid := waitForPID(t, c, true)
	if pid <= 0 {
		t.Fatalf("expected positive pid")
	}

	if !c.KillDaemon() {
		t.Fatalf("KillDaemon failed")
	}
	waitForPID(t, c, false)
}

func TestGracefulStopRealProcess(t *testing.T) {
	c := New(sleepSpec(t), nil)

	if !c.StartDaemon() {
		t.Fatalf("StartDaemon failed")
	}
	waitForPID(t, c, true)

	if !c.StopDaemon() {
		t.Fatalf("StopDaemon failed")
	}
	// sh exits on SIGTERM; the probe converges to stopped.
	waitForPID(t, c, false)
}

func TestStopWithoutProcessFails(t *testing.T) {
	c := New(sleepSpec(t), nil)
	if c.StopDaemon() {
		t.Fatalf("StopDaemon should fail with no process")
	}
	if c.KillDaemon() {
		t.Fatalf("KillDaemon should fail with no process")
	}
}

func TestSpawnFailureBadBinary(t *testing.T) {
	spec := sleepSpec(t)
	spec.Command = "/nonexistent/warden-test-binary"
	c := New(spec, nil)
	if c.StartDaemon() {
		t.Fatalf("StartDaemon should fail for a missing binary")
	}
	ok, pid := c.DaemonPID()
	if !ok || pid != 0 {
		t.Fatalf("failed spawn should leave no pid, got ok=%v pid=%d", ok, pid)
	}
}
