//go:build windows

package platform

import (
	"os"
	"os/exec"
	"strconv"
	"syscall"
)

var (
	kernel32             = syscall.NewLazyDLL("kernel32.dll")
	procOpenProcess      = kernel32.NewProc("OpenProcess")
	procTerminateProcess = kernel32.NewProc("TerminateProcess")
	procCloseHandle      = kernel32.NewProc("CloseHandle")
)

const (
	processTerminate        = 0x0001
	processQueryInformation = 0x0400
)

// StartDaemon spawns the daemon in a new process group so console control
// events aimed at warden never reach it.
func (c *Controller) StartDaemon() bool {
	cmd := exec.Command(c.spec.Command, c.spec.Args...)
	if c.spec.WorkDir != "" {
		cmd.Dir = c.spec.WorkDir
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}

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

// StopDaemon asks the daemon to close via taskkill, which delivers WM_CLOSE
// to its windows and a console control event otherwise. This is the closest
// Windows analogue of SIGTERM.
func (c *Controller) StopDaemon() bool {
	pid, ok := c.resolvePID()
	if !ok {
		return false
	}
	out, err := exec.Command("taskkill", "/PID", strconv.Itoa(pid)).CombinedOutput()
	if err != nil {
		c.logger.Error("taskkill failed", "pid", pid, "output", string(out), "error", err)
		return false
	}
	return true
}

// KillDaemon terminates the process through TerminateProcess.
func (c *Controller) KillDaemon() bool {
	pid, ok := c.resolvePID()
	if !ok {
		return false
	}
	handle, err := openProcess(processTerminate, uint32(pid))
	if err != nil {
		// Process already gone counts as killed.
		return true
	}
	defer closeHandle(handle)
	ret, _, callErr := procTerminateProcess.Call(uintptr(handle), uintptr(1))
	if ret == 0 {
		c.logger.Error("TerminateProcess failed", "pid", pid, "error", callErr)
		return false
	}
	return true
}

// processAlive checks existence via OpenProcess; Signal(0) is not supported
// on Windows.
func processAlive(pid int) bool {
	handle, err := openProcess(processQueryInformation, uint32(pid))
	if err != nil {
		return false
	}
	_ = closeHandle(handle)
	return true
}

func openProcess(access uint32, processID uint32) (syscall.Handle, error) {
	ret, _, err := procOpenProcess.Call(uintptr(access), 0, uintptr(processID))
	if ret == 0 {
		return 0, err
	}
	return syscall.Handle(ret), nil
}

func closeHandle(handle syscall.Handle) error {
	ret, _, err := procCloseHandle.Call(uintptr(handle))
	if ret == 0 {
		return err
	}
	return nil
}
