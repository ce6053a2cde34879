package supervisor

// Controller is the platform contract the supervisor drives. Implementations
// wrap OS-specific process primitives (see internal/platform) and must be
// synchronous and bounded; failures are reported as false, never panics.
type Controller interface {
	// StartDaemon spawns the daemon process.
	StartDaemon() bool
	// StopDaemon requests a graceful shutdown. Fire-and-forget: it does not
	// wait for the process to exit.
	StopDaemon() bool
	// KillDaemon terminates the daemon unconditionally.
	KillDaemon() bool
	// DaemonPID resolves the daemon's pid from the OS. ok=false means the
	// probe itself failed; pid==0 means no process is running.
	DaemonPID() (ok bool, pid int)
}
