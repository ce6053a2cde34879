package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRoot creates the root command with all subcommands attached
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	startFlags := &LifecycleFlags{}
	stopFlags := &LifecycleFlags{}
	forceStopFlags := &LifecycleFlags{}
	managedStopFlags := &LifecycleFlags{}
	statusFlags := &StatusFlags{}

	wardenCommand := command{}

	root := createRootCommand(globalFlags)

	root.AddCommand(
		createStartCommand(wardenCommand, startFlags),
		createStopCommand(wardenCommand, stopFlags),
		createForceStopCommand(wardenCommand, forceStopFlags),
		createManagedStopCommand(wardenCommand, managedStopFlags),
		createStatusCommand(wardenCommand, statusFlags),
		createServeCommand(globalFlags),
	)

	return root
}

// createRootCommand creates the root command with minimal persistent flags
func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "warden",
		Short: "Supervisor for a single long-running daemon",
		Long: `Warden starts, stops, and monitors one long-running network daemon.
Lifecycle commands talk to a running warden daemon over its control API.

Examples:
  warden serve --config=warden.toml  # Run the supervisor daemon
  warden start                       # Ask the supervisor to spawn the daemon
  warden managed-stop                # Graceful stop, force-kill on timeout
  warden status --api-url=http://remote:8080/api`,
	}

	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")

	return root
}

// addAPIFlags wires the shared remote connection flags onto a command
func addAPIFlags(cmd *cobra.Command, url *string, timeout *time.Duration) {
	cmd.Flags().StringVar(url, "api-url", "", "supervisor URL (e.g. http://host:8080/api)")
	cmd.Flags().DurationVar(timeout, "api-timeout", 10*time.Second, "request timeout")
}

// createStartCommand creates the start subcommand
func createStartCommand(wardenCommand command, flags *LifecycleFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the supervised daemon",
		Long: `Ask the supervisor to spawn the daemon process.
Fails with a non-zero exit when the daemon is already running or starting.

Examples:
  warden start
  warden start --api-url=http://remote:8080/api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wardenCommand.Start(*flags)
		},
	}
	addAPIFlags(cmd, &flags.APIUrl, &flags.APITimeout)
	return cmd
}

// createStopCommand creates the stop subcommand
func createStopCommand(wardenCommand command, flags *LifecycleFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Request a graceful shutdown",
		Long: `Send the daemon a graceful termination request and return immediately.
The daemon may take a while to exit; use 'managed-stop' to force-kill on timeout.

Examples:
  warden stop
  warden stop --api-url=http://remote:8080/api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wardenCommand.Stop(*flags)
		},
	}
	addAPIFlags(cmd, &flags.APIUrl, &flags.APITimeout)
	return cmd
}

// createForceStopCommand creates the force-stop subcommand
func createForceStopCommand(wardenCommand command, flags *LifecycleFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "force-stop",
		Short: "Kill the daemon immediately",
		Long: `Terminate the daemon without any grace period.

Examples:
  warden force-stop`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wardenCommand.ForceStop(*flags)
		},
	}
	addAPIFlags(cmd, &flags.APIUrl, &flags.APITimeout)
	return cmd
}

// createManagedStopCommand creates the managed-stop subcommand
func createManagedStopCommand(wardenCommand command, flags *LifecycleFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "managed-stop",
		Short: "Graceful stop, escalating to a kill on timeout",
		Long: `Begin a managed shutdown session: the supervisor asks the daemon to
exit gracefully, waits for the configured grace period, and force-kills it
if it is still running afterwards. Only one session runs at a time.

Examples:
  warden managed-stop
  warden managed-stop --api-url=http://remote:8080/api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wardenCommand.ManagedStop(*flags)
		},
	}
	addAPIFlags(cmd, &flags.APIUrl, &flags.APITimeout)
	return cmd
}

// createStatusCommand creates the status subcommand
func createStatusCommand(wardenCommand command, flags *StatusFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Long: `Show the lifecycle status of the supervised daemon.

Examples:
  warden status
  warden status --watch --interval=2s
  warden status --api-url=http://remote:8080/api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wardenCommand.Status(*flags)
		},
	}
	cmd.Flags().BoolVar(&flags.Watch, "watch", false, "poll status continuously")
	cmd.Flags().DurationVar(&flags.Interval, "interval", 2*time.Second, "watch poll interval")
	addAPIFlags(cmd, &flags.APIUrl, &flags.APITimeout)
	return cmd
}

// createServeCommand creates the serve subcommand
func createServeCommand(globalFlags *GlobalFlags) *cobra.Command {
	serveFlags := &ServeFlags{}

	cmd := &cobra.Command{
		Use:   "serve [config.toml]",
		Short: "Run the warden supervisor daemon",
		Long: `Run the supervisor. All configuration is loaded from a TOML file.

Examples:
  warden serve --config=warden.toml
  warden serve warden.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			serveFlags.ConfigPath = globalFlags.ConfigPath
			return runServeCommand(serveFlags, args)
		},
	}

	return cmd
}
