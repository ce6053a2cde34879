package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loykin/warden"
)

func runServeCommand(flags *ServeFlags, args []string) error {
	configPath := flags.ConfigPath
	if len(args) > 0 {
		configPath = args[0]
	}
	if configPath == "" {
		return fmt.Errorf("config file required for serve command. Use --config=warden.toml or provide as argument")
	}

	cfg, err := warden.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	log := cfg.Log.NewSlogger()

	if err := warden.RegisterMetricsDefault(); err != nil {
		log.Warn("failed to register metrics", "error", err)
	}

	opts := []warden.Option{
		warden.WithLogger(log),
		warden.WithGracePeriod(cfg.Supervisor.GracePeriod),
		warden.WithStatusCacheTTL(cfg.Supervisor.StatusCacheTTL),
	}

	var sink warden.HistorySink
	if cfg.History.Enabled {
		sink, err = warden.NewHistorySink(cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("failed to open history sink: %w", err)
		}
		defer func() { _ = sink.Close() }()
		opts = append(opts, warden.WithObserver(warden.NewHistoryObserver(sink, log)))
	}

	ctrl := warden.NewController(cfg.DaemonSpec(), log)
	sup := warden.New(ctrl, opts...)

	if !cfg.Server.Enabled {
		return fmt.Errorf("server must be enabled to run serve command")
	}
	server, err := warden.NewHTTPServer(cfg.Server.Listen, cfg.Server.BasePath, sup)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	log.Info("warden serving", "listen", cfg.Server.Listen, "base_path", cfg.Server.BasePath,
		"daemon", cfg.Daemon.Name)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	shutdownDaemon(sup, log)
	return server.Close()
}

// shutdownDaemon runs a managed stop and waits for it to settle so the
// supervised daemon is not orphaned when warden exits.
func shutdownDaemon(sup *warden.Supervisor, log *slog.Logger) {
	if !sup.ManagedStop() {
		return
	}
	deadline := time.Now().Add(sup.GracePeriod() + 3*time.Second)
	for time.Now().Before(deadline) {
		st := sup.Query()
		if st == warden.StatusStopped || st == warden.StatusUnknown {
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	log.Warn("daemon did not settle before shutdown deadline")
}
