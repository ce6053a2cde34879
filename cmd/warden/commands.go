package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loykin/warden/pkg/client"
)

type command struct{}

// apiClient builds a client for the given connection flags, defaulting to
// the local supervisor.
func apiClient(url string, timeout time.Duration) *client.Client {
	cfg := client.DefaultConfig()
	if url != "" {
		cfg.BaseURL = url
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	return client.New(cfg)
}

func checkReachable(ctx context.Context, c *client.Client, url string) error {
	if url == "" {
		url = client.DefaultConfig().BaseURL
	}
	if !c.IsReachable(ctx) {
		return fmt.Errorf("supervisor not reachable at %s - start it first with 'warden serve'", url)
	}
	return nil
}

// Start asks the supervisor to spawn the daemon
func (c command) Start(f LifecycleFlags) error {
	return c.runOp(f, "start", func(ctx context.Context, ac *client.Client) (bool, error) {
		return ac.Start(ctx)
	})
}

// Stop requests a graceful shutdown
func (c command) Stop(f LifecycleFlags) error {
	return c.runOp(f, "stop", func(ctx context.Context, ac *client.Client) (bool, error) {
		return ac.Stop(ctx)
	})
}

// ForceStop kills the daemon unconditionally
func (c command) ForceStop(f LifecycleFlags) error {
	return c.runOp(f, "force-stop", func(ctx context.Context, ac *client.Client) (bool, error) {
		return ac.ForceStop(ctx)
	})
}

// ManagedStop launches a graceful-then-forceful shutdown session
func (c command) ManagedStop(f LifecycleFlags) error {
	return c.runOp(f, "managed-stop", func(ctx context.Context, ac *client.Client) (bool, error) {
		return ac.ManagedStop(ctx)
	})
}

func (c command) runOp(f LifecycleFlags, name string, op func(context.Context, *client.Client) (bool, error)) error {
	ac := apiClient(f.APIUrl, f.APITimeout)
	ctx := context.Background()
	if err := checkReachable(ctx, ac, f.APIUrl); err != nil {
		return err
	}
	ok, err := op(ctx, ac)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s rejected: daemon is not in a state that allows it", name)
	}
	fmt.Printf("%s: ok\n", name)
	return nil
}

// Status prints the daemon's lifecycle status, optionally in watch mode
func (c command) Status(f StatusFlags) error {
	ac := apiClient(f.APIUrl, f.APITimeout)
	ctx := context.Background()
	if err := checkReachable(ctx, ac, f.APIUrl); err != nil {
		return err
	}

	if !f.Watch {
		st, err := ac.Status(ctx)
		if err != nil {
			return err
		}
		printJSON(st)
		return nil
	}

	interval := f.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		st, err := ac.Status(ctx)
		if err != nil {
			return err
		}
		printJSON(st)
		select {
		case <-sigCh:
			return nil
		case <-ticker.C:
		}
	}
}
