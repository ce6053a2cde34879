package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warden.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
[daemon]
name = "netd"
command = "/usr/bin/netd"
args = ["--colour=false"]
workdir = "/var/lib/netd"
pidfile = "/run/netd.pid"

[supervisor]
grace_period = "7s"
status_cache_ttl = "500ms"

[log.slog]
level = "debug"
format = "text"
color = true

[log.file]
dir = "/var/log/netd"
max_size_mb = 5

[server]
enabled = true
listen = "127.0.0.1:9090"
base_path = "/control"

[history]
enabled = true
dsn = "sqlite:///var/lib/warden/history.db"
`)
	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "netd", c.Daemon.Name)
	require.Equal(t, "/usr/bin/netd", c.Daemon.Command)
	require.Equal(t, []string{"--colour=false"}, c.Daemon.Args)
	require.Equal(t, 7*time.Second, c.Supervisor.GracePeriod)
	require.Equal(t, 500*time.Millisecond, c.Supervisor.StatusCacheTTL)
	require.Equal(t, "debug", c.Log.Slog.Level)
	require.True(t, c.Log.Slog.Color)
	require.Equal(t, "/var/log/netd", c.Log.File.Dir)
	require.Equal(t, 5, c.Log.File.MaxSizeMB)
	require.True(t, c.Server.Enabled)
	require.Equal(t, "127.0.0.1:9090", c.Server.Listen)
	require.Equal(t, "/control", c.Server.BasePath)
	require.True(t, c.History.Enabled)
	require.Equal(t, "sqlite:///var/lib/warden/history.db", c.History.DSN)

	spec := c.DaemonSpec()
	require.Equal(t, c.Daemon.Command, spec.Command)
	require.Equal(t, c.Daemon.PIDFile, spec.PIDFile)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
[daemon]
command = "/usr/bin/netd"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Daemon.Name != "daemon" {
		t.Fatalf("expected default daemon name, got %q", c.Daemon.Name)
	}
	if c.Supervisor.GracePeriod != 5*time.Second || c.Supervisor.StatusCacheTTL != time.Second {
		t.Fatalf("expected supervisor defaults, got %+v", c.Supervisor)
	}
	if c.Server.Listen != "127.0.0.1:8080" || c.Server.BasePath != "/api" {
		t.Fatalf("expected server defaults, got %+v", c.Server)
	}
}

func TestLoadMissingCommand(t *testing.T) {
	path := writeConfig(t, `
[daemon]
name = "netd"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing daemon.command")
	}
}

func TestLoadRejectsTTLNotBelowGrace(t *testing.T) {
	path := writeConfig(t, `
[daemon]
command = "/usr/bin/netd"

[supervisor]
grace_period = "1s"
status_cache_ttl = "2s"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error when status_cache_ttl >= grace_period")
	}
}

func TestLoadHistoryNeedsDSN(t *testing.T) {
	path := writeConfig(t, `
[daemon]
command = "/usr/bin/netd"

[history]
enabled = true
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for enabled history without dsn")
	}
}

func TestLoadHistoryRejectsUnknownScheme(t *testing.T) {
	path := writeConfig(t, `
[daemon]
command = "/usr/bin/netd"

[history]
enabled = true
dsn = "opensearch://localhost:9200"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unsupported history scheme")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
