package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/loykin/warden/internal/logger"
	"github.com/loykin/warden/internal/platform"
	"github.com/loykin/warden/internal/supervisor"
)

// DaemonConfig describes the daemon binary under supervision.
type DaemonConfig struct {
	Name    string   `toml:"name" mapstructure:"name"`
	Command string   `toml:"command" mapstructure:"command"`
	Args    []string `toml:"args" mapstructure:"args"`
	WorkDir string   `toml:"workdir" mapstructure:"workdir"`
	PIDFile string   `toml:"pidfile" mapstructure:"pidfile"`
}

// SupervisorConfig carries the supervisor tunables.
type SupervisorConfig struct {
	GracePeriod    time.Duration `toml:"grace_period" mapstructure:"grace_period"`
	StatusCacheTTL time.Duration `toml:"status_cache_ttl" mapstructure:"status_cache_ttl"`
}

// ServerConfig configures the HTTP control API.
type ServerConfig struct {
	Enabled  bool   `toml:"enabled" mapstructure:"enabled"`
	Listen   string `toml:"listen" mapstructure:"listen"`
	BasePath string `toml:"base_path" mapstructure:"base_path"`
}

// HistoryConfig configures the lifecycle event sink.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	DSN     string `toml:"dsn" mapstructure:"dsn"`
}

// Config is the top-level TOML structure.
type Config struct {
	Daemon     DaemonConfig     `toml:"daemon" mapstructure:"daemon"`
	Supervisor SupervisorConfig `toml:"supervisor" mapstructure:"supervisor"`
	Log        logger.Config    `toml:"log" mapstructure:"log"`
	Server     ServerConfig     `toml:"server" mapstructure:"server"`
	History    HistoryConfig    `toml:"history" mapstructure:"history"`
}

// Load reads and validates a TOML config file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Daemon.Name == "" {
		c.Daemon.Name = "daemon"
	}
	if c.Supervisor.GracePeriod <= 0 {
		c.Supervisor.GracePeriod = supervisor.DefaultGracePeriod
	}
	if c.Supervisor.StatusCacheTTL <= 0 {
		c.Supervisor.StatusCacheTTL = supervisor.DefaultStatusCacheTTL
	}
	if c.Server.Listen == "" {
		c.Server.Listen = "127.0.0.1:8080"
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = "/api"
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Daemon.Command) == "" {
		return errors.New("daemon.command is required")
	}
	if c.Supervisor.StatusCacheTTL >= c.Supervisor.GracePeriod {
		// A recency window at or above the grace period makes status
		// reporting lag an entire managed-stop session.
		return fmt.Errorf("supervisor.status_cache_ttl (%s) must be shorter than supervisor.grace_period (%s)",
			c.Supervisor.StatusCacheTTL, c.Supervisor.GracePeriod)
	}
	if c.History.Enabled {
		dsn := strings.TrimSpace(c.History.DSN)
		if dsn == "" {
			return errors.New("history.dsn is required when history is enabled")
		}
		if !supportedHistoryDSN(dsn) {
			return fmt.Errorf("history.dsn has an unsupported scheme: %s", dsn)
		}
	}
	return nil
}

// supportedHistoryDSN mirrors the history factory's dispatch: sqlite,
// postgres, clickhouse, or a plain path (treated as sqlite).
func supportedHistoryDSN(dsn string) bool {
	for _, p := range []string{"sqlite://", "postgres://", "postgresql://", "clickhouse://"} {
		if strings.HasPrefix(dsn, p) {
			return true
		}
	}
	return !strings.Contains(dsn, "://")
}

// DaemonSpec converts the config into the platform layer's spec.
func (c *Config) DaemonSpec() platform.DaemonSpec {
	return platform.DaemonSpec{
		Name:    c.Daemon.Name,
		Command: c.Daemon.Command,
		Args:    c.Daemon.Args,
		WorkDir: c.Daemon.WorkDir,
		PIDFile: c.Daemon.PIDFile,
		Log:     c.Log,
	}
}
