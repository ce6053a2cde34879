package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default logging configuration constants
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Format selects the structured log output encoding.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// SlogConfig configures warden's own structured logging.
type SlogConfig struct {
	Level      string `toml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format     string `toml:"format" mapstructure:"format"` // text or json
	Color      bool   `toml:"color" mapstructure:"color"`
	TimeStamps bool   `toml:"timestamps" mapstructure:"timestamps"`
}

// FileConfig describes file logging destinations for the supervised daemon's
// stdout/stderr. If StdoutPath/StderrPath are empty and Dir is set, files are
// Dir/<name>.stdout.log and Dir/<name>.stderr.log.
// Rotation parameters follow lumberjack semantics.
type FileConfig struct {
	Dir        string `toml:"dir" mapstructure:"dir"`
	StdoutPath string `toml:"stdout" mapstructure:"stdout"`
	StderrPath string `toml:"stderr" mapstructure:"stderr"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

// Config is the unified logging configuration: structured logging for warden
// itself plus file logging for the daemon's output streams.
type Config struct {
	Slog SlogConfig `toml:"slog" mapstructure:"slog"`
	File FileConfig `toml:"file" mapstructure:"file"`
}

// NewSlogger builds a *slog.Logger per the Slog section, writing to stderr.
func (c Config) NewSlogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.Slog.Level)}
	var h slog.Handler
	if strings.EqualFold(c.Slog.Format, FormatJSON) {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else if c.Slog.Color {
		h = NewColorTextHandler(os.Stderr, opts, c.Slog.TimeStamps)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(h)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ProcessWriters returns io.WriteClosers for the daemon's stdout and stderr.
func (c Config) ProcessWriters(name string) (io.WriteCloser, io.WriteCloser, error) {
	f := c.File
	stdout := f.StdoutPath
	stderr := f.StderrPath
	if stdout == "" && f.Dir != "" {
		stdout = filepath.Join(f.Dir, fmt.Sprintf("%s.stdout.log", name))
	}
	if stderr == "" && f.Dir != "" {
		stderr = filepath.Join(f.Dir, fmt.Sprintf("%s.stderr.log", name))
	}
	var outW io.WriteCloser
	var errW io.WriteCloser
	if stdout != "" {
		outW = &lj.Logger{
			Filename:   stdout,
			MaxSize:    valOr(f.MaxSizeMB, DefaultMaxSizeMB),
			MaxBackups: valOr(f.MaxBackups, DefaultMaxBackups),
			MaxAge:     valOr(f.MaxAgeDays, DefaultMaxAgeDays),
			Compress:   f.Compress,
		}
	}
	if stderr != "" {
		errW = &lj.Logger{
			Filename:   stderr,
			MaxSize:    valOr(f.MaxSizeMB, DefaultMaxSizeMB),
			MaxBackups: valOr(f.MaxBackups, DefaultMaxBackups),
			MaxAge:     valOr(f.MaxAgeDays, DefaultMaxAgeDays),
			Compress:   f.Compress,
		}
	}
	return outW, errW, nil
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
