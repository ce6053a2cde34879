package main

import "time"

// GlobalFlags holds minimal global/persistent flags for CLI commands
type GlobalFlags struct {
	ConfigPath string // Only config path for CLI commands
}

// LifecycleFlags Flag structs to decouple cobra from logic for testing.
type LifecycleFlags struct {
	// Remote daemon connection
	APIUrl     string
	APITimeout time.Duration
}

type StatusFlags struct {
	Watch    bool          // Watch mode for continuous monitoring
	Interval time.Duration // Watch interval
	// Remote daemon connection
	APIUrl     string
	APITimeout time.Duration
}

type ServeFlags struct {
	ConfigPath string
}
