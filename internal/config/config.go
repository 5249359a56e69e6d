// Package config provides configuration management for mason with
// layered precedence.
//
// Configuration sources are loaded in the following order (highest
// precedence first):
//  1. CLI flags (applied by the caller via Settings.Set)
//  2. Environment variables (MASON_* prefix)
//  3. Project config (.mason/config.yaml)
//  4. Global config (~/.mason/config.yaml)
//  5. Built-in defaults
//
// IMPORTANT: This package may import internal/errors, but MUST NOT
// import internal/task or other internal packages.
package config

import "time"

// Config is the root configuration structure for mason.
type Config struct {
	// Global contains the switches gating build phases for every task.
	Global GlobalConfig `yaml:"global" json:"global" mapstructure:"global"`

	// Tools contains settings for the external tools tasks shell out to.
	Tools ToolsConfig `yaml:"tools" json:"tools" mapstructure:"tools"`

	// Paths contains the directories the build works in.
	Paths PathsConfig `yaml:"paths" json:"paths" mapstructure:"paths"`

	// Tasks contains per-task overrides, keyed by task alias.
	Tasks map[string]TaskConfig `yaml:"tasks" json:"tasks" mapstructure:"tasks"`

	// Log contains settings for the log file sink.
	Log LogConfig `yaml:"log" json:"log" mapstructure:"log"`
}

// GlobalConfig holds the global phase and clean switches. Each is read
// fresh on every phase entry, so values are effectively immutable for
// the duration of one run.
type GlobalConfig struct {
	// Clean enables the clean phase.
	Clean bool `yaml:"clean" json:"clean" mapstructure:"clean"`
	// Fetch enables the fetch phase. Default: true.
	Fetch bool `yaml:"fetch" json:"fetch" mapstructure:"fetch"`
	// Build enables the build/install phase. Default: true.
	Build bool `yaml:"build" json:"build" mapstructure:"build"`

	// Redownload discards downloads when cleaning.
	Redownload bool `yaml:"redownload" json:"redownload" mapstructure:"redownload"`
	// Reextract discards extracted sources when cleaning.
	Reextract bool `yaml:"reextract" json:"reextract" mapstructure:"reextract"`
	// Reconfigure discards configure output when cleaning.
	Reconfigure bool `yaml:"reconfigure" json:"reconfigure" mapstructure:"reconfigure"`
	// Rebuild discards build output when cleaning.
	Rebuild bool `yaml:"rebuild" json:"rebuild" mapstructure:"rebuild"`

	// Parallelism bounds worker pools inside a task. Zero means one
	// worker per unit of work.
	Parallelism int `yaml:"parallelism" json:"parallelism" mapstructure:"parallelism"`
}

// ToolsConfig holds settings for external tool invocation.
type ToolsConfig struct {
	// Git is the git binary, resolved through PATH when not absolute.
	// Default: "git".
	Git string `yaml:"git" json:"git" mapstructure:"git"`

	// Timeout bounds a single tool invocation. Zero means no limit.
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`

	// GracePeriod is how long an interrupted tool's process gets
	// between SIGTERM and SIGKILL. Default: 5s.
	GracePeriod time.Duration `yaml:"grace_period" json:"grace_period" mapstructure:"grace_period"`

	// Shallow enables shallow git clones. Default: true.
	Shallow bool `yaml:"shallow" json:"shallow" mapstructure:"shallow"`

	// NoPull restricts git fetches to the initial clone; existing
	// checkouts are left alone instead of being pulled.
	NoPull bool `yaml:"no_pull" json:"no_pull" mapstructure:"no_pull"`
}

// PathsConfig holds the directories a build works in.
type PathsConfig struct {
	// Build is the root directory task sources are fetched into.
	// Default: "build".
	Build string `yaml:"build" json:"build" mapstructure:"build"`

	// Patches is the root directory of per-task patch sets.
	// Default: "patches".
	Patches string `yaml:"patches" json:"patches" mapstructure:"patches"`

	// Prefix is the installation prefix build outputs land in.
	// Default: "install".
	Prefix string `yaml:"prefix" json:"prefix" mapstructure:"prefix"`
}

// TaskConfig holds per-task overrides.
type TaskConfig struct {
	// Enabled turns the task on or off. Nil means enabled.
	Enabled *bool `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
}

// LogConfig holds settings for the rotating log file.
type LogConfig struct {
	// File is the log file path. Empty disables the file sink.
	File string `yaml:"file" json:"file" mapstructure:"file"`
	// MaxSizeMB is the rotation threshold. Default: 10.
	MaxSizeMB int `yaml:"max_size_mb" json:"max_size_mb" mapstructure:"max_size_mb"`
	// MaxBackups is how many rotated files to keep. Default: 3.
	MaxBackups int `yaml:"max_backups" json:"max_backups" mapstructure:"max_backups"`
	// MaxAgeDays is how long rotated files are kept. Default: 28.
	MaxAgeDays int `yaml:"max_age_days" json:"max_age_days" mapstructure:"max_age_days"`
}
