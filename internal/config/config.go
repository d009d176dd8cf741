// Package config reads the optional per-project settings file at
// .pi/plans/plans.json. Configuration is advisory: a missing or malformed
// file means defaults, never a startup failure.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Defaults applied when the file is absent, malformed, or leaves a field
// unset.
const (
	DefaultStaleAfterDays         = 30
	DefaultExecutorTimeoutMinutes = 30
)

// Config is the project settings schema. Field names follow the on-disk
// file, which mixes camel and snake case for compatibility with existing
// projects.
type Config struct {
	// GuardedTools lists tool names that require an approved plan
	// before a session may use them.
	GuardedTools []string `json:"guardedTools"`
	// StaleAfterDays is a declared retention policy for old plans. It is
	// persisted and surfaced but nothing enforces it yet.
	StaleAfterDays int `json:"stale_after_days"`
	// ExecutorTimeoutMinutes is how long an execution may run without
	// finishing before a recovery scan classifies it as stalled.
	ExecutorTimeoutMinutes int `json:"executor_timeout_minutes"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		GuardedTools:           []string{},
		StaleAfterDays:         DefaultStaleAfterDays,
		ExecutorTimeoutMinutes: DefaultExecutorTimeoutMinutes,
	}
}

// Path returns the settings file location for a project root.
func Path(projectRoot string) string {
	return filepath.Join(projectRoot, ".pi", "plans", "plans.json")
}

// Load reads the settings for a project. Absent or unparseable files and
// unset fields all fall back to defaults; Load never fails.
func Load(projectRoot string) Config {
	cfg := Default()

	data, err := os.ReadFile(Path(projectRoot))
	if err != nil {
		return cfg
	}

	var raw Config
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg
	}

	if raw.GuardedTools != nil {
		cfg.GuardedTools = raw.GuardedTools
	}
	if raw.StaleAfterDays > 0 {
		cfg.StaleAfterDays = raw.StaleAfterDays
	}
	if raw.ExecutorTimeoutMinutes > 0 {
		cfg.ExecutorTimeoutMinutes = raw.ExecutorTimeoutMinutes
	}
	return cfg
}
