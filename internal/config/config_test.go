package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, ".pi", "plans")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "plans.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg := Load(t.TempDir())

	if len(cfg.GuardedTools) != 0 {
		t.Errorf("GuardedTools = %v, want empty", cfg.GuardedTools)
	}
	if cfg.StaleAfterDays != 30 {
		t.Errorf("StaleAfterDays = %d, want 30", cfg.StaleAfterDays)
	}
	if cfg.ExecutorTimeoutMinutes != 30 {
		t.Errorf("ExecutorTimeoutMinutes = %d, want 30", cfg.ExecutorTimeoutMinutes)
	}
}

func TestLoad_MalformedFileUsesDefaults(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "{not json")

	cfg := Load(root)
	if cfg.StaleAfterDays != 30 || cfg.ExecutorTimeoutMinutes != 30 {
		t.Errorf("malformed config should fall back to defaults, got %+v", cfg)
	}
}

func TestLoad_ReadsConfiguredValues(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `{"guardedTools":["bash","write_file"],"stale_after_days":7,"executor_timeout_minutes":45}`)

	cfg := Load(root)
	if len(cfg.GuardedTools) != 2 || cfg.GuardedTools[0] != "bash" {
		t.Errorf("GuardedTools = %v", cfg.GuardedTools)
	}
	if cfg.StaleAfterDays != 7 {
		t.Errorf("StaleAfterDays = %d, want 7", cfg.StaleAfterDays)
	}
	if cfg.ExecutorTimeoutMinutes != 45 {
		t.Errorf("ExecutorTimeoutMinutes = %d, want 45", cfg.ExecutorTimeoutMinutes)
	}
}

func TestLoad_UnsetFieldsAreDefaulted(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `{"guardedTools":["bash"]}`)

	cfg := Load(root)
	if cfg.StaleAfterDays != 30 || cfg.ExecutorTimeoutMinutes != 30 {
		t.Errorf("unset fields should default, got %+v", cfg)
	}
	if len(cfg.GuardedTools) != 1 {
		t.Errorf("GuardedTools = %v", cfg.GuardedTools)
	}
}

func TestPath(t *testing.T) {
	got := Path("/work/proj")
	want := filepath.Join("/work/proj", ".pi", "plans", "plans.json")
	if got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}
