package checkpoint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLog_AppendsAndReadsBack(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "sessions"))

	if err := l.LogStart("a1b2c3d4"); err != nil {
		t.Fatalf("LogStart: %v", err)
	}
	if err := l.LogStep("a1b2c3d4", StepRecord{
		Step: 0, Tool: "bash", Operation: "npm ci",
		Status: StepSuccess, ResultSummary: "installed 41 packages",
	}); err != nil {
		t.Fatalf("LogStep: %v", err)
	}
	if err := l.LogStep("a1b2c3d4", StepRecord{
		Step: 1, Tool: "write_file", Operation: "create",
		Status: StepFailed, Error: "permission denied",
	}); err != nil {
		t.Fatalf("LogStep: %v", err)
	}
	if err := l.LogEnd("a1b2c3d4", "failed", "step 2 could not write"); err != nil {
		t.Fatalf("LogEnd: %v", err)
	}

	data, err := os.ReadFile(l.FilePath("a1b2c3d4"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("log has %d lines, want 4:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[0], `"type":"execution_start"`) {
		t.Errorf("first line = %s", lines[0])
	}
	if !strings.Contains(lines[3], `"type":"execution_end"`) {
		t.Errorf("last line = %s", lines[3])
	}

	steps, err := l.Steps("a1b2c3d4")
	if err != nil {
		t.Fatalf("Steps: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("Steps = %d records, want 2", len(steps))
	}
	if steps[0].Step != 0 || steps[0].Status != StepSuccess || steps[0].ResultSummary != "installed 41 packages" {
		t.Errorf("first step record = %+v", steps[0])
	}
	if steps[1].Error != "permission denied" {
		t.Errorf("second step record = %+v", steps[1])
	}

	done, err := l.CompletedSteps("a1b2c3d4")
	if err != nil {
		t.Fatalf("CompletedSteps: %v", err)
	}
	if done != 1 {
		t.Errorf("CompletedSteps = %d, want 1", done)
	}
}

func TestSteps_SkipsUnreadableLines(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)

	content := `{"type":"execution_start","plan_id":"a1b2c3d4","timestamp":"2026-08-24T10:00:00Z"}
{"type":"step","step":0,"tool":"bash","operation":"npm ci","status":"success","timestamp":"2026-08-24T10:01:00Z"}
{"type":"step","step":1,"tool":
{"type":"step","step":1,"tool":"bash","operation":"npm test","status":"started","timestamp":"2026-08-24T10:02:00Z"}
`
	if err := os.WriteFile(l.FilePath("a1b2c3d4"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	steps, err := l.Steps("a1b2c3d4")
	if err != nil {
		t.Fatalf("Steps: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("Steps = %d records, want 2 (torn line skipped)", len(steps))
	}
	if steps[1].Status != StepStarted {
		t.Errorf("second record = %+v", steps[1])
	}
}

func TestSteps_MissingLogMeansNoProgress(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "sessions"))

	steps, err := l.Steps("deadbeef")
	if err != nil {
		t.Fatalf("Steps: %v", err)
	}
	if steps != nil {
		t.Errorf("Steps = %v, want none", steps)
	}
	done, err := l.CompletedSteps("deadbeef")
	if err != nil || done != 0 {
		t.Errorf("CompletedSteps = %d, %v, want 0, nil", done, err)
	}
}

func TestCompletedSteps_CountsDistinctIndexes(t *testing.T) {
	l := New(t.TempDir())

	// Step 0 succeeds twice across two attempts; step 1 never does.
	for i := 0; i < 2; i++ {
		if err := l.LogStep("a1b2c3d4", StepRecord{Step: 0, Tool: "bash", Operation: "x", Status: StepSuccess}); err != nil {
			t.Fatalf("LogStep: %v", err)
		}
	}
	if err := l.LogStep("a1b2c3d4", StepRecord{Step: 1, Tool: "bash", Operation: "y", Status: StepFailed}); err != nil {
		t.Fatalf("LogStep: %v", err)
	}

	done, err := l.CompletedSteps("a1b2c3d4")
	if err != nil {
		t.Fatalf("CompletedSteps: %v", err)
	}
	if done != 1 {
		t.Errorf("CompletedSteps = %d, want 1", done)
	}
}

func TestLogStep_FillsTimestamp(t *testing.T) {
	old := timeNow
	defer func() { timeNow = old }()
	timeNow = func() time.Time {
		return time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	}

	l := New(t.TempDir())
	if err := l.LogStep("a1b2c3d4", StepRecord{Step: 0, Tool: "bash", Operation: "x", Status: StepStarted}); err != nil {
		t.Fatalf("LogStep: %v", err)
	}

	data, err := os.ReadFile(l.FilePath("a1b2c3d4"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `"timestamp":"2026-08-24T10:00:00Z"`) {
		t.Errorf("timestamp not filled: %s", data)
	}
}
