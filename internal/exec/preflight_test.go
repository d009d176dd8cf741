package exec

import (
	"errors"
	"strings"
	"testing"

	"github.com/planward/planward/internal/plan"
)

func approvedPlan() *plan.Plan {
	return &plan.Plan{
		ID:        "a1b2c3d4",
		Title:     "Add healthcheck",
		Status:    plan.StatusApproved,
		Version:   2,
		CreatedAt: "2026-08-24T10:00:00Z",
		UpdatedAt: "2026-08-24T10:05:00Z",
		Steps: []plan.Step{
			{Description: "Install dependencies", Tool: "bash", Operation: "npm ci"},
			{Description: "Write service config", Tool: "write_file", Operation: "create", Target: "config/app.json"},
		},
		ToolsRequired: []string{"bash", "write_file"},
	}
}

func TestPreflight_RequiresApprovedStatus(t *testing.T) {
	p := approvedPlan()
	p.Status = plan.StatusProposed

	err := Preflight(p, 2, []string{"bash", "write_file"})
	if err == nil {
		t.Fatal("expected an error for a proposed plan")
	}
	if !strings.Contains(err.Error(), "proposed") || !strings.Contains(err.Error(), "approved") {
		t.Errorf("message should name both the current and required status: %v", err)
	}
}

func TestPreflight_VersionMismatchNamesBothVersions(t *testing.T) {
	p := approvedPlan()
	p.Version = 3

	err := Preflight(p, 2, []string{"bash", "write_file"})
	var vc *plan.VersionConflictError
	if !errors.As(err, &vc) {
		t.Fatalf("expected a version conflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "expected version 2") || !strings.Contains(err.Error(), "found 3") {
		t.Errorf("message should name both versions: %v", err)
	}
}

func TestPreflight_MissingToolsAreAllNamed(t *testing.T) {
	p := approvedPlan()
	p.ToolsRequired = []string{"bash", "missing-tool", "other-missing"}

	err := Preflight(p, 2, []string{"bash"})
	var mt *MissingToolsError
	if !errors.As(err, &mt) {
		t.Fatalf("expected a missing tools error, got %v", err)
	}
	if len(mt.Missing) != 2 {
		t.Errorf("Missing = %v, want both absent tools", mt.Missing)
	}
	if !strings.Contains(err.Error(), "missing-tool") || !strings.Contains(err.Error(), "other-missing") {
		t.Errorf("message should name every missing tool: %v", err)
	}
}

func TestPreflight_StatusCheckShortCircuits(t *testing.T) {
	p := approvedPlan()
	p.Status = plan.StatusProposed
	p.Version = 7 // also wrong, but the status failure must win

	err := Preflight(p, 2, nil)
	var se *plan.StateError
	if !errors.As(err, &se) {
		t.Errorf("expected the status failure first, got %v", err)
	}
}

func TestPreflight_PassesWhenReady(t *testing.T) {
	if err := Preflight(approvedPlan(), 2, []string{"bash", "write_file", "extra"}); err != nil {
		t.Errorf("Preflight: %v", err)
	}
}
