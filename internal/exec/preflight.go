// Package exec coordinates plan execution: the preflight checks that gate
// a start, the single-slot orchestrator that consumes progress messages,
// and the stalled scan that recovers from crashed sessions.
package exec

import (
	"fmt"
	"strings"

	"github.com/planward/planward/internal/plan"
)

// MissingToolsError is a failed capability preflight: the session lacks
// tools the plan requires. Missing holds every absent tool, not just the
// first.
type MissingToolsError struct {
	ID      string
	Missing []string
}

func (e *MissingToolsError) Error() string {
	return fmt.Sprintf("plan %q requires unavailable tools: %s", e.ID, strings.Join(e.Missing, ", "))
}

// Preflight validates that an execution may start: the plan is approved,
// the caller's read is still current, and every required tool is
// available. The checks run in that order and the first failure
// short-circuits.
func Preflight(p *plan.Plan, expectedVersion int, availableTools []string) error {
	if p.Status != plan.StatusApproved {
		return &plan.StateError{
			ID:     p.ID,
			Status: p.Status,
			Op:     "start execution",
			Need:   string(plan.StatusApproved),
		}
	}
	if p.Version != expectedVersion {
		return &plan.VersionConflictError{ID: p.ID, Expected: expectedVersion, Found: p.Version}
	}

	available := make(map[string]bool, len(availableTools))
	for _, t := range availableTools {
		available[t] = true
	}
	var missing []string
	for _, t := range p.ToolsRequired {
		if !available[t] {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return &MissingToolsError{ID: p.ID, Missing: missing}
	}
	return nil
}
