package exec

import (
	"time"

	"github.com/planward/planward/internal/plan"
)

// FindStalled returns the executing plans whose execution started more
// than timeout ago. Plans without a start timestamp never qualify; a
// malformed plan is not a stalled one. The scan is pure and on-demand;
// there is no background watchdog, so a crash surfaces on the next
// explicit scan, typically at restart.
func FindStalled(plans []*plan.Plan, timeout time.Duration) []*plan.Plan {
	now := timeNow()
	var stalled []*plan.Plan
	for _, p := range plans {
		if p.Status != plan.StatusExecuting || p.ExecutionStartedAt == "" {
			continue
		}
		started, err := time.Parse(time.RFC3339, p.ExecutionStartedAt)
		if err != nil {
			continue
		}
		if now.Sub(started) > timeout {
			stalled = append(stalled, p)
		}
	}
	return stalled
}
