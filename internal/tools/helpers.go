// Package tools implements the MCP tool handlers for the plan engine.
//
// Each tool follows the same pattern:
// - a struct holding its dependencies (plan.Store, exec.Orchestrator, ...)
//   injected via constructor
// - Definition() returns the mcp.Tool schema for registration
// - Handle() processes the request and returns a result
//
// Handlers translate between the MCP surface and the engine: caller
// mistakes (unknown ids, illegal transitions, stale versions) come back
// as tool-result errors the model can read and correct; anything else is
// an infrastructure failure and propagates as a Go error.
package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/planward/planward/internal/exec"
	"github.com/planward/planward/internal/plan"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// domainError reports whether err is a caller-correctable engine error,
// as opposed to an infrastructure failure.
func domainError(err error) bool {
	var (
		transition *plan.TransitionError
		conflict   *plan.VersionConflictError
		state      *plan.StateError
		rng        *plan.StepRangeError
		parse      *plan.ParseError
		missing    *exec.MissingToolsError
		busy       *exec.BusyError
	)
	return errors.Is(err, plan.ErrNotFound) ||
		errors.Is(err, exec.ErrNoExecution) ||
		errors.As(err, &transition) ||
		errors.As(err, &conflict) ||
		errors.As(err, &state) ||
		errors.As(err, &rng) ||
		errors.As(err, &parse) ||
		errors.As(err, &missing) ||
		errors.As(err, &busy)
}

// statusMarker returns the list marker for a plan status.
func statusMarker(st plan.Status) string {
	switch st {
	case plan.StatusApproved:
		return "🟢"
	case plan.StatusExecuting:
		return "🔄"
	case plan.StatusCompleted:
		return "✅"
	case plan.StatusFailed:
		return "❌"
	case plan.StatusRejected:
		return "🚫"
	case plan.StatusCancelled:
		return "⛔"
	case plan.StatusStalled:
		return "⚠️"
	default:
		return "⬜"
	}
}

// scriptMarker returns the per-step marker for a script status.
func scriptMarker(st plan.ScriptStatus) string {
	switch st {
	case plan.ScriptRunning:
		return "🔄"
	case plan.ScriptSuccess:
		return "✅"
	case plan.ScriptFailed:
		return "❌"
	case plan.ScriptSkipped:
		return "⏭️"
	default:
		return "⬜"
	}
}

// stepList renders a plan's steps as numbered lines, annotated with
// per-step progress when the plan carries script entries.
func stepList(p *plan.Plan) string {
	var b strings.Builder
	for i, st := range p.Steps {
		b.WriteString(plan.FormatStepLine(i+1, st))
		if len(p.Scripts) == len(p.Steps) {
			sc := p.Scripts[i]
			fmt.Fprintf(&b, " — %s %s", scriptMarker(sc.Status), sc.Status)
			if sc.Summary != "" {
				fmt.Fprintf(&b, ": %s", sc.Summary)
			}
			if sc.Error != "" {
				fmt.Fprintf(&b, ": %s", sc.Error)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
