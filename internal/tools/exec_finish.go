package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/planward/planward/internal/exec"
)

// ExecFinishTool handles the exec_finish MCP tool.
type ExecFinishTool struct {
	orch *exec.Orchestrator
}

// NewExecFinishTool creates an ExecFinishTool with the given orchestrator.
func NewExecFinishTool(orch *exec.Orchestrator) *ExecFinishTool {
	return &ExecFinishTool{orch: orch}
}

// Definition returns the MCP tool definition for exec_finish.
func (t *ExecFinishTool) Definition() mcp.Tool {
	return mcp.NewTool("exec_finish",
		mcp.WithDescription(
			"End the active execution with a final status and summary. This is "+
				"the one terminal report per execution: it records the result on the "+
				"plan, closes the checkpoint log, and frees the execution slot.",
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("Final outcome of the execution"),
			mcp.Enum("completed", "failed"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("What the execution accomplished, or why it failed"),
		),
	)
}

// Handle processes the exec_finish tool call.
func (t *ExecFinishTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := req.GetString("status", "")
	summary := strings.TrimSpace(req.GetString("summary", ""))
	if summary == "" {
		return mcp.NewToolResultError("'summary' is required: say what happened"), nil
	}

	var msg exec.Message
	switch status {
	case "completed":
		msg = exec.PlanComplete{Summary: summary}
	case "failed":
		msg = exec.PlanFailed{Summary: summary}
	default:
		return mcp.NewToolResultError("'status' must be one of: completed, failed"), nil
	}

	// Capture the plan id before the terminal message releases the slot.
	active := t.orch.Active()

	if err := t.orch.Report(msg); err != nil {
		if domainError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("finishing execution: %w", err)
	}

	planID := "?"
	if active != nil {
		planID = active.PlanID
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Execution of plan `%s` finished: %s. The execution slot is free.",
		planID, status,
	)), nil
}
