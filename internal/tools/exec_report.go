package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/planward/planward/internal/exec"
)

// ExecReportTool handles the exec_report MCP tool.
type ExecReportTool struct {
	orch *exec.Orchestrator
}

// NewExecReportTool creates an ExecReportTool with the given orchestrator.
func NewExecReportTool(orch *exec.Orchestrator) *ExecReportTool {
	return &ExecReportTool{orch: orch}
}

// Definition returns the MCP tool definition for exec_report.
func (t *ExecReportTool) Definition() mcp.Tool {
	return mcp.NewTool("exec_report",
		mcp.WithDescription(
			"Report progress on one step of the active execution. Each report "+
				"updates the plan's per-step progress and appends a checkpoint "+
				"record. A failed step does not end the execution: decide whether "+
				"to continue, then call exec_finish.",
		),
		mcp.WithNumber("step",
			mcp.Required(),
			mcp.Description("Zero-based index into the plan's steps"),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("What happened to the step"),
			mcp.Enum("started", "success", "failed"),
		),
		mcp.WithString("summary",
			mcp.Description("What the step accomplished (for status success)"),
		),
		mcp.WithString("error",
			mcp.Description("What went wrong (for status failed)"),
		),
	)
}

// Handle processes the exec_report tool call.
func (t *ExecReportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	step := intArg(req, "step", -1)
	if step < 0 {
		return mcp.NewToolResultError("'step' is required: the zero-based step index"), nil
	}
	status := req.GetString("status", "")
	summary := req.GetString("summary", "")
	errText := req.GetString("error", "")

	var msg exec.Message
	switch status {
	case "started":
		msg = exec.StepStarted{Step: step}
	case "success":
		msg = exec.StepComplete{Step: step, Summary: summary}
	case "failed":
		msg = exec.StepFailed{Step: step, Error: errText}
	default:
		return mcp.NewToolResultError("'status' must be one of: started, success, failed"), nil
	}

	if err := t.orch.Report(msg); err != nil {
		if domainError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("reporting step: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Step %d recorded: %s.", step, status)), nil
}
