package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/planward/planward/internal/exec"
)

// ExecStartTool handles the exec_start MCP tool.
type ExecStartTool struct {
	orch *exec.Orchestrator
}

// NewExecStartTool creates an ExecStartTool with the given orchestrator.
func NewExecStartTool(orch *exec.Orchestrator) *ExecStartTool {
	return &ExecStartTool{orch: orch}
}

// Definition returns the MCP tool definition for exec_start.
func (t *ExecStartTool) Definition() mcp.Tool {
	return mcp.NewTool("exec_start",
		mcp.WithDescription(
			"Start executing an approved plan. The plan must still be at the "+
				"version you reviewed (expected_version) and every tool it requires "+
				"must be listed in available_tools. Only one execution runs at a "+
				"time; report progress with exec_report and end it with exec_finish.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Plan id to execute"),
		),
		mcp.WithNumber("expected_version",
			mcp.Required(),
			mcp.Description("The plan version the approval was based on"),
		),
		mcp.WithString("available_tools",
			mcp.Required(),
			mcp.Description("Comma-separated tools the executor session can use. "+
				"Example: 'bash,write_file'"),
		),
		mcp.WithString("session",
			mcp.Description("Executor session identifier, recorded on the plan"),
		),
	)
}

// Handle processes the exec_start tool call.
func (t *ExecStartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	expectedVersion := intArg(req, "expected_version", 0)
	if expectedVersion < 1 {
		return mcp.NewToolResultError("'expected_version' is required: pass the version you reviewed"), nil
	}

	var available []string
	for _, tool := range strings.Split(req.GetString("available_tools", ""), ",") {
		if tool = strings.TrimSpace(tool); tool != "" {
			available = append(available, tool)
		}
	}

	session := req.GetString("session", "")

	ex, err := t.orch.Start(id, expectedVersion, available, session)
	if err != nil {
		if domainError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("starting execution: %w", err)
	}

	response := fmt.Sprintf(
		"# Execution Started\n\n"+
			"**Plan:** `%s`\n"+
			"**Started:** %s\n",
		ex.PlanID, ex.StartedAt,
	)
	if ex.Session != "" {
		response += fmt.Sprintf("**Session:** %s\n", ex.Session)
	}
	response += "\nReport each step with `exec_report` (status started, then " +
		"success or failed), and end the execution with `exec_finish`."
	return mcp.NewToolResultText(response), nil
}
