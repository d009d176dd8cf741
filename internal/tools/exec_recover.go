package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/planward/planward/internal/exec"
)

// ExecRecoverTool handles the exec_recover MCP tool.
// Stalled detection is retroactive: nothing watches executions in the
// background, so this scan is how orphaned executions get noticed.
type ExecRecoverTool struct {
	orch           *exec.Orchestrator
	defaultTimeout time.Duration
}

// NewExecRecoverTool creates an ExecRecoverTool with the given
// orchestrator and the configured default timeout.
func NewExecRecoverTool(orch *exec.Orchestrator, defaultTimeout time.Duration) *ExecRecoverTool {
	return &ExecRecoverTool{orch: orch, defaultTimeout: defaultTimeout}
}

// Definition returns the MCP tool definition for exec_recover.
func (t *ExecRecoverTool) Definition() mcp.Tool {
	return mcp.NewTool("exec_recover",
		mcp.WithDescription(
			"Scan executing plans and mark stalled every one whose execution "+
				"started longer ago than the timeout. Use after a crash or restart "+
				"to reclaim orphaned executions; stalled plans can then be retried "+
				"(plan_retry) or cancelled (plan_cancel).",
		),
		mcp.WithNumber("timeout_minutes",
			mcp.Description("Age threshold in minutes. Defaults to the configured executor timeout."),
		),
	)
}

// Handle processes the exec_recover tool call.
func (t *ExecRecoverTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	timeout := t.defaultTimeout
	if minutes := intArg(req, "timeout_minutes", 0); minutes > 0 {
		timeout = time.Duration(minutes) * time.Minute
	}

	marked, err := t.orch.Recover(timeout)
	if err != nil {
		return nil, fmt.Errorf("recovering stalled executions: %w", err)
	}

	if len(marked) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No stalled executions found (timeout: %s).", timeout,
		)), nil
	}

	var list strings.Builder
	for _, p := range marked {
		fmt.Fprintf(&list, "- `%s` %s (executing since %s)\n", p.ID, p.Title, p.ExecutionStartedAt)
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"# Stalled Plans (%d)\n\n%s\n"+
			"Each is now status 'stalled'. Retry with `plan_retry` or give up "+
			"with `plan_cancel`.",
		len(marked), list.String(),
	)), nil
}
