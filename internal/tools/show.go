package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/planward/planward/internal/checkpoint"
	"github.com/planward/planward/internal/plan"
)

// ShowTool handles the plan_show MCP tool.
// It renders one plan in full, including per-step progress from the
// checkpoint log when the plan has been executed.
type ShowTool struct {
	store plan.Store
	log   *checkpoint.Log
}

// NewShowTool creates a ShowTool with the given plan store and checkpoint log.
func NewShowTool(store plan.Store, log *checkpoint.Log) *ShowTool {
	return &ShowTool{store: store, log: log}
}

// Definition returns the MCP tool definition for plan_show.
func (t *ShowTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_show",
		mcp.WithDescription(
			"Show one plan in full: metadata, steps with per-step progress, "+
				"context, execution record, and checkpoint progress.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Plan id to show"),
		),
	)
}

// Handle processes the plan_show tool call.
func (t *ShowTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	p, err := t.store.Get(id)
	if err != nil {
		if domainError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("loading plan: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Plan `%s`\n\n", p.ID)
	fmt.Fprintf(&b, "**Title:** %s\n", p.Title)
	fmt.Fprintf(&b, "**Status:** %s %s\n", statusMarker(p.Status), p.Status)
	fmt.Fprintf(&b, "**Version:** %d\n", p.Version)
	fmt.Fprintf(&b, "**Created:** %s\n", p.CreatedAt)
	fmt.Fprintf(&b, "**Updated:** %s\n", p.UpdatedAt)
	fmt.Fprintf(&b, "**Tools required:** %s\n", strings.Join(p.ToolsRequired, ", "))
	if p.ExecutorModel != "" {
		fmt.Fprintf(&b, "**Executor model:** %s\n", p.ExecutorModel)
	}

	b.WriteString("\n## Steps\n\n")
	b.WriteString(stepList(p))

	if p.Context != "" {
		fmt.Fprintf(&b, "\n## Context\n\n%s\n", p.Context)
	}

	if p.ExecutionSession != "" || p.ExecutionStartedAt != "" {
		b.WriteString("\n## Execution\n\n")
		if p.ExecutionSession != "" {
			fmt.Fprintf(&b, "**Session:** %s\n", p.ExecutionSession)
		}
		if p.ExecutionStartedAt != "" {
			fmt.Fprintf(&b, "**Started:** %s\n", p.ExecutionStartedAt)
		}
		if p.ExecutionEndedAt != "" {
			fmt.Fprintf(&b, "**Ended:** %s\n", p.ExecutionEndedAt)
		}
		if p.ResultSummary != "" {
			fmt.Fprintf(&b, "**Result:** %s\n", p.ResultSummary)
		}
		if completed, cerr := t.log.CompletedSteps(p.ID); cerr == nil {
			fmt.Fprintf(&b, "**Checkpoint:** %d of %d steps completed\n", completed, len(p.Steps))
		}
	}

	if p.Body != "" {
		fmt.Fprintf(&b, "\n%s\n", p.Body)
	}

	return mcp.NewToolResultText(b.String()), nil
}
