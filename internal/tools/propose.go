package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/planward/planward/internal/plan"
)

// ProposeTool handles the plan_propose MCP tool.
// It creates a new plan in status proposed for the host to review.
type ProposeTool struct {
	store plan.Store
}

// NewProposeTool creates a ProposeTool with the given plan store.
func NewProposeTool(store plan.Store) *ProposeTool {
	return &ProposeTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ProposeTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_propose",
		mcp.WithDescription(
			"Propose a new execution plan for review. The plan starts in status "+
				"'proposed' at version 1 and must be approved (plan_approve) before it "+
				"can execute. The step list is immutable once created: to change steps, "+
				"propose a new plan or use plan_clone.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short imperative title. Example: 'Add healthcheck endpoint'"),
		),
		mcp.WithString("steps",
			mcp.Required(),
			mcp.Description("One step per line in the form "+
				"'<description> (<tool>: <operation> → <target>)'. The target is "+
				"optional and a leading 'N.' ordinal is accepted. Example:\n"+
				"1. Install dependencies (bash: npm ci)\n"+
				"2. Write service config (write_file: create → config/app.json)"),
		),
		mcp.WithString("context",
			mcp.Description("Why this plan exists: constraints, goals, relevant links"),
		),
		mcp.WithString("executor_model",
			mcp.Description("Model expected to execute the plan, if known"),
		),
	)
}

// Handle processes the plan_propose tool call.
func (t *ProposeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := strings.TrimSpace(req.GetString("title", ""))
	stepsText := req.GetString("steps", "")
	planContext := req.GetString("context", "")
	executorModel := req.GetString("executor_model", "")

	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}
	steps, err := plan.ParseStepText(stepsText)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid 'steps': %v", err)), nil
	}
	if len(steps) == 0 {
		return mcp.NewToolResultError("'steps' is required: one step per line"), nil
	}

	p, err := t.store.Create(title, steps, planContext, executorModel)
	if err != nil {
		if domainError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("creating plan: %w", err)
	}

	response := fmt.Sprintf(
		"# Plan Proposed\n\n"+
			"**ID:** `%s`\n"+
			"**Title:** %s\n"+
			"**Status:** %s\n"+
			"**Version:** %d\n"+
			"**Tools required:** %s\n\n"+
			"## Steps\n\n"+
			"%s\n"+
			"## Next Step\n\n"+
			"Review the plan, then approve it with `plan_approve` or reject it "+
			"with `plan_reject` and feedback.",
		p.ID, p.Title, p.Status, p.Version,
		strings.Join(p.ToolsRequired, ", "),
		stepList(p),
	)
	return mcp.NewToolResultText(response), nil
}
