package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/planward/planward/internal/plan"
)

// ListTool handles the plan_list MCP tool.
type ListTool struct {
	store plan.Store
}

// NewListTool creates a ListTool with the given plan store.
func NewListTool(store plan.Store) *ListTool {
	return &ListTool{store: store}
}

// Definition returns the MCP tool definition for plan_list.
func (t *ListTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_list",
		mcp.WithDescription(
			"List plans, oldest first. Optionally filter to one or more statuses "+
				"(proposed, approved, executing, completed, failed, rejected, "+
				"cancelled, stalled).",
		),
		mcp.WithString("status",
			mcp.Description("Comma-separated status filter. Example: 'proposed,approved'"),
		),
	)
}

// Handle processes the plan_list tool call.
func (t *ListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := req.GetString("status", "")

	statuses, err := plan.ParseStatuses(filter)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	plans, err := t.store.List(statuses...)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}

	if len(plans) == 0 {
		if filter != "" {
			return mcp.NewToolResultText(fmt.Sprintf("No plans with status %s.", filter)), nil
		}
		return mcp.NewToolResultText("No plans yet. Create one with `plan_propose`."), nil
	}

	var table strings.Builder
	table.WriteString("| Plan | Status | Version | Title | Updated |\n")
	table.WriteString("|------|--------|---------|-------|---------|\n")
	for _, p := range plans {
		fmt.Fprintf(&table, "| `%s` | %s %s | %d | %s | %s |\n",
			p.ID, statusMarker(p.Status), p.Status, p.Version, p.Title, p.UpdatedAt)
	}

	response := fmt.Sprintf(
		"# Plans (%d)\n\n%s\nUse `plan_show` with an id for steps and progress.",
		len(plans), table.String(),
	)
	return mcp.NewToolResultText(response), nil
}
