package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/planward/planward/internal/plan"
)

// CloneTool handles the plan_clone MCP tool.
// Terminal plans cannot be revived in place; cloning is how a rejected,
// cancelled, or completed plan gets a second life as a fresh proposal.
type CloneTool struct {
	store plan.Store
}

// NewCloneTool creates a CloneTool with the given plan store.
func NewCloneTool(store plan.Store) *CloneTool {
	return &CloneTool{store: store}
}

// Definition returns the MCP tool definition for plan_clone.
func (t *CloneTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_clone",
		mcp.WithDescription(
			"Create a fresh proposed plan from an existing one, reusing its title, "+
				"steps, context, and executor model. The clone gets a new id, status "+
				"'proposed', and version 1; the source plan is untouched.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Plan id to clone"),
		),
	)
}

// Handle processes the plan_clone tool call.
func (t *CloneTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	src, err := t.store.Get(id)
	if err != nil {
		if domainError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("loading plan: %w", err)
	}

	clone, err := t.store.Create(src.Title, src.Steps, src.Context, src.ExecutorModel)
	if err != nil {
		return nil, fmt.Errorf("cloning plan: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"# Plan Cloned\n\n"+
			"**Source:** `%s`\n"+
			"**New plan:** `%s` (proposed, version 1)\n\n"+
			"Review and `plan_approve` the clone to make it executable.",
		src.ID, clone.ID,
	)), nil
}
