package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/planward/planward/internal/history"
)

// HistoryTool handles the exec_history MCP tool. It is only registered
// when the history index opened successfully.
type HistoryTool struct {
	store *history.Store
}

// NewHistoryTool creates a HistoryTool with the given history store.
func NewHistoryTool(store *history.Store) *HistoryTool {
	return &HistoryTool{store: store}
}

// Definition returns the MCP tool definition for exec_history.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("exec_history",
		mcp.WithDescription(
			"List past execution attempts, newest first. The history index is a "+
				"convenience view; the per-plan checkpoint logs remain the audit "+
				"source of truth.",
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum rows to return (default 20)"),
		),
		mcp.WithString("plan_id",
			mcp.Description("Restrict to one plan's attempts"),
		),
	)
}

// Handle processes the exec_history tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := intArg(req, "limit", 0)
	planID := strings.TrimSpace(req.GetString("plan_id", ""))

	var (
		entries []history.Entry
		err     error
	)
	if planID != "" {
		entries, err = t.store.ForPlan(planID)
	} else {
		entries, err = t.store.Recent(limit)
	}
	if err != nil {
		return nil, fmt.Errorf("reading execution history: %w", err)
	}

	if len(entries) == 0 {
		return mcp.NewToolResultText("No executions recorded yet."), nil
	}

	var table strings.Builder
	table.WriteString("| Plan | Title | Status | Started | Ended | Steps |\n")
	table.WriteString("|------|-------|--------|---------|-------|-------|\n")
	for _, e := range entries {
		ended := e.EndedAt
		if ended == "" {
			ended = "-"
		}
		fmt.Fprintf(&table, "| `%s` | %s | %s | %s | %s | %d/%d |\n",
			e.PlanID, e.Title, e.Status, e.StartedAt, ended,
			e.StepsCompleted, e.StepsTotal)
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"# Execution History (%d)\n\n%s", len(entries), table.String(),
	)), nil
}
