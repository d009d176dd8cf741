package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/planward/planward/internal/plan"
)

// ─── ApproveTool ────────────────────────────────────────────────────────────

// ApproveTool handles the plan_approve MCP tool.
type ApproveTool struct {
	store plan.Store
}

// NewApproveTool creates an ApproveTool with the given plan store.
func NewApproveTool(store plan.Store) *ApproveTool {
	return &ApproveTool{store: store}
}

// Definition returns the MCP tool definition for plan_approve.
func (t *ApproveTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_approve",
		mcp.WithDescription(
			"Approve a proposed plan, making it eligible for execution. "+
				"Only plans in status 'proposed' can be approved. Approval bumps the "+
				"version; pass the new version to exec_start.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Plan id to approve"),
		),
	)
}

// Handle processes the plan_approve tool call.
func (t *ApproveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	p, err := plan.Approve(t.store, id)
	if err != nil {
		if domainError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("approving plan: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Plan `%s` approved at version %d.\n\n"+
			"Start it with `exec_start` (expected_version: %d) when the executor "+
			"session is ready.",
		p.ID, p.Version, p.Version,
	)), nil
}

// ─── RejectTool ─────────────────────────────────────────────────────────────

// RejectTool handles the plan_reject MCP tool.
type RejectTool struct {
	store plan.Store
}

// NewRejectTool creates a RejectTool with the given plan store.
func NewRejectTool(store plan.Store) *RejectTool {
	return &RejectTool{store: store}
}

// Definition returns the MCP tool definition for plan_reject.
func (t *RejectTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_reject",
		mcp.WithDescription(
			"Reject a proposed plan. Feedback, when given, is appended to the plan "+
				"document so the next proposal can address it. Rejection is terminal: "+
				"propose a new plan (or plan_clone) to try again.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Plan id to reject"),
		),
		mcp.WithString("feedback",
			mcp.Description("Why the plan was rejected and what to change"),
		),
	)
}

// Handle processes the plan_reject tool call.
func (t *RejectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	feedback := req.GetString("feedback", "")

	p, err := plan.Reject(t.store, id, feedback)
	if err != nil {
		if domainError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("rejecting plan: %w", err)
	}

	msg := fmt.Sprintf("Plan `%s` rejected.", p.ID)
	if strings.TrimSpace(feedback) != "" {
		msg += " Feedback was appended to the plan document."
	}
	return mcp.NewToolResultText(msg), nil
}

// ─── CancelTool ─────────────────────────────────────────────────────────────

// CancelTool handles the plan_cancel MCP tool.
type CancelTool struct {
	store plan.Store
}

// NewCancelTool creates a CancelTool with the given plan store.
func NewCancelTool(store plan.Store) *CancelTool {
	return &CancelTool{store: store}
}

// Definition returns the MCP tool definition for plan_cancel.
func (t *CancelTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_cancel",
		mcp.WithDescription(
			"Cancel a plan that will not be pursued. Valid from proposed, approved, "+
				"or stalled. An executing plan cannot be cancelled: let it finish, or "+
				"recover it with exec_recover once it has stalled.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Plan id to cancel"),
		),
	)
}

// Handle processes the plan_cancel tool call.
func (t *CancelTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	p, err := plan.Cancel(t.store, id)
	if err != nil {
		if domainError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("cancelling plan: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Plan `%s` cancelled.", p.ID)), nil
}

// ─── RetryTool ──────────────────────────────────────────────────────────────

// RetryTool handles the plan_retry MCP tool.
type RetryTool struct {
	store plan.Store
}

// NewRetryTool creates a RetryTool with the given plan store.
func NewRetryTool(store plan.Store) *RetryTool {
	return &RetryTool{store: store}
}

// Definition returns the MCP tool definition for plan_retry.
func (t *RetryTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_retry",
		mcp.WithDescription(
			"Return a failed or stalled plan to approved for another execution "+
				"attempt. Clears the previous attempt's execution metadata and step "+
				"progress; the step list itself is unchanged.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Plan id to retry"),
		),
	)
}

// Handle processes the plan_retry tool call.
func (t *RetryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	p, err := plan.Retry(t.store, id)
	if err != nil {
		if domainError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("retrying plan: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Plan `%s` is approved again at version %d. Start the next attempt "+
			"with `exec_start` (expected_version: %d).",
		p.ID, p.Version, p.Version,
	)), nil
}

// ─── DeleteTool ─────────────────────────────────────────────────────────────

// DeleteTool handles the plan_delete MCP tool.
type DeleteTool struct {
	store plan.Store
}

// NewDeleteTool creates a DeleteTool with the given plan store.
func NewDeleteTool(store plan.Store) *DeleteTool {
	return &DeleteTool{store: store}
}

// Definition returns the MCP tool definition for plan_delete.
func (t *DeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_delete",
		mcp.WithDescription(
			"Delete a plan document permanently. Refused while the plan is "+
				"executing. Checkpoint logs from past executions are kept.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Plan id to delete"),
		),
	)
}

// Handle processes the plan_delete tool call.
func (t *DeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	if err := t.store.Delete(id); err != nil {
		if domainError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("deleting plan: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Plan `%s` deleted.", id)), nil
}
