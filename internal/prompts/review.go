// Package prompts implements the MCP prompt handlers for the plan
// workflow.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ReviewPrompt handles the plan-review MCP prompt.
// It walks the AI through reviewing a proposed plan before approval.
type ReviewPrompt struct{}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt() *ReviewPrompt {
	return &ReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("plan-review",
		mcp.WithPromptDescription(
			"Review a proposed plan step by step before deciding its fate. "+
				"Checks each step's tool call, runs risky commands through the "+
				"safety check, and ends with an approve or reject decision.",
		),
		mcp.WithArgument("id",
			mcp.ArgumentDescription("Plan id to review. Omit to review the most recently proposed plan."),
		),
	)
}

// Handle processes the plan-review prompt request.
func (p *ReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	target := "the most recently updated plan with status 'proposed' from `plan_list`"
	if args := req.Params.Arguments; args != nil {
		if id, ok := args["id"]; ok && id != "" {
			target = fmt.Sprintf("plan '%s'", id)
		}
	}

	return &mcp.GetPromptResult{
		Description: "Review a proposed plan",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to review %s before it runs.\n\n"+
						"Please:\n"+
						"1. Run `plan_show` to display the full plan\n"+
						"2. For each step, tell me what the tool call will touch and whether the step order makes sense\n"+
						"3. Run `command_check` on every step that executes a shell command and report any blocked verdicts\n"+
						"4. Summarize the risks in one short list\n"+
						"5. Ask me whether to approve; then run `plan_approve`, or `plan_reject` with my feedback as the reason\n\n"+
						"Do not start execution. Approval and execution are separate decisions.",
					target,
				)),
			},
		},
	}, nil
}
