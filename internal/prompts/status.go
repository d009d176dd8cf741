package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the plan-status MCP prompt.
// It instructs the AI to survey the plan store and report what needs
// attention.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("plan-status",
		mcp.WithPromptDescription(
			"Survey every plan in the project. "+
				"Shows what is waiting for review, what is executing, "+
				"what stalled, and what to do next.",
		),
	)
}

// Handle processes the plan-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Plan workflow status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `plan_list` to survey my plans.\n\n" +
						"Then:\n" +
						"1. Group them by status and show the result as a short table\n" +
						"2. Run `exec_recover` and report any executions that stalled\n" +
						"3. If a plan is executing, run `plan_show` on it and report step progress\n" +
						"4. Tell me exactly what needs my attention first: proposals waiting for review, stalled work to retry or cancel, or nothing",
				),
			},
		},
	}, nil
}
