package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/planward/planward/internal/safety"
)

// CommandCheckTool handles the command_check MCP tool.
type CommandCheckTool struct {
	classifier *safety.Classifier
}

// NewCommandCheckTool creates a CommandCheckTool with the given classifier.
func NewCommandCheckTool(classifier *safety.Classifier) *CommandCheckTool {
	return &CommandCheckTool{classifier: classifier}
}

// Definition returns the MCP tool definition for command_check.
func (t *CommandCheckTool) Definition() mcp.Tool {
	return mcp.NewTool("command_check",
		mcp.WithDescription(
			"Classify a shell command before running it. Dangerous commands "+
				"(rm -rf, git push, file-writing redirects, ...) are always blocked; "+
				"registered patterns and the built-in read-only list decide the "+
				"rest; unknown commands are denied by default. Compound commands "+
				"are allowed only when every segment is.",
		),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("The exact command line to classify"),
		),
	)
}

// Handle processes the command_check tool call.
func (t *CommandCheckTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command := strings.TrimSpace(req.GetString("command", ""))
	if command == "" {
		return mcp.NewToolResultError("'command' is required"), nil
	}

	res := t.classifier.Check(command)

	verdict := "⛔ blocked"
	if res.Allowed {
		verdict = "✅ allowed"
	}

	var b strings.Builder
	b.WriteString("# Command Check\n\n")
	fmt.Fprintf(&b, "**Command:** `%s`\n", command)
	fmt.Fprintf(&b, "**Verdict:** %s\n", verdict)
	if res.Access != "" {
		fmt.Fprintf(&b, "**Access:** %s\n", res.Access)
	}
	fmt.Fprintf(&b, "**Reason:** %s\n", res.Reason)

	if fields := strings.Fields(command); len(fields) > 0 && t.classifier.Guarded(fields[0]) {
		fmt.Fprintf(&b, "\n**Note:** `%s` is a guarded tool: its commands must pass "+
			"this check before execution.\n", fields[0])
	}

	return mcp.NewToolResultText(b.String()), nil
}
