// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it discovers the project, creates concrete
// implementations, and injects them into the tools/prompts/resources that
// depend on abstractions. No business logic lives here — only wiring.
package server

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/planward/planward/internal/checkpoint"
	"github.com/planward/planward/internal/config"
	"github.com/planward/planward/internal/exec"
	"github.com/planward/planward/internal/history"
	"github.com/planward/planward/internal/plan"
	"github.com/planward/planward/internal/prompts"
	"github.com/planward/planward/internal/resources"
	"github.com/planward/planward/internal/safety"
	"github.com/planward/planward/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved; tools receive their stores instead of
// rediscovering the project on every call.
//
// The returned cleanup function closes the history database connection
// and must be called on shutdown (typically via defer). It is always
// non-nil and safe to call even if history init failed.
func New() (*server.MCPServer, func(), error) {
	// --- Discover the project and create shared dependencies ---

	root := findProjectRoot()
	cfg := config.Load(root)

	store := plan.NewFileStore(root)
	ckpt := checkpoint.New(plan.SessionsPath(root))
	classifier := safety.NewClassifier(safety.NewRegistry(), cfg.GuardedTools)
	timeout := time.Duration(cfg.ExecutorTimeoutMinutes) * time.Minute

	// History is an independent subsystem: if the SQLite index fails to
	// open, the plan workflow keeps working. We log a warning and skip
	// the exec_history tool — plan documents and checkpoint logs remain
	// the source of truth either way.
	cleanup := noop
	hist, histErr := history.Open(root)
	if histErr != nil {
		log.Printf("WARNING: execution history disabled: %v", histErr)
		hist = nil
	} else {
		cleanup = func() {
			if err := hist.Close(); err != nil {
				log.Printf("WARNING: history store close: %v", err)
			}
		}
	}

	orch := exec.New(store, ckpt, hist)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"planward",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register plan lifecycle tools ---

	proposeTool := tools.NewProposeTool(store)
	s.AddTool(proposeTool.Definition(), proposeTool.Handle)

	approveTool := tools.NewApproveTool(store)
	s.AddTool(approveTool.Definition(), approveTool.Handle)

	rejectTool := tools.NewRejectTool(store)
	s.AddTool(rejectTool.Definition(), rejectTool.Handle)

	cancelTool := tools.NewCancelTool(store)
	s.AddTool(cancelTool.Definition(), cancelTool.Handle)

	retryTool := tools.NewRetryTool(store)
	s.AddTool(retryTool.Definition(), retryTool.Handle)

	deleteTool := tools.NewDeleteTool(store)
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	cloneTool := tools.NewCloneTool(store)
	s.AddTool(cloneTool.Definition(), cloneTool.Handle)

	listTool := tools.NewListTool(store)
	s.AddTool(listTool.Definition(), listTool.Handle)

	showTool := tools.NewShowTool(store, ckpt)
	s.AddTool(showTool.Definition(), showTool.Handle)

	// --- Register execution tools ---

	execStartTool := tools.NewExecStartTool(orch)
	s.AddTool(execStartTool.Definition(), execStartTool.Handle)

	execReportTool := tools.NewExecReportTool(orch)
	s.AddTool(execReportTool.Definition(), execReportTool.Handle)

	execFinishTool := tools.NewExecFinishTool(orch)
	s.AddTool(execFinishTool.Definition(), execFinishTool.Handle)

	execRecoverTool := tools.NewExecRecoverTool(orch, timeout)
	s.AddTool(execRecoverTool.Definition(), execRecoverTool.Handle)

	// --- Register safety and history tools ---

	commandCheckTool := tools.NewCommandCheckTool(classifier)
	s.AddTool(commandCheckTool.Definition(), commandCheckTool.Handle)

	if hist != nil {
		historyTool := tools.NewHistoryTool(hist)
		s.AddTool(historyTool.Definition(), historyTool.Handle)
	}

	// --- Register prompts ---

	reviewPrompt := prompts.NewReviewPrompt()
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(store, cfg)
	s.AddResource(resourceHandler.StatusResource(), resourceHandler.HandleStatus)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when history
// is disabled or hasn't been initialized.
func noop() {}

// findProjectRoot walks up from the working directory looking for an
// existing .pi/plans directory. Falling back to the working directory
// means a fresh project gets its plan store created in place on first
// propose.
func findProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}

	current := cwd
	for {
		if info, err := os.Stat(filepath.Join(current, plan.PiDir, plan.PlansDir)); err == nil && info.IsDir() {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return cwd
		}
		current = parent
	}
}

// serverInstructions returns the system instructions that tell the AI
// how to run the plan workflow.
func serverInstructions() string {
	return `You have access to Planward, a guarded plan-execution MCP server.

## What Planward Is For

Planward separates PROPOSING work from DOING work. You write a plan of
tool calls, a human reviews and approves it, and only then do you
execute — reporting progress step by step so an interrupted run can be
diagnosed and recovered. Guarded tools (listed in the project settings)
must not run outside an approved plan.

## WHEN TO PROPOSE A PLAN

You MUST propose a plan before:
- Running any guarded tool (check with command_check if unsure)
- Multi-step work that changes files, configs, or repository state
- Anything the user asked you to "plan first" or review before running

You do NOT need a plan for:
- Read-only exploration (listing, reading, searching)
- Answering questions or explaining code
- Single safe commands that command_check allows

## The Plan Lifecycle

proposed → approved → executing → completed | failed
Plans can also be rejected or cancelled, and an execution that stops
reporting becomes stalled. Terminal plans are never revived in place —
clone them with plan_clone to try again from a fresh proposal.

1. PROPOSE — call plan_propose with a title and one step per line in
   the form '<description> (<tool>: <operation> → <target>)'. Every
   tool a step names becomes a required tool for execution.
2. REVIEW — the human reviews (the plan-review prompt walks through
   this). Approval is theirs, not yours: never call plan_approve
   without the user telling you to.
3. EXECUTE — call exec_start with the plan id and the expected_version
   shown at approval. If the plan changed since review, the start is
   refused with a version conflict: re-review, never force.
4. REPORT — before running each step call exec_report with status
   'started'; after it, 'success' with a one-line summary or 'failed'
   with the error. Report honestly — the checkpoint log is what makes
   a crashed run recoverable.
5. FINISH — call exec_finish with 'completed' or 'failed' and a result
   summary. One execution at a time: the slot stays busy until you
   finish.

## Rules

- NEVER execute steps from an unapproved plan
- NEVER skip exec_report between steps — a silent execution looks
  stalled and will be recovered out from under you
- ALWAYS run command_check before a shell command you are not sure
  about; blocked verdicts are final, do not rephrase to sneak past
- If exec_start reports a version conflict, show the user the current
  plan and ask them to re-approve
- If a step fails, you may continue with later steps only when they do
  not depend on it; otherwise call exec_finish with 'failed'
- Use exec_recover when the user asks about stuck work; then
  plan_retry to re-approve the plan or plan_cancel to give up

## Useful Surfaces

- plan_list / plan_show for the current state of every plan
- exec_history for past executions (when the history index is enabled)
- The planward://plans/status resource is a JSON summary hosts can poll
- The plan-status prompt audits the whole store and says what needs
  attention first`
}
