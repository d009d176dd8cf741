// Package plan implements the guarded plan store: agent-proposed sequences
// of side-effecting steps, persisted as markdown documents and advanced
// through an approval/execution state machine.
//
// Writers coordinate through optimistic version checks and atomic
// temp-file renames rather than locks. Readers may be served from a
// per-store cache, but every mutation re-derives its expected version from
// the document on disk — the cache is never the record of truth.
//
// This package follows a files-by-concern split:
// - types: data model, enums, validation
// - codec: the on-disk document format
// - state: the status transition table and named transitions
// - store: persistence with optimistic concurrency
package plan

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// --- Plan status enum ---

// Status is a plan's position in the approval/execution lifecycle.
type Status string

const (
	StatusProposed  Status = "proposed"
	StatusApproved  Status = "approved"
	StatusExecuting Status = "executing"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusStalled   Status = "stalled"
)

// validStatuses is the set of allowed plan statuses.
var validStatuses = map[Status]bool{
	StatusProposed:  true,
	StatusApproved:  true,
	StatusExecuting: true,
	StatusCompleted: true,
	StatusFailed:    true,
	StatusRejected:  true,
	StatusCancelled: true,
	StatusStalled:   true,
}

// ValidateStatus returns an error if the status is not recognized.
func ValidateStatus(s Status) error {
	if !validStatuses[s] {
		return fmt.Errorf("invalid plan status %q: must be one of: proposed, approved, executing, completed, failed, rejected, cancelled, stalled", s)
	}
	return nil
}

// ParseStatuses splits a comma-separated status filter into validated
// statuses. An empty input yields an empty (match-everything) filter.
func ParseStatuses(filter string) ([]Status, error) {
	if strings.TrimSpace(filter) == "" {
		return nil, nil
	}
	var out []Status
	for _, part := range strings.Split(filter, ",") {
		s := Status(strings.TrimSpace(part))
		if s == "" {
			continue
		}
		if err := ValidateStatus(s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// --- Script status enum ---

// ScriptStatus is the runtime state of one step while a plan executes.
type ScriptStatus string

const (
	ScriptPending ScriptStatus = "pending"
	ScriptRunning ScriptStatus = "running"
	ScriptSuccess ScriptStatus = "success"
	ScriptFailed  ScriptStatus = "failed"
	ScriptSkipped ScriptStatus = "skipped"
)

// validScriptStatuses is the set of allowed per-step runtime states.
var validScriptStatuses = map[ScriptStatus]bool{
	ScriptPending: true,
	ScriptRunning: true,
	ScriptSuccess: true,
	ScriptFailed:  true,
	ScriptSkipped: true,
}

// ValidateScriptStatus returns an error if the script status is not recognized.
func ValidateScriptStatus(s ScriptStatus) error {
	if !validScriptStatuses[s] {
		return fmt.Errorf("invalid script status %q: must be one of: pending, running, success, failed, skipped", s)
	}
	return nil
}

// --- Core data structures ---

// Step is one proposed action. Step content is immutable once the plan is
// created; runtime progress lives in the parallel Scripts slice.
type Step struct {
	Description string `json:"description"`
	Tool        string `json:"tool"`
	Operation   string `json:"operation"`
	Target      string `json:"target,omitempty"`
}

// ScriptEntry holds the runtime state of the step at the same index.
type ScriptEntry struct {
	Step    int          `yaml:"step" json:"step"`
	Status  ScriptStatus `yaml:"status" json:"status"`
	Summary string       `yaml:"summary,omitempty" json:"summary,omitempty"`
	Error   string       `yaml:"error,omitempty" json:"error,omitempty"`
}

// Plan is the unit of work: a versioned, persisted proposal of ordered
// steps awaiting approval and execution. Version is the optimistic-lock
// token — it starts at 1 and every successful mutation increments it by
// exactly one. Timestamps are RFC3339 UTC strings.
type Plan struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Status             Status        `json:"status"`
	Version            int           `json:"version"`
	CreatedAt          string        `json:"created_at"`
	UpdatedAt          string        `json:"updated_at"`
	Steps              []Step        `json:"steps,omitempty"`
	ToolsRequired      []string      `json:"tools_required,omitempty"`
	Context            string        `json:"context,omitempty"`
	Body               string        `json:"body,omitempty"`
	ExecutorModel      string        `json:"executor_model,omitempty"`
	ExecutionSession   string        `json:"execution_session,omitempty"`
	ExecutionStartedAt string        `json:"execution_started_at,omitempty"`
	ExecutionEndedAt   string        `json:"execution_ended_at,omitempty"`
	ResultSummary      string        `json:"result_summary,omitempty"`
	Scripts            []ScriptEntry `json:"scripts,omitempty"`
}

// Copy returns a deep copy. The store hands out and caches copies so
// callers never share mutable slices with the cache.
func (p *Plan) Copy() *Plan {
	c := *p
	if p.Steps != nil {
		c.Steps = append([]Step(nil), p.Steps...)
	}
	if p.ToolsRequired != nil {
		c.ToolsRequired = append([]string(nil), p.ToolsRequired...)
	}
	if p.Scripts != nil {
		c.Scripts = append([]ScriptEntry(nil), p.Scripts...)
	}
	return &c
}

// ToolsFromSteps returns the distinct tool names across steps, in order of
// first use. This is how tools_required is derived — it is never supplied
// by callers.
func ToolsFromSteps(steps []Step) []string {
	seen := make(map[string]bool, len(steps))
	var tools []string
	for _, s := range steps {
		if s.Tool == "" || seen[s.Tool] {
			continue
		}
		seen[s.Tool] = true
		tools = append(tools, s.Tool)
	}
	return tools
}

// ValidateSteps checks that every step carries the fields the document
// format requires. The index in the error message is one-based to match
// the numbered list in the document body.
func ValidateSteps(steps []Step) error {
	for i, s := range steps {
		if strings.TrimSpace(s.Description) == "" {
			return fmt.Errorf("step %d: description is required", i+1)
		}
		if strings.TrimSpace(s.Tool) == "" {
			return fmt.Errorf("step %d: tool is required", i+1)
		}
		if strings.TrimSpace(s.Operation) == "" {
			return fmt.Errorf("step %d: operation is required", i+1)
		}
	}
	return nil
}

// NewID returns a fresh plan identifier: the first segment of a random
// UUID. Create handles the (unlikely) collision by drawing again.
func NewID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
