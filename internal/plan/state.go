package plan

import (
	"strings"
)

// allowedTransitions is the full status graph. Anything absent here is
// forbidden, so every legal move is visible in one place.
var allowedTransitions = map[Status]map[Status]struct{}{
	StatusProposed: {
		StatusApproved:  {},
		StatusRejected:  {},
		StatusCancelled: {},
	},
	StatusApproved: {
		StatusExecuting: {},
		StatusCancelled: {},
	},
	StatusExecuting: {
		StatusCompleted: {},
		StatusFailed:    {},
		StatusStalled:   {},
	},
	StatusStalled: {
		StatusApproved:  {},
		StatusFailed:    {},
		StatusCancelled: {},
	},
	StatusFailed: {
		StatusApproved: {},
	},
}

func canTransition(from, to Status) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// transition moves the plan to a new status, applying any extra field
// changes in the same mutation so the version bumps exactly once.
func (p *Plan) transition(to Status, apply func(*Plan)) error {
	if !canTransition(p.Status, to) {
		return &TransitionError{ID: p.ID, From: p.Status, To: to}
	}
	p.Status = to
	if apply != nil {
		apply(p)
	}
	return nil
}

// Approve moves a proposed plan to approved, clearing it for execution.
// The transition table also reaches approved from failed and stalled, but
// those are Retry's edges; approve checks its own source.
func Approve(s Store, id string) (*Plan, error) {
	return s.Update(id, func(p *Plan) error {
		if p.Status != StatusProposed {
			return &TransitionError{ID: p.ID, From: p.Status, To: StatusApproved}
		}
		return p.transition(StatusApproved, nil)
	})
}

// Reject moves a proposed plan to rejected. Non-empty feedback is appended
// to the document body as a Feedback section so the reviewer's reasoning
// travels with the plan.
func Reject(s Store, id, feedback string) (*Plan, error) {
	feedback = strings.TrimSpace(feedback)
	return s.Update(id, func(p *Plan) error {
		return p.transition(StatusRejected, func(p *Plan) {
			if feedback == "" {
				return
			}
			section := "## Feedback\n\n" + feedback
			if p.Body == "" {
				p.Body = section
			} else {
				p.Body += "\n\n" + section
			}
		})
	})
}

// Cancel abandons a plan that has not finished executing.
func Cancel(s Store, id string) (*Plan, error) {
	return s.Update(id, func(p *Plan) error {
		return p.transition(StatusCancelled, nil)
	})
}

// Retry re-approves a failed or stalled plan for another execution
// attempt, clearing the previous attempt's execution fields.
func Retry(s Store, id string) (*Plan, error) {
	return s.Update(id, func(p *Plan) error {
		if p.Status != StatusFailed && p.Status != StatusStalled {
			return &TransitionError{ID: p.ID, From: p.Status, To: StatusApproved}
		}
		return p.transition(StatusApproved, func(p *Plan) {
			p.ExecutionSession = ""
			p.ExecutionStartedAt = ""
			p.ExecutionEndedAt = ""
			p.ResultSummary = ""
			p.Scripts = nil
		})
	})
}

// BeginExecution applies the executing transition to a loaded plan: the
// status, the start timestamp, the executing session, and a pending
// script entry per step, all in one mutation so the version bumps once.
// Callers that need extra validation inside the same optimistic update
// use this directly; MarkExecuting wraps it.
func BeginExecution(p *Plan, session string) error {
	return p.transition(StatusExecuting, func(p *Plan) {
		p.ExecutionStartedAt = nowRFC3339()
		p.ExecutionSession = strings.TrimSpace(session)
		if len(p.Steps) > 0 {
			p.Scripts = make([]ScriptEntry, len(p.Steps))
			for i := range p.Scripts {
				p.Scripts[i] = ScriptEntry{Step: i, Status: ScriptPending}
			}
		}
	})
}

// MarkExecuting records the start of an execution attempt.
func MarkExecuting(s Store, id, session string) (*Plan, error) {
	return s.Update(id, func(p *Plan) error {
		return BeginExecution(p, session)
	})
}

// MarkStalled flags an executing plan whose session went quiet. The
// execution fields are kept for inspection; Retry clears them.
func MarkStalled(s Store, id string) (*Plan, error) {
	return s.Update(id, func(p *Plan) error {
		return p.transition(StatusStalled, nil)
	})
}

// MarkCompleted finishes an execution successfully.
func MarkCompleted(s Store, id, summary string) (*Plan, error) {
	return s.Update(id, func(p *Plan) error {
		return p.transition(StatusCompleted, func(p *Plan) {
			p.ExecutionEndedAt = nowRFC3339()
			p.ResultSummary = strings.TrimSpace(summary)
		})
	})
}

// MarkFailed finishes an execution unsuccessfully, recording the failure
// reason as the result summary.
func MarkFailed(s Store, id, reason string) (*Plan, error) {
	return s.Update(id, func(p *Plan) error {
		return p.transition(StatusFailed, func(p *Plan) {
			p.ExecutionEndedAt = nowRFC3339()
			p.ResultSummary = strings.TrimSpace(reason)
		})
	})
}

// SetScript records per-step progress on an executing plan.
func SetScript(s Store, id string, step int, status ScriptStatus, summary, errMsg string) (*Plan, error) {
	return s.Update(id, func(p *Plan) error {
		if p.Status != StatusExecuting {
			return &StateError{ID: p.ID, Status: p.Status, Op: "record step progress", Need: string(StatusExecuting)}
		}
		if step < 0 || step >= len(p.Scripts) {
			return &StepRangeError{ID: p.ID, Step: step, Steps: len(p.Scripts)}
		}
		if err := ValidateScriptStatus(status); err != nil {
			return err
		}
		p.Scripts[step] = ScriptEntry{
			Step:    step,
			Status:  status,
			Summary: strings.TrimSpace(summary),
			Error:   strings.TrimSpace(errMsg),
		}
		return nil
	})
}
