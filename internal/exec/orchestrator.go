package exec

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/planward/planward/internal/checkpoint"
	"github.com/planward/planward/internal/history"
	"github.com/planward/planward/internal/plan"
)

// Message is one signal from the executing session. Step messages record
// progress; PlanComplete and PlanFailed are terminal, and exactly one of
// them ends each execution.
type Message interface{ message() }

// StepStarted reports that work on a step began.
type StepStarted struct{ Step int }

// StepComplete reports that a step finished successfully.
type StepComplete struct {
	Step    int
	Summary string
}

// StepFailed reports that a step failed. The execution continues until a
// terminal message; whether to press on is the session's call.
type StepFailed struct {
	Step  int
	Error string
}

// PlanComplete finishes the execution successfully.
type PlanComplete struct{ Summary string }

// PlanFailed finishes the execution unsuccessfully.
type PlanFailed struct{ Summary string }

func (StepStarted) message()  {}
func (StepComplete) message() {}
func (StepFailed) message()   {}
func (PlanComplete) message() {}
func (PlanFailed) message()   {}

// ErrNoExecution reports a message with no execution to apply it to.
var ErrNoExecution = errors.New("no active execution to report against")

// BusyError reports a start attempt while another plan holds the
// execution slot.
type BusyError struct{ PlanID string }

func (e *BusyError) Error() string {
	return fmt.Sprintf("plan %q is already executing: one execution at a time, finish or recover it first", e.PlanID)
}

// Execution is the owned handle for the one active execution, created by
// Start and held until a terminal message releases the slot.
type Execution struct {
	PlanID    string
	Session   string
	StartedAt string

	historyID int64
}

// Orchestrator drives plan execution against the store, the checkpoint
// log, and the optional history index. It owns a single execution slot:
// a second start while one is active fails fast instead of queueing.
type Orchestrator struct {
	store   plan.Store
	log     *checkpoint.Log
	history *history.Store // nil when the index is disabled

	mu     sync.Mutex
	active *Execution
}

// New returns an orchestrator with a free execution slot. hist may be nil.
func New(store plan.Store, ckpt *checkpoint.Log, hist *history.Store) *Orchestrator {
	return &Orchestrator{store: store, log: ckpt, history: hist}
}

// Active returns the current execution handle, or nil when the slot is
// free.
func (o *Orchestrator) Active() *Execution {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// Start acquires the execution slot and begins executing a plan. The
// sequence is preflight, then the executing transition inside one
// optimistic update, then the checkpoint start record. If the transition
// fails the start aborts whole: no slot held, no checkpoint written.
// Checkpoint and history failures after the transition are logged and
// tolerated; the audit trail is best-effort by contract.
func (o *Orchestrator) Start(planID string, expectedVersion int, availableTools []string, session string) (*Execution, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active != nil {
		return nil, &BusyError{PlanID: o.active.PlanID}
	}

	started, err := o.store.Update(planID, func(p *plan.Plan) error {
		if err := Preflight(p, expectedVersion, availableTools); err != nil {
			return err
		}
		return plan.BeginExecution(p, session)
	})
	if err != nil {
		return nil, err
	}

	if err := o.log.LogStart(planID); err != nil {
		log.Printf("WARNING: checkpoint start record lost for plan %s: %v", planID, err)
	}

	ex := &Execution{
		PlanID:    planID,
		Session:   started.ExecutionSession,
		StartedAt: started.ExecutionStartedAt,
	}
	if o.history != nil {
		hid, herr := o.history.RecordStart(planID, started.Title, started.ExecutionStartedAt, len(started.Steps))
		if herr != nil {
			log.Printf("WARNING: history index unavailable: %v", herr)
		} else {
			ex.historyID = hid
		}
	}

	o.active = ex
	return ex, nil
}

// Report consumes one message from the executing session. It fails when
// no execution is active, which also makes a second terminal message an
// error: the first one released the slot.
func (o *Orchestrator) Report(msg Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	ex := o.active
	if ex == nil {
		return ErrNoExecution
	}

	switch m := msg.(type) {
	case StepStarted:
		return o.reportStep(ex, m.Step, plan.ScriptRunning, checkpoint.StepStarted, "", "")
	case StepComplete:
		return o.reportStep(ex, m.Step, plan.ScriptSuccess, checkpoint.StepSuccess, m.Summary, "")
	case StepFailed:
		return o.reportStep(ex, m.Step, plan.ScriptFailed, checkpoint.StepFailed, "", m.Error)
	case PlanComplete:
		return o.finish(ex, plan.StatusCompleted, m.Summary)
	case PlanFailed:
		return o.finish(ex, plan.StatusFailed, m.Summary)
	default:
		return fmt.Errorf("unknown execution message %T", msg)
	}
}

func (o *Orchestrator) reportStep(ex *Execution, step int, status plan.ScriptStatus, ckStatus, summary, errMsg string) error {
	updated, err := plan.SetScript(o.store, ex.PlanID, step, status, summary, errMsg)
	if err != nil {
		return err
	}
	st := updated.Steps[step]
	if lerr := o.log.LogStep(ex.PlanID, checkpoint.StepRecord{
		Step:          step,
		Tool:          st.Tool,
		Operation:     st.Operation,
		Status:        ckStatus,
		ResultSummary: summary,
		Error:         errMsg,
	}); lerr != nil {
		log.Printf("WARNING: checkpoint step record lost for plan %s: %v", ex.PlanID, lerr)
	}
	return nil
}

func (o *Orchestrator) finish(ex *Execution, status plan.Status, summary string) error {
	var err error
	if status == plan.StatusCompleted {
		_, err = plan.MarkCompleted(o.store, ex.PlanID, summary)
	} else {
		_, err = plan.MarkFailed(o.store, ex.PlanID, summary)
	}
	if err != nil {
		return err
	}

	if lerr := o.log.LogEnd(ex.PlanID, string(status), summary); lerr != nil {
		log.Printf("WARNING: checkpoint end record lost for plan %s: %v", ex.PlanID, lerr)
	}
	if o.history != nil && ex.historyID != 0 {
		completed, cerr := o.log.CompletedSteps(ex.PlanID)
		if cerr != nil {
			completed = 0
		}
		if herr := o.history.RecordEnd(ex.historyID, string(status), nowRFC3339(), summary, completed); herr != nil {
			log.Printf("WARNING: history index update failed: %v", herr)
		}
	}

	o.active = nil
	return nil
}

// Recover scans executing plans and marks stalled every one whose start
// timestamp is older than the timeout, skipping the plan this process is
// actively executing. Returns the plans it marked.
func (o *Orchestrator) Recover(timeout time.Duration) ([]*plan.Plan, error) {
	o.mu.Lock()
	var activeID string
	if o.active != nil {
		activeID = o.active.PlanID
	}
	o.mu.Unlock()

	executing, err := o.store.List(plan.StatusExecuting)
	if err != nil {
		return nil, err
	}

	var marked []*plan.Plan
	for _, p := range FindStalled(executing, timeout) {
		if p.ID == activeID {
			continue
		}
		updated, merr := plan.MarkStalled(o.store, p.ID)
		if merr != nil {
			log.Printf("WARNING: could not mark plan %s stalled: %v", p.ID, merr)
			continue
		}
		marked = append(marked, updated)
	}
	return marked, nil
}
