package plan

import (
	"errors"
	"strings"
	"testing"
)

func TestCanTransition_CoversTheLifecycleGraph(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusProposed, StatusApproved},
		{StatusProposed, StatusRejected},
		{StatusProposed, StatusCancelled},
		{StatusApproved, StatusExecuting},
		{StatusApproved, StatusCancelled},
		{StatusExecuting, StatusCompleted},
		{StatusExecuting, StatusFailed},
		{StatusExecuting, StatusStalled},
		{StatusStalled, StatusApproved},
		{StatusStalled, StatusFailed},
		{StatusStalled, StatusCancelled},
		{StatusFailed, StatusApproved},
	}
	for _, tc := range legal {
		if !canTransition(tc.from, tc.to) {
			t.Errorf("%s → %s should be allowed", tc.from, tc.to)
		}
	}

	illegal := []struct{ from, to Status }{
		{StatusProposed, StatusExecuting},
		{StatusProposed, StatusCompleted},
		{StatusApproved, StatusCompleted},
		{StatusExecuting, StatusApproved},
		{StatusExecuting, StatusCancelled},
		{StatusCompleted, StatusApproved},
		{StatusRejected, StatusApproved},
		{StatusCancelled, StatusProposed},
		{StatusFailed, StatusExecuting},
	}
	for _, tc := range illegal {
		if canTransition(tc.from, tc.to) {
			t.Errorf("%s → %s should be forbidden", tc.from, tc.to)
		}
	}
}

func TestTransition_IllegalMoveReturnsTypedError(t *testing.T) {
	p := &Plan{ID: "a1b2c3d4", Status: StatusProposed}
	err := p.transition(StatusCompleted, nil)

	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected a transition error, got %v", err)
	}
	if te.From != StatusProposed || te.To != StatusCompleted {
		t.Errorf("error fields = %s → %s", te.From, te.To)
	}
	if !strings.Contains(err.Error(), "cannot transition from proposed to completed") {
		t.Errorf("message should name both statuses: %v", err)
	}
	if p.Status != StatusProposed {
		t.Errorf("failed transition must not change the status, got %s", p.Status)
	}
}

func TestApprove_RequiresProposedStatus(t *testing.T) {
	s := NewFileStore(t.TempDir())
	p := mustCreate(t, s, "Add healthcheck")
	if _, err := Reject(s, p.ID, "no"); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	_, err := Approve(s, p.ID)
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected a transition error, got %v", err)
	}
}

func TestApprove_DoesNotAcceptRetrysEdges(t *testing.T) {
	s := NewFileStore(t.TempDir())
	p := mustCreate(t, s, "Add healthcheck")
	if _, err := Approve(s, p.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := MarkExecuting(s, p.ID, "sess-81f2"); err != nil {
		t.Fatalf("MarkExecuting: %v", err)
	}
	if _, err := MarkFailed(s, p.ID, "broke"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	// failed → approved exists in the table, but it belongs to Retry,
	// which also clears the previous attempt's fields.
	_, err := Approve(s, p.ID)
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected a transition error, got %v", err)
	}
	if te.From != StatusFailed {
		t.Errorf("error source = %s, want failed", te.From)
	}
}

func TestRetry_RequiresFailedOrStalledStatus(t *testing.T) {
	s := NewFileStore(t.TempDir())
	p := mustCreate(t, s, "Add healthcheck")

	_, err := Retry(s, p.ID)
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected a transition error, got %v", err)
	}
	if te.From != StatusProposed || te.To != StatusApproved {
		t.Errorf("error fields = %s → %s", te.From, te.To)
	}
}

func TestCancel_AllowedFromStalled(t *testing.T) {
	s := NewFileStore(t.TempDir())
	p := mustCreate(t, s, "Add healthcheck")
	if _, err := Approve(s, p.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := MarkExecuting(s, p.ID, "sess-81f2"); err != nil {
		t.Fatalf("MarkExecuting: %v", err)
	}
	if _, err := MarkStalled(s, p.ID); err != nil {
		t.Fatalf("MarkStalled: %v", err)
	}

	got, err := Cancel(s, p.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("status = %s, want %s", got.Status, StatusCancelled)
	}
}

func TestSetScript_RecordsStepProgress(t *testing.T) {
	s := NewFileStore(t.TempDir())
	p := mustCreate(t, s, "Add healthcheck")
	if _, err := Approve(s, p.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := MarkExecuting(s, p.ID, "sess-81f2"); err != nil {
		t.Fatalf("MarkExecuting: %v", err)
	}

	got, err := SetScript(s, p.ID, 0, ScriptSuccess, "installed 41 packages", "")
	if err != nil {
		t.Fatalf("SetScript: %v", err)
	}
	want := ScriptEntry{Step: 0, Status: ScriptSuccess, Summary: "installed 41 packages"}
	if got.Scripts[0] != want {
		t.Errorf("script 0 = %+v, want %+v", got.Scripts[0], want)
	}
	if got.Scripts[1].Status != ScriptPending {
		t.Errorf("script 1 should stay pending, got %s", got.Scripts[1].Status)
	}

	if _, err := SetScript(s, p.ID, 5, ScriptSuccess, "", ""); err == nil {
		t.Error("expected an error for an out-of-range step index")
	}
}

func TestSetScript_RequiresExecutingPlan(t *testing.T) {
	s := NewFileStore(t.TempDir())
	p := mustCreate(t, s, "Add healthcheck")

	_, err := SetScript(s, p.ID, 0, ScriptRunning, "", "")
	var se *StateError
	if !errors.As(err, &se) {
		t.Fatalf("expected a state error, got %v", err)
	}
	if !strings.Contains(err.Error(), "proposed") || !strings.Contains(err.Error(), "executing") {
		t.Errorf("message should name both statuses: %v", err)
	}
}

func TestParseStatuses_SplitsAndValidates(t *testing.T) {
	got, err := ParseStatuses("proposed, approved")
	if err != nil {
		t.Fatalf("ParseStatuses: %v", err)
	}
	if len(got) != 2 || got[0] != StatusProposed || got[1] != StatusApproved {
		t.Errorf("ParseStatuses = %v", got)
	}

	if _, err := ParseStatuses("proposed, galloping"); err == nil {
		t.Error("expected an error for an unknown status")
	}

	empty, err := ParseStatuses("  ")
	if err != nil {
		t.Fatalf("ParseStatuses blank: %v", err)
	}
	if empty != nil {
		t.Errorf("blank filter should mean no filter, got %v", empty)
	}
}
