package plan

import (
	"errors"
	"fmt"
)

// ErrNotFound reports an unknown plan id. Always returned wrapped with the
// id, so match it with errors.Is.
var ErrNotFound = errors.New("plan not found")

// TransitionError reports a status change the transition table forbids.
type TransitionError struct {
	ID   string
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("plan %q: cannot transition from %s to %s", e.ID, e.From, e.To)
}

// VersionConflictError reports a lost optimistic-lock race: the version a
// writer based its mutation on no longer matches the version on disk.
type VersionConflictError struct {
	ID       string
	Expected int
	Found    int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("plan %q: version conflict: expected version %d, found %d", e.ID, e.Expected, e.Found)
}

// StateError reports an operation attempted against a plan whose current
// status does not permit it (distinct from a TransitionError, which is a
// rejected status change).
type StateError struct {
	ID     string
	Status Status
	Op     string
	Need   string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("plan %q: cannot %s while %s (requires %s)", e.ID, e.Op, e.Status, e.Need)
}

// StepRangeError reports a step index outside a plan's step list.
type StepRangeError struct {
	ID    string
	Step  int
	Steps int
}

func (e *StepRangeError) Error() string {
	return fmt.Sprintf("plan %q: step index %d out of range (plan has %d steps)", e.ID, e.Step, e.Steps)
}

// ParseError reports a malformed plan document. Directory scans skip
// files that fail to parse; direct reads surface the error to the caller.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing plan file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
