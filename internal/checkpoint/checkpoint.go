// Package checkpoint persists per-plan execution progress as append-only
// JSONL session logs. Each record is one JSON object on one line. Readers
// skip lines they cannot parse, so a torn write degrades one record, never
// the whole log.
package checkpoint

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Record kinds, stored in the "type" field of every line.
const (
	KindStart = "execution_start"
	KindStep  = "step"
	KindEnd   = "execution_end"
)

// Step record statuses.
const (
	StepStarted = "started"
	StepSuccess = "success"
	StepFailed  = "failed"
)

// StartRecord marks the beginning of an execution attempt.
type StartRecord struct {
	Kind      string `json:"type"`
	PlanID    string `json:"plan_id"`
	Timestamp string `json:"timestamp"`
}

// StepRecord reports progress on one step.
type StepRecord struct {
	Kind          string `json:"type"`
	Step          int    `json:"step"`
	Tool          string `json:"tool"`
	Operation     string `json:"operation"`
	Status        string `json:"status"`
	ResultSummary string `json:"result_summary,omitempty"`
	Error         string `json:"error,omitempty"`
	Timestamp     string `json:"timestamp"`
}

// EndRecord marks the end of an execution attempt, successful or not.
type EndRecord struct {
	Kind      string `json:"type"`
	PlanID    string `json:"plan_id"`
	Status    string `json:"status"`
	Summary   string `json:"summary"`
	Timestamp string `json:"timestamp"`
}

// Log writes and reads the session logs in one directory, one JSONL file
// per plan.
type Log struct {
	dir string
}

// New returns a Log rooted at the given sessions directory. The directory
// is created on first write, not here.
func New(dir string) *Log {
	return &Log{dir: dir}
}

// FilePath returns the session log path for a plan id.
func (l *Log) FilePath(planID string) string {
	return filepath.Join(l.dir, "PLAN-"+planID+".jsonl")
}

// LogStart appends an execution_start record.
func (l *Log) LogStart(planID string) error {
	return l.append(planID, StartRecord{
		Kind:      KindStart,
		PlanID:    planID,
		Timestamp: now(),
	})
}

// LogStep appends a step record. The kind is always set here; the
// timestamp is filled in unless the caller provided one.
func (l *Log) LogStep(planID string, rec StepRecord) error {
	rec.Kind = KindStep
	if rec.Timestamp == "" {
		rec.Timestamp = now()
	}
	return l.append(planID, rec)
}

// LogEnd appends an execution_end record.
func (l *Log) LogEnd(planID, status, summary string) error {
	return l.append(planID, EndRecord{
		Kind:      KindEnd,
		PlanID:    planID,
		Status:    status,
		Summary:   summary,
		Timestamp: now(),
	})
}

// Steps returns every step record in a plan's session log, in append
// order. A missing log means no recorded progress, not an error.
func (l *Log) Steps(planID string) ([]StepRecord, error) {
	f, err := os.Open(l.FilePath(planID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening session log: %w", err)
	}
	defer f.Close()

	var steps []StepRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var probe struct {
			Kind string `json:"type"`
		}
		if err := json.Unmarshal(line, &probe); err != nil {
			continue // skip unreadable lines
		}
		if probe.Kind != KindStep {
			continue
		}
		var rec StepRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue // skip unreadable lines
		}
		steps = append(steps, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading session log: %w", err)
	}
	return steps, nil
}

// CompletedSteps counts the distinct step indexes that reached success.
// The count survives retried steps and repeated records.
func (l *Log) CompletedSteps(planID string) (int, error) {
	steps, err := l.Steps(planID)
	if err != nil {
		return 0, err
	}
	done := make(map[int]bool)
	for _, s := range steps {
		if s.Status == StepSuccess {
			done[s.Step] = true
		}
	}
	return len(done), nil
}

// append marshals one record and appends it as a single line.
func (l *Log) append(planID string, rec any) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("creating sessions directory: %w", err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding checkpoint record: %w", err)
	}
	f, err := os.OpenFile(l.FilePath(planID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening session log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("appending to session log: %w", err)
	}
	return nil
}
