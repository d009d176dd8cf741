package plan

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestMarshal_CanonicalLayout(t *testing.T) {
	p := &Plan{
		ID:        "a1b2c3d4",
		Title:     "Add healthcheck",
		Status:    StatusProposed,
		Version:   1,
		CreatedAt: "2026-08-24T10:00:00Z",
		UpdatedAt: "2026-08-24T10:00:00Z",
		Steps: []Step{
			{Description: "Probe endpoint", Tool: "bash", Operation: "curl localhost:8080/healthz"},
		},
		ToolsRequired: []string{"bash"},
		Context:       "Requested by ops.",
	}

	want := "id: a1b2c3d4\n" +
		"title: Add healthcheck\n" +
		"status: proposed\n" +
		"version: 1\n" +
		"created_at: 2026-08-24T10:00:00Z\n" +
		"updated_at: 2026-08-24T10:00:00Z\n" +
		"tools_required:\n" +
		"  - bash\n" +
		"\n## Steps\n\n" +
		"1. Probe endpoint (bash: curl localhost:8080/healthz)\n" +
		"\n## Context\n\n" +
		"Requested by ops.\n"

	if got := string(Marshal(p)); got != want {
		t.Errorf("canonical document mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestMarshalUnmarshal_RoundTripIsByteIdentical(t *testing.T) {
	p := &Plan{
		ID:        "ab12cd34",
		Title:     "Tidy the cache layer",
		Status:    StatusExecuting,
		Version:   3,
		CreatedAt: "2026-08-24T10:00:00Z",
		UpdatedAt: "2026-08-24T11:30:00Z",
		Steps: []Step{
			{Description: "Install dependencies", Tool: "bash", Operation: "npm ci"},
			{Description: "Write service config", Tool: "write_file", Operation: "create", Target: "config/app.json"},
		},
		ToolsRequired:      []string{"bash", "write_file"},
		Context:            "The cache layer grew organically.\nTwo passes needed: sweep, then compact.",
		Body:               "## Feedback\n\nLooks risky, narrow the sweep.",
		ExecutorModel:      "fast-small",
		ExecutionSession:   "sess-81f2",
		ExecutionStartedAt: "2026-08-24T11:00:00Z",
		Scripts: []ScriptEntry{
			{Step: 0, Status: ScriptSuccess, Summary: "installed 41 packages"},
			{Step: 1, Status: ScriptPending},
		},
	}

	first := Marshal(p)
	parsed, err := Unmarshal(first)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	second := Marshal(parsed)
	if !bytes.Equal(first, second) {
		t.Errorf("re-serialized document differs:\nfirst:\n%s\nsecond:\n%s", first, second)
	}

	if !reflect.DeepEqual(parsed.Steps, p.Steps) {
		t.Errorf("steps changed across round trip: %+v", parsed.Steps)
	}
	if parsed.Context != p.Context {
		t.Errorf("context changed across round trip: %q", parsed.Context)
	}
	if parsed.Body != p.Body {
		t.Errorf("body changed across round trip: %q", parsed.Body)
	}
	if !reflect.DeepEqual(parsed.Scripts, p.Scripts) {
		t.Errorf("scripts changed across round trip: %+v", parsed.Scripts)
	}
}

func TestMarshal_QuotesAwkwardScalars(t *testing.T) {
	p := &Plan{
		ID:            "a1b2c3d4",
		Title:         "Rename: phase one",
		Status:        StatusCompleted,
		Version:       4,
		CreatedAt:     "2026-08-24T10:00:00Z",
		UpdatedAt:     "2026-08-24T12:00:00Z",
		ResultSummary: "done, both halves",
	}

	doc := string(Marshal(p))
	if !strings.Contains(doc, `title: "Rename: phase one"`) {
		t.Errorf("colon-space title not quoted:\n%s", doc)
	}
	if !strings.Contains(doc, `result_summary: "done, both halves"`) {
		t.Errorf("comma summary not quoted:\n%s", doc)
	}

	parsed, err := Unmarshal([]byte(doc))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if parsed.Title != p.Title || parsed.ResultSummary != p.ResultSummary {
		t.Errorf("quoted scalars did not survive: %q, %q", parsed.Title, parsed.ResultSummary)
	}
}

func TestUnmarshal_KeepsTrailingBodyVerbatim(t *testing.T) {
	doc := "id: a1b2c3d4\n" +
		"title: Add healthcheck\n" +
		"status: rejected\n" +
		"version: 2\n" +
		"created_at: 2026-08-24T10:00:00Z\n" +
		"updated_at: 2026-08-24T10:05:00Z\n" +
		"\n## Steps\n\n" +
		"1. Probe endpoint (bash: curl localhost:8080/healthz)\n" +
		"\n## Feedback\n\n" +
		"Use the readiness probe instead.\n" +
		"It already exists.\n"

	p, err := Unmarshal([]byte(doc))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	wantBody := "## Feedback\n\nUse the readiness probe instead.\nIt already exists."
	if p.Body != wantBody {
		t.Errorf("body = %q, want %q", p.Body, wantBody)
	}
	if len(p.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(p.Steps))
	}

	if got := string(Marshal(p)); got != doc {
		t.Errorf("re-serialization altered the document:\ngot:\n%s\nwant:\n%s", got, doc)
	}
}

func TestUnmarshal_RejectsMalformedDocuments(t *testing.T) {
	meta := "id: a1b2c3d4\n" +
		"title: Add healthcheck\n" +
		"status: proposed\n" +
		"version: 1\n" +
		"created_at: 2026-08-24T10:00:00Z\n" +
		"updated_at: 2026-08-24T10:00:00Z\n"

	cases := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"unknown metadata key", meta + "color: blue\n"},
		{"unknown status", strings.Replace(meta, "status: proposed", "status: galloping", 1)},
		{"zero version", strings.Replace(meta, "version: 1", "version: 0", 1)},
		{"non-integer version", strings.Replace(meta, "version: 1", "version: soon", 1)},
		{"missing id", strings.Replace(meta, "id: a1b2c3d4\n", "", 1)},
		{"duplicate key", "id: a1b2c3d4\n" + meta},
		{"malformed step line", meta + "\n## Steps\n\n1. do the thing\n"},
		{"unknown script status", meta + "scripts:\n  - {step: 0, status: wandering}\n\n## Steps\n\n1. Probe (bash: curl)\n"},
		{"scripts longer than steps", meta + "scripts:\n  - {step: 0, status: pending}\n  - {step: 1, status: pending}\n\n## Steps\n\n1. Probe (bash: curl)\n"},
	}

	for _, tc := range cases {
		if _, err := Unmarshal([]byte(tc.doc)); err == nil {
			t.Errorf("%s: expected an error, got none", tc.name)
		}
	}
}

func TestParseStepText_AcceptsOptionalOrdinals(t *testing.T) {
	text := "1. Install deps (bash: npm ci)\n" +
		"Write config (write_file: create → config/app.json)\n" +
		"\n" +
		"3. Check result (read_file: read → config/app.json)\n"

	steps, err := ParseStepText(text)
	if err != nil {
		t.Fatalf("ParseStepText: %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(steps))
	}
	if steps[0].Tool != "bash" || steps[0].Operation != "npm ci" {
		t.Errorf("first step = %+v", steps[0])
	}
	if steps[1].Target != "config/app.json" {
		t.Errorf("second step target = %q", steps[1].Target)
	}
	if steps[2].Description != "Check result" {
		t.Errorf("third step description = %q", steps[2].Description)
	}
}

func TestParseStepText_RejectsLinesWithoutToolCall(t *testing.T) {
	if _, err := ParseStepText("Install deps with npm"); err == nil {
		t.Error("expected an error for a line without (tool: operation)")
	}
}

func TestParseStepText_DescriptionMayContainParens(t *testing.T) {
	steps, err := ParseStepText("Run the (fast) cleanup (bash: make clean)")
	if err != nil {
		t.Fatalf("ParseStepText: %v", err)
	}
	if steps[0].Description != "Run the (fast) cleanup" {
		t.Errorf("description = %q", steps[0].Description)
	}
	if steps[0].Operation != "make clean" {
		t.Errorf("operation = %q", steps[0].Operation)
	}
}
