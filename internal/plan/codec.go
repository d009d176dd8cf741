package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// The on-disk plan document is a metadata block of `key: value` lines
// (scalar values, or an indented list under a bare `key:`), a blank line,
// then the body: an optional `## Steps` section holding the numbered step
// list, an optional `## Context` section, and optional trailing free text.
//
// Marshal is the canonical writer and Unmarshal the strict reader for that
// grammar. Marshal is deterministic and Unmarshal(Marshal(p)) reproduces p,
// which is what makes write→read→write yield byte-identical documents.
// Plan.Context, Plan.Body, and step fields are stored whitespace-trimmed;
// the codec enforces this on both paths so the identity holds.

// planMeta is the strict schema for the metadata block. Unknown keys,
// duplicate keys, and type mismatches are decode failures, keeping the
// grammar an explicit compatibility contract instead of best-effort
// string slicing.
type planMeta struct {
	ID                 string        `yaml:"id"`
	Title              string        `yaml:"title"`
	Status             string        `yaml:"status"`
	Version            int           `yaml:"version"`
	CreatedAt          string        `yaml:"created_at"`
	UpdatedAt          string        `yaml:"updated_at"`
	ToolsRequired      []string      `yaml:"tools_required"`
	ExecutorModel      string        `yaml:"executor_model"`
	ExecutionSession   string        `yaml:"execution_session"`
	ExecutionStartedAt string        `yaml:"execution_started_at"`
	ExecutionEndedAt   string        `yaml:"execution_ended_at"`
	ResultSummary      string        `yaml:"result_summary"`
	Scripts            []ScriptEntry `yaml:"scripts"`
}

var (
	numberedRe = regexp.MustCompile(`^\d+\.\s`)
	stepLineRe = regexp.MustCompile(`^(\d+)\.\s+(.+) \((\S+): (.*?)(?: → (.+))?\)$`)
)

// Marshal renders a plan into its canonical document form.
func Marshal(p *Plan) []byte {
	var b strings.Builder
	writeMeta(&b, p)
	if len(p.Steps) > 0 {
		b.WriteString("\n## Steps\n\n")
		for i, s := range p.Steps {
			b.WriteString(FormatStepLine(i+1, s))
			b.WriteByte('\n')
		}
	}
	if p.Context != "" {
		b.WriteString("\n## Context\n\n")
		b.WriteString(p.Context)
		b.WriteByte('\n')
	}
	if p.Body != "" {
		b.WriteByte('\n')
		b.WriteString(p.Body)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Unmarshal parses a plan document, strictly. Use it for direct reads of a
// known file; directory scans wrap it and skip files that fail.
func Unmarshal(data []byte) (*Plan, error) {
	metaText, bodyText := splitDocument(string(data))
	if strings.TrimSpace(metaText) == "" {
		return nil, fmt.Errorf("missing metadata block")
	}

	var meta planMeta
	dec := yaml.NewDecoder(strings.NewReader(metaText))
	dec.KnownFields(true)
	if err := dec.Decode(&meta); err != nil {
		return nil, fmt.Errorf("metadata block: %w", err)
	}

	if meta.ID == "" {
		return nil, fmt.Errorf("metadata block: id is required")
	}
	if meta.Title == "" {
		return nil, fmt.Errorf("metadata block: title is required")
	}
	if err := ValidateStatus(Status(meta.Status)); err != nil {
		return nil, fmt.Errorf("metadata block: %w", err)
	}
	if meta.Version < 1 {
		return nil, fmt.Errorf("metadata block: version must be a positive integer, got %d", meta.Version)
	}
	if meta.CreatedAt == "" || meta.UpdatedAt == "" {
		return nil, fmt.Errorf("metadata block: created_at and updated_at are required")
	}

	steps, context, trail, err := parseBody(bodyText)
	if err != nil {
		return nil, err
	}

	if len(meta.Scripts) > 0 {
		if len(meta.Scripts) != len(steps) {
			return nil, fmt.Errorf("scripts list has %d entries for %d steps: must parallel the step list", len(meta.Scripts), len(steps))
		}
		for i, s := range meta.Scripts {
			if s.Step != i {
				return nil, fmt.Errorf("scripts entry %d: step index %d out of order", i, s.Step)
			}
			if err := ValidateScriptStatus(s.Status); err != nil {
				return nil, fmt.Errorf("scripts entry %d: %w", i, err)
			}
		}
	}

	return &Plan{
		ID:                 meta.ID,
		Title:              meta.Title,
		Status:             Status(meta.Status),
		Version:            meta.Version,
		CreatedAt:          meta.CreatedAt,
		UpdatedAt:          meta.UpdatedAt,
		Steps:              steps,
		ToolsRequired:      meta.ToolsRequired,
		Context:            context,
		Body:               trail,
		ExecutorModel:      meta.ExecutorModel,
		ExecutionSession:   meta.ExecutionSession,
		ExecutionStartedAt: meta.ExecutionStartedAt,
		ExecutionEndedAt:   meta.ExecutionEndedAt,
		ResultSummary:      meta.ResultSummary,
		Scripts:            meta.Scripts,
	}, nil
}

// FormatStepLine renders one step as the numbered line the document body
// uses: `N. <description> (<tool>: <operation>[ → <target>])`.
func FormatStepLine(n int, s Step) string {
	if s.Target != "" {
		return fmt.Sprintf("%d. %s (%s: %s → %s)", n, s.Description, s.Tool, s.Operation, s.Target)
	}
	return fmt.Sprintf("%d. %s (%s: %s)", n, s.Description, s.Tool, s.Operation)
}

// ParseStepText parses the step-per-line text form used when proposing a
// plan: each non-blank line is `<description> (<tool>: <operation>[ →
// <target>])`, with an optional leading `N. ` ordinal.
func ParseStepText(text string) ([]Step, error) {
	var steps []Step
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !numberedRe.MatchString(line) {
			line = fmt.Sprintf("%d. %s", len(steps)+1, line)
		}
		st, err := parseStepLine(line)
		if err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, nil
}

// --- internals ---

// splitDocument separates the metadata block (everything up to the first
// blank line) from the body.
func splitDocument(doc string) (meta, body string) {
	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			return strings.Join(lines[:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	return doc, ""
}

// parseBody walks the document body: a `## Steps` section with numbered
// lines, a `## Context` section, then anything else verbatim as trailing
// free text. A numbered line inside Steps that does not match the step
// grammar is a parse failure; everything outside the two known sections is
// trailing text, never an error.
func parseBody(body string) (steps []Step, context, trail string, err error) {
	lines := strings.Split(body, "\n")
	var contextLines []string
	section := ""

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if trimmed == "## Steps" && section == "" && steps == nil {
			section = "steps"
			continue
		}
		if trimmed == "## Context" && section != "context" && contextLines == nil {
			section = "context"
			continue
		}
		if section == "context" {
			if strings.HasPrefix(trimmed, "## ") {
				// A further heading ends the context section; the rest of
				// the document is the trailing body, verbatim.
				return steps, joinTrimmed(contextLines), strings.TrimSpace(strings.Join(lines[i:], "\n")), nil
			}
			contextLines = append(contextLines, line)
			continue
		}
		if trimmed == "" {
			continue
		}
		if section == "steps" && numberedRe.MatchString(trimmed) {
			st, perr := parseStepLine(trimmed)
			if perr != nil {
				return nil, "", "", perr
			}
			steps = append(steps, st)
			continue
		}
		// An unknown heading, prose outside a section, or a non-numbered
		// line inside Steps: the trailing body starts here.
		return steps, joinTrimmed(contextLines), strings.TrimSpace(strings.Join(lines[i:], "\n")), nil
	}
	return steps, joinTrimmed(contextLines), "", nil
}

func joinTrimmed(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func parseStepLine(line string) (Step, error) {
	m := stepLineRe.FindStringSubmatch(line)
	if m == nil {
		return Step{}, fmt.Errorf("step line %q does not match `N. <description> (<tool>: <operation>[ → <target>])`", line)
	}
	return Step{
		Description: strings.TrimSpace(m[2]),
		Tool:        m[3],
		Operation:   strings.TrimSpace(m[4]),
		Target:      strings.TrimSpace(m[5]),
	}, nil
}

// writeMeta emits the metadata block in a fixed field order. Optional
// fields are omitted when empty so a freshly proposed plan stays minimal.
func writeMeta(b *strings.Builder, p *Plan) {
	writeScalar(b, "id", p.ID)
	writeScalar(b, "title", p.Title)
	writeScalar(b, "status", string(p.Status))
	fmt.Fprintf(b, "version: %d\n", p.Version)
	writeScalar(b, "created_at", p.CreatedAt)
	writeScalar(b, "updated_at", p.UpdatedAt)
	if len(p.ToolsRequired) > 0 {
		b.WriteString("tools_required:\n")
		for _, t := range p.ToolsRequired {
			b.WriteString("  - ")
			b.WriteString(yamlScalar(t))
			b.WriteByte('\n')
		}
	}
	if p.ExecutorModel != "" {
		writeScalar(b, "executor_model", p.ExecutorModel)
	}
	if p.ExecutionSession != "" {
		writeScalar(b, "execution_session", p.ExecutionSession)
	}
	if p.ExecutionStartedAt != "" {
		writeScalar(b, "execution_started_at", p.ExecutionStartedAt)
	}
	if p.ExecutionEndedAt != "" {
		writeScalar(b, "execution_ended_at", p.ExecutionEndedAt)
	}
	if p.ResultSummary != "" {
		writeScalar(b, "result_summary", p.ResultSummary)
	}
	if len(p.Scripts) > 0 {
		b.WriteString("scripts:\n")
		for _, s := range p.Scripts {
			fmt.Fprintf(b, "  - {step: %d, status: %s", s.Step, s.Status)
			if s.Summary != "" {
				fmt.Fprintf(b, ", summary: %s", strconv.Quote(s.Summary))
			}
			if s.Error != "" {
				fmt.Fprintf(b, ", error: %s", strconv.Quote(s.Error))
			}
			b.WriteString("}\n")
		}
	}
}

func writeScalar(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(yamlScalar(value))
	b.WriteByte('\n')
}

// yamlScalar renders a string value, quoting only when the plain form
// would be misread. The rule is deterministic, so re-serializing a parsed
// document reproduces it exactly.
func yamlScalar(s string) string {
	if needsQuote(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	if s != strings.TrimSpace(s) {
		return true
	}
	if strings.ContainsAny(s, "\n\r\t\"\\,{}[]") {
		return true
	}
	if strings.Contains(s, ": ") || strings.HasSuffix(s, ":") || strings.Contains(s, " #") {
		return true
	}
	switch s[0] {
	case '-', '?', ':', '#', '&', '*', '!', '|', '>', '\'', '%', '@', '`':
		return true
	}
	return false
}
