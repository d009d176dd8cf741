package resources

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/planward/planward/internal/config"
	"github.com/planward/planward/internal/plan"
)

// summary is the JSON shape of the status resource.
type summary struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	Executing  *executingInfo `json:"executing,omitempty"`
	Stalled    []string       `json:"stalled,omitempty"`
	LastUpdate string         `json:"last_update,omitempty"`
	Config     config.Config  `json:"config"`
}

type executingInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StartedAt string `json:"started_at,omitempty"`
	Session   string `json:"session,omitempty"`
}

// buildSummary folds the plan list and the effective project settings
// into the resource payload. At most one plan can be executing, so the
// first hit wins.
func buildSummary(plans []*plan.Plan, cfg config.Config) summary {
	s := summary{
		Total:    len(plans),
		ByStatus: make(map[string]int),
		Config:   cfg,
	}
	for _, p := range plans {
		s.ByStatus[string(p.Status)]++
		if p.UpdatedAt > s.LastUpdate {
			s.LastUpdate = p.UpdatedAt
		}
		switch p.Status {
		case plan.StatusExecuting:
			if s.Executing == nil {
				s.Executing = &executingInfo{
					ID:        p.ID,
					Title:     p.Title,
					StartedAt: p.ExecutionStartedAt,
					Session:   p.ExecutionSession,
				}
			}
		case plan.StatusStalled:
			s.Stalled = append(s.Stalled, p.ID)
		}
	}
	return s
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
