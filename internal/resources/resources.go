// Package resources implements the MCP resource handlers for the plan
// workflow.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (planward://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/planward/planward/internal/config"
	"github.com/planward/planward/internal/plan"
)

// Handler manages the plan resource endpoints.
type Handler struct {
	store plan.Store
	cfg   config.Config
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store plan.Store, cfg config.Config) *Handler {
	return &Handler{store: store, cfg: cfg}
}

// StatusResource returns the MCP resource definition for the plan
// store summary.
func (h *Handler) StatusResource() mcp.Resource {
	return mcp.NewResource(
		"planward://plans/status",
		"Plan Workflow Status",
		mcp.WithResourceDescription("Counts per status, the executing plan if any, the most recent activity, and the settings in effect"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStatus returns the plan store summary as JSON.
func (h *Handler) HandleStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	plans, err := h.store.List()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	data, err := json.MarshalIndent(buildSummary(plans, h.cfg), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
