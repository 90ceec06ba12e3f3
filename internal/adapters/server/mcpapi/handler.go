// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/prioritas/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing project and idea tools.
func NewHandler(cfg Config, ideas common.IdeaService) (*Handler, error) {
	if ideas == nil {
		return nil, fmt.Errorf("idea service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerProjectTools(mcpSrv, ideas)
	registerIdeaTools(mcpSrv, ideas)
	registerRollupTools(mcpSrv, ideas)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "prioritas"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerProjectTools registers project list/create tools.
func registerProjectTools(srv *mcpserver.MCPServer, ideas common.IdeaService) {
	srv.AddTool(
		mcp.NewTool(
			"prioritas.list_projects",
			mcp.WithDescription("List prioritization projects."),
			mcp.WithBoolean("include_archived", mcp.Description("Include archived projects")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projects, err := ideas.ListProjects(ctx, req.GetBool("include_archived", false))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"projects": projects,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_projects result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"prioritas.create_project",
			mcp.WithDescription("Create a new prioritization project."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
			mcp.WithString("description", mcp.Description("Optional project description")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := req.RequireString("name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			project, err := ideas.CreateProject(ctx, common.CreateProjectRequest{
				Name:        name,
				Description: req.GetString("description", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(project)
			if err != nil {
				return nil, fmt.Errorf("encode create_project result: %w", err)
			}
			return result, nil
		},
	)
}

// registerIdeaTools registers idea CRUD, move, collapse, and import tools.
func registerIdeaTools(srv *mcpserver.MCPServer, ideas common.IdeaService) {
	srv.AddTool(
		mcp.NewTool(
			"prioritas.list_ideas",
			mcp.WithDescription("List idea cards for one project in insertion order."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithBoolean("include_archived", mcp.Description("Include archived cards")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			cards, err := ideas.ListIdeas(ctx, projectID, req.GetBool("include_archived", false))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"ideas": cards,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_ideas result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"prioritas.create_idea",
			mcp.WithDescription("Create one idea card on the effort/value matrix. Coordinates are normalized to [0,1] where x grows with effort and y grows as value drops."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Card content")),
			mcp.WithString("details", mcp.Description("Optional markdown details")),
			mcp.WithNumber("x", mcp.Description("Normalized effort coordinate (defaults to 0.5)")),
			mcp.WithNumber("y", mcp.Description("Normalized value coordinate (defaults to 0.5)")),
			mcp.WithBoolean("collapsed", mcp.Description("Start the card collapsed")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			content, err := req.RequireString("content")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			idea, err := ideas.CreateIdea(ctx, common.CreateIdeaRequest{
				ProjectID: projectID,
				Content:   content,
				Details:   req.GetString("details", ""),
				Position: &common.PositionPayload{
					X: req.GetFloat("x", 0.5),
					Y: req.GetFloat("y", 0.5),
				},
				Collapsed: req.GetBool("collapsed", false),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(idea)
			if err != nil {
				return nil, fmt.Errorf("encode create_idea result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"prioritas.update_idea",
			mcp.WithDescription("Rewrite one card's content and details."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Idea identifier")),
			mcp.WithString("content", mcp.Required(), mcp.Description("New card content")),
			mcp.WithString("details", mcp.Description("New markdown details")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			ideaID, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			content, err := req.RequireString("content")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			idea, err := ideas.UpdateIdea(ctx, common.UpdateIdeaRequest{
				IdeaID:  ideaID,
				Content: content,
				Details: req.GetString("details", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(idea)
			if err != nil {
				return nil, fmt.Errorf("encode update_idea result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"prioritas.move_idea",
			mcp.WithDescription("Reposition one card on the matrix. Out-of-range coordinates are clamped to [0,1]."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Idea identifier")),
			mcp.WithNumber("x", mcp.Required(), mcp.Description("Normalized effort coordinate")),
			mcp.WithNumber("y", mcp.Required(), mcp.Description("Normalized value coordinate")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			ideaID, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			x, err := req.RequireFloat("x")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			y, err := req.RequireFloat("y")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			idea, err := ideas.MoveIdea(ctx, common.MoveIdeaRequest{IdeaID: ideaID, X: x, Y: y})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(idea)
			if err != nil {
				return nil, fmt.Errorf("encode move_idea result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"prioritas.collapse_idea",
			mcp.WithDescription("Collapse or expand one card."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Idea identifier")),
			mcp.WithBoolean("collapsed", mcp.Required(), mcp.Description("Target collapsed state")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			ideaID, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			collapsed, err := req.RequireBool("collapsed")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			idea, err := ideas.CollapseIdea(ctx, common.CollapseIdeaRequest{IdeaID: ideaID, Collapsed: collapsed})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(idea)
			if err != nil {
				return nil, fmt.Errorf("encode collapse_idea result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"prioritas.delete_idea",
			mcp.WithDescription("Archive or hard-delete one card."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Idea identifier")),
			mcp.WithString("mode", mcp.Description("Delete mode (defaults to the configured mode)"), mcp.Enum("archive", "hard")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			ideaID, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := ideas.DeleteIdea(ctx, common.DeleteIdeaRequest{
				IdeaID: ideaID,
				Mode:   req.GetString("mode", ""),
			}); err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"deleted": true,
			})
			if err != nil {
				return nil, fmt.Errorf("encode delete_idea result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"prioritas.restore_idea",
			mcp.WithDescription("Clear the archive marker on one card."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Idea identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			ideaID, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			idea, err := ideas.RestoreIdea(ctx, ideaID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(idea)
			if err != nil {
				return nil, fmt.Errorf("encode restore_idea result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"prioritas.import_ideas",
			mcp.WithDescription(`Create a batch of cards in one call. ideas_json is a JSON array of rows shaped like {"content":"...","details":"...","position":{"x":0.2,"y":0.8}}; rows without a position are spread along the matrix diagonal.`),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("ideas_json", mcp.Required(), mcp.Description("JSON array of import rows")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			rawRows, err := req.RequireString("ideas_json")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			var rows []common.ImportIdeaRow
			if err := json.Unmarshal([]byte(rawRows), &rows); err != nil {
				return mcp.NewToolResultError("invalid_request: decode ideas_json: " + err.Error()), nil
			}
			cards, err := ideas.ImportIdeas(ctx, common.ImportIdeasRequest{
				ProjectID: projectID,
				Ideas:     rows,
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"ideas": cards,
			})
			if err != nil {
				return nil, fmt.Errorf("encode import_ideas result: %w", err)
			}
			return result, nil
		},
	)
}

// registerRollupTools registers rollup and activity-ledger tools.
func registerRollupTools(srv *mcpserver.MCPServer, ideas common.IdeaService) {
	srv.AddTool(
		mcp.NewTool(
			"prioritas.quadrant_rollup",
			mcp.WithDescription("Summarize how one project's active cards spread across the four matrix quadrants."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			rollup, err := ideas.QuadrantRollup(ctx, projectID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(rollup)
			if err != nil {
				return nil, fmt.Errorf("encode quadrant_rollup result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"prioritas.list_change_events",
			mcp.WithDescription("List one project's activity ledger, newest first."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithNumber("limit", mcp.Description("Maximum rows to return (0 means all)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			events, err := ideas.ListChangeEvents(ctx, common.ListChangeEventsRequest{
				ProjectID: projectID,
				Limit:     req.GetInt("limit", 0),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"events": events,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_change_events result: %w", err)
			}
			return result, nil
		},
	)
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
