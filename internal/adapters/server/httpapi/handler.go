// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/hylla/prioritas/internal/adapters/server/common"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the API subrouter mounted under the configured endpoint.
type Handler struct {
	ideas common.IdeaService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over the shared idea service.
func NewHandler(ideas common.IdeaService) *Handler {
	return &Handler{ideas: ideas}
}

// ServeHTTP routes one API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.ideas == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "idea service is not configured",
		})
		return
	}

	path := normalizePath(r.URL.Path)
	segments := strings.Split(path, "/")

	switch {
	case path == "projects":
		switch r.Method {
		case http.MethodGet:
			h.handleListProjects(w, r)
		case http.MethodPost:
			h.handleCreateProject(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case len(segments) == 2 && segments[0] == "projects":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleGetProject(w, r, segments[1])
	case len(segments) == 3 && segments[0] == "projects" && segments[2] == "rollup":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleQuadrantRollup(w, r, segments[1])
	case len(segments) == 3 && segments[0] == "projects" && segments[2] == "changes":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleListChangeEvents(w, r, segments[1])
	case path == "ideas":
		switch r.Method {
		case http.MethodGet:
			h.handleListIdeas(w, r)
		case http.MethodPost:
			h.handleCreateIdea(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case path == "ideas/import":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleImportIdeas(w, r)
	case len(segments) == 2 && segments[0] == "ideas":
		switch r.Method {
		case http.MethodGet:
			h.handleGetIdea(w, r, segments[1])
		case http.MethodPut:
			h.handleUpdateIdea(w, r, segments[1])
		case http.MethodDelete:
			h.handleDeleteIdea(w, r, segments[1])
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	case len(segments) == 3 && segments[0] == "ideas":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		switch segments[2] {
		case "move":
			h.handleMoveIdea(w, r, segments[1])
		case "collapse":
			h.handleCollapseIdea(w, r, segments[1])
		case "restore":
			h.handleRestoreIdea(w, r, segments[1])
		default:
			writeJSONError(w, http.StatusNotFound, APIError{
				Code:    "not_found",
				Message: "endpoint not found",
			})
		}
	default:
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	}
}

// handleListProjects serves GET `/projects`.
func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	includeArchived := queryBool(r, "include_archived")
	projects, err := h.ideas.ListProjects(r.Context(), includeArchived)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"projects": projects,
	})
}

// handleCreateProject serves POST `/projects`.
func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req common.CreateProjectRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	project, err := h.ideas.CreateProject(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// handleGetProject serves GET `/projects/{id}`.
func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request, projectID string) {
	project, err := h.ideas.GetProject(r.Context(), projectID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// handleQuadrantRollup serves GET `/projects/{id}/rollup`.
func (h *Handler) handleQuadrantRollup(w http.ResponseWriter, r *http.Request, projectID string) {
	rollup, err := h.ideas.QuadrantRollup(r.Context(), projectID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rollup)
}

// handleListChangeEvents serves GET `/projects/{id}/changes`.
func (h *Handler) handleListChangeEvents(w http.ResponseWriter, r *http.Request, projectID string) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSONError(w, http.StatusBadRequest, APIError{
				Code:    "invalid_request",
				Message: "limit must be a non-negative integer",
			})
			return
		}
		limit = parsed
	}

	events, err := h.ideas.ListChangeEvents(r.Context(), common.ListChangeEventsRequest{
		ProjectID: projectID,
		Limit:     limit,
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
	})
}

// handleListIdeas serves GET `/ideas`.
func (h *Handler) handleListIdeas(w http.ResponseWriter, r *http.Request) {
	projectID := strings.TrimSpace(r.URL.Query().Get("project_id"))
	if projectID == "" {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: "project_id is required",
		})
		return
	}
	ideas, err := h.ideas.ListIdeas(r.Context(), projectID, queryBool(r, "include_archived"))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ideas": ideas,
	})
}

// handleCreateIdea serves POST `/ideas`.
func (h *Handler) handleCreateIdea(w http.ResponseWriter, r *http.Request) {
	var req common.CreateIdeaRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	idea, err := h.ideas.CreateIdea(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idea)
}

// handleGetIdea serves GET `/ideas/{id}`.
func (h *Handler) handleGetIdea(w http.ResponseWriter, r *http.Request, ideaID string) {
	idea, err := h.ideas.GetIdea(r.Context(), ideaID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// handleUpdateIdea serves PUT `/ideas/{id}`.
func (h *Handler) handleUpdateIdea(w http.ResponseWriter, r *http.Request, ideaID string) {
	var req common.UpdateIdeaRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	req.IdeaID = ideaID
	idea, err := h.ideas.UpdateIdea(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// handleDeleteIdea serves DELETE `/ideas/{id}` honoring the optional `mode` query.
func (h *Handler) handleDeleteIdea(w http.ResponseWriter, r *http.Request, ideaID string) {
	err := h.ideas.DeleteIdea(r.Context(), common.DeleteIdeaRequest{
		IdeaID: ideaID,
		Mode:   r.URL.Query().Get("mode"),
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted": true,
	})
}

// handleMoveIdea serves POST `/ideas/{id}/move`.
func (h *Handler) handleMoveIdea(w http.ResponseWriter, r *http.Request, ideaID string) {
	var req common.MoveIdeaRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	req.IdeaID = ideaID
	idea, err := h.ideas.MoveIdea(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// handleCollapseIdea serves POST `/ideas/{id}/collapse`.
func (h *Handler) handleCollapseIdea(w http.ResponseWriter, r *http.Request, ideaID string) {
	var req common.CollapseIdeaRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	req.IdeaID = ideaID
	idea, err := h.ideas.CollapseIdea(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// handleRestoreIdea serves POST `/ideas/{id}/restore`.
func (h *Handler) handleRestoreIdea(w http.ResponseWriter, r *http.Request, ideaID string) {
	idea, err := h.ideas.RestoreIdea(r.Context(), ideaID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// handleImportIdeas serves POST `/ideas/import`.
func (h *Handler) handleImportIdeas(w http.ResponseWriter, r *http.Request) {
	var req common.ImportIdeasRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	ideas, err := h.ideas.ImportIdeas(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"ideas": ideas,
	})
}

// queryBool reads one boolean query flag, treating "1" and "true" as set.
func queryBool(r *http.Request, key string) bool {
	value := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key)))
	return value == "1" || value == "true"
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
