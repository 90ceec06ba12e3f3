// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// PositionPayload carries one normalized matrix coordinate pair.
type PositionPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IdeaPayload represents one idea card surfaced by transport adapters.
type IdeaPayload struct {
	ID         string          `json:"id"`
	ProjectID  string          `json:"project_id"`
	Position   PositionPayload `json:"position"`
	Quadrant   string          `json:"quadrant"`
	Collapsed  bool            `json:"collapsed"`
	Content    string          `json:"content"`
	Details    string          `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	ArchivedAt *time.Time      `json:"archived_at,omitempty"`
}

// ProjectPayload represents one project surfaced by transport adapters.
type ProjectPayload struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
}

// RollupPayload summarizes quadrant occupancy for one project.
type RollupPayload struct {
	ProjectID   string `json:"project_id"`
	TotalIdeas  int    `json:"total_ideas"`
	QuickWins   int    `json:"quick_wins"`
	BigBets     int    `json:"big_bets"`
	Incremental int    `json:"incremental"`
	MoneyPit    int    `json:"money_pit"`
}

// ChangeEventPayload represents one activity-ledger row.
type ChangeEventPayload struct {
	ID         int64             `json:"id"`
	ProjectID  string            `json:"project_id"`
	IdeaID     string            `json:"idea_id"`
	Operation  string            `json:"operation"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// CreateProjectRequest captures input for new projects.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateIdeaRequest captures input for new idea cards.
type CreateIdeaRequest struct {
	ProjectID string           `json:"project_id"`
	Content   string           `json:"content"`
	Details   string           `json:"details,omitempty"`
	Position  *PositionPayload `json:"position,omitempty"`
	Collapsed bool             `json:"collapsed,omitempty"`
}

// UpdateIdeaRequest captures content edits for one idea card.
type UpdateIdeaRequest struct {
	IdeaID  string `json:"-"`
	Content string `json:"content"`
	Details string `json:"details,omitempty"`
}

// MoveIdeaRequest captures one card move on the matrix.
type MoveIdeaRequest struct {
	IdeaID string  `json:"-"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// CollapseIdeaRequest captures one card collapse toggle.
type CollapseIdeaRequest struct {
	IdeaID    string `json:"-"`
	Collapsed bool   `json:"collapsed"`
}

// DeleteIdeaRequest captures one delete with its mode.
type DeleteIdeaRequest struct {
	IdeaID string
	Mode   string
}

// ImportIdeaRow is one row of a batch import request.
type ImportIdeaRow struct {
	Content  string           `json:"content"`
	Details  string           `json:"details,omitempty"`
	Position *PositionPayload `json:"position,omitempty"`
}

// ImportIdeasRequest captures one batch import of idea cards.
type ImportIdeasRequest struct {
	ProjectID string          `json:"project_id"`
	Ideas     []ImportIdeaRow `json:"ideas"`
}

// ListChangeEventsRequest captures list filters for the activity ledger.
type ListChangeEventsRequest struct {
	ProjectID string
	Limit     int
}

// IdeaService defines the app-facing surface both transport adapters consume.
type IdeaService interface {
	ListProjects(ctx context.Context, includeArchived bool) ([]ProjectPayload, error)
	CreateProject(ctx context.Context, in CreateProjectRequest) (ProjectPayload, error)
	GetProject(ctx context.Context, projectID string) (ProjectPayload, error)

	ListIdeas(ctx context.Context, projectID string, includeArchived bool) ([]IdeaPayload, error)
	GetIdea(ctx context.Context, ideaID string) (IdeaPayload, error)
	CreateIdea(ctx context.Context, in CreateIdeaRequest) (IdeaPayload, error)
	UpdateIdea(ctx context.Context, in UpdateIdeaRequest) (IdeaPayload, error)
	MoveIdea(ctx context.Context, in MoveIdeaRequest) (IdeaPayload, error)
	CollapseIdea(ctx context.Context, in CollapseIdeaRequest) (IdeaPayload, error)
	DeleteIdea(ctx context.Context, in DeleteIdeaRequest) error
	RestoreIdea(ctx context.Context, ideaID string) (IdeaPayload, error)
	ImportIdeas(ctx context.Context, in ImportIdeasRequest) ([]IdeaPayload, error)

	QuadrantRollup(ctx context.Context, projectID string) (RollupPayload, error)
	ListChangeEvents(ctx context.Context, in ListChangeEventsRequest) ([]ChangeEventPayload, error)
}
