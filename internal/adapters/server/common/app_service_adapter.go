package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/prioritas/internal/app"
	"github.com/hylla/prioritas/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service idea and project APIs.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// ListProjects lists projects through app-level APIs.
func (a *AppServiceAdapter) ListProjects(ctx context.Context, includeArchived bool) ([]ProjectPayload, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	projects, err := a.service.ListProjects(ctx, includeArchived)
	if err != nil {
		return nil, mapAppError("list projects", err)
	}
	out := make([]ProjectPayload, 0, len(projects))
	for _, project := range projects {
		out = append(out, payloadFromProject(project))
	}
	return out, nil
}

// CreateProject creates one project through app-level APIs.
func (a *AppServiceAdapter) CreateProject(ctx context.Context, in CreateProjectRequest) (ProjectPayload, error) {
	if err := a.ready(); err != nil {
		return ProjectPayload{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ProjectPayload{}, fmt.Errorf("name is required: %w", ErrInvalidRequest)
	}
	project, err := a.service.CreateProject(ctx, name, strings.TrimSpace(in.Description))
	if err != nil {
		return ProjectPayload{}, mapAppError("create project", err)
	}
	return payloadFromProject(project), nil
}

// GetProject resolves one project by id.
func (a *AppServiceAdapter) GetProject(ctx context.Context, projectID string) (ProjectPayload, error) {
	if err := a.ready(); err != nil {
		return ProjectPayload{}, err
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return ProjectPayload{}, fmt.Errorf("project_id is required: %w", ErrInvalidRequest)
	}
	project, err := a.service.GetProject(ctx, projectID)
	if err != nil {
		return ProjectPayload{}, mapAppError("get project", err)
	}
	return payloadFromProject(project), nil
}

// ListIdeas lists one project's idea cards in insertion order.
func (a *AppServiceAdapter) ListIdeas(ctx context.Context, projectID string, includeArchived bool) ([]IdeaPayload, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required: %w", ErrInvalidRequest)
	}
	ideas, err := a.service.ListIdeas(ctx, projectID, includeArchived)
	if err != nil {
		return nil, mapAppError("list ideas", err)
	}
	out := make([]IdeaPayload, 0, len(ideas))
	for _, idea := range ideas {
		out = append(out, payloadFromIdea(idea))
	}
	return out, nil
}

// GetIdea resolves one idea card by id.
func (a *AppServiceAdapter) GetIdea(ctx context.Context, ideaID string) (IdeaPayload, error) {
	if err := a.ready(); err != nil {
		return IdeaPayload{}, err
	}
	ideaID = strings.TrimSpace(ideaID)
	if ideaID == "" {
		return IdeaPayload{}, fmt.Errorf("idea id is required: %w", ErrInvalidRequest)
	}
	idea, err := a.service.GetIdea(ctx, ideaID)
	if err != nil {
		return IdeaPayload{}, mapAppError("get idea", err)
	}
	return payloadFromIdea(idea), nil
}

// CreateIdea creates one idea card through app-level APIs.
func (a *AppServiceAdapter) CreateIdea(ctx context.Context, in CreateIdeaRequest) (IdeaPayload, error) {
	if err := a.ready(); err != nil {
		return IdeaPayload{}, err
	}
	if strings.TrimSpace(in.ProjectID) == "" {
		return IdeaPayload{}, fmt.Errorf("project_id is required: %w", ErrInvalidRequest)
	}
	position := domain.CenterPosition()
	if in.Position != nil {
		position = domain.Position{X: in.Position.X, Y: in.Position.Y}
	}
	idea, err := a.service.CreateIdea(ctx, app.CreateIdeaInput{
		ProjectID: strings.TrimSpace(in.ProjectID),
		Content:   in.Content,
		Details:   in.Details,
		Position:  position,
		Collapsed: in.Collapsed,
	})
	if err != nil {
		return IdeaPayload{}, mapAppError("create idea", err)
	}
	return payloadFromIdea(idea), nil
}

// UpdateIdea rewrites one card's content and details.
func (a *AppServiceAdapter) UpdateIdea(ctx context.Context, in UpdateIdeaRequest) (IdeaPayload, error) {
	if err := a.ready(); err != nil {
		return IdeaPayload{}, err
	}
	if strings.TrimSpace(in.IdeaID) == "" {
		return IdeaPayload{}, fmt.Errorf("idea id is required: %w", ErrInvalidRequest)
	}
	idea, err := a.service.UpdateIdea(ctx, app.UpdateIdeaInput{
		IdeaID:  strings.TrimSpace(in.IdeaID),
		Content: in.Content,
		Details: in.Details,
	})
	if err != nil {
		return IdeaPayload{}, mapAppError("update idea", err)
	}
	return payloadFromIdea(idea), nil
}

// MoveIdea repositions one card on the matrix.
func (a *AppServiceAdapter) MoveIdea(ctx context.Context, in MoveIdeaRequest) (IdeaPayload, error) {
	if err := a.ready(); err != nil {
		return IdeaPayload{}, err
	}
	if strings.TrimSpace(in.IdeaID) == "" {
		return IdeaPayload{}, fmt.Errorf("idea id is required: %w", ErrInvalidRequest)
	}
	idea, err := a.service.MoveIdea(ctx, strings.TrimSpace(in.IdeaID), domain.Position{X: in.X, Y: in.Y})
	if err != nil {
		return IdeaPayload{}, mapAppError("move idea", err)
	}
	return payloadFromIdea(idea), nil
}

// CollapseIdea toggles one card between collapsed and expanded.
func (a *AppServiceAdapter) CollapseIdea(ctx context.Context, in CollapseIdeaRequest) (IdeaPayload, error) {
	if err := a.ready(); err != nil {
		return IdeaPayload{}, err
	}
	if strings.TrimSpace(in.IdeaID) == "" {
		return IdeaPayload{}, fmt.Errorf("idea id is required: %w", ErrInvalidRequest)
	}
	idea, err := a.service.SetIdeaCollapsed(ctx, strings.TrimSpace(in.IdeaID), in.Collapsed)
	if err != nil {
		return IdeaPayload{}, mapAppError("collapse idea", err)
	}
	return payloadFromIdea(idea), nil
}

// DeleteIdea archives or hard-deletes one card depending on mode.
func (a *AppServiceAdapter) DeleteIdea(ctx context.Context, in DeleteIdeaRequest) error {
	if err := a.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(in.IdeaID) == "" {
		return fmt.Errorf("idea id is required: %w", ErrInvalidRequest)
	}
	mode, err := normalizeDeleteMode(in.Mode)
	if err != nil {
		return err
	}
	if err := a.service.DeleteIdea(ctx, strings.TrimSpace(in.IdeaID), mode); err != nil {
		return mapAppError("delete idea", err)
	}
	return nil
}

// RestoreIdea clears the archive marker on one card.
func (a *AppServiceAdapter) RestoreIdea(ctx context.Context, ideaID string) (IdeaPayload, error) {
	if err := a.ready(); err != nil {
		return IdeaPayload{}, err
	}
	ideaID = strings.TrimSpace(ideaID)
	if ideaID == "" {
		return IdeaPayload{}, fmt.Errorf("idea id is required: %w", ErrInvalidRequest)
	}
	idea, err := a.service.RestoreIdea(ctx, ideaID)
	if err != nil {
		return IdeaPayload{}, mapAppError("restore idea", err)
	}
	return payloadFromIdea(idea), nil
}

// ImportIdeas creates a batch of cards in one call.
func (a *AppServiceAdapter) ImportIdeas(ctx context.Context, in ImportIdeasRequest) ([]IdeaPayload, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ProjectID) == "" {
		return nil, fmt.Errorf("project_id is required: %w", ErrInvalidRequest)
	}
	if len(in.Ideas) == 0 {
		return nil, fmt.Errorf("ideas must not be empty: %w", ErrInvalidRequest)
	}

	rows := make([]app.ImportIdeaInput, 0, len(in.Ideas))
	for _, row := range in.Ideas {
		input := app.ImportIdeaInput{
			Content: row.Content,
			Details: row.Details,
		}
		if row.Position != nil {
			input.Position = &domain.Position{X: row.Position.X, Y: row.Position.Y}
		}
		rows = append(rows, input)
	}

	ideas, err := a.service.ImportIdeas(ctx, strings.TrimSpace(in.ProjectID), rows)
	if err != nil {
		return nil, mapAppError("import ideas", err)
	}
	out := make([]IdeaPayload, 0, len(ideas))
	for _, idea := range ideas {
		out = append(out, payloadFromIdea(idea))
	}
	return out, nil
}

// QuadrantRollup summarizes quadrant occupancy for one project.
func (a *AppServiceAdapter) QuadrantRollup(ctx context.Context, projectID string) (RollupPayload, error) {
	if err := a.ready(); err != nil {
		return RollupPayload{}, err
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return RollupPayload{}, fmt.Errorf("project_id is required: %w", ErrInvalidRequest)
	}
	rollup, err := a.service.QuadrantRollup(ctx, projectID)
	if err != nil {
		return RollupPayload{}, mapAppError("quadrant rollup", err)
	}
	return RollupPayload{
		ProjectID:   rollup.ProjectID,
		TotalIdeas:  rollup.TotalIdeas,
		QuickWins:   rollup.QuickWins,
		BigBets:     rollup.BigBets,
		Incremental: rollup.Incremental,
		MoneyPit:    rollup.MoneyPit,
	}, nil
}

// ListChangeEvents returns one project's activity ledger, newest first.
func (a *AppServiceAdapter) ListChangeEvents(ctx context.Context, in ListChangeEventsRequest) ([]ChangeEventPayload, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	projectID := strings.TrimSpace(in.ProjectID)
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required: %w", ErrInvalidRequest)
	}
	if in.Limit < 0 {
		return nil, fmt.Errorf("limit must be >= 0: %w", ErrInvalidRequest)
	}
	events, err := a.service.ListProjectChangeEvents(ctx, projectID, in.Limit)
	if err != nil {
		return nil, mapAppError("list change events", err)
	}
	out := make([]ChangeEventPayload, 0, len(events))
	for _, event := range events {
		out = append(out, ChangeEventPayload{
			ID:         event.ID,
			ProjectID:  event.ProjectID,
			IdeaID:     event.IdeaID,
			Operation:  string(event.Operation),
			Metadata:   event.Metadata,
			OccurredAt: event.OccurredAt.UTC(),
		})
	}
	return out, nil
}

// ready guards against a half-wired adapter.
func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	return nil
}

// normalizeDeleteMode validates and canonicalizes one delete mode string.
func normalizeDeleteMode(raw string) (app.DeleteMode, error) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	switch mode {
	case "":
		return "", nil
	case string(app.DeleteModeArchive):
		return app.DeleteModeArchive, nil
	case string(app.DeleteModeHard):
		return app.DeleteModeHard, nil
	default:
		return "", fmt.Errorf("mode %q is unsupported: %w", raw, ErrInvalidRequest)
	}
}

// payloadFromProject maps one domain project into one transport DTO row.
func payloadFromProject(project domain.Project) ProjectPayload {
	return ProjectPayload{
		ID:          project.ID,
		Slug:        project.Slug,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt.UTC(),
		UpdatedAt:   project.UpdatedAt.UTC(),
		ArchivedAt:  project.ArchivedAt,
	}
}

// payloadFromIdea maps one domain idea into one transport DTO row.
func payloadFromIdea(idea domain.Idea) IdeaPayload {
	return IdeaPayload{
		ID:         idea.ID,
		ProjectID:  idea.ProjectID,
		Position:   PositionPayload{X: idea.Position.X, Y: idea.Position.Y},
		Quadrant:   string(idea.Position.Quadrant()),
		Collapsed:  idea.Collapsed,
		Content:    idea.Content,
		Details:    idea.Details,
		CreatedAt:  idea.CreatedAt.UTC(),
		UpdatedAt:  idea.UpdatedAt.UTC(),
		ArchivedAt: idea.ArchivedAt,
	}
}

// mapAppError maps app/domain errors into transport-layer error sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidContent),
		errors.Is(err, domain.ErrInvalidProject),
		errors.Is(err, app.ErrInvalidDeleteMode):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
