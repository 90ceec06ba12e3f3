package app

import (
	"context"
	"time"

	"github.com/hylla/prioritas/internal/domain"
)

// DeleteMode represents a selectable mode.
type DeleteMode string

// DeleteModeArchive and related constants define package defaults.
const (
	DeleteModeArchive DeleteMode = "archive"
	DeleteModeHard    DeleteMode = "hard"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	DefaultDeleteMode DeleteMode
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service represents service data used by this package.
type Service struct {
	repo              Repository
	idGen             IDGenerator
	clock             Clock
	defaultDeleteMode DeleteMode
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.DefaultDeleteMode == "" {
		cfg.DefaultDeleteMode = DeleteModeArchive
	}

	return &Service{
		repo:              repo,
		idGen:             idGen,
		clock:             clock,
		defaultDeleteMode: cfg.DefaultDeleteMode,
	}
}

// EnsureDefaultProject ensures default project.
func (s *Service) EnsureDefaultProject(ctx context.Context) (domain.Project, error) {
	projects, err := s.repo.ListProjects(ctx, false)
	if err != nil {
		return domain.Project{}, err
	}
	if len(projects) > 0 {
		return projects[0], nil
	}

	project, err := domain.NewProject(s.idGen(), "Matrix", "Default project", s.clock())
	if err != nil {
		return domain.Project{}, err
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// CreateProject creates project.
func (s *Service) CreateProject(ctx context.Context, name, description string) (domain.Project, error) {
	project, err := domain.NewProject(s.idGen(), name, description, s.clock())
	if err != nil {
		return domain.Project{}, err
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// UpdateProjectInput holds input values for update project operations.
type UpdateProjectInput struct {
	ProjectID   string
	Name        string
	Description string
}

// UpdateProject updates state for the requested operation.
func (s *Service) UpdateProject(ctx context.Context, in UpdateProjectInput) (domain.Project, error) {
	project, err := s.repo.GetProject(ctx, in.ProjectID)
	if err != nil {
		return domain.Project{}, err
	}
	if err := project.UpdateDetails(in.Name, in.Description, s.clock()); err != nil {
		return domain.Project{}, err
	}
	if err := s.repo.UpdateProject(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// ListProjects lists projects.
func (s *Service) ListProjects(ctx context.Context, includeArchived bool) ([]domain.Project, error) {
	return s.repo.ListProjects(ctx, includeArchived)
}

// GetProject gets project.
func (s *Service) GetProject(ctx context.Context, projectID string) (domain.Project, error) {
	return s.repo.GetProject(ctx, projectID)
}

// CreateIdeaInput holds input values for create idea operations.
type CreateIdeaInput struct {
	ProjectID string
	Content   string
	Details   string
	Position  domain.Position
	Collapsed bool
}

// CreateIdea creates idea.
func (s *Service) CreateIdea(ctx context.Context, in CreateIdeaInput) (domain.Idea, error) {
	idea, err := domain.NewIdea(domain.IdeaInput{
		ID:        s.idGen(),
		ProjectID: in.ProjectID,
		Position:  in.Position,
		Collapsed: in.Collapsed,
		Content:   in.Content,
		Details:   in.Details,
	}, s.clock())
	if err != nil {
		return domain.Idea{}, err
	}
	if err := s.repo.CreateIdea(ctx, idea); err != nil {
		return domain.Idea{}, err
	}
	return idea, nil
}

// UpdateIdeaInput holds input values for update idea operations.
type UpdateIdeaInput struct {
	IdeaID  string
	Content string
	Details string
}

// UpdateIdea updates state for the requested operation.
func (s *Service) UpdateIdea(ctx context.Context, in UpdateIdeaInput) (domain.Idea, error) {
	idea, err := s.repo.GetIdea(ctx, in.IdeaID)
	if err != nil {
		return domain.Idea{}, err
	}
	if err := idea.UpdateContent(in.Content, in.Details, s.clock()); err != nil {
		return domain.Idea{}, err
	}
	if err := s.repo.UpdateIdea(ctx, idea); err != nil {
		return domain.Idea{}, err
	}
	return idea, nil
}

// MoveIdea moves idea to a new matrix position.
func (s *Service) MoveIdea(ctx context.Context, ideaID string, pos domain.Position) (domain.Idea, error) {
	idea, err := s.repo.GetIdea(ctx, ideaID)
	if err != nil {
		return domain.Idea{}, err
	}
	idea.MoveTo(pos, s.clock())
	if err := s.repo.UpdateIdea(ctx, idea); err != nil {
		return domain.Idea{}, err
	}
	return idea, nil
}

// SetIdeaCollapsed toggles the collapsed rendering state of an idea.
func (s *Service) SetIdeaCollapsed(ctx context.Context, ideaID string, collapsed bool) (domain.Idea, error) {
	idea, err := s.repo.GetIdea(ctx, ideaID)
	if err != nil {
		return domain.Idea{}, err
	}
	idea.SetCollapsed(collapsed, s.clock())
	if err := s.repo.UpdateIdea(ctx, idea); err != nil {
		return domain.Idea{}, err
	}
	return idea, nil
}

// DeleteIdea deletes idea.
func (s *Service) DeleteIdea(ctx context.Context, ideaID string, mode DeleteMode) error {
	if mode == "" {
		mode = s.defaultDeleteMode
	}

	switch mode {
	case DeleteModeArchive:
		idea, err := s.repo.GetIdea(ctx, ideaID)
		if err != nil {
			return err
		}
		idea.Archive(s.clock())
		return s.repo.UpdateIdea(ctx, idea)
	case DeleteModeHard:
		return s.repo.DeleteIdea(ctx, ideaID)
	default:
		return ErrInvalidDeleteMode
	}
}

// RestoreIdea restores idea.
func (s *Service) RestoreIdea(ctx context.Context, ideaID string) (domain.Idea, error) {
	idea, err := s.repo.GetIdea(ctx, ideaID)
	if err != nil {
		return domain.Idea{}, err
	}
	idea.Restore(s.clock())
	if err := s.repo.UpdateIdea(ctx, idea); err != nil {
		return domain.Idea{}, err
	}
	return idea, nil
}

// ListIdeas lists ideas.
func (s *Service) ListIdeas(ctx context.Context, projectID string, includeArchived bool) ([]domain.Idea, error) {
	return s.repo.ListIdeas(ctx, projectID, includeArchived)
}

// GetIdea gets idea.
func (s *Service) GetIdea(ctx context.Context, ideaID string) (domain.Idea, error) {
	return s.repo.GetIdea(ctx, ideaID)
}

// ImportIdeaInput holds one idea row of a batch import.
type ImportIdeaInput struct {
	Content  string
	Details  string
	Position *domain.Position
}

// ImportIdeas creates a batch of ideas in one call. Rows without an
// explicit position are spread along the matrix diagonal so imported
// cards do not stack on a single cell.
func (s *Service) ImportIdeas(ctx context.Context, projectID string, rows []ImportIdeaInput) ([]domain.Idea, error) {
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	out := make([]domain.Idea, 0, len(rows))
	for i, row := range rows {
		pos := spreadPosition(i, len(rows))
		if row.Position != nil {
			pos = *row.Position
		}
		idea, err := domain.NewIdea(domain.IdeaInput{
			ID:        s.idGen(),
			ProjectID: projectID,
			Position:  pos,
			Content:   row.Content,
			Details:   row.Details,
		}, s.clock())
		if err != nil {
			return nil, err
		}
		out = append(out, idea)
	}
	if err := s.repo.ImportIdeas(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// QuadrantRollup counts a project's active ideas per matrix quadrant.
func (s *Service) QuadrantRollup(ctx context.Context, projectID string) (domain.QuadrantRollup, error) {
	ideas, err := s.repo.ListIdeas(ctx, projectID, false)
	if err != nil {
		return domain.QuadrantRollup{}, err
	}
	rollup := domain.QuadrantRollup{ProjectID: projectID, TotalIdeas: len(ideas)}
	for _, idea := range ideas {
		switch idea.Quadrant() {
		case domain.QuadrantQuickWins:
			rollup.QuickWins++
		case domain.QuadrantBigBets:
			rollup.BigBets++
		case domain.QuadrantIncremental:
			rollup.Incremental++
		case domain.QuadrantMoneyPit:
			rollup.MoneyPit++
		}
	}
	return rollup, nil
}

// ListProjectChangeEvents lists the newest ledger entries for a project.
func (s *Service) ListProjectChangeEvents(ctx context.Context, projectID string, limit int) ([]domain.ChangeEvent, error) {
	return s.repo.ListProjectChangeEvents(ctx, projectID, limit)
}

// spreadPosition places the i-th of n unpositioned imports along the
// diagonal, away from the exact edges.
func spreadPosition(i, n int) domain.Position {
	if n <= 1 {
		return domain.CenterPosition()
	}
	step := float64(i) / float64(n-1)
	return domain.Position{
		X: 0.1 + 0.8*step,
		Y: 0.1 + 0.8*step,
	}
}
