package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hylla/prioritas/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "prioritas.snapshot.v1"

// Snapshot represents snapshot data used by this package.
type Snapshot struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Projects   []SnapshotProject `json:"projects"`
	Ideas      []SnapshotIdea    `json:"ideas"`
}

// SnapshotProject represents snapshot project data used by this package.
type SnapshotProject struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
}

// SnapshotIdea represents snapshot idea data used by this package.
type SnapshotIdea struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"project_id"`
	PositionX  float64    `json:"position_x"`
	PositionY  float64    `json:"position_y"`
	Collapsed  bool       `json:"collapsed"`
	Content    string     `json:"content"`
	Details    string     `json:"details,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
}

// ExportSnapshot handles export snapshot.
func (s *Service) ExportSnapshot(ctx context.Context, includeArchived bool) (Snapshot, error) {
	projects, err := s.repo.ListProjects(ctx, includeArchived)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Projects:   make([]SnapshotProject, 0, len(projects)),
		Ideas:      make([]SnapshotIdea, 0),
	}
	for _, project := range projects {
		snap.Projects = append(snap.Projects, snapshotProjectFromDomain(project))

		ideas, listErr := s.repo.ListIdeas(ctx, project.ID, includeArchived)
		if listErr != nil {
			return Snapshot{}, listErr
		}
		for _, idea := range ideas {
			snap.Ideas = append(snap.Ideas, snapshotIdeaFromDomain(idea))
		}
	}

	snap.sort()
	return snap, nil
}

// ImportSnapshot handles import snapshot.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	snap.sort()

	for _, project := range snap.Projects {
		if err := s.upsertProject(ctx, project.toDomain()); err != nil {
			return err
		}
	}
	for _, idea := range snap.Ideas {
		di := idea.toDomain()
		if _, err := s.repo.GetIdea(ctx, di.ID); err == nil {
			if err := s.repo.UpdateIdea(ctx, di); err != nil {
				return err
			}
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.repo.CreateIdea(ctx, di); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the requested operation.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}

	projectIDs := map[string]struct{}{}
	for i, p := range s.Projects {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("projects[%d].id is required", i)
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("projects[%d].name is required", i)
		}
		if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
			return fmt.Errorf("projects[%d] timestamps are required", i)
		}
		if _, exists := projectIDs[p.ID]; exists {
			return fmt.Errorf("duplicate project id: %q", p.ID)
		}
		projectIDs[p.ID] = struct{}{}
	}

	ideaIDs := map[string]struct{}{}
	for i, idea := range s.Ideas {
		if strings.TrimSpace(idea.ID) == "" {
			return fmt.Errorf("ideas[%d].id is required", i)
		}
		if strings.TrimSpace(idea.ProjectID) == "" {
			return fmt.Errorf("ideas[%d].project_id is required", i)
		}
		if strings.TrimSpace(idea.Content) == "" {
			return fmt.Errorf("ideas[%d].content is required", i)
		}
		if idea.CreatedAt.IsZero() || idea.UpdatedAt.IsZero() {
			return fmt.Errorf("ideas[%d] timestamps are required", i)
		}
		if _, ok := projectIDs[idea.ProjectID]; !ok {
			return fmt.Errorf("ideas[%d] references unknown project_id %q", i, idea.ProjectID)
		}
		if _, exists := ideaIDs[idea.ID]; exists {
			return fmt.Errorf("duplicate idea id: %q", idea.ID)
		}
		ideaIDs[idea.ID] = struct{}{}
	}

	return nil
}

// upsertProject handles upsert project.
func (s *Service) upsertProject(ctx context.Context, p domain.Project) error {
	if _, err := s.repo.GetProject(ctx, p.ID); err == nil {
		return s.repo.UpdateProject(ctx, p)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.repo.CreateProject(ctx, p)
}

// sort handles sort.
func (s *Snapshot) sort() {
	sort.Slice(s.Projects, func(i, j int) bool {
		return s.Projects[i].ID < s.Projects[j].ID
	})
	sort.Slice(s.Ideas, func(i, j int) bool {
		a := s.Ideas[i]
		b := s.Ideas[j]
		if a.ProjectID == b.ProjectID {
			if a.CreatedAt.Equal(b.CreatedAt) {
				return a.ID < b.ID
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ProjectID < b.ProjectID
	})
}

// snapshotProjectFromDomain handles snapshot project from domain.
func snapshotProjectFromDomain(p domain.Project) SnapshotProject {
	return SnapshotProject{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
		ArchivedAt:  copyTimePtr(p.ArchivedAt),
	}
}

// snapshotIdeaFromDomain handles snapshot idea from domain.
func snapshotIdeaFromDomain(i domain.Idea) SnapshotIdea {
	return SnapshotIdea{
		ID:         i.ID,
		ProjectID:  i.ProjectID,
		PositionX:  i.Position.X,
		PositionY:  i.Position.Y,
		Collapsed:  i.Collapsed,
		Content:    i.Content,
		Details:    i.Details,
		CreatedAt:  i.CreatedAt.UTC(),
		UpdatedAt:  i.UpdatedAt.UTC(),
		ArchivedAt: copyTimePtr(i.ArchivedAt),
	}
}

// toDomain converts domain.
func (p SnapshotProject) toDomain() domain.Project {
	slug := strings.TrimSpace(p.Slug)
	if slug == "" {
		slug = fallbackSlug(p.Name)
	}
	return domain.Project{
		ID:          strings.TrimSpace(p.ID),
		Slug:        slug,
		Name:        strings.TrimSpace(p.Name),
		Description: strings.TrimSpace(p.Description),
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
		ArchivedAt:  copyTimePtr(p.ArchivedAt),
	}
}

// toDomain converts domain.
func (i SnapshotIdea) toDomain() domain.Idea {
	return domain.Idea{
		ID:         strings.TrimSpace(i.ID),
		ProjectID:  strings.TrimSpace(i.ProjectID),
		Position:   domain.Position{X: i.PositionX, Y: i.PositionY}.Sanitize(),
		Collapsed:  i.Collapsed,
		Content:    strings.TrimSpace(i.Content),
		Details:    strings.TrimSpace(i.Details),
		CreatedAt:  i.CreatedAt.UTC(),
		UpdatedAt:  i.UpdatedAt.UTC(),
		ArchivedAt: copyTimePtr(i.ArchivedAt),
	}
}

// fallbackSlug provides fallback slug.
func fallbackSlug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "-")
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	return strings.Trim(name, "-")
}

// copyTimePtr copies time ptr.
func copyTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	t := in.UTC().Truncate(time.Second)
	return &t
}
