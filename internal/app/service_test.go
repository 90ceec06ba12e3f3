package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hylla/prioritas/internal/domain"
)

type fakeRepo struct {
	projects map[string]domain.Project
	ideas    map[string]domain.Idea
	events   []domain.ChangeEvent

	failUpdateIdea bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		projects: map[string]domain.Project{},
		ideas:    map[string]domain.Idea{},
	}
}

func (f *fakeRepo) CreateProject(_ context.Context, p domain.Project) error {
	f.projects[p.ID] = p
	return nil
}

func (f *fakeRepo) UpdateProject(_ context.Context, p domain.Project) error {
	if _, ok := f.projects[p.ID]; !ok {
		return ErrNotFound
	}
	f.projects[p.ID] = p
	return nil
}

func (f *fakeRepo) GetProject(_ context.Context, id string) (domain.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return domain.Project{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) ListProjects(_ context.Context, includeArchived bool) ([]domain.Project, error) {
	out := make([]domain.Project, 0, len(f.projects))
	for _, p := range f.projects {
		if !includeArchived && p.ArchivedAt != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepo) CreateIdea(_ context.Context, i domain.Idea) error {
	f.ideas[i.ID] = i
	return nil
}

func (f *fakeRepo) ImportIdeas(_ context.Context, ideas []domain.Idea) error {
	for _, i := range ideas {
		f.ideas[i.ID] = i
		f.events = append(f.events, domain.ChangeEvent{
			ProjectID: i.ProjectID,
			IdeaID:    i.ID,
			Operation: domain.ChangeOperationImport,
		})
	}
	return nil
}

func (f *fakeRepo) UpdateIdea(_ context.Context, i domain.Idea) error {
	if f.failUpdateIdea {
		return errors.New("update failed")
	}
	if _, ok := f.ideas[i.ID]; !ok {
		return ErrNotFound
	}
	f.ideas[i.ID] = i
	return nil
}

func (f *fakeRepo) GetIdea(_ context.Context, id string) (domain.Idea, error) {
	i, ok := f.ideas[id]
	if !ok {
		return domain.Idea{}, ErrNotFound
	}
	return i, nil
}

func (f *fakeRepo) ListIdeas(_ context.Context, projectID string, includeArchived bool) ([]domain.Idea, error) {
	out := make([]domain.Idea, 0, len(f.ideas))
	for _, i := range f.ideas {
		if i.ProjectID != projectID {
			continue
		}
		if !includeArchived && i.ArchivedAt != nil {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

func (f *fakeRepo) DeleteIdea(_ context.Context, id string) error {
	if _, ok := f.ideas[id]; !ok {
		return ErrNotFound
	}
	delete(f.ideas, id)
	return nil
}

func (f *fakeRepo) ListProjectChangeEvents(_ context.Context, projectID string, limit int) ([]domain.ChangeEvent, error) {
	out := make([]domain.ChangeEvent, 0)
	for _, ev := range f.events {
		if ev.ProjectID == projectID {
			out = append(out, ev)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestService(repo Repository) *Service {
	n := 0
	idGen := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	base := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return base }
	return NewService(repo, idGen, clock, ServiceConfig{})
}

func TestEnsureDefaultProject(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.EnsureDefaultProject(ctx)
	if err != nil {
		t.Fatalf("EnsureDefaultProject() error = %v", err)
	}
	second, err := svc.EnsureDefaultProject(ctx)
	if err != nil {
		t.Fatalf("EnsureDefaultProject() second error = %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected stable default project, got %q then %q", first.ID, second.ID)
	}
	if len(repo.projects) != 1 {
		t.Fatalf("expected one project, got %d", len(repo.projects))
	}
}

func TestCreateIdeaSanitizesPosition(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "Roadmap", "")
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	idea, err := svc.CreateIdea(ctx, CreateIdeaInput{
		ProjectID: project.ID,
		Content:   "Ship search",
		Position:  domain.Position{X: 1.8, Y: -0.4},
	})
	if err != nil {
		t.Fatalf("CreateIdea() error = %v", err)
	}
	if idea.Position != (domain.Position{X: 1, Y: 0}) {
		t.Fatalf("unexpected stored position %v", idea.Position)
	}
}

func TestMoveIdea(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	project, _ := svc.CreateProject(ctx, "Roadmap", "")
	idea, err := svc.CreateIdea(ctx, CreateIdeaInput{ProjectID: project.ID, Content: "x"})
	if err != nil {
		t.Fatalf("CreateIdea() error = %v", err)
	}

	moved, err := svc.MoveIdea(ctx, idea.ID, domain.Position{X: 0.2, Y: 0.8})
	if err != nil {
		t.Fatalf("MoveIdea() error = %v", err)
	}
	if moved.Position != (domain.Position{X: 0.2, Y: 0.8}) {
		t.Fatalf("unexpected moved position %v", moved.Position)
	}
	stored := repo.ideas[idea.ID]
	if stored.Position != moved.Position {
		t.Fatalf("store out of sync: %v vs %v", stored.Position, moved.Position)
	}

	if _, err := svc.MoveIdea(ctx, "missing", domain.Position{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIdeaModes(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	project, _ := svc.CreateProject(ctx, "Roadmap", "")
	idea, _ := svc.CreateIdea(ctx, CreateIdeaInput{ProjectID: project.ID, Content: "x"})

	if err := svc.DeleteIdea(ctx, idea.ID, ""); err != nil {
		t.Fatalf("DeleteIdea(archive) error = %v", err)
	}
	if repo.ideas[idea.ID].ArchivedAt == nil {
		t.Fatal("expected archived idea")
	}

	restored, err := svc.RestoreIdea(ctx, idea.ID)
	if err != nil {
		t.Fatalf("RestoreIdea() error = %v", err)
	}
	if restored.ArchivedAt != nil {
		t.Fatal("expected restored idea")
	}

	if err := svc.DeleteIdea(ctx, idea.ID, DeleteModeHard); err != nil {
		t.Fatalf("DeleteIdea(hard) error = %v", err)
	}
	if _, ok := repo.ideas[idea.ID]; ok {
		t.Fatal("expected idea removed")
	}

	if err := svc.DeleteIdea(ctx, "whatever", DeleteMode("bogus")); !errors.Is(err, ErrInvalidDeleteMode) {
		t.Fatalf("expected ErrInvalidDeleteMode, got %v", err)
	}
}

func TestSetIdeaCollapsed(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	project, _ := svc.CreateProject(ctx, "Roadmap", "")
	idea, _ := svc.CreateIdea(ctx, CreateIdeaInput{ProjectID: project.ID, Content: "x"})

	collapsed, err := svc.SetIdeaCollapsed(ctx, idea.ID, true)
	if err != nil {
		t.Fatalf("SetIdeaCollapsed() error = %v", err)
	}
	if !collapsed.Collapsed {
		t.Fatal("expected collapsed idea")
	}
}

func TestImportIdeasSpreadsPositions(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	project, _ := svc.CreateProject(ctx, "Roadmap", "")
	explicit := domain.Position{X: 0.9, Y: 0.1}
	ideas, err := svc.ImportIdeas(ctx, project.ID, []ImportIdeaInput{
		{Content: "a"},
		{Content: "b", Position: &explicit},
		{Content: "c"},
	})
	if err != nil {
		t.Fatalf("ImportIdeas() error = %v", err)
	}
	if len(ideas) != 3 {
		t.Fatalf("expected 3 ideas, got %d", len(ideas))
	}
	if ideas[1].Position != explicit {
		t.Fatalf("explicit position lost: %v", ideas[1].Position)
	}
	if ideas[0].Position == ideas[2].Position {
		t.Fatal("expected spread positions to differ")
	}
	if len(repo.events) != 3 {
		t.Fatalf("expected 3 ledger events, got %d", len(repo.events))
	}
	for _, ev := range repo.events {
		if ev.Operation != domain.ChangeOperationImport {
			t.Fatalf("expected import operation, got %q", ev.Operation)
		}
	}

	if _, err := svc.ImportIdeas(ctx, "missing", []ImportIdeaInput{{Content: "x"}}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQuadrantRollup(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	project, _ := svc.CreateProject(ctx, "Roadmap", "")
	positions := []domain.Position{
		{X: 0.1, Y: 0.1},
		{X: 0.9, Y: 0.1},
		{X: 0.9, Y: 0.9},
		{X: 0.5, Y: 0.5},
	}
	for i, pos := range positions {
		if _, err := svc.CreateIdea(ctx, CreateIdeaInput{
			ProjectID: project.ID,
			Content:   fmt.Sprintf("idea %d", i),
			Position:  pos,
		}); err != nil {
			t.Fatalf("CreateIdea() error = %v", err)
		}
	}

	rollup, err := svc.QuadrantRollup(ctx, project.ID)
	if err != nil {
		t.Fatalf("QuadrantRollup() error = %v", err)
	}
	if rollup.TotalIdeas != 4 {
		t.Fatalf("unexpected total %d", rollup.TotalIdeas)
	}
	if rollup.QuickWins != 1 || rollup.BigBets != 1 || rollup.MoneyPit != 2 || rollup.Incremental != 0 {
		t.Fatalf("unexpected rollup %+v", rollup)
	}
}

func TestSnapshotExportImportRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	project, _ := svc.CreateProject(ctx, "Roadmap", "plan")
	if _, err := svc.CreateIdea(ctx, CreateIdeaInput{
		ProjectID: project.ID,
		Content:   "Ship search",
		Details:   "full text",
		Position:  domain.Position{X: 0.3, Y: 0.7},
	}); err != nil {
		t.Fatalf("CreateIdea() error = %v", err)
	}

	snap, err := svc.ExportSnapshot(ctx, true)
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}
	if len(snap.Projects) != 1 || len(snap.Ideas) != 1 {
		t.Fatalf("unexpected snapshot shape %+v", snap)
	}

	target := newFakeRepo()
	targetSvc := newTestService(target)
	if err := targetSvc.ImportSnapshot(ctx, snap); err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}
	if len(target.projects) != 1 || len(target.ideas) != 1 {
		t.Fatalf("unexpected import state: %d projects, %d ideas", len(target.projects), len(target.ideas))
	}
	for _, idea := range target.ideas {
		if idea.Position != (domain.Position{X: 0.3, Y: 0.7}) {
			t.Fatalf("position lost in round trip: %v", idea.Position)
		}
	}

	// Re-import is an upsert, not a duplicate.
	if err := targetSvc.ImportSnapshot(ctx, snap); err != nil {
		t.Fatalf("ImportSnapshot() second error = %v", err)
	}
	if len(target.ideas) != 1 {
		t.Fatalf("expected upsert, got %d ideas", len(target.ideas))
	}
}

func TestSnapshotValidate(t *testing.T) {
	now := time.Now().UTC()
	snap := Snapshot{
		Version: "bogus.v9",
	}
	if err := snap.Validate(); err == nil {
		t.Fatal("expected version error")
	}

	snap = Snapshot{
		Ideas: []SnapshotIdea{{
			ID:        "i1",
			ProjectID: "missing",
			Content:   "x",
			CreatedAt: now,
			UpdatedAt: now,
		}},
	}
	if err := snap.Validate(); err == nil {
		t.Fatal("expected unknown project error")
	}
}
