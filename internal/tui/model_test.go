package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/prioritas/internal/app"
	"github.com/hylla/prioritas/internal/domain"
	"github.com/hylla/prioritas/internal/geometry"
)

type fakeService struct {
	projects []domain.Project
	ideas    map[string][]domain.Idea
	events   map[string][]domain.ChangeEvent
	err      error
	moveErr  error
	nextID   int
}

func newFakeService(projects []domain.Project, ideas []domain.Idea) *fakeService {
	byProject := map[string][]domain.Idea{}
	for _, idea := range ideas {
		byProject[idea.ProjectID] = append(byProject[idea.ProjectID], idea)
	}
	return &fakeService{
		projects: projects,
		ideas:    byProject,
		events:   map[string][]domain.ChangeEvent{},
	}
}

func (f *fakeService) ListProjects(context.Context, bool) ([]domain.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Project, len(f.projects))
	copy(out, f.projects)
	return out, nil
}

func (f *fakeService) CreateProject(_ context.Context, name, description string) (domain.Project, error) {
	if f.err != nil {
		return domain.Project{}, f.err
	}
	f.nextID++
	project, err := domain.NewProject(fmt.Sprintf("p-%d", f.nextID), name, description, time.Now())
	if err != nil {
		return domain.Project{}, err
	}
	f.projects = append(f.projects, project)
	return project, nil
}

func (f *fakeService) ListIdeas(_ context.Context, projectID string, includeArchived bool) ([]domain.Idea, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Idea, 0)
	for _, idea := range f.ideas[projectID] {
		if !includeArchived && idea.ArchivedAt != nil {
			continue
		}
		out = append(out, idea)
	}
	return out, nil
}

func (f *fakeService) CreateIdea(_ context.Context, in app.CreateIdeaInput) (domain.Idea, error) {
	if f.err != nil {
		return domain.Idea{}, f.err
	}
	f.nextID++
	idea, err := domain.NewIdea(domain.IdeaInput{
		ID:        fmt.Sprintf("i-%d", f.nextID),
		ProjectID: in.ProjectID,
		Position:  in.Position,
		Collapsed: in.Collapsed,
		Content:   in.Content,
		Details:   in.Details,
	}, time.Now())
	if err != nil {
		return domain.Idea{}, err
	}
	f.ideas[in.ProjectID] = append(f.ideas[in.ProjectID], idea)
	return idea, nil
}

func (f *fakeService) UpdateIdea(_ context.Context, in app.UpdateIdeaInput) (domain.Idea, error) {
	return f.mutate(in.IdeaID, func(idea *domain.Idea) error {
		return idea.UpdateContent(in.Content, in.Details, time.Now())
	})
}

func (f *fakeService) MoveIdea(_ context.Context, ideaID string, pos domain.Position) (domain.Idea, error) {
	if f.moveErr != nil {
		return domain.Idea{}, f.moveErr
	}
	return f.mutate(ideaID, func(idea *domain.Idea) error {
		idea.MoveTo(pos, time.Now())
		return nil
	})
}

func (f *fakeService) SetIdeaCollapsed(_ context.Context, ideaID string, collapsed bool) (domain.Idea, error) {
	return f.mutate(ideaID, func(idea *domain.Idea) error {
		idea.SetCollapsed(collapsed, time.Now())
		return nil
	})
}

func (f *fakeService) DeleteIdea(_ context.Context, ideaID string, mode app.DeleteMode) error {
	if mode == app.DeleteModeHard {
		for projectID, ideas := range f.ideas {
			kept := ideas[:0]
			for _, idea := range ideas {
				if idea.ID != ideaID {
					kept = append(kept, idea)
				}
			}
			f.ideas[projectID] = kept
		}
		return nil
	}
	_, err := f.mutate(ideaID, func(idea *domain.Idea) error {
		idea.Archive(time.Now())
		return nil
	})
	return err
}

func (f *fakeService) RestoreIdea(_ context.Context, ideaID string) (domain.Idea, error) {
	return f.mutate(ideaID, func(idea *domain.Idea) error {
		idea.Restore(time.Now())
		return nil
	})
}

func (f *fakeService) QuadrantRollup(_ context.Context, projectID string) (domain.QuadrantRollup, error) {
	if f.err != nil {
		return domain.QuadrantRollup{}, f.err
	}
	rollup := domain.QuadrantRollup{ProjectID: projectID}
	for _, idea := range f.ideas[projectID] {
		if idea.ArchivedAt != nil {
			continue
		}
		rollup.TotalIdeas++
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

func (f *fakeService) ListProjectChangeEvents(_ context.Context, projectID string, limit int) ([]domain.ChangeEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	events := f.events[projectID]
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	out := make([]domain.ChangeEvent, len(events))
	copy(out, events)
	return out, nil
}

func (f *fakeService) mutate(ideaID string, fn func(*domain.Idea) error) (domain.Idea, error) {
	for projectID, ideas := range f.ideas {
		for idx := range ideas {
			if ideas[idx].ID != ideaID {
				continue
			}
			idea := ideas[idx]
			if err := fn(&idea); err != nil {
				return domain.Idea{}, err
			}
			f.ideas[projectID][idx] = idea
			return idea, nil
		}
	}
	return domain.Idea{}, errors.New("idea not found")
}

func testFixture(t *testing.T) (*fakeService, Model) {
	t.Helper()
	now := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)
	project, err := domain.NewProject("p1", "Roadmap", "", now)
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}
	quickWin, err := domain.NewIdea(domain.IdeaInput{
		ID:        "i1",
		ProjectID: project.ID,
		Position:  domain.Position{X: 0.2, Y: 0.2},
		Content:   "Ship onboarding tweak",
	}, now)
	if err != nil {
		t.Fatalf("NewIdea: %v", err)
	}
	bigBet, err := domain.NewIdea(domain.IdeaInput{
		ID:        "i2",
		ProjectID: project.ID,
		Position:  domain.Position{X: 0.8, Y: 0.1},
		Content:   "Rewrite billing engine",
		Details:   "multi-quarter effort",
	}, now)
	if err != nil {
		t.Fatalf("NewIdea: %v", err)
	}

	svc := newFakeService([]domain.Project{project}, []domain.Idea{quickWin, bigBet})
	m := NewModel(svc)
	return svc, readyModel(t, m)
}

// readyModel drives a model through load and a settled resize.
func readyModel(t *testing.T, m Model) Model {
	t.Helper()
	m = applyMsg(t, m, m.loadData())
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 120, Height: 36})
	m = applyMsg(t, m, resizeSettledMsg{gen: m.resizeGen, width: 120, height: 36})
	if m.dims.Degenerate() {
		t.Fatalf("expected usable canvas after resize, got %+v", m.dims)
	}
	return m
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return next
}

func applyMsgCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return next, cmd
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// TestLoadedMsgPopulatesCollection verifies behavior for the covered scenario.
func TestLoadedMsgPopulatesCollection(t *testing.T) {
	_, m := testFixture(t)

	if got := m.collection.len(); got != 2 {
		t.Fatalf("collection len = %d, want 2", got)
	}
	if m.status != "ready" {
		t.Fatalf("status = %q, want ready", m.status)
	}
	if m.rollup.QuickWins != 1 || m.rollup.BigBets != 1 {
		t.Fatalf("rollup = %+v, want one quick win and one big bet", m.rollup)
	}
}

// TestResizeSettledDropsStaleGenerations verifies behavior for the covered scenario.
func TestResizeSettledDropsStaleGenerations(t *testing.T) {
	svc := newFakeService(nil, nil)
	m := NewModel(svc)

	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	staleGen := m.resizeGen
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})

	m = applyMsg(t, m, resizeSettledMsg{gen: staleGen, width: 80, height: 24})
	if m.dims.Width != 0 {
		t.Fatalf("stale resize settled, dims = %+v", m.dims)
	}

	m = applyMsg(t, m, resizeSettledMsg{gen: m.resizeGen, width: 140, height: 40})
	if m.dims.Width == 0 {
		t.Fatalf("latest resize did not settle")
	}
	if m.dims.Width%2 != 0 {
		t.Fatalf("canvas width %d is odd", m.dims.Width)
	}
}

// TestDragCancelRestoresPosition verifies behavior for the covered scenario.
func TestDragCancelRestoresPosition(t *testing.T) {
	_, m := testFixture(t)
	original, _ := m.collection.get("i1")

	m = applyMsg(t, m, keyPress('g'))
	if !m.drag.active() {
		t.Fatalf("expected active drag after grab")
	}
	for i := 0; i < 12; i++ {
		m = applyMsg(t, m, keyPress('l'))
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})

	if m.drag.phase != dragIdle {
		t.Fatalf("drag phase = %v, want idle", m.drag.phase)
	}
	after, _ := m.collection.get("i1")
	if after.Position != original.Position {
		t.Fatalf("cancel changed position: %+v -> %+v", original.Position, after.Position)
	}
	if after.UpdatedAt != original.UpdatedAt {
		t.Fatalf("cancel touched the card timestamp")
	}
}

// TestDropCommitsMoveOptimistically verifies behavior for the covered scenario.
func TestDropCommitsMoveOptimistically(t *testing.T) {
	_, m := testFixture(t)
	original, _ := m.collection.get("i1")

	m = applyMsg(t, m, keyPress('g'))
	for i := 0; i < 20; i++ {
		m = applyMsg(t, m, keyPress('l'))
	}
	m, cmd := applyMsgCmd(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("drop produced no command")
	}
	if !m.drag.committing() {
		t.Fatalf("expected committing drag during save")
	}
	staged, _ := m.collection.get("i1")
	if staged.Position == original.Position {
		t.Fatalf("optimistic move did not change the staged position")
	}

	m = applyMsg(t, m, cmd())
	if m.drag.phase != dragIdle {
		t.Fatalf("drag not released after commit")
	}
	if m.collection.hasPending() {
		t.Fatalf("staged mutation left pending after commit")
	}
	final, _ := m.collection.get("i1")
	if final.Position.X <= original.Position.X {
		t.Fatalf("committed position %+v did not move right of %+v", final.Position, original.Position)
	}
	if !strings.Contains(m.status, "moved to") {
		t.Fatalf("status = %q, want quadrant move confirmation", m.status)
	}
}

// TestFailedMoveRollsBack verifies behavior for the covered scenario.
func TestFailedMoveRollsBack(t *testing.T) {
	svc, m := testFixture(t)
	svc.moveErr = errors.New("disk full")
	original, _ := m.collection.get("i1")

	m = applyMsg(t, m, keyPress('g'))
	for i := 0; i < 20; i++ {
		m = applyMsg(t, m, keyPress('l'))
	}
	m, cmd := applyMsgCmd(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("drop produced no command")
	}

	m = applyMsg(t, m, cmd())
	after, _ := m.collection.get("i1")
	if after.Position != original.Position {
		t.Fatalf("rollback left position %+v, want %+v", after.Position, original.Position)
	}
	if m.collection.hasPending() {
		t.Fatalf("staged mutation left pending after rollback")
	}
	if m.drag.phase != dragIdle {
		t.Fatalf("drag not released after failed commit")
	}
	if m.err != nil {
		t.Fatalf("failed move escalated to fatal error: %v", m.err)
	}
	if !strings.Contains(m.status, "rolled back") {
		t.Fatalf("status = %q, want rollback notice", m.status)
	}
}

// TestDragSessionClampsToCanvas verifies behavior for the covered scenario.
func TestDragSessionClampsToCanvas(t *testing.T) {
	dims := geometry.Dimensions{
		Width:   80,
		Height:  24,
		Padding: geometry.Insets{Top: 1, Right: 2, Bottom: 1, Left: 2},
	}
	idea, err := domain.NewIdea(domain.IdeaInput{
		ID:        "i1",
		ProjectID: "p1",
		Position:  domain.Position{X: 0.5, Y: 0.5},
		Content:   "centered",
	}, time.Now())
	if err != nil {
		t.Fatalf("NewIdea: %v", err)
	}

	var d dragSession
	if !d.begin(idea, dims) {
		t.Fatalf("begin refused on idle session")
	}
	if d.begin(idea, dims) {
		t.Fatalf("second begin accepted while active")
	}

	d.follow(-1000, -1000)
	pos := d.position()
	if pos.X != 0 || pos.Y != 0 {
		t.Fatalf("far top-left follow mapped to %+v, want origin corner", pos)
	}

	d.follow(1e6, 1e6)
	pos = d.position()
	if pos.X != 1 || pos.Y != 1 {
		t.Fatalf("far bottom-right follow mapped to %+v, want (1,1)", pos)
	}
}

// TestDragSessionSurvivesDegenerateRescale verifies behavior for the covered scenario.
func TestDragSessionSurvivesDegenerateRescale(t *testing.T) {
	dims := geometry.Dimensions{
		Width:   80,
		Height:  24,
		Padding: geometry.Insets{Top: 1, Right: 2, Bottom: 1, Left: 2},
	}
	idea, err := domain.NewIdea(domain.IdeaInput{
		ID:        "i1",
		ProjectID: "p1",
		Position:  domain.Position{X: 0.1, Y: 0.1},
		Content:   "corner card",
	}, time.Now())
	if err != nil {
		t.Fatalf("NewIdea: %v", err)
	}

	var d dragSession
	if !d.begin(idea, dims) {
		t.Fatalf("begin refused on idle session")
	}

	d.rescale(geometry.Dimensions{})
	pos, ok := d.beginCommit()
	if !ok {
		t.Fatalf("beginCommit refused after rescale")
	}
	if pos != idea.Position {
		t.Fatalf("collapsed viewport corrupted the drop target: %+v, want %+v", pos, idea.Position)
	}

	var e dragSession
	e.begin(idea, dims)
	e.nudge(20, 0)
	held := e.position()
	e.rescale(geometry.Dimensions{})
	e.rescale(dims)
	if got := e.position(); got != held {
		t.Fatalf("resize round trip drifted the position: %+v, want %+v", got, held)
	}
}

// TestFailedSettleForOtherCardKeepsDrag verifies behavior for the covered scenario.
func TestFailedSettleForOtherCardKeepsDrag(t *testing.T) {
	_, m := testFixture(t)

	m = applyMsg(t, m, keyPress('g'))
	for i := 0; i < 10; i++ {
		m = applyMsg(t, m, keyPress('l'))
	}
	m, cmd := applyMsgCmd(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("drop produced no command")
	}
	if !m.drag.committing() || !m.drag.holds("i1") {
		t.Fatalf("expected committing drag on i1")
	}

	otherToken, ok := m.collection.stageCollapse("i2", true, time.Now().UTC())
	if !ok {
		t.Fatalf("stageCollapse refused known card")
	}
	m = applyMsg(t, m, actionMsg{err: errors.New("disk full"), settleToken: otherToken})
	if !m.drag.committing() {
		t.Fatalf("unrelated failed settle tore down the drag commit")
	}
	collapsed, _ := m.collection.get("i2")
	if collapsed.Collapsed {
		t.Fatalf("failed collapse was not rolled back")
	}

	m = applyMsg(t, m, cmd())
	if m.drag.phase != dragIdle {
		t.Fatalf("drag not released after its own settle")
	}
}

// TestOverlaysRenderForInputModes verifies behavior for the covered scenario.
func TestOverlaysRenderForInputModes(t *testing.T) {
	_, m := testFixture(t)

	form := applyMsg(t, m, keyPress('n'))
	out := fmt.Sprint(form.View().Content)
	if !strings.Contains(out, "New Card") || !strings.Contains(out, "content:") {
		t.Fatalf("card form overlay missing fields:\n%s", out)
	}

	confirm := applyMsg(t, m, keyPress('d'))
	out = fmt.Sprint(confirm.View().Content)
	if !strings.Contains(out, "Archive card?") || !strings.Contains(out, "[ yes ]") {
		t.Fatalf("confirm overlay missing choices:\n%s", out)
	}
}

// TestCollectionStageCommitRollback verifies behavior for the covered scenario.
func TestCollectionStageCommitRollback(t *testing.T) {
	now := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)
	idea, err := domain.NewIdea(domain.IdeaInput{
		ID:        "i1",
		ProjectID: "p1",
		Position:  domain.Position{X: 0.3, Y: 0.3},
		Content:   "staged card",
	}, now)
	if err != nil {
		t.Fatalf("NewIdea: %v", err)
	}

	c := newIdeaCollection()
	c.replaceAll([]domain.Idea{idea})

	token, ok := c.stageMove("i1", domain.Position{X: 0.9, Y: 0.9}, now.Add(time.Minute))
	if !ok {
		t.Fatalf("stageMove refused known card")
	}
	staged, _ := c.get("i1")
	if staged.Position.X != 0.9 {
		t.Fatalf("stageMove did not apply optimistically: %+v", staged.Position)
	}

	c.rollback(token)
	restored, _ := c.get("i1")
	if restored.Position != idea.Position || restored.UpdatedAt != idea.UpdatedAt {
		t.Fatalf("rollback did not restore the prior row: %+v", restored)
	}
	if c.hasPending() {
		t.Fatalf("rollback left the mutation pending")
	}

	token, _ = c.stageMove("i1", domain.Position{X: 0.7, Y: 0.1}, now.Add(2*time.Minute))
	canonical := idea
	canonical.MoveTo(domain.Position{X: 0.7, Y: 0.1}, now.Add(2*time.Minute))
	c.commit(token, canonical)
	final, _ := c.get("i1")
	if final.Position != canonical.Position {
		t.Fatalf("commit did not install canonical row: %+v", final)
	}
	c.rollback(token)
	if got, _ := c.get("i1"); got.Position != canonical.Position {
		t.Fatalf("rollback after commit altered the row: %+v", got)
	}
}

// TestRenderMatrixCanvasManyCards verifies behavior for the covered scenario.
func TestRenderMatrixCanvasManyCards(t *testing.T) {
	dims := geometry.Dimensions{
		Width:   120,
		Height:  40,
		Padding: geometry.Insets{Top: 1, Right: 2, Bottom: 1, Left: 2},
	}
	now := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)
	ideas := make([]domain.Idea, 0, 100)
	for i := 0; i < 100; i++ {
		idea, err := domain.NewIdea(domain.IdeaInput{
			ID:        fmt.Sprintf("i-%d", i),
			ProjectID: "p1",
			Position:  domain.Position{X: float64(i%10) / 9, Y: float64(i/10) / 9},
			Collapsed: i%2 == 0,
			Content:   fmt.Sprintf("card %d", i),
		}, now)
		if err != nil {
			t.Fatalf("NewIdea: %v", err)
		}
		ideas = append(ideas, idea)
	}

	out := renderMatrixCanvas(dims, DefaultMatrixConfig(), ideas, "i-0", &dragSession{})
	if out == "" {
		t.Fatalf("canvas rendered empty")
	}
	if got := lipgloss.Height(out); got != dims.Height {
		t.Fatalf("canvas height = %d, want %d", got, dims.Height)
	}
	if !strings.Contains(out, "Quick Wins") || !strings.Contains(out, "Money Pit") {
		t.Fatalf("canvas missing quadrant labels")
	}
}

// TestViewWaitsForSettledResize verifies behavior for the covered scenario.
func TestViewWaitsForSettledResize(t *testing.T) {
	svc, _ := testFixture(t)
	m := NewModel(svc)
	m = applyMsg(t, m, m.loadData())
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 120, Height: 36})

	out := fmt.Sprint(m.View().Content)
	if !strings.Contains(out, "measuring viewport") {
		t.Fatalf("expected waiting state before resize settles, got:\n%s", out)
	}
}

// TestConfirmDeleteArchivesCard verifies behavior for the covered scenario.
func TestConfirmDeleteArchivesCard(t *testing.T) {
	svc, m := testFixture(t)

	m = applyMsg(t, m, keyPress('d'))
	if m.mode != modeConfirmAction {
		t.Fatalf("mode = %v, want confirm", m.mode)
	}
	m, cmd := applyMsgCmd(t, m, keyPress('y'))
	if cmd == nil {
		t.Fatalf("confirm produced no command")
	}
	m = applyMsg(t, m, cmd())

	ideas, err := svc.ListIdeas(context.Background(), "p1", true)
	if err != nil {
		t.Fatalf("ListIdeas: %v", err)
	}
	var archived *domain.Idea
	for i := range ideas {
		if ideas[i].ID == "i1" {
			archived = &ideas[i]
		}
	}
	if archived == nil || archived.ArchivedAt == nil {
		t.Fatalf("default delete did not archive the card")
	}
	if reloadCmd := m.status; !strings.Contains(reloadCmd, "archived") {
		t.Fatalf("status = %q, want archive confirmation", m.status)
	}
}

// TestMouseClickSelectsCard verifies behavior for the covered scenario.
func TestMouseClickSelectsCard(t *testing.T) {
	_, m := testFixture(t)

	target, _ := m.collection.get("i2")
	pt := geometry.ToPixels(target.Position, m.dims)
	m = applyMsg(t, m, tea.MouseClickMsg{X: int(pt.X), Y: int(pt.Y) + headerLines, Button: tea.MouseLeft})

	selected, ok := m.selectedIdeaRow()
	if !ok || selected.ID != "i2" {
		t.Fatalf("click selected %+v, want i2", selected)
	}
	if !m.drag.active() {
		t.Fatalf("click on a card did not arm a drag")
	}

	m = applyMsg(t, m, tea.MouseReleaseMsg{X: int(pt.X), Y: int(pt.Y) + headerLines})
	if m.drag.phase != dragIdle {
		t.Fatalf("release without motion kept the drag alive")
	}
	after, _ := m.collection.get("i2")
	if after.Position != target.Position {
		t.Fatalf("plain click moved the card: %+v", after.Position)
	}
}
