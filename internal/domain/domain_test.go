package domain

import (
	"math"
	"testing"
	"time"
)

func TestPositionClamp(t *testing.T) {
	cases := []struct {
		in   Position
		want Position
	}{
		{Position{X: -0.2, Y: 0.5}, Position{X: 0, Y: 0.5}},
		{Position{X: 1.7, Y: -4}, Position{X: 1, Y: 0}},
		{Position{X: 0.25, Y: 0.75}, Position{X: 0.25, Y: 0.75}},
		{Position{X: 0, Y: 1}, Position{X: 0, Y: 1}},
	}
	for _, tc := range cases {
		if got := tc.in.Clamp(); got != tc.want {
			t.Fatalf("Clamp(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPositionSanitize(t *testing.T) {
	got := Position{X: math.NaN(), Y: 0.9}.Sanitize()
	if got != (Position{X: 0.5, Y: 0.9}) {
		t.Fatalf("unexpected sanitized position %v", got)
	}
	got = Position{X: math.Inf(1), Y: math.Inf(-1)}.Sanitize()
	if got != CenterPosition() {
		t.Fatalf("expected center fallback, got %v", got)
	}
	got = Position{X: 2.5, Y: -1}.Sanitize()
	if got != (Position{X: 1, Y: 0}) {
		t.Fatalf("unexpected sanitized position %v", got)
	}
}

func TestPositionQuadrant(t *testing.T) {
	cases := []struct {
		pos  Position
		want Quadrant
	}{
		{Position{X: 0.1, Y: 0.1}, QuadrantQuickWins},
		{Position{X: 0.9, Y: 0.1}, QuadrantBigBets},
		{Position{X: 0.1, Y: 0.9}, QuadrantIncremental},
		{Position{X: 0.9, Y: 0.9}, QuadrantMoneyPit},
		// Midpoint ties go right/bottom.
		{Position{X: 0.5, Y: 0.5}, QuadrantMoneyPit},
		{Position{X: 0.5, Y: 0.4}, QuadrantBigBets},
		{Position{X: 0.4, Y: 0.5}, QuadrantIncremental},
	}
	for _, tc := range cases {
		if got := tc.pos.Quadrant(); got != tc.want {
			t.Fatalf("Quadrant(%v) = %q, want %q", tc.pos, got, tc.want)
		}
	}
}

func TestPositionQuadrantStable(t *testing.T) {
	pos := Position{X: 0.5, Y: 0.5}
	first := pos.Quadrant()
	for range 10 {
		if got := pos.Quadrant(); got != first {
			t.Fatalf("classification drifted from %q to %q", first, got)
		}
	}
}

func TestNewProjectAndSlug(t *testing.T) {
	now := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)
	p, err := NewProject("p1", "  Q3 Roadmap!  ", " desc ", now)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	if p.Slug != "q3-roadmap" {
		t.Fatalf("unexpected slug %q", p.Slug)
	}
	if p.Name != "Q3 Roadmap!" {
		t.Fatalf("unexpected name %q", p.Name)
	}
}

func TestNewProjectValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewProject("", "ok", "", now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewProject("id", "   ", "", now); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestProjectArchiveRestore(t *testing.T) {
	now := time.Now()
	p, err := NewProject("p1", "test", "", now)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	later := now.Add(time.Minute)
	p.Archive(later)
	if p.ArchivedAt == nil {
		t.Fatal("expected archived_at to be set")
	}
	p.Restore(later.Add(time.Minute))
	if p.ArchivedAt != nil {
		t.Fatal("expected archived_at to be nil")
	}
}

func TestNewIdeaSanitizesPosition(t *testing.T) {
	now := time.Now()
	idea, err := NewIdea(IdeaInput{
		ID:        "i1",
		ProjectID: "p1",
		Content:   "  Ship onboarding flow ",
		Position:  Position{X: math.NaN(), Y: 3},
	}, now)
	if err != nil {
		t.Fatalf("NewIdea() error = %v", err)
	}
	if idea.Content != "Ship onboarding flow" {
		t.Fatalf("unexpected content %q", idea.Content)
	}
	if idea.Position != (Position{X: 0.5, Y: 1}) {
		t.Fatalf("unexpected position %v", idea.Position)
	}
}

func TestNewIdeaValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewIdea(IdeaInput{ProjectID: "p1", Content: "x"}, now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewIdea(IdeaInput{ID: "i1", Content: "x"}, now); err != ErrInvalidProject {
		t.Fatalf("expected ErrInvalidProject, got %v", err)
	}
	if _, err := NewIdea(IdeaInput{ID: "i1", ProjectID: "p1", Content: "   "}, now); err != ErrInvalidContent {
		t.Fatalf("expected ErrInvalidContent, got %v", err)
	}
}

func TestIdeaMoveUpdateArchiveRestore(t *testing.T) {
	now := time.Now()
	idea, err := NewIdea(IdeaInput{
		ID:        "i1",
		ProjectID: "p1",
		Content:   "x",
	}, now)
	if err != nil {
		t.Fatalf("NewIdea() error = %v", err)
	}

	idea.MoveTo(Position{X: 0.2, Y: 1.4}, now.Add(time.Minute))
	if idea.Position != (Position{X: 0.2, Y: 1}) {
		t.Fatalf("unexpected move state: %#v", idea)
	}

	if err := idea.UpdateContent("new", "some details", now.Add(2*time.Minute)); err != nil {
		t.Fatalf("UpdateContent() error = %v", err)
	}
	if idea.Content != "new" || idea.Details != "some details" {
		t.Fatalf("unexpected idea update state %#v", idea)
	}

	idea.Archive(now.Add(3 * time.Minute))
	if idea.ArchivedAt == nil {
		t.Fatal("expected archived_at to be set")
	}
	idea.Restore(now.Add(4 * time.Minute))
	if idea.ArchivedAt != nil {
		t.Fatal("expected archived_at nil")
	}
}

func TestIdeaSetCollapsedNoopKeepsUpdatedAt(t *testing.T) {
	now := time.Now()
	idea, err := NewIdea(IdeaInput{ID: "i1", ProjectID: "p1", Content: "x"}, now)
	if err != nil {
		t.Fatalf("NewIdea() error = %v", err)
	}
	before := idea.UpdatedAt
	idea.SetCollapsed(false, now.Add(time.Minute))
	if !idea.UpdatedAt.Equal(before) {
		t.Fatal("expected no-op collapse to leave updated_at alone")
	}
	idea.SetCollapsed(true, now.Add(time.Minute))
	if !idea.Collapsed || idea.UpdatedAt.Equal(before) {
		t.Fatalf("unexpected collapse state %#v", idea)
	}
}
