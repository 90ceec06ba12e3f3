package domain

import (
	"strings"
	"time"
)

type Idea struct {
	ID         string
	ProjectID  string
	Position   Position
	Collapsed  bool
	Content    string
	Details    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ArchivedAt *time.Time
}

type IdeaInput struct {
	ID        string
	ProjectID string
	Position  Position
	Collapsed bool
	Content   string
	Details   string
}

func NewIdea(in IdeaInput, now time.Time) (Idea, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.Content = strings.TrimSpace(in.Content)
	in.Details = strings.TrimSpace(in.Details)

	if in.ID == "" {
		return Idea{}, ErrInvalidID
	}
	if in.ProjectID == "" {
		return Idea{}, ErrInvalidProject
	}
	if in.Content == "" {
		return Idea{}, ErrInvalidContent
	}

	return Idea{
		ID:        in.ID,
		ProjectID: in.ProjectID,
		Position:  in.Position.Sanitize(),
		Collapsed: in.Collapsed,
		Content:   in.Content,
		Details:   in.Details,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// Quadrant reports the matrix quadrant the idea currently sits in.
func (i Idea) Quadrant() Quadrant {
	return i.Position.Quadrant()
}

func (i *Idea) MoveTo(pos Position, now time.Time) {
	i.Position = pos.Sanitize()
	i.UpdatedAt = now.UTC()
}

func (i *Idea) UpdateContent(content, details string, now time.Time) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrInvalidContent
	}
	i.Content = content
	i.Details = strings.TrimSpace(details)
	i.UpdatedAt = now.UTC()
	return nil
}

func (i *Idea) SetCollapsed(collapsed bool, now time.Time) {
	if i.Collapsed == collapsed {
		return
	}
	i.Collapsed = collapsed
	i.UpdatedAt = now.UTC()
}

func (i *Idea) Archive(now time.Time) {
	ts := now.UTC()
	i.ArchivedAt = &ts
	i.UpdatedAt = ts
}

func (i *Idea) Restore(now time.Time) {
	i.ArchivedAt = nil
	i.UpdatedAt = now.UTC()
}
