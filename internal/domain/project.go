package domain

import (
	"strings"
	"time"
)

// Project groups the ideas of one prioritization matrix. The slug is derived
// from the name and kept stable for URLs and logs.
type Project struct {
	ID          string
	Slug        string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ArchivedAt  *time.Time
}

// NewProject constructs a new value for this package.
func NewProject(id, name, description string, now time.Time) (Project, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	switch {
	case id == "":
		return Project{}, ErrInvalidID
	case name == "":
		return Project{}, ErrInvalidName
	}

	ts := now.UTC()
	return Project{
		ID:          id,
		Slug:        slugify(name),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}, nil
}

// UpdateDetails renames the project and re-derives its slug.
func (p *Project) UpdateDetails(name, description string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	p.Name = name
	p.Slug = slugify(name)
	p.Description = strings.TrimSpace(description)
	p.UpdatedAt = now.UTC()
	return nil
}

// Archive archives the requested operation.
func (p *Project) Archive(now time.Time) {
	ts := now.UTC()
	p.ArchivedAt = &ts
	p.UpdatedAt = ts
}

// Restore restores the requested operation.
func (p *Project) Restore(now time.Time) {
	p.ArchivedAt = nil
	p.UpdatedAt = now.UTC()
}

// slugify lowercases the name and joins its alphanumeric runs with single
// dashes. Everything else collapses into the separators.
func slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	runs := strings.FieldsFunc(name, func(r rune) bool {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		return !alnum
	})
	return strings.Join(runs, "-")
}
