package app

import (
	"context"
	"errors"

	"github.com/hylla/prioritas/internal/domain"
)

// ErrNotFound is the repository contract for missing rows; adapters translate
// their driver-level miss into it.
var ErrNotFound = errors.New("not found")

// ErrInvalidDeleteMode rejects delete modes outside archive|hard.
var ErrInvalidDeleteMode = errors.New("invalid delete mode")

// Repository represents repository data used by this package.
type Repository interface {
	CreateProject(context.Context, domain.Project) error
	UpdateProject(context.Context, domain.Project) error
	GetProject(context.Context, string) (domain.Project, error)
	ListProjects(context.Context, bool) ([]domain.Project, error)

	CreateIdea(context.Context, domain.Idea) error
	ImportIdeas(context.Context, []domain.Idea) error
	UpdateIdea(context.Context, domain.Idea) error
	GetIdea(context.Context, string) (domain.Idea, error)
	ListIdeas(context.Context, string, bool) ([]domain.Idea, error)
	DeleteIdea(context.Context, string) error

	ListProjectChangeEvents(context.Context, string, int) ([]domain.ChangeEvent, error)
}
