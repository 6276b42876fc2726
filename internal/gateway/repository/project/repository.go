package project

import (
	"context"

	domain "idea2app/internal/project"
)

// Store persists projects. Get returns domain.ErrNotFound for unknown ids.
type Store interface {
	Create(ctx context.Context, p domain.Project) (domain.Project, error)
	Get(ctx context.Context, projectID string) (domain.Project, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Project, error)
	UpdateDescription(ctx context.Context, projectID, description string) error
}

// ErrNotFound aliases the domain sentinel so callers can match either.
var ErrNotFound = domain.ErrNotFound
