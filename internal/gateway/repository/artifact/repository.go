package artifact

import (
	"context"
	"errors"

	domain "idea2app/internal/artifact"
)

// Store persists artifact versions. ListByProject returns newest first; an
// empty typ lists every type.
type Store interface {
	Create(ctx context.Context, a domain.Artifact) (domain.Artifact, error)
	Get(ctx context.Context, id string) (domain.Artifact, error)
	ListByProject(ctx context.Context, projectID string, typ domain.Type) ([]domain.Artifact, error)
	Update(ctx context.Context, id, content string) (domain.Artifact, error)
}

var ErrNotFound = errors.New("artifact not found")
