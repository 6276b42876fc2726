package artifact

import (
	"context"
	"errors"
	"log"

	domain "idea2app/internal/artifact"
)

// ArchivedStore writes every created or edited version through to an
// Archive. Archive failures are logged and never fail the write.
type ArchivedStore struct {
	primary Store
	archive Archive
}

func NewArchivedStore(primary Store, archive Archive) *ArchivedStore {
	return &ArchivedStore{primary: primary, archive: archive}
}

func (s *ArchivedStore) Create(ctx context.Context, a domain.Artifact) (domain.Artifact, error) {
	saved, err := s.primary.Create(ctx, a)
	if err != nil {
		return domain.Artifact{}, err
	}
	s.archiveCopy(ctx, saved)
	return saved, nil
}

func (s *ArchivedStore) Get(ctx context.Context, id string) (domain.Artifact, error) {
	return s.primary.Get(ctx, id)
}

// Restore copies an archived version back into the primary store when the
// primary no longer has it.
func (s *ArchivedStore) Restore(ctx context.Context, projectID, id string) (domain.Artifact, error) {
	a, err := s.primary.Get(ctx, id)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.Artifact{}, err
	}
	a, err = s.archive.Get(ctx, projectID, id)
	if err != nil {
		return domain.Artifact{}, err
	}
	return s.primary.Create(ctx, a)
}

func (s *ArchivedStore) ListByProject(ctx context.Context, projectID string, typ domain.Type) ([]domain.Artifact, error) {
	return s.primary.ListByProject(ctx, projectID, typ)
}

func (s *ArchivedStore) Update(ctx context.Context, id, content string) (domain.Artifact, error) {
	a, err := s.primary.Update(ctx, id, content)
	if err != nil {
		return domain.Artifact{}, err
	}
	s.archiveCopy(ctx, a)
	return a, nil
}

func (s *ArchivedStore) archiveCopy(ctx context.Context, a domain.Artifact) {
	if err := s.archive.Put(ctx, a); err != nil {
		log.Printf("artifact store: archive %s/%s failed: %v", a.ProjectID, a.ID, err)
	}
}
