package project

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	domain "idea2app/internal/project"
	projectrepo "idea2app/internal/gateway/repository/project"
)

type Store = projectrepo.Store

type CacheConfig struct {
	ProjectTTL        time.Duration
	ProjectMaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ProjectTTL:        5 * time.Minute,
		ProjectMaxEntries: 2048,
	}
}

// CachedStore caches project lookups; the chat and pipeline read the
// project on every call. Writes go through and refresh the entry.
type CachedStore struct {
	origin Store
	byID   *expirable.LRU[string, domain.Project]
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.ProjectTTL <= 0 {
		cfg.ProjectTTL = def.ProjectTTL
	}
	if cfg.ProjectMaxEntries <= 0 {
		cfg.ProjectMaxEntries = def.ProjectMaxEntries
	}
	return &CachedStore{
		origin: origin,
		byID:   expirable.NewLRU[string, domain.Project](cfg.ProjectMaxEntries, nil, cfg.ProjectTTL),
	}
}

func (s *CachedStore) Create(ctx context.Context, p domain.Project) (domain.Project, error) {
	saved, err := s.origin.Create(ctx, p)
	if err != nil {
		return domain.Project{}, err
	}
	s.byID.Add(saved.ID, saved)
	return saved, nil
}

func (s *CachedStore) Get(ctx context.Context, projectID string) (domain.Project, error) {
	projectID = strings.TrimSpace(projectID)
	if p, ok := s.byID.Get(projectID); ok {
		return p, nil
	}
	p, err := s.origin.Get(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	s.byID.Add(projectID, p)
	return p, nil
}

func (s *CachedStore) ListByUser(ctx context.Context, userID string) ([]domain.Project, error) {
	return s.origin.ListByUser(ctx, userID)
}

func (s *CachedStore) UpdateDescription(ctx context.Context, projectID, description string) error {
	projectID = strings.TrimSpace(projectID)
	s.byID.Remove(projectID)
	return s.origin.UpdateDescription(ctx, projectID, description)
}
