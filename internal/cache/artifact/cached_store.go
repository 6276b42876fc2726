package artifact

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	domain "idea2app/internal/artifact"
	artifactrepo "idea2app/internal/gateway/repository/artifact"
)

type Store = artifactrepo.Store

// ErrRestoreUnsupported is returned by Restore when the origin has no archive.
var ErrRestoreUnsupported = errors.New("artifact origin cannot restore")

type restorer interface {
	Restore(ctx context.Context, projectID, id string) (domain.Artifact, error)
}

type CacheConfig struct {
	ItemTTL        time.Duration
	ItemMaxEntries int

	ListTTL        time.Duration
	ListMaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ItemTTL:        5 * time.Minute,
		ItemMaxEntries: 1024,
		ListTTL:        30 * time.Second,
		ListMaxEntries: 512,
	}
}

type MetricsSnapshot struct {
	ItemHits       uint64
	ItemMisses     uint64
	ListHits       uint64
	ListMisses     uint64
	OriginReads    uint64
	OriginWrites   uint64
	OriginReadErr  uint64
	OriginWriteErr uint64
}

type Metrics struct {
	itemHits       atomic.Uint64
	itemMisses     atomic.Uint64
	listHits       atomic.Uint64
	listMisses     atomic.Uint64
	originReads    atomic.Uint64
	originWrites   atomic.Uint64
	originReadErr  atomic.Uint64
	originWriteErr atomic.Uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		ItemHits:       m.itemHits.Load(),
		ItemMisses:     m.itemMisses.Load(),
		ListHits:       m.listHits.Load(),
		ListMisses:     m.listMisses.Load(),
		OriginReads:    m.originReads.Load(),
		OriginWrites:   m.originWrites.Load(),
		OriginReadErr:  m.originReadErr.Load(),
		OriginWriteErr: m.originWriteErr.Load(),
	}
}

// CachedStore fronts a Store with an id cache and a per-(project, type)
// list cache. Writes go to the origin first and invalidate the project's
// lists.
type CachedStore struct {
	origin Store

	items   *expirable.LRU[string, domain.Artifact]
	lists   *expirable.LRU[string, []domain.Artifact]
	metrics Metrics
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.ItemTTL <= 0 {
		cfg.ItemTTL = def.ItemTTL
	}
	if cfg.ItemMaxEntries <= 0 {
		cfg.ItemMaxEntries = def.ItemMaxEntries
	}
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = def.ListTTL
	}
	if cfg.ListMaxEntries <= 0 {
		cfg.ListMaxEntries = def.ListMaxEntries
	}
	return &CachedStore{
		origin: origin,
		items:  expirable.NewLRU[string, domain.Artifact](cfg.ItemMaxEntries, nil, cfg.ItemTTL),
		lists:  expirable.NewLRU[string, []domain.Artifact](cfg.ListMaxEntries, nil, cfg.ListTTL),
	}
}

func (s *CachedStore) Create(ctx context.Context, a domain.Artifact) (domain.Artifact, error) {
	s.metrics.originWrites.Add(1)
	saved, err := s.origin.Create(ctx, a)
	if err != nil {
		s.metrics.originWriteErr.Add(1)
		return domain.Artifact{}, err
	}
	s.items.Add(saved.ID, saved)
	s.invalidateLists(saved.ProjectID, saved.Type)
	return saved, nil
}

func (s *CachedStore) Get(ctx context.Context, id string) (domain.Artifact, error) {
	id = strings.TrimSpace(id)
	if a, ok := s.items.Get(id); ok {
		s.metrics.itemHits.Add(1)
		return a, nil
	}
	s.metrics.itemMisses.Add(1)
	s.metrics.originReads.Add(1)

	a, err := s.origin.Get(ctx, id)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return domain.Artifact{}, err
	}
	s.items.Add(id, a)
	return a, nil
}

func (s *CachedStore) ListByProject(ctx context.Context, projectID string, typ domain.Type) ([]domain.Artifact, error) {
	key := listKey(projectID, typ)
	if list, ok := s.lists.Get(key); ok {
		s.metrics.listHits.Add(1)
		return append([]domain.Artifact(nil), list...), nil
	}
	s.metrics.listMisses.Add(1)
	s.metrics.originReads.Add(1)

	list, err := s.origin.ListByProject(ctx, projectID, typ)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return nil, err
	}
	copied := append([]domain.Artifact(nil), list...)
	s.lists.Add(key, copied)
	return append([]domain.Artifact(nil), copied...), nil
}

func (s *CachedStore) Update(ctx context.Context, id, content string) (domain.Artifact, error) {
	s.metrics.originWrites.Add(1)
	a, err := s.origin.Update(ctx, id, content)
	if err != nil {
		s.metrics.originWriteErr.Add(1)
		return domain.Artifact{}, err
	}
	s.items.Add(a.ID, a)
	s.invalidateLists(a.ProjectID, a.Type)
	return a, nil
}

// Restore delegates to an archive-backed origin and refreshes the caches.
func (s *CachedStore) Restore(ctx context.Context, projectID, id string) (domain.Artifact, error) {
	r, ok := s.origin.(restorer)
	if !ok {
		return domain.Artifact{}, ErrRestoreUnsupported
	}
	s.metrics.originWrites.Add(1)
	a, err := r.Restore(ctx, projectID, id)
	if err != nil {
		s.metrics.originWriteErr.Add(1)
		return domain.Artifact{}, err
	}
	s.items.Add(a.ID, a)
	s.invalidateLists(a.ProjectID, a.Type)
	return a, nil
}

func (s *CachedStore) invalidateLists(projectID string, typ domain.Type) {
	s.lists.Remove(listKey(projectID, typ))
	s.lists.Remove(listKey(projectID, ""))
}

func listKey(projectID string, typ domain.Type) string {
	return strings.TrimSpace(projectID) + "|" + string(typ)
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{}
	}
	return s.metrics.snapshot()
}
