package artifact

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	domain "idea2app/internal/artifact"
)

type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]domain.Artifact
	seq  map[string]int64
	next int64
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]domain.Artifact),
		seq:  make(map[string]int64),
		now:  time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, a domain.Artifact) (domain.Artifact, error) {
	if s == nil {
		return domain.Artifact{}, fmt.Errorf("store is nil")
	}
	a.ID = strings.TrimSpace(a.ID)
	if a.ID == "" {
		return domain.Artifact{}, fmt.Errorf("id is required")
	}
	if strings.TrimSpace(a.ProjectID) == "" {
		return domain.Artifact{}, fmt.Errorf("project_id is required")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[a.ID]; exists {
		return domain.Artifact{}, fmt.Errorf("artifact %s already exists", a.ID)
	}
	s.next++
	s.seq[a.ID] = s.next
	s.byID[a.ID] = a
	return a, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (domain.Artifact, error) {
	if s == nil {
		return domain.Artifact{}, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return domain.Artifact{}, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) ListByProject(_ context.Context, projectID string, typ domain.Type) ([]domain.Artifact, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	projectID = strings.TrimSpace(projectID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Artifact, 0)
	for _, a := range s.byID {
		if a.ProjectID != projectID {
			continue
		}
		if typ != "" && a.Type != typ {
			continue
		}
		out = append(out, a)
	}
	// Newest first; insertion order breaks timestamp ties.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, id, content string) (domain.Artifact, error) {
	if s == nil {
		return domain.Artifact{}, fmt.Errorf("store is nil")
	}
	id = strings.TrimSpace(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return domain.Artifact{}, ErrNotFound
	}
	a.Content = content
	a.UpdatedAt = s.now()
	s.byID[id] = a
	return a, nil
}
