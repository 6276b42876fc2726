package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	domain "idea2app/internal/chat"
)

type MemoryStore struct {
	mu        sync.RWMutex
	byProject map[string][]domain.Message
	ids       map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byProject: make(map[string][]domain.Message),
		ids:       make(map[string]struct{}),
	}
}

func (s *MemoryStore) Append(_ context.Context, msg domain.Message) (domain.Message, error) {
	if s == nil {
		return domain.Message{}, fmt.Errorf("store is nil")
	}
	msg.ID = strings.TrimSpace(msg.ID)
	msg.ProjectID = strings.TrimSpace(msg.ProjectID)
	if msg.ID == "" || msg.ProjectID == "" {
		return domain.Message{}, fmt.Errorf("id and project_id are required")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.ids[msg.ID]; dup {
		return domain.Message{}, fmt.Errorf("message %s already exists", msg.ID)
	}
	s.ids[msg.ID] = struct{}{}
	list := append(s.byProject[msg.ProjectID], msg)
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	s.byProject[msg.ProjectID] = list
	return msg, nil
}

func (s *MemoryStore) ListByProject(_ context.Context, projectID string, before time.Time, limit int) ([]domain.Message, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.byProject[strings.TrimSpace(projectID)]
	out := make([]domain.Message, 0, len(all))
	for _, m := range all {
		if !before.IsZero() && !m.CreatedAt.Before(before) {
			continue
		}
		out = append(out, m)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
