package project

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	domain "idea2app/internal/project"
)

// FileStore keeps projects in memory and, when path is set, mirrors them to
// a JSON file after every write. Used for local runs without a database.
type FileStore struct {
	path string
	now  func() time.Time

	loadOnce sync.Once
	mu       sync.RWMutex
	byID     map[string]domain.Project
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: strings.TrimSpace(path),
		now:  time.Now,
		byID: make(map[string]domain.Project),
	}
}

// NewMemoryStore returns a FileStore that never touches disk.
func NewMemoryStore() *FileStore { return NewFileStore("") }

func (s *FileStore) Create(_ context.Context, p domain.Project) (domain.Project, error) {
	if s == nil {
		return domain.Project{}, fmt.Errorf("store is nil")
	}
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return domain.Project{}, fmt.Errorf("project id is required")
	}
	if strings.TrimSpace(p.UserID) == "" {
		return domain.Project{}, fmt.Errorf("user_id is required")
	}
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	s.ensureLoaded()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[p.ID]; exists {
		return domain.Project{}, fmt.Errorf("project %s already exists", p.ID)
	}
	s.byID[p.ID] = p
	return p, s.saveLocked()
}

func (s *FileStore) Get(_ context.Context, projectID string) (domain.Project, error) {
	if s == nil {
		return domain.Project{}, fmt.Errorf("store is nil")
	}
	s.ensureLoaded()
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[strings.TrimSpace(projectID)]
	if !ok {
		return domain.Project{}, domain.ErrNotFound
	}
	return p, nil
}

func (s *FileStore) ListByUser(_ context.Context, userID string) ([]domain.Project, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	s.ensureLoaded()
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Project, 0)
	for _, p := range s.byID {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *FileStore) UpdateDescription(_ context.Context, projectID, description string) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	s.ensureLoaded()
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[strings.TrimSpace(projectID)]
	if !ok {
		return domain.ErrNotFound
	}
	p.Description = description
	p.UpdatedAt = s.now()
	s.byID[p.ID] = p
	return s.saveLocked()
}

func (s *FileStore) ensureLoaded() {
	s.loadOnce.Do(func() {
		if s.path == "" {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()

		data, err := os.ReadFile(s.path)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Printf("project store: read %s: %v", s.path, err)
			}
			return
		}
		var projects []domain.Project
		if err := json.Unmarshal(data, &projects); err != nil {
			log.Printf("project store: decode %s: %v", s.path, err)
			return
		}
		for _, p := range projects {
			s.byID[p.ID] = p
		}
	})
}

func (s *FileStore) saveLocked() error {
	if s.path == "" {
		return nil
	}
	projects := make([]domain.Project, 0, len(s.byID))
	for _, p := range s.byID {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0o644)
}
