package project

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "idea2app/internal/project"
)

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "projects.json")

	s := NewFileStore(path)
	_, err := s.Create(ctx, domain.Project{ID: "p1", UserID: "u1", Name: "WalkBuddy", Idea: "dog walkers"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateDescription(ctx, "p1", "# Idea Summary"))

	reloaded := NewFileStore(path)
	p, err := reloaded.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "WalkBuddy", p.Name)
	assert.Equal(t, "# Idea Summary", p.Description)
}

func TestMemoryStoreBasics(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.Create(ctx, domain.Project{ID: "a", UserID: "u1", CreatedAt: base})
	require.NoError(t, err)
	_, err = s.Create(ctx, domain.Project{ID: "b", UserID: "u1", CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = s.Create(ctx, domain.Project{ID: "c", UserID: "u2"})
	require.NoError(t, err)

	list, err := s.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)

	_, err = s.Get(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.UpdateDescription(ctx, "zzz", "x"), domain.ErrNotFound)

	_, err = s.Create(ctx, domain.Project{ID: "a", UserID: "u1"})
	assert.Error(t, err)
}
