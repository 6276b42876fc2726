package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "idea2app/internal/chat"
)

func TestMemoryStoreOrdersAndLimits(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"m3", "m1", "m2", "m4"} {
		offsets := []int{3, 1, 2, 4}
		_, err := s.Append(ctx, domain.Message{ID: id, ProjectID: "p", Role: domain.RoleUser, CreatedAt: base.Add(time.Duration(offsets[i]) * time.Second)})
		require.NoError(t, err)
	}
	_, err := s.Append(ctx, domain.Message{ID: "x", ProjectID: "other", CreatedAt: base})
	require.NoError(t, err)

	all, err := s.ListByProject(ctx, "p", time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "m1", all[0].ID)
	assert.Equal(t, "m4", all[3].ID)

	recent, err := s.ListByProject(ctx, "p", time.Time{}, 2)
	require.NoError(t, err)
	assert.Equal(t, "m3", recent[0].ID)
	assert.Equal(t, "m4", recent[1].ID)

	older, err := s.ListByProject(ctx, "p", base.Add(3*time.Second), 0)
	require.NoError(t, err)
	assert.Len(t, older, 2)

	_, err = s.Append(ctx, domain.Message{ID: "m1", ProjectID: "p"})
	assert.Error(t, err)
}
