package artifact

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "idea2app/internal/artifact"
	artifactrepo "idea2app/internal/gateway/repository/artifact"
)

type countingOrigin struct {
	*artifactrepo.MemoryStore

	mu        sync.Mutex
	listCalls int
	getCalls  int
	failWrite bool
}

func (o *countingOrigin) ListByProject(ctx context.Context, projectID string, typ domain.Type) ([]domain.Artifact, error) {
	o.mu.Lock()
	o.listCalls++
	o.mu.Unlock()
	return o.MemoryStore.ListByProject(ctx, projectID, typ)
}

func (o *countingOrigin) Get(ctx context.Context, id string) (domain.Artifact, error) {
	o.mu.Lock()
	o.getCalls++
	o.mu.Unlock()
	return o.MemoryStore.Get(ctx, id)
}

func (o *countingOrigin) Create(ctx context.Context, a domain.Artifact) (domain.Artifact, error) {
	if o.failWrite {
		return domain.Artifact{}, fmt.Errorf("write failed")
	}
	return o.MemoryStore.Create(ctx, a)
}

func newOrigin() *countingOrigin {
	return &countingOrigin{MemoryStore: artifactrepo.NewMemoryStore()}
}

func TestCachedStoreServesListsFromCache(t *testing.T) {
	ctx := context.Background()
	origin := newOrigin()
	s := NewCachedStore(origin, DefaultCacheConfig())

	_, err := s.Create(ctx, domain.Artifact{ID: "a1", ProjectID: "p", Type: domain.TypePRD})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		list, err := s.ListByProject(ctx, "p", domain.TypePRD)
		require.NoError(t, err)
		require.Len(t, list, 1)
	}
	assert.Equal(t, 1, origin.listCalls)

	m := s.Metrics()
	assert.Equal(t, uint64(2), m.ListHits)
	assert.Equal(t, uint64(1), m.ListMisses)
}

func TestCachedStoreInvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	origin := newOrigin()
	s := NewCachedStore(origin, DefaultCacheConfig())

	_, err := s.Create(ctx, domain.Artifact{ID: "a1", ProjectID: "p", Type: domain.TypePRD, CreatedAt: time.Unix(1, 0)})
	require.NoError(t, err)
	_, err = s.ListByProject(ctx, "p", domain.TypePRD)
	require.NoError(t, err)
	_, err = s.ListByProject(ctx, "p", "")
	require.NoError(t, err)

	_, err = s.Create(ctx, domain.Artifact{ID: "a2", ProjectID: "p", Type: domain.TypePRD, CreatedAt: time.Unix(2, 0)})
	require.NoError(t, err)
	list, err := s.ListByProject(ctx, "p", domain.TypePRD)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a2", list[0].ID)
	all, err := s.ListByProject(ctx, "p", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	updated, err := s.Update(ctx, "a1", "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	got, err := s.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
	assert.Zero(t, origin.getCalls)
}

func TestCachedStoreCountsWriteErrors(t *testing.T) {
	origin := newOrigin()
	origin.failWrite = true
	s := NewCachedStore(origin, CacheConfig{})
	_, err := s.Create(context.Background(), domain.Artifact{ID: "a1", ProjectID: "p"})
	require.Error(t, err)
	assert.Equal(t, uint64(1), s.Metrics().OriginWriteErr)
}

func TestCachedStoreListEntriesExpire(t *testing.T) {
	ctx := context.Background()
	origin := newOrigin()
	s := NewCachedStore(origin, CacheConfig{ListTTL: 20 * time.Millisecond})

	_, err := s.ListByProject(ctx, "p", domain.TypePRD)
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = s.ListByProject(ctx, "p", domain.TypePRD)
	require.NoError(t, err)
	assert.Equal(t, 2, origin.listCalls)
}

type memArchive struct{ byID map[string]domain.Artifact }

func (m *memArchive) Put(_ context.Context, a domain.Artifact) error {
	m.byID[a.ID] = a
	return nil
}

func (m *memArchive) Get(_ context.Context, _, id string) (domain.Artifact, error) {
	a, ok := m.byID[id]
	if !ok {
		return domain.Artifact{}, artifactrepo.ErrNotFound
	}
	return a, nil
}

func (m *memArchive) List(context.Context, string) ([]string, error) { return nil, nil }

func TestCachedStoreRestoreRefreshesLists(t *testing.T) {
	ctx := context.Background()
	archive := &memArchive{byID: map[string]domain.Artifact{
		"old": {ID: "old", ProjectID: "p", Type: domain.TypePRD, Content: "archived"},
	}}
	s := NewCachedStore(artifactrepo.NewArchivedStore(artifactrepo.NewMemoryStore(), archive), DefaultCacheConfig())

	list, err := s.ListByProject(ctx, "p", domain.TypePRD)
	require.NoError(t, err)
	assert.Empty(t, list)

	restored, err := s.Restore(ctx, "p", "old")
	require.NoError(t, err)
	assert.Equal(t, "archived", restored.Content)

	list, err = s.ListByProject(ctx, "p", domain.TypePRD)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = NewCachedStore(artifactrepo.NewMemoryStore(), DefaultCacheConfig()).Restore(ctx, "p", "old")
	assert.ErrorIs(t, err, ErrRestoreUnsupported)
}
