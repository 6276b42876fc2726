package credit

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerConsumes(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger(10)

	ok, err := l.TryConsume(ctx, "u1", 4, "generate:prd", "prd for X")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.TryConsume(ctx, "u1", 7, "generate:prd", "prd for X")
	require.NoError(t, err)
	assert.False(t, ok)

	bal, err := l.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 6, bal)

	bal, err = l.Grant(ctx, "u1", 5, "top-up")
	require.NoError(t, err)
	assert.Equal(t, 11, bal)

	txs := l.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, -4, txs[0].Amount)
	assert.Equal(t, 5, txs[1].Amount)
}

func TestMemoryLedgerConcurrentConsumeNeverOverdraws(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger(10)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.TryConsume(ctx, "u1", 3, "generate", "")
			if err == nil && ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, granted)
	bal, _ := l.Balance(ctx, "u1")
	assert.Equal(t, 1, bal)
}
