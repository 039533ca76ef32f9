package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceCodeInvalidatesPrior(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	require.NoError(t, store.ReplaceCode(ctx, "s1", "A1B2C3D4", now))
	require.NoError(t, store.ReplaceCode(ctx, "s1", "FFEE0011", now))

	ok, err := store.Redeem(ctx, "s1", "A1B2C3D4", now, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "replaced code must no longer redeem")

	ok, err = store.Redeem(ctx, "s1", "FFEE0011", now, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedeemIsSingleUse(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	require.NoError(t, store.ReplaceCode(ctx, "s1", "A1B2C3D4", now))

	ok, err := store.Redeem(ctx, "s1", "A1B2C3D4", now, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Redeem(ctx, "s1", "A1B2C3D4", now, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "a consumed code must not redeem again")
}

func TestRedeemRejectsExpiredAndCaseMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	issued := time.Now()

	require.NoError(t, store.ReplaceCode(ctx, "s1", "A1B2C3D4", issued))

	ok, err := store.Redeem(ctx, "s1", "a1b2c3d4", issued, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "comparison is case sensitive")

	ok, err = store.Redeem(ctx, "s1", "A1B2C3D4", issued.Add(16*time.Minute), 15*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "expired code must not redeem")
}

func TestRedeemUnknownSession(t *testing.T) {
	store := NewMemoryStore()
	ok, err := store.Redeem(context.Background(), "nope", "A1B2C3D4", time.Now(), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConcurrentRedeemConsumesOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	require.NoError(t, store.ReplaceCode(ctx, "s1", "A1B2C3D4", now))

	const workers = 32
	var wg sync.WaitGroup
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Redeem(ctx, "s1", "A1B2C3D4", now, time.Minute)
			assert.NoError(t, err)
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "a double submit must never double spend the code")
}

func TestEndDropsAllState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	require.NoError(t, store.ReplaceCode(ctx, "s1", "A1B2C3D4", now))
	require.NoError(t, store.SetUnlocked(ctx, "s1", true))
	require.NoError(t, store.End(ctx, "s1"))

	st, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, State{}, st, "ended session reads back as zero state")
}
