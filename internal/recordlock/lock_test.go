package recordlock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/clinic-api/internal/model"
	"github.com/vetdesk/clinic-api/internal/session"
)

func TestFreshSessionIsLocked(t *testing.T) {
	lock := New(session.NewMemoryStore())

	state, err := lock.State(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, Locked, state)
}

func TestUnlockRelockRoundTrip(t *testing.T) {
	ctx := context.Background()
	lock := New(session.NewMemoryStore())

	require.NoError(t, lock.Unlock(ctx, "s1"))
	state, err := lock.State(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Unlocked, state)

	require.NoError(t, lock.Relock(ctx, "s1"))
	state, err = lock.State(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Locked, state)
}

func TestSessionEndResetsToLocked(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	lock := New(store)

	require.NoError(t, lock.Unlock(ctx, "s1"))
	require.NoError(t, store.End(ctx, "s1"))

	state, err := lock.State(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Locked, state)
}

func TestIsWritable(t *testing.T) {
	assert.True(t, IsWritable(model.RoleDoctor, Locked), "doctor bypasses the lock")
	assert.True(t, IsWritable(model.RoleClinician, Unlocked))
	assert.False(t, IsWritable(model.RoleClinician, Locked))
	assert.False(t, IsWritable(model.RoleFrontDesk, Locked))
	assert.False(t, IsWritable(model.RoleUnknown, Locked))
}
